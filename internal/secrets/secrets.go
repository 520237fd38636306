// Package secrets resolves provider credentials from config values that may
// reference environment variables or mounted secret files.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/menumaker/menumaker/internal/errors"
)

const (
	// maxSecretFileSize limits secret file reads; keys are short tokens
	maxSecretFileSize = 64 * 1024

	maskVisibleSuffix = 4
)

// ExpandString expands ${VAR} and ${VAR:-default} references.
// A referenced variable that is unset and has no default is an error.
func ExpandString(s string) (string, error) {
	if s == "" {
		return "", nil
	}

	var missingVars []string

	expanded := os.Expand(s, func(key string) string {
		varName := key
		defaultValue := ""
		fallbackProvided := false

		if idx := strings.Index(key, ":-"); idx != -1 {
			varName = key[:idx]
			defaultValue = key[idx+2:]
			fallbackProvided = true
		}

		value := os.Getenv(varName)
		if value == "" {
			if fallbackProvided {
				return defaultValue
			}
			missingVars = append(missingVars, varName)
		}
		return value
	})

	if len(missingVars) > 0 {
		return "", errors.Newf("missing required environment variable(s): %s", strings.Join(missingVars, ", ")).
			Component("secrets").
			Category(errors.CategoryConfiguration).
			Build()
	}

	return expanded, nil
}

// ReadFile reads a secret from a regular file, trimming trailing newlines.
func ReadFile(path string) (string, error) {
	if path == "" {
		return "", errors.ValidationError("secret file path is empty")
	}

	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)
	if err != nil {
		return "", errors.New(fmt.Errorf("stat secret file %s: %w", cleanPath, err)).
			Component("secrets").
			Category(errors.CategoryFileIO).
			Build()
	}
	if !info.Mode().IsRegular() {
		return "", errors.Newf("secret path is not a regular file: %s", cleanPath).
			Component("secrets").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if info.Size() > maxSecretFileSize {
		return "", errors.Newf("secret file too large (max %d bytes): %s", maxSecretFileSize, cleanPath).
			Component("secrets").
			Category(errors.CategoryConfiguration).
			Build()
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", errors.New(fmt.Errorf("read secret file %s: %w", cleanPath, err)).
			Component("secrets").
			Category(errors.CategoryFileIO).
			Build()
	}

	secret := strings.TrimRight(string(data), "\r\n")
	if secret == "" {
		return "", errors.Newf("secret file is empty: %s", cleanPath).
			Component("secrets").
			Category(errors.CategoryConfiguration).
			Build()
	}

	return secret, nil
}

// Resolve returns the secret from filePath when set, otherwise the expanded value.
func Resolve(filePath, value string) (string, error) {
	if filePath != "" {
		return ReadFile(filePath)
	}
	return ExpandString(value)
}

// Mask hides all but the last four characters of a credential.
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= maskVisibleSuffix {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-maskVisibleSuffix) + secret[len(secret)-maskVisibleSuffix:]
}
