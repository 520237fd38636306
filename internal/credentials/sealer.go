package credentials

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/menumaker/menumaker/internal/errors"
)

// sealedPrefix marks values written by sealer.seal.
const sealedPrefix = "sealed:v1:"

const nonceSize = 24

type sealer struct {
	key [32]byte
}

func newSealer(passphrase string) *sealer {
	return &sealer{key: sha256.Sum256([]byte(passphrase))}
}

func isSealed(stored string) bool {
	return strings.HasPrefix(stored, sealedPrefix)
}

func (s *sealer) seal(plaintext string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", errors.New(fmt.Errorf("generate nonce: %w", err)).
			Component("credentials").
			Category(errors.CategoryGeneric).
			Build()
	}
	box := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key)
	return sealedPrefix + base64.StdEncoding.EncodeToString(box), nil
}

func (s *sealer) open(stored string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, sealedPrefix))
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", errors.Newf("stored key is malformed").
			Component("credentials").
			Category(errors.CategoryValidation).
			Build()
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plaintext, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", errors.Newf("stored key cannot be decrypted with the configured encryption key").
			Component("credentials").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return string(plaintext), nil
}
