package main

import (
	"context"
	"fmt"
	"os"

	"github.com/menumaker/menumaker/cmd"
	"github.com/menumaker/menumaker/internal/app"
	"github.com/menumaker/menumaker/internal/buildinfo"
)

// set with -ldflags "-X main.version=... -X main.buildDate=..."
var (
	version   = "dev"
	buildDate = ""
)

func main() {
	os.Exit(run())
}

// run executes the root command and closes the app context before returning,
// so logs and telemetry are flushed even when the command fails.
func run() int {
	ctx := &app.Context{Build: buildinfo.NewContext(version, buildDate)}
	defer ctx.Close()

	if err := cmd.RootCommand(ctx).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
