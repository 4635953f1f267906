package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/agbru/gcdtutor/internal/app"
	apperrors "github.com/agbru/gcdtutor/internal/errors"
)

func main() {
	if app.HasVersionFlag(os.Args[1:]) {
		app.PrintVersion(os.Stdout)
		return
	}

	application, err := app.New(os.Args, os.Stderr)
	if err != nil {
		if app.IsHelpError(err) {
			os.Exit(apperrors.ExitSuccess)
		}
		// The flag package reports its own parse errors.
		var cfgErr apperrors.ConfigError
		if errors.As(err, &cfgErr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(apperrors.ExitErrorConfig)
	}

	exitCode := application.Run(context.Background(), os.Stdout)
	os.Exit(exitCode)
}
