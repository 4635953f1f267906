package app

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
)

// Build information, set with -ldflags "-X github.com/agbru/gcdtutor/internal/app.Version=...".
var (
	Version   = "dev"
	Commit    = ""
	BuildDate = ""
)

// HasVersionFlag reports whether args ask for the version. It is checked
// before flag parsing so that --version works alongside missing operands.
func HasVersionFlag(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "--version", "-version", "-V":
			return true
		case "--":
			return false
		}
	}
	return false
}

// PrintVersion writes the version line and build details.
func PrintVersion(out io.Writer) {
	fmt.Fprintf(out, "gcdtutor %s\n", resolvedVersion())
	if Commit != "" {
		fmt.Fprintf(out, "  commit: %s\n", Commit)
	}
	if BuildDate != "" {
		fmt.Fprintf(out, "  built:  %s\n", BuildDate)
	}
	fmt.Fprintf(out, "  go:     %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// resolvedVersion falls back to the module version for `go install` builds.
func resolvedVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}
