package e2e

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// TestCLI_E2E builds the binary and checks the one-shot mode end to end.
// None of the cases reaches the generative-language service.
func TestCLI_E2E(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}
	tmpDir := t.TempDir()
	binName := "gcdtutor"
	if runtime.GOOS == "windows" {
		binName = "gcdtutor.exe"
	}
	binPath := filepath.Join(tmpDir, binName)

	// go test runs in test/e2e; build from the module root.
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/gcdtutor")
	cmd.Dir = "../.."
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("Failed to build gcdtutor: %v", err)
	}

	tests := []struct {
		name     string
		args     []string
		wantOut  string // substring match (case-insensitive)
		exact    bool
		wantCode int
	}{
		{
			name:    "Trace Only",
			args:    []string{"-a", "120", "-b", "45", "--no-explain"},
			wantOut: "PGCD = 15",
		},
		{
			name:    "Positional Operands In English",
			args:    []string{"--no-explain", "--lang", "en", "7", "7"},
			wantOut: "GCD = 7",
		},
		{
			name:    "Quiet Mode",
			args:    []string{"-q", "120", "45"},
			wantOut: "15\n",
			exact:   true,
		},
		{
			name:     "Invalid Operand",
			args:     []string{"--no-explain", "120", "abc"},
			wantOut:  "not an integer",
			wantCode: 4,
		},
		{
			name:     "Missing Operands",
			args:     []string{"--no-explain"},
			wantOut:  "missing operands",
			wantCode: 4,
		},
		{
			name:     "Missing API Key",
			args:     []string{"120", "45"},
			wantOut:  "api key",
			wantCode: 4,
		},
		{
			name:    "Help",
			args:    []string{"--help"},
			wantOut: "usage",
		},
		{
			name:    "Version Flag",
			args:    []string{"--version"},
			wantOut: "gcdtutor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(binPath, tt.args...)
			cmd.Env = append(cleanEnv(), "NO_COLOR=1")
			output, err := cmd.CombinedOutput()
			outStr := string(output)

			code := 0
			if exitErr, ok := err.(*exec.ExitError); ok {
				code = exitErr.ExitCode()
			} else if err != nil {
				t.Fatalf("run: %v", err)
			}
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d\nOutput: %s", code, tt.wantCode, outStr)
			}

			switch {
			case tt.exact && outStr != tt.wantOut:
				t.Errorf("output = %q, want %q", outStr, tt.wantOut)
			case !strings.Contains(strings.ToLower(outStr), strings.ToLower(tt.wantOut)):
				t.Errorf("Output missing expected string.\nExpected: %q\nGot:\n%s", tt.wantOut, outStr)
			}
		})
	}
}

// cleanEnv drops API keys and GCDTUTOR_* overrides so the cases do not
// depend on the developer's shell, and points the config file lookup at
// an empty directory.
func cleanEnv() []string {
	var env []string
	for _, kv := range os.Environ() {
		switch {
		case strings.HasPrefix(kv, "GCDTUTOR_"),
			strings.HasPrefix(kv, "GEMINI_API_KEY="),
			strings.HasPrefix(kv, "GOOGLE_API_KEY="),
			strings.HasPrefix(kv, "XDG_CONFIG_HOME="):
			continue
		}
		env = append(env, kv)
	}
	return append(env, "XDG_CONFIG_HOME="+os.TempDir()+"/gcdtutor-e2e-none")
}
