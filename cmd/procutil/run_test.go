// SPDX-License-Identifier: MPL-2.0

//go:build unix

package cmd

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/invowk/procutil/internal/config"
	"github.com/invowk/procutil/internal/traps"
	"github.com/invowk/procutil/pkg/sigspec"
	"github.com/invowk/procutil/pkg/types"

	"github.com/google/go-cmp/cmp"
)

func specNames(specs []sigspec.Spec) []string {
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.String()
	}
	return names
}

func TestRun_ExitStatus(t *testing.T) {
	tests := []struct {
		name     string
		script   string
		wantCode types.ExitCode
	}{
		{name: "success", script: "exit 0", wantCode: types.ExitOK},
		{name: "failure status", script: "exit 3", wantCode: 3},
		{name: "killed by signal", script: "kill -TERM $$", wantCode: 128 + 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)

			if code := h.run(t, "run", "--", "sh", "-c", tt.script); code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d; stderr:\n%s", code, tt.wantCode, h.stderr)
			}
			if strings.Contains(h.stderr.String(), "Error:") {
				t.Errorf("child failure should not print an error outside verbose mode:\n%s", h.stderr)
			}
		})
	}
}

func TestRun_ChildOutputGoesToAppWriters(t *testing.T) {
	h := newHarness(t, nil)

	if code := h.run(t, "run", "--", "sh", "-c", "echo out; echo err >&2"); code != types.ExitOK {
		t.Fatalf("exit code = %d", code)
	}
	if h.stdout.String() != "out\n" || !strings.Contains(h.stderr.String(), "err\n") {
		t.Errorf("stdout = %q, stderr = %q", h.stdout, h.stderr)
	}
}

func TestRun_ForwardedSignals(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Run.ForwardSignals = []string{"TERM", "QUIT"}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{name: "from config", args: []string{"run", "--", "true"}, want: []string{"TERM", "QUIT"}},
		{name: "flag replaces config", args: []string{"run", "--forward", "INT", "--forward", "10", "--", "true"}, want: []string{"INT", "10"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, cfg)
			if code := h.run(t, tt.args...); code != types.ExitOK {
				t.Fatalf("exit code = %d; stderr:\n%s", code, h.stderr)
			}
			if len(h.traps.specs) != 1 {
				t.Fatalf("WithTrap called %d times, want 1", len(h.traps.specs))
			}
			if diff := cmp.Diff(tt.want, specNames(h.traps.specs[0])); diff != "" {
				t.Errorf("forwarded signals mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRun_InvalidForwardSignal(t *testing.T) {
	h := newHarness(t, nil)

	if code := h.run(t, "run", "--forward", "NOPE", "--", "true"); code != types.ExitUsage {
		t.Errorf("exit code = %d, want 2", code)
	}
}

func TestRun_MissingProgram(t *testing.T) {
	h := newHarness(t, nil)

	if code := h.run(t, "run", "--", "/nonexistent/procutil-test-program"); code != types.ExitFailure {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(h.stderr.String(), "failed to execute program") {
		t.Errorf("stderr = %q", h.stderr)
	}
}

func TestRun_VerboseChildFailure(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.UI.ColorScheme = "notty"
	h := newHarness(t, cfg)

	if code := h.run(t, "-v", "run", "--", "sh", "-c", "exit 4"); code != 4 {
		t.Fatalf("exit code = %d, want 4", code)
	}
	if !strings.Contains(h.stderr.String(), "Child process failed") {
		t.Errorf("verbose stderr should include the issue text:\n%s", h.stderr)
	}
}

// childTrapScript exits 0 after writing $1/got when the trapped signal
// arrives. $1/ready appears once the trap is installed.
const childTrapScript = `trap ': > "$1/got"; exit 0' "$2"
: > "$1/ready"
while :; do sleep 0.05; done`

func waitForFile(t *testing.T, path string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(path); err == nil {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("%s did not appear", path)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRun_RelaysRealSignals(t *testing.T) {
	tests := []struct {
		name    string
		forward string
		trap    string
		sig     syscall.Signal
	}{
		{name: "named", forward: "USR1", trap: "USR1", sig: syscall.SIGUSR1},
		{name: "unnamed realtime", forward: "40", trap: "40", sig: syscall.Signal(40)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			reg := traps.NewRegistry()
			defer reg.Close()
			h.app.Traps = reg

			dir := t.TempDir()
			done := make(chan types.ExitCode, 1)
			go func() {
				done <- h.run(t, "run", "--forward", tt.forward, "--", "sh", "-c", childTrapScript, "sh", dir, tt.trap)
			}()

			waitForFile(t, filepath.Join(dir, "ready"))
			if err := syscall.Kill(os.Getpid(), tt.sig); err != nil {
				t.Fatalf("kill: %v", err)
			}

			select {
			case code := <-done:
				if code != types.ExitOK {
					t.Fatalf("exit code = %d, want 0; stderr:\n%s", code, h.stderr)
				}
			case <-time.After(10 * time.Second):
				t.Fatal("child did not exit after the signal was sent")
			}
			if _, err := os.Stat(filepath.Join(dir, "got")); err != nil {
				t.Errorf("child did not receive signal %d: %v", tt.sig, err)
			}
		})
	}
}

func TestSignalRelay_HoldsSignalsUntilAttach(t *testing.T) {
	relay := &signalRelay{}
	relay.handle(syscall.SIGTERM, "TERM")

	child := exec.Command("sleep", "30")
	if err := child.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	relay.attach(child.Process)

	err := child.Wait()
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Wait() = %v, want the child killed by TERM", err)
	}
	if code, sig := childExitCode(exitErr); code != 128+15 || sig != syscall.SIGTERM {
		t.Errorf("childExitCode() = %d, %v; want 143, TERM", code, sig)
	}
	if len(relay.pending) != 0 {
		t.Errorf("pending = %v after attach, want none", relay.pending)
	}
}
