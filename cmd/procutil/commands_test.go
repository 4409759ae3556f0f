// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/invowk/procutil/internal/config"
	"github.com/invowk/procutil/internal/sigwait"
	"github.com/invowk/procutil/pkg/sigspec"
	"github.com/invowk/procutil/pkg/types"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sys/unix"
)

func TestFDs_ShortListing(t *testing.T) {
	h := newHarness(t, nil)
	h.table.open = []int{0, 1, 2, 5}

	if code := h.run(t, "fds"); code != types.ExitOK {
		t.Fatalf("exit code = %d; stderr:\n%s", code, h.stderr)
	}
	if diff := cmp.Diff("0\n1\n2\n5\n", h.stdout.String()); diff != "" {
		t.Errorf("stdout mismatch (-want +got):\n%s", diff)
	}
}

func TestFDs_LongListing(t *testing.T) {
	tests := []struct {
		name string
		args []string
		cfg  func(*config.Config)
	}{
		{name: "flag", args: []string{"fds", "--long"}},
		{name: "config default", args: []string{"fds"}, cfg: func(c *config.Config) { c.FDs.Describe = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			if tt.cfg != nil {
				tt.cfg(cfg)
			}
			h := newHarness(t, cfg)
			h.table.open = []int{0, 4}
			h.table.targets = map[int]string{0: "/dev/null"}
			h.table.cloexec = map[int]bool{4: true}

			if code := h.run(t, tt.args...); code != types.ExitOK {
				t.Fatalf("exit code = %d; stderr:\n%s", code, h.stderr)
			}
			out := h.stdout.String()
			for _, want := range []string{"CLOEXEC", "TARGET", "/dev/null", "yes", "no", "-"} {
				if !strings.Contains(out, want) {
					t.Errorf("long listing missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestFDs_LongFlagOverridesConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.FDs.Describe = true
	h := newHarness(t, cfg)

	if code := h.run(t, "fds", "--long=false"); code != types.ExitOK {
		t.Fatalf("exit code = %d", code)
	}
	if diff := cmp.Diff("0\n1\n2\n", h.stdout.String()); diff != "" {
		t.Errorf("stdout mismatch (-want +got):\n%s", diff)
	}
}

func TestCloexec(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		setErr     error
		wantCode   types.ExitCode
		wantMarked []int
		wantStderr string
	}{
		{name: "valid", args: []string{"cloexec", "7"}, wantMarked: []int{7}},
		{name: "not a number", args: []string{"cloexec", "abc"}, wantCode: types.ExitUsage, wantStderr: "invalid file descriptor"},
		{name: "negative", args: []string{"cloexec", "--", "-1"}, wantCode: types.ExitUsage, wantStderr: "invalid file descriptor"},
		{name: "closed", args: []string{"cloexec", "9"}, setErr: unix.EBADF, wantCode: types.ExitFailure, wantStderr: "bad file descriptor"},
		{name: "missing argument", args: []string{"cloexec"}, wantCode: types.ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			h.table.setErr = tt.setErr

			if code := h.run(t, tt.args...); code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d; stderr:\n%s", code, tt.wantCode, h.stderr)
			}
			if diff := cmp.Diff(tt.wantMarked, h.table.marked); diff != "" {
				t.Errorf("marked descriptors mismatch (-want +got):\n%s", diff)
			}
			if tt.wantStderr != "" && !strings.Contains(h.stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", h.stderr, tt.wantStderr)
			}
		})
	}
}

func TestCloexecExcept(t *testing.T) {
	h := newHarness(t, nil)

	if code := h.run(t, "cloexec-except", "3", "4"); code != types.ExitOK {
		t.Fatalf("exit code = %d; stderr:\n%s", code, h.stderr)
	}
	if diff := cmp.Diff([][]int{{3, 4}}, h.table.kept); diff != "" {
		t.Errorf("kept mismatch (-want +got):\n%s", diff)
	}

	h = newHarness(t, nil)
	if code := h.run(t, "cloexec-except", "3", "x"); code != types.ExitUsage {
		t.Errorf("exit code = %d, want 2", code)
	}
	if len(h.table.kept) != 0 {
		t.Error("table was modified despite an invalid argument")
	}
}

func TestWait_PrintsFiredSignal(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Wait.PollInterval = "250ms"
	h := newHarness(t, cfg)
	h.waiter.fired = sigwait.Fired{Signal: unix.SIGUSR1, Name: "USR1", Named: true}

	if code := h.run(t, "wait", "USR1", "15"); code != types.ExitOK {
		t.Fatalf("exit code = %d; stderr:\n%s", code, h.stderr)
	}
	if diff := cmp.Diff("USR1\n", h.stdout.String()); diff != "" {
		t.Errorf("stdout mismatch (-want +got):\n%s", diff)
	}
	want := []sigspec.Spec{sigspec.Name("USR1"), sigspec.Number(15)}
	if diff := cmp.Diff(want, h.waiter.specs, cmp.Comparer(func(a, b sigspec.Spec) bool { return a == b })); diff != "" {
		t.Errorf("specs mismatch (-want +got):\n%s", diff)
	}
	if h.waiter.poll != 250*time.Millisecond {
		t.Errorf("poll interval = %s, want the configured 250ms", h.waiter.poll)
	}
}

func TestWait_UnnamedSignal(t *testing.T) {
	h := newHarness(t, nil)
	h.waiter.fired = sigwait.Fired{Signal: unix.Signal(40)}

	if code := h.run(t, "wait", "40", "--poll-interval", "5ms"); code != types.ExitOK {
		t.Fatalf("exit code = %d", code)
	}
	if got := h.stdout.String(); got != "unnamed 40\n" {
		t.Errorf("stdout = %q", got)
	}
	if h.waiter.poll != 5*time.Millisecond {
		t.Errorf("poll interval = %s, want the flag value", h.waiter.poll)
	}
}

func TestWait_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		block      bool
		args       []string
		wantCode   types.ExitCode
		wantStderr string
	}{
		{
			name:     "invalid signal",
			err:      fmt.Errorf("%w: %w", sigwait.ErrInvalidArgument, &sigspec.InvalidSignalSpecError{Spec: sigspec.Name("NOPE"), Reason: "unknown signal name"}),
			args:     []string{"wait", "NOPE"},
			wantCode: types.ExitUsage,
		},
		{
			name:     "wrong context",
			err:      &sigwait.UsageError{Reason: sigwait.ReasonNotSignalContext},
			args:     []string{"wait", "TERM"},
			wantCode: types.ExitUsage,
		},
		{
			name:       "timeout",
			block:      true,
			args:       []string{"wait", "--timeout", "10ms", "USR2"},
			wantCode:   types.ExitFailure,
			wantStderr: "no signal received within 10ms",
		},
		{
			name:     "system error",
			err:      errors.ErrUnsupported,
			args:     []string{"wait", "TERM"},
			wantCode: types.ExitFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			h.waiter.err = tt.err
			h.waiter.block = tt.block

			if code := h.run(t, tt.args...); code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d; stderr:\n%s", code, tt.wantCode, h.stderr)
			}
			if h.stdout.Len() != 0 {
				t.Errorf("stdout = %q, want nothing", h.stdout)
			}
			if !strings.Contains(h.stderr.String(), "Error:") || !strings.Contains(h.stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q", h.stderr)
			}
		})
	}
}

func TestExec_KeepsStdioAndRequestedDescriptors(t *testing.T) {
	self, err := os.Executable()
	if err != nil {
		t.Fatal(err)
	}
	h := newHarness(t, nil)

	code := h.run(t, "exec", "--keep", "9", "--keep", "4", "--", self, "-test.run=none")
	if code != types.ExitFailure {
		t.Fatalf("exit code = %d, want 1 from the blocked exec", code)
	}
	if diff := cmp.Diff([][]int{{0, 1, 2, 9, 4}}, h.table.kept); diff != "" {
		t.Errorf("kept mismatch (-want +got):\n%s", diff)
	}
	want := []execCall{{argv0: self, argv: []string{self, "-test.run=none"}}}
	if diff := cmp.Diff(want, h.exec.calls, cmp.AllowUnexported(execCall{})); diff != "" {
		t.Errorf("exec calls mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(h.stderr.String(), "exec blocked in tests") {
		t.Errorf("stderr = %q", h.stderr)
	}
}

func TestExec_MissingProgramTouchesNothing(t *testing.T) {
	h := newHarness(t, nil)

	code := h.run(t, "exec", "--", filepath.Join(t.TempDir(), "no-such-program"))
	if code != types.ExitFailure {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if len(h.table.kept) != 0 || len(h.exec.calls) != 0 {
		t.Errorf("descriptors or exec touched: kept=%v calls=%v", h.table.kept, h.exec.calls)
	}
}

func TestExec_InvalidKeep(t *testing.T) {
	h := newHarness(t, nil)

	if code := h.run(t, "exec", "--keep", "three", "--", "true"); code != types.ExitUsage {
		t.Errorf("exit code = %d, want 2", code)
	}
}

func TestConfigSet(t *testing.T) {
	tests := []struct {
		key, value string
		wantCode   types.ExitCode
		check      func(*config.Config) bool
	}{
		{"log.level", "debug", types.ExitOK, func(c *config.Config) bool { return c.Log.Level == config.LogLevelDebug }},
		{"fds.describe", "true", types.ExitOK, func(c *config.Config) bool { return c.FDs.Describe }},
		{"run.forward_signals", "TERM, INT", types.ExitOK, func(c *config.Config) bool {
			return cmp.Equal([]string{"TERM", "INT"}, c.Run.ForwardSignals)
		}},
		{"wait.poll_interval", "fast", types.ExitUsage, nil},
		{"run.forward_signals", "TERM,NOPE", types.ExitUsage, nil},
		{"no.such.key", "x", types.ExitUsage, nil},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.cue")
			if err := config.WriteFile(path, config.DefaultConfig()); err != nil {
				t.Fatal(err)
			}
			h := newHarness(t, nil)
			h.app.Config = config.NewProvider()

			if code := h.run(t, "--config", path, "config", "set", tt.key, tt.value); code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d; stderr:\n%s", code, tt.wantCode, h.stderr)
			}
			if tt.check == nil {
				return
			}
			cfg, err := config.NewProvider().Load(context.Background(), config.LoadOptions{ConfigFilePath: types.FilesystemPath(path)})
			if err != nil {
				t.Fatalf("reload: %v", err)
			}
			if !tt.check(cfg) {
				t.Errorf("saved config does not reflect %s=%s: %+v", tt.key, tt.value, cfg)
			}
		})
	}
}

func TestConfigShowAndDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.cue")
	cfg := config.DefaultConfig()
	cfg.Wait.PollInterval = "1s"
	if err := config.WriteFile(path, cfg); err != nil {
		t.Fatal(err)
	}

	h := newHarness(t, nil)
	h.app.Config = config.NewProvider()
	if code := h.run(t, "--config", path, "config", "show"); code != types.ExitOK {
		t.Fatalf("show exit code = %d; stderr:\n%s", code, h.stderr)
	}
	for _, want := range []string{path, "poll_interval: 1s", "forward_signals: TERM, INT, HUP, USR1, USR2"} {
		if !strings.Contains(h.stdout.String(), want) {
			t.Errorf("show output missing %q:\n%s", want, h.stdout)
		}
	}

	h = newHarness(t, nil)
	h.app.Config = config.NewProvider()
	if code := h.run(t, "--config", path, "config", "dump"); code != types.ExitOK {
		t.Fatalf("dump exit code = %d", code)
	}
	if diff := cmp.Diff(config.GenerateCUE(cfg), h.stdout.String()); diff != "" {
		t.Errorf("dump mismatch (-want +got):\n%s", diff)
	}
}
