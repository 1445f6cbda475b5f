package runner

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestRunCapturesStdout(t *testing.T) {
	r := New(5*time.Second, 64)

	res, err := r.Run(context.Background(), []string{"echo", "bucket-a"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", res.ExitCode)
	}
	if strings.TrimSpace(res.Stdout) != "bucket-a" {
		t.Errorf("stdout = %q, want bucket-a", res.Stdout)
	}
	if res.TimedOut {
		t.Error("unexpected timeout")
	}
}

func TestRunNonZeroExitIsNotAnError(t *testing.T) {
	r := New(5*time.Second, 64)

	res, err := r.Run(context.Background(), []string{"false"})
	if err != nil {
		t.Fatalf("non-zero exit must not surface as error, got %v", err)
	}
	if res.ExitCode == 0 {
		t.Error("expected non-zero exit code")
	}
}

func TestRunBinaryMissing(t *testing.T) {
	r := New(5*time.Second, 64)

	_, err := r.Run(context.Background(), []string{"definitely-not-a-real-binary-xyz"})
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error %q does not mention missing binary", err)
	}
}

func TestRunTimeoutTerminatesChild(t *testing.T) {
	r := New(150*time.Millisecond, 64)

	started := time.Now()
	res, err := r.Run(context.Background(), []string{"sleep", "30"})
	if err != nil {
		t.Fatalf("timeout must return a result, got error %v", err)
	}
	if !res.TimedOut {
		t.Fatal("expected TimedOut=true")
	}
	if elapsed := time.Since(started); elapsed > 5*time.Second {
		t.Errorf("Run blocked %s past the timeout", elapsed)
	}
}

func TestRunEmptyArgv(t *testing.T) {
	r := New(time.Second, 64)
	if _, err := r.Run(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty argv")
	}
}

func TestRunInjectsExtraEnv(t *testing.T) {
	r := New(5*time.Second, 64, WithEnv("CLOUDGATE_TEST_MARKER=present"))

	res, err := r.Run(context.Background(), []string{"printenv", "CLOUDGATE_TEST_MARKER"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != "present" {
		t.Errorf("stdout = %q, want injected env value", res.Stdout)
	}
}

func TestLimitOutput(t *testing.T) {
	long := strings.Repeat("x", 3*1024)
	limited := limitOutput(long, 1)
	if len(limited) >= len(long) {
		t.Error("output was not truncated")
	}
	if !strings.HasSuffix(limited, "... (truncated)") {
		t.Errorf("truncated output missing marker, got tail %q", limited[len(limited)-30:])
	}

	if limitOutput("short", 1) != "short" {
		t.Error("short output must pass through untouched")
	}
}

func TestIsInstalled(t *testing.T) {
	r := New(time.Second, 64)
	if !r.IsInstalled("echo") {
		t.Error("echo should be installed")
	}
	if r.IsInstalled("definitely-not-a-real-binary-xyz") {
		t.Error("phantom binary reported installed")
	}
}
