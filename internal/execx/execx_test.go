package execx

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRunSuccess(t *testing.T) {
	r := NewOSRunner()
	if err := r.Run(context.Background(), "sh", "-c", "exit 0"); err != nil {
		t.Errorf("Run() error = %v, want nil", err)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	r := NewOSRunner()
	err := r.Run(context.Background(), "sh", "-c", "exit 3")
	if err == nil {
		t.Error("Run() should fail on non-zero exit")
	}
}

func TestRunCapturesStderr(t *testing.T) {
	r := NewOSRunner()
	err := r.Run(context.Background(), "sh", "-c", "echo boom >&2; exit 1")
	if err == nil {
		t.Fatal("Run() should fail")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("Run() error = %q, want stderr content included", err.Error())
	}
}

func TestRunTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	r := NewOSRunner()
	err := r.Run(ctx, "sleep", "5")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestRunMissingBinary(t *testing.T) {
	r := NewOSRunner()
	if err := r.Run(context.Background(), "definitely-not-a-command"); err == nil {
		t.Error("Run() should fail for a missing binary")
	}
}
