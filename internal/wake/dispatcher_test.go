package wake

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/MrSnakeDoc/rouse/internal/domain"
	"github.com/MrSnakeDoc/rouse/internal/execx"
	"github.com/MrSnakeDoc/rouse/internal/logger"
	"github.com/MrSnakeDoc/rouse/internal/metrics"
)

type recordRunner struct {
	cmds []string
	err  error
}

func (r *recordRunner) Run(_ context.Context, name string, args ...string) error {
	r.cmds = append(r.cmds, name+" "+strings.Join(args, " "))
	return r.err
}

var _ execx.Runner = (*recordRunner)(nil)

const cooldown = 40 * time.Second

func testDispatcher(t *testing.T, rr *recordRunner) (*Dispatcher, *clock.Mock, string) {
	t.Helper()
	auditPath := filepath.Join(t.TempDir(), "wakes.log")
	clk := clock.NewMock()
	d := New(rr, NewAudit(auditPath), nil, logger.New("error", false), metrics.New(), clk, Config{
		Command:  "wakeonlan",
		Cooldown: cooldown,
		Timeout:  time.Second,
	})
	return d, clk, auditPath
}

func wakeService() *domain.Service {
	return &domain.Service{
		Name:          "jellyfin",
		HostAddr:      "192.168.1.50",
		MACAddr:       "aa:bb:cc:dd:ee:ff",
		BroadcastAddr: "192.168.1.255",
		AppURL:        "http://jellyfin.local",
	}
}

func wakeRequest() Request {
	return Request{
		ClientAddr: "10.0.0.2",
		Path:       "/",
		Hostname:   "jellyfin.local",
	}
}

func TestWakeRunsCommand(t *testing.T) {
	rr := &recordRunner{}
	d, _, _ := testDispatcher(t, rr)

	if err := d.Wake(context.Background(), wakeService(), wakeRequest()); err != nil {
		t.Fatalf("Wake() error = %v", err)
	}

	want := "wakeonlan -i 192.168.1.255 aa:bb:cc:dd:ee:ff"
	if len(rr.cmds) != 1 || rr.cmds[0] != want {
		t.Errorf("commands = %v, want [%s]", rr.cmds, want)
	}
}

func TestWakeThrottled(t *testing.T) {
	rr := &recordRunner{}
	d, clk, _ := testDispatcher(t, rr)

	svc := wakeService()
	if err := d.Wake(context.Background(), svc, wakeRequest()); err != nil {
		t.Fatalf("Wake() error = %v", err)
	}

	clk.Add(cooldown - time.Second)
	if err := d.Wake(context.Background(), svc, wakeRequest()); err != nil {
		t.Fatalf("throttled Wake() error = %v, want nil", err)
	}
	if len(rr.cmds) != 1 {
		t.Errorf("throttled wake ran the command, commands = %v", rr.cmds)
	}

	clk.Add(time.Second)
	if err := d.Wake(context.Background(), svc, wakeRequest()); err != nil {
		t.Fatalf("Wake() after cooldown error = %v", err)
	}
	if len(rr.cmds) != 2 {
		t.Errorf("wake after cooldown should run the command, commands = %v", rr.cmds)
	}
}

func TestWakeThrottleKeyedByMAC(t *testing.T) {
	rr := &recordRunner{}
	d, _, _ := testDispatcher(t, rr)

	first := wakeService()
	second := wakeService()
	second.Name = "jellyfin-alias"
	second.AppURL = "http://alias.local"

	if err := d.Wake(context.Background(), first, wakeRequest()); err != nil {
		t.Fatalf("Wake() error = %v", err)
	}
	if err := d.Wake(context.Background(), second, wakeRequest()); err != nil {
		t.Fatalf("Wake() error = %v", err)
	}

	if len(rr.cmds) != 1 {
		t.Errorf("records sharing a MAC should share the cooldown, commands = %v", rr.cmds)
	}
}

func TestWakeCommandFailure(t *testing.T) {
	rr := &recordRunner{err: errors.New("exit status 1")}
	d, _, auditPath := testDispatcher(t, rr)

	err := d.Wake(context.Background(), wakeService(), wakeRequest())
	if err == nil {
		t.Fatal("Wake() should propagate a failed send")
	}

	if _, statErr := os.Stat(auditPath); !os.IsNotExist(statErr) {
		t.Error("failed wake should not write an audit line")
	}

	// A failed send still claims the cooldown slot, matching the
	// timestamp-before-send ordering.
	rr.err = nil
	if err := d.Wake(context.Background(), wakeService(), wakeRequest()); err != nil {
		t.Fatalf("Wake() error = %v", err)
	}
	if len(rr.cmds) != 1 {
		t.Errorf("retry within cooldown should be throttled, commands = %v", rr.cmds)
	}
}

func TestWakeWritesAuditLine(t *testing.T) {
	rr := &recordRunner{}
	d, clk, auditPath := testDispatcher(t, rr)
	clk.Set(time.Date(2025, 6, 1, 12, 30, 45, 0, time.UTC))

	if err := d.Wake(context.Background(), wakeService(), wakeRequest()); err != nil {
		t.Fatalf("Wake() error = %v", err)
	}

	data, err := os.ReadFile(auditPath)
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}
	want := "[2025-06-01 12:30:45] 10.0.0.2 requested '/' (jellyfin.local)\n"
	if string(data) != want {
		t.Errorf("audit line = %q, want %q", string(data), want)
	}
}

func TestWakeAuditFailureDoesNotFailWake(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to write blocker file: %v", err)
	}

	rr := &recordRunner{}
	clk := clock.NewMock()
	// Audit path under a regular file, so MkdirAll must fail.
	d := New(rr, NewAudit(filepath.Join(blocker, "logs", "wakes.log")), nil,
		logger.New("error", false), metrics.New(), clk, Config{
			Command:  "wakeonlan",
			Cooldown: cooldown,
			Timeout:  time.Second,
		})

	if err := d.Wake(context.Background(), wakeService(), wakeRequest()); err != nil {
		t.Errorf("Wake() error = %v, audit failure should not fail the wake", err)
	}
	if len(rr.cmds) != 1 {
		t.Errorf("command should still run, commands = %v", rr.cmds)
	}
}

func TestWakeThrottledSkipsAudit(t *testing.T) {
	rr := &recordRunner{}
	d, _, auditPath := testDispatcher(t, rr)

	svc := wakeService()
	if err := d.Wake(context.Background(), svc, wakeRequest()); err != nil {
		t.Fatalf("Wake() error = %v", err)
	}
	if err := d.Wake(context.Background(), svc, wakeRequest()); err != nil {
		t.Fatalf("Wake() error = %v", err)
	}

	data, err := os.ReadFile(auditPath)
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}
	if got := strings.Count(string(data), "\n"); got != 1 {
		t.Errorf("audit lines = %d, want 1 (throttled wake is not audited)", got)
	}
}
