package wake

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const auditTimeLayout = "2006-01-02 15:04:05"

// Audit appends one line per issued wake to a plain text file. The
// file stays the primary record even when the Redis mirror is on.
type Audit struct {
	path string
	mu   sync.Mutex
}

// NewAudit creates an audit trail writing to path.
func NewAudit(path string) *Audit {
	return &Audit{path: path}
}

// Path returns the audit file location.
func (a *Audit) Path() string {
	return a.path
}

// Record appends one entry. The parent directory is created on first
// use so a fresh deployment needs no setup step.
func (a *Audit) Record(at time.Time, clientAddr, path, hostname string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
		return fmt.Errorf("failed to create audit log dir: %w", err)
	}

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}

	line := fmt.Sprintf("[%s] %s requested '%s' (%s)\n",
		at.Format(auditTimeLayout), clientAddr, path, hostname)
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return f.Close()
}
