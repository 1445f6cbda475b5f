// Package audit keeps an append-only trail of every command the gateway
// executed or refused.
package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/skyhook-labs/cloudgate/pkg/gateway"
)

// Logger appends gateway audit entries to a file. Safe for concurrent use.
type Logger struct {
	mu sync.Mutex
	f  *os.File
}

// Open creates (or appends to) the audit log at path. An empty path falls
// back to ~/.cloudgate/audit.log.
func Open(path string) (*Logger, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir := filepath.Join(home, ".cloudgate")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "audit.log")
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}
	return &Logger{f: f}, nil
}

// Record writes one entry. Write failures are swallowed: auditing must never
// take the gateway down mid-request.
func (l *Logger) Record(e gateway.AuditEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t := e.Time
	if t.IsZero() {
		t = time.Now().UTC()
	}
	verb := e.Verb
	if verb == "" {
		verb = "-"
	}
	// Format: [TIME] provider verb exit=N dur=... outcome cmd="..."
	line := fmt.Sprintf("[%s] %s %s exit=%d dur=%s outcome=%q cmd=%q\n",
		t.Format(time.RFC3339),
		e.Provider,
		verb,
		e.ExitCode,
		e.Duration.Round(time.Millisecond),
		e.Outcome,
		e.Command,
	)
	if _, err := l.f.WriteString(line); err != nil {
		fmt.Fprintf(os.Stderr, "(Warning: Failed to write audit log: %v)\n", err)
	}
}

// Close releases the underlying file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}
