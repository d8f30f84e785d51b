// Package fake is a capture-everything Transport for headless runs and
// tests: it records each report instead of touching hardware.
package fake

import (
	"errors"
	"sync"
)

// ErrInjected is the default injected send failure.
var ErrInjected = errors.New("fake: injected send failure")

// Transport records sent reports. FailAt injects a send error at the n-th
// report (1-based) to exercise the engine's fatal-error path; zero disables
// injection.
type Transport struct {
	mu      sync.Mutex
	reports [][]byte
	sent    int
	closed  bool

	FailAt  int
	FailErr error
}

func (t *Transport) Send(report []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent++
	if t.FailAt > 0 && t.sent >= t.FailAt {
		if t.FailErr != nil {
			return t.FailErr
		}
		return ErrInjected
	}
	buf := make([]byte, len(report))
	copy(buf, report)
	t.reports = append(t.reports, buf)
	return nil
}

func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// Reports returns a snapshot of everything sent so far.
func (t *Transport) Reports() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([][]byte, len(t.reports))
	copy(out, t.reports)
	return out
}

// Closed reports whether Close was called.
func (t *Transport) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
