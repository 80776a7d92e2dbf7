package attendance

import (
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-timesheet/internal/domain/attendance"
)

// transitionGuard allows one in-flight mutation per employee and date.
// A second caller is rejected instead of queued.
type transitionGuard struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

func newTransitionGuard() *transitionGuard {
	return &transitionGuard{inflight: make(map[string]struct{})}
}

func guardKey(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format(attendance.DateLayout)
}

// acquire returns a release func, or ErrTransitionInProgress when the key is held.
func (g *transitionGuard) acquire(employeeID string, date time.Time) (func(), error) {
	key := guardKey(employeeID, date)

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inflight[key]; busy {
		return nil, attendance.ErrTransitionInProgress
	}
	g.inflight[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inflight, key)
			g.mu.Unlock()
		})
	}, nil
}
