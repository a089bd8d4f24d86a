package utils

import (
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// RunGate admits at most one run at a time. A refused caller is told so
// immediately instead of queueing behind the active run.
type RunGate struct {
	sem *semaphore.Weighted

	mu      sync.Mutex
	current string
}

// NewRunGate creates an open gate.
func NewRunGate() *RunGate {
	return &RunGate{sem: semaphore.NewWeighted(1)}
}

// TryEnter claims the gate. On success it returns a fresh run ID and a
// release func that must be called exactly once; extra calls are no-ops.
func (g *RunGate) TryEnter() (string, func(), bool) {
	if !g.sem.TryAcquire(1) {
		return "", nil, false
	}

	id := uuid.NewString()
	g.mu.Lock()
	g.current = id
	g.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			g.mu.Lock()
			g.current = ""
			g.mu.Unlock()
			g.sem.Release(1)
		})
	}
	return id, release, true
}

// Current returns the ID of the run holding the gate, or "" when idle.
func (g *RunGate) Current() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}
