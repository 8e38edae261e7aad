package app

import (
	"sync"

	"github.com/google/uuid"
)

// DecideLimiter serializes admin decisions on the same achievement, so
// two concurrent reviewers queue instead of racing the check-and-set.
type DecideLimiter struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*sync.Mutex
}

func NewDecideLimiter() *DecideLimiter {
	return &DecideLimiter{byID: make(map[uuid.UUID]*sync.Mutex)}
}

func (l *DecideLimiter) lock(id uuid.UUID) func() {
	l.mu.Lock()
	m, ok := l.byID[id]
	if !ok {
		m = &sync.Mutex{}
		l.byID[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return func() { m.Unlock() }
}
