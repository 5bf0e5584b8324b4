package service

import "sync"

// PortfolioLocks serializes read-modify-write sequences per portfolio.
// One instance is shared by every service that mutates portfolios.
type PortfolioLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewPortfolioLocks creates an empty lock set.
func NewPortfolioLocks() *PortfolioLocks {
	return &PortfolioLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock for portfolioID and returns its release function.
func (l *PortfolioLocks) Lock(portfolioID string) func() {
	l.mu.Lock()
	m, ok := l.locks[portfolioID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[portfolioID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
