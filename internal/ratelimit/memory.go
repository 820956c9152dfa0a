package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter implements an in-memory sliding window rate limiter. State is
// per process; use RedisLimiter when several API instances share a limit.
type MemoryLimiter struct {
	config Config
	now    func() time.Time

	mu      sync.Mutex
	windows map[string][]time.Time

	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

var _ Limiter = (*MemoryLimiter)(nil)

// NewMemoryLimiter creates a new in-memory rate limiter. A background
// goroutine drops idle identifiers once per window until Close is called.
func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	m := &MemoryLimiter{
		config:  cfg.withDefaults(),
		now:     time.Now,
		windows: make(map[string][]time.Time),
		done:    make(chan struct{}),
	}

	m.wg.Add(1)
	go m.sweepLoop()

	return m
}

// Allow checks if a request from the given identifier is allowed.
func (m *MemoryLimiter) Allow(ctx context.Context, identifier string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	hits := prune(m.windows[identifier], now.Add(-m.config.Window))

	if len(hits) >= m.config.Requests {
		m.windows[identifier] = hits
		return denied(m.config, now, hits[0]), nil
	}

	hits = append(hits, now)
	m.windows[identifier] = hits

	return &Result{
		Allowed:    true,
		Remaining:  m.config.Requests - len(hits),
		ResetAfter: hits[0].Add(m.config.Window).Sub(now),
		Limit:      m.config.Requests,
	}, nil
}

// Reset clears the rate limit state for an identifier.
func (m *MemoryLimiter) Reset(ctx context.Context, identifier string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.windows, identifier)
	m.mu.Unlock()
	return nil
}

// Close stops the sweeper. It is safe to call more than once.
func (m *MemoryLimiter) Close() error {
	m.once.Do(func() { close(m.done) })
	m.wg.Wait()
	return nil
}

// tracked returns the number of identifiers currently held.
func (m *MemoryLimiter) tracked() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}

func (m *MemoryLimiter) sweepLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.Window)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

// sweep drops identifiers with no requests left in the window.
func (m *MemoryLimiter) sweep() {
	cutoff := m.now().Add(-m.config.Window)

	m.mu.Lock()
	defer m.mu.Unlock()

	for id, hits := range m.windows {
		hits = prune(hits, cutoff)
		if len(hits) == 0 {
			delete(m.windows, id)
			continue
		}
		m.windows[id] = hits
	}
}

// prune drops timestamps at or before cutoff. hits is ordered oldest first,
// so the survivors are a suffix; it is shifted down to reuse the array.
func prune(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return hits
	}
	n := copy(hits, hits[i:])
	return hits[:n]
}
