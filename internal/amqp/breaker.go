package amqp

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned by publishes skipped while the broker is
// considered down.
var ErrCircuitOpen = errors.New("amqp: circuit breaker is open")

type breakerState int

const (
	closed breakerState = iota
	open
	halfOpen
)

func (s breakerState) String() string {
	switch s {
	case open:
		return "open"
	case halfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// breaker opens after threshold consecutive failures and lets one trial call
// through once cooldown has passed since the last failure.
type breaker struct {
	mu        sync.Mutex
	state     breakerState
	failures  int
	lastFail  time.Time
	threshold int
	cooldown  time.Duration
	now       func() time.Time
}

func newBreaker(threshold int, cooldown time.Duration) *breaker {
	return &breaker{threshold: threshold, cooldown: cooldown, now: time.Now}
}

// allow reports whether a call may go out now.
func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != open {
		return true
	}
	if b.now().Sub(b.lastFail) > b.cooldown {
		b.state = halfOpen
		return true
	}
	return false
}

func (b *breaker) success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state, b.failures = closed, 0
}

func (b *breaker) failure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	b.lastFail = b.now()
	if b.state == halfOpen || b.failures >= b.threshold {
		b.state = open
	}
}

func (b *breaker) current() breakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
