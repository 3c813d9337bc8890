package inventory

import "sync"

// FairLock is a mutual-exclusion lock that grants ownership in strict FIFO
// arrival order. Ownership is handed directly to the oldest waiter on Unlock,
// so a stream of fresh acquirers can never starve a queued one.
type FairLock struct {
	mu     sync.Mutex
	queue  []chan struct{}
	locked bool
}

// Lock blocks until the caller owns the lock.
func (l *FairLock) Lock() {
	l.mu.Lock()
	if !l.locked {
		l.locked = true
		l.mu.Unlock()
		return
	}
	ticket := make(chan struct{})
	l.queue = append(l.queue, ticket)
	l.mu.Unlock()
	<-ticket
}

// Unlock releases the lock, waking the oldest waiter if any.
func (l *FairLock) Unlock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.locked {
		panic("inventory: unlock of unlocked FairLock")
	}
	if len(l.queue) > 0 {
		ticket := l.queue[0]
		l.queue = l.queue[1:]
		// Hand off: the lock stays held, ownership moves to the waiter.
		close(ticket)
		return
	}
	l.locked = false
}
