package support

import "sync"

// ticketLocks serializes fetch-mutate-save sections per ticket id. The store
// has no optimistic-concurrency check, so two in-flight mutations against the
// same ticket must not interleave. A single process owns all tickets; no
// cross-process lock is needed.
type ticketLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newTicketLocks() *ticketLocks {
	return &ticketLocks{locks: make(map[int64]*sync.Mutex)}
}

func (t *ticketLocks) lock(ticketID int64) func() {
	t.mu.Lock()
	l, ok := t.locks[ticketID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[ticketID] = l
	}
	t.mu.Unlock()

	l.Lock()
	return l.Unlock
}
