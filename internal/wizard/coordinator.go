// Package wizard correlates in-flight workflow steps with the follow-up
// interaction each step is waiting for. A wait is one-shot: it resolves with
// the first matching event or with ErrTimedOut, never both.
package wizard

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/support-bot/internal/gateway"
	"github.com/spec-kit/support-bot/pkg/util"
)

// ErrTimedOut is returned by AwaitEvent when the deadline elapses before a
// matching event arrives. It carries the TIMEOUT error code.
var ErrTimedOut = util.NewTimeout("wizard wait timed out")

// Predicate decides whether an interaction resolves a wait.
type Predicate func(gateway.Interaction) bool

type wait struct {
	match Predicate
	done  chan gateway.Interaction
}

// Coordinator tracks pending waits. Many waits can be outstanding at once;
// each belongs to exactly one in-flight wizard step.
type Coordinator struct {
	mu     sync.Mutex
	nextID uint64
	waits  map[uint64]*wait
}

// NewCoordinator creates an empty coordinator.
func NewCoordinator() *Coordinator {
	return &Coordinator{waits: make(map[uint64]*wait)}
}

// AwaitEvent blocks until an interaction matching the predicate arrives, the
// timeout elapses, or ctx is cancelled. On timeout the wait is removed before
// returning, so a late event can never resume it.
func (c *Coordinator) AwaitEvent(ctx context.Context, timeout time.Duration, match Predicate) (gateway.Interaction, error) {
	w := &wait{
		match: match,
		done:  make(chan gateway.Interaction, 1),
	}

	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.waits[id] = w
	c.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ic := <-w.done:
		return ic, nil
	case <-timer.C:
		c.remove(id)
		// a dispatch may have won the race before removal
		select {
		case ic := <-w.done:
			return ic, nil
		default:
		}
		return gateway.Interaction{}, ErrTimedOut
	case <-ctx.Done():
		c.remove(id)
		select {
		case ic := <-w.done:
			return ic, nil
		default:
		}
		return gateway.Interaction{}, ctx.Err()
	}
}

// Dispatch offers an interaction to every pending wait. Each matching wait is
// resumed exactly once and removed; non-matching waits are untouched. Reports
// whether any wait consumed the event.
func (c *Coordinator) Dispatch(ic gateway.Interaction) bool {
	c.mu.Lock()
	var resumed []*wait
	for id, w := range c.waits {
		if w.match(ic) {
			resumed = append(resumed, w)
			delete(c.waits, id)
		}
	}
	c.mu.Unlock()

	for _, w := range resumed {
		w.done <- ic
	}
	return len(resumed) > 0
}

// Pending returns the number of outstanding waits.
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waits)
}

func (c *Coordinator) remove(id uint64) {
	c.mu.Lock()
	delete(c.waits, id)
	c.mu.Unlock()
}

// ComponentOnMessage matches a component interaction on the given prompt
// message, the usual correlation for select-menu follow-ups.
func ComponentOnMessage(messageID string) Predicate {
	return func(ic gateway.Interaction) bool {
		return ic.Kind == gateway.InteractionComponent && ic.MessageID == messageID
	}
}

// ModalWithCustomID matches a modal submission by its exact custom id.
func ModalWithCustomID(customID string) Predicate {
	return func(ic gateway.Interaction) bool {
		return ic.Kind == gateway.InteractionModalSubmit && ic.CustomID == customID
	}
}
