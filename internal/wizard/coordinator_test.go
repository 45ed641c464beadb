package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/support-bot/internal/gateway"
	"github.com/spec-kit/support-bot/pkg/util"
)

func componentOn(messageID, userID string) gateway.Interaction {
	return gateway.Interaction{
		Kind:      gateway.InteractionComponent,
		MessageID: messageID,
		UserID:    userID,
		Values:    []string{"0"},
	}
}

func TestAwaitEventResolvesOnMatch(t *testing.T) {
	c := NewCoordinator()

	var (
		got gateway.Interaction
		err error
		wg  sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		got, err = c.AwaitEvent(context.Background(), time.Second, ComponentOnMessage("m1"))
	}()

	waitForPending(t, c, 1)
	if consumed := c.Dispatch(componentOn("m1", "u1")); !consumed {
		t.Fatal("dispatch reported event not consumed")
	}
	wg.Wait()

	if err != nil {
		t.Fatalf("AwaitEvent returned error: %v", err)
	}
	if got.MessageID != "m1" || got.UserID != "u1" {
		t.Fatalf("resolved with wrong interaction: %+v", got)
	}
	if c.Pending() != 0 {
		t.Fatalf("wait not removed after resolution, pending=%d", c.Pending())
	}
}

func TestAwaitEventTimesOut(t *testing.T) {
	c := NewCoordinator()

	const timeout = 50 * time.Millisecond
	start := time.Now()
	_, err := c.AwaitEvent(context.Background(), timeout, ComponentOnMessage("m1"))
	elapsed := time.Since(start)

	if !errors.Is(err, ErrTimedOut) {
		t.Fatalf("expected ErrTimedOut, got %v", err)
	}
	if !util.IsTimeout(err) {
		t.Fatalf("timeout not classified with the TIMEOUT code: %v", err)
	}
	if elapsed < timeout {
		t.Fatalf("wait returned after %v, before the %v deadline", elapsed, timeout)
	}
	if c.Pending() != 0 {
		t.Fatalf("timed-out wait still pending, pending=%d", c.Pending())
	}

	// a late event must not be consumed
	if c.Dispatch(componentOn("m1", "u1")) {
		t.Fatal("late event resumed a timed-out wait")
	}
}

func TestAwaitEventContextCancel(t *testing.T) {
	c := NewCoordinator()
	ctx, cancel := context.WithCancel(context.Background())

	var (
		err error
		wg  sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err = c.AwaitEvent(ctx, time.Minute, ComponentOnMessage("m1"))
	}()

	waitForPending(t, c, 1)
	cancel()
	wg.Wait()

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if c.Pending() != 0 {
		t.Fatalf("cancelled wait still pending, pending=%d", c.Pending())
	}
}

func TestDispatchIgnoresNonMatching(t *testing.T) {
	c := NewCoordinator()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = c.AwaitEvent(context.Background(), time.Second, ComponentOnMessage("m1"))
	}()

	waitForPending(t, c, 1)
	if c.Dispatch(componentOn("other", "u1")) {
		t.Fatal("non-matching event was consumed")
	}
	if c.Pending() != 1 {
		t.Fatalf("non-matching dispatch removed the wait, pending=%d", c.Pending())
	}

	c.Dispatch(componentOn("m1", "u1"))
	wg.Wait()
}

func TestConcurrentWaitsAreIndependent(t *testing.T) {
	c := NewCoordinator()

	results := make([]gateway.Interaction, 2)
	var wg sync.WaitGroup
	for i, messageID := range []string{"m1", "m2"} {
		wg.Add(1)
		go func(i int, messageID string) {
			defer wg.Done()
			ic, err := c.AwaitEvent(context.Background(), time.Second, ComponentOnMessage(messageID))
			if err != nil {
				t.Errorf("wait %d: %v", i, err)
				return
			}
			results[i] = ic
		}(i, messageID)
	}

	waitForPending(t, c, 2)
	c.Dispatch(componentOn("m2", "bob"))
	c.Dispatch(componentOn("m1", "alice"))
	wg.Wait()

	if results[0].UserID != "alice" || results[1].UserID != "bob" {
		t.Fatalf("waits resolved with crossed events: %+v", results)
	}
}

func TestModalWithCustomID(t *testing.T) {
	match := ModalWithCustomID("support_close_reason_7")

	if !match(gateway.Interaction{Kind: gateway.InteractionModalSubmit, CustomID: "support_close_reason_7"}) {
		t.Fatal("matching modal rejected")
	}
	if match(gateway.Interaction{Kind: gateway.InteractionComponent, CustomID: "support_close_reason_7"}) {
		t.Fatal("component matched a modal predicate")
	}
	if match(gateway.Interaction{Kind: gateway.InteractionModalSubmit, CustomID: "support_close_reason_8"}) {
		t.Fatal("wrong custom id matched")
	}
}

func waitForPending(t *testing.T, c *Coordinator, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for c.Pending() != n {
		if time.Now().After(deadline) {
			t.Fatalf("pending never reached %d, have %d", n, c.Pending())
		}
		time.Sleep(time.Millisecond)
	}
}
