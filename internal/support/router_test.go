package support

import (
	"context"
	"fmt"
	"testing"

	"github.com/spec-kit/support-bot/internal/gateway"
)

func TestParseTicketCustomID(t *testing.T) {
	cases := []struct {
		customID string
		action   string
		ticketID int64
		ok       bool
	}{
		{"ticket_create_channel_42", "create_channel", 42, true},
		{"ticket_close_7", "close", 7, true},
		{"ticket_close_", "", 0, false},
		{"ticket_close_abc", "", 0, false},
		{"ticket_42", "", 0, false},
	}
	for _, tc := range cases {
		action, id, ok := parseTicketCustomID(tc.customID)
		if ok != tc.ok || action != tc.action || id != tc.ticketID {
			t.Errorf("parseTicketCustomID(%q) = (%q, %d, %v), want (%q, %d, %v)",
				tc.customID, action, id, ok, tc.action, tc.ticketID, tc.ok)
		}
	}
}

func TestHandleInteractionGatesTicketActions(t *testing.T) {
	f := newLifecycleFixture(t)
	ticket := f.openTicket(t, "1001", "alice", "billing")

	handled, err := f.manager.HandleInteraction(context.Background(), gateway.Interaction{
		Kind:     gateway.InteractionComponent,
		CustomID: fmt.Sprintf("%screate_channel_%d", prefixTicket, ticket.ID),
		GuildID:  "guild",
		UserID:   "1001",
		Roles:    []string{"some-other-role"},
	})
	if err != nil {
		t.Fatalf("HandleInteraction: %v", err)
	}
	if !handled {
		t.Fatal("ticket action not recognized")
	}

	last := f.gw.responses[len(f.gw.responses)-1]
	if last.Content != msgNoAccess || !last.Ephemeral {
		t.Fatalf("expected ephemeral access denial, got %+v", last)
	}
	if len(f.gw.createdChannels) != 0 {
		t.Fatal("channel created for unauthorized member")
	}
}

func TestHandleInteractionIgnoresForeignIDs(t *testing.T) {
	f := newLifecycleFixture(t)

	handled, err := f.manager.HandleInteraction(context.Background(), gateway.Interaction{
		Kind:     gateway.InteractionComponent,
		CustomID: "unrelated_button",
		UserID:   "1001",
	})
	if err != nil {
		t.Fatalf("HandleInteraction: %v", err)
	}
	if handled {
		t.Fatal("foreign custom id claimed by the ticket workflow")
	}
}
