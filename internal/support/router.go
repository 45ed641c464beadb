package support

import (
	"context"
	"strconv"
	"strings"

	"github.com/spec-kit/support-bot/internal/gateway"
)

// HandleInteraction routes an interaction that no wizard wait consumed.
// Reports whether the interaction belonged to the ticket workflow.
func (m *Manager) HandleInteraction(ctx context.Context, ic gateway.Interaction) (bool, error) {
	switch {
	case ic.Kind == gateway.InteractionComponent && ic.CustomID == customIDStartSupport:
		return true, m.StartTicket(ctx, ic)

	case ic.Kind == gateway.InteractionModalSubmit && strings.HasPrefix(ic.CustomID, prefixFormSubmit):
		return true, m.SubmitTicket(ctx, ic)

	case ic.Kind == gateway.InteractionComponent && strings.HasPrefix(ic.CustomID, prefixTicket):
		action, ticketID, ok := parseTicketCustomID(ic.CustomID)
		if !ok {
			return false, nil
		}
		if !m.HasSupportAccess(ic) {
			_, err := m.gw.RespondMessage(ctx, ic, gateway.OutgoingMessage{Content: msgNoAccess, Ephemeral: true})
			return true, err
		}
		switch action {
		case "create_channel":
			return true, m.CreateTempChannel(ctx, ic, ticketID)
		case "close":
			return true, m.BeginClose(ctx, ic, ticketID)
		default:
			return false, nil
		}
	}
	return false, nil
}

// parseTicketCustomID splits "ticket_<action>_<id>" ids. Ids whose last
// segment is not numeric are not ticket actions.
func parseTicketCustomID(customID string) (action string, ticketID int64, ok bool) {
	rest := strings.TrimPrefix(customID, prefixTicket)
	idx := strings.LastIndex(rest, "_")
	if idx < 0 {
		return "", 0, false
	}
	id, err := strconv.ParseInt(rest[idx+1:], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return rest[:idx], id, true
}
