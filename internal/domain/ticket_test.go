package domain

import "testing"

func TestExtraViewReadsRecognizedKeys(t *testing.T) {
	ticket := &Ticket{Extra: map[string]any{
		ExtraKeyCategory:       "billing",
		ExtraKeyTicketMessage:  "111",
		ExtraKeySupportChannel: "222",
		"unrelated":            42,
	}}

	view, err := ticket.ExtraView()
	if err != nil {
		t.Fatalf("ExtraView: %v", err)
	}
	if view.Category != "billing" || view.TicketMessage != "111" || view.SupportChannel != "222" {
		t.Fatalf("unexpected view: %+v", view)
	}
}

func TestExtraViewMissingKeysAreEmpty(t *testing.T) {
	ticket := &Ticket{}
	view, err := ticket.ExtraView()
	if err != nil {
		t.Fatalf("ExtraView on nil extra: %v", err)
	}
	if view != (TicketExtra{}) {
		t.Fatalf("expected zero view, got %+v", view)
	}
}

func TestExtraViewRejectsWrongShape(t *testing.T) {
	ticket := &Ticket{Extra: map[string]any{ExtraKeyTicketMessage: 12345}}
	if _, err := ticket.ExtraView(); err == nil {
		t.Fatal("expected error for non-string ticket_message")
	}
}

func TestSetExtraInitializesMap(t *testing.T) {
	ticket := &Ticket{}
	ticket.SetExtra(ExtraKeySupportChannel, "333")
	if ticket.Extra[ExtraKeySupportChannel] != "333" {
		t.Fatalf("SetExtra did not store value: %+v", ticket.Extra)
	}
}
