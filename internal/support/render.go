package support

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/spec-kit/support-bot/internal/config"
	"github.com/spec-kit/support-bot/internal/domain"
	"github.com/spec-kit/support-bot/internal/gateway"
)

// Component custom ids. Ids for per-ticket actions embed the ticket id as the
// last underscore-separated segment; modal ids embed the correlation value so
// a later submission can recover it without extra state.
const (
	customIDStartSupport   = "start_support"
	customIDCategorySelect = "support_category_select"
	customIDReasonSelect   = "close_reason_select"

	prefixFormSubmit  = "support_form_submit_"
	prefixCloseReason = "support_close_reason_"
	prefixTicket      = "ticket_"

	fieldSubject     = "support_subject"
	fieldDescription = "support_description"
	fieldCloseReason = "close_reason"

	closeReasonOther = "other"

	cardColor = 0x44ff00
)

var titleCaser = cases.Title(language.AmericanEnglish)

// EntryMessage is the permanent message carrying the "start a ticket" button.
func EntryMessage() gateway.OutgoingMessage {
	return gateway.OutgoingMessage{
		Content: msgEntry,
		Components: []gateway.ActionRow{{
			Buttons: []gateway.Button{{
				Label:    "Start Support Ticket",
				CustomID: customIDStartSupport,
				Emoji:    "📝",
				Style:    gateway.ButtonSecondary,
			}},
		}},
	}
}

func categorySelectMessage(categories []config.Category) gateway.OutgoingMessage {
	options := make([]gateway.SelectOption, 0, len(categories))
	for _, category := range categories {
		options = append(options, gateway.SelectOption{Label: category.Label, Value: category.Key})
	}
	return gateway.OutgoingMessage{
		Content:   msgCategoryPrompt,
		Ephemeral: true,
		Components: []gateway.ActionRow{{
			Select: &gateway.SelectMenu{
				CustomID:    customIDCategorySelect,
				Placeholder: "Select Support Category",
				Options:     options,
			},
		}},
	}
}

func reasonSelectMessage(reasons []string) gateway.OutgoingMessage {
	options := make([]gateway.SelectOption, 0, len(reasons)+1)
	for i, reason := range reasons {
		options = append(options, gateway.SelectOption{Label: reason, Value: strconv.Itoa(i)})
	}
	options = append(options, gateway.SelectOption{Label: "Other", Value: closeReasonOther})
	return gateway.OutgoingMessage{
		Content:   msgReasonPrompt,
		Ephemeral: true,
		Components: []gateway.ActionRow{{
			Select: &gateway.SelectMenu{
				CustomID:    customIDReasonSelect,
				Placeholder: "Select Close Reason",
				Options:     options,
			},
		}},
	}
}

func ticketModal(category string) gateway.Modal {
	return gateway.Modal{
		CustomID: prefixFormSubmit + category,
		Title:    "Support Ticket",
		Inputs: []gateway.TextInput{
			{
				CustomID:  fieldSubject,
				Label:     "Subject",
				Required:  true,
				MaxLength: 100,
			},
			{
				CustomID:  fieldDescription,
				Label:     "Description",
				Paragraph: true,
				Required:  true,
				MaxLength: 2000,
			},
		},
	}
}

func closeReasonModal(ticketID int64) gateway.Modal {
	return gateway.Modal{
		CustomID: fmt.Sprintf("%s%d", prefixCloseReason, ticketID),
		Title:    "Close Ticket",
		Inputs: []gateway.TextInput{{
			CustomID:  fieldCloseReason,
			Label:     "Close Reason",
			Paragraph: true,
			Required:  true,
			MaxLength: 1000,
		}},
	}
}

// cardEmbed renders the ticket card. The user variant omits staff-only
// fields: the owner's identity is implicit and the support-channel link is
// withheld.
func cardEmbed(ticket *domain.Ticket, owner *gateway.User, forUser bool) gateway.Embed {
	view, _ := ticket.ExtraView()
	ts := ticket.SubmissionDate.Unix()

	var b strings.Builder
	fmt.Fprintf(&b, "# Ticket #`%d`", ticket.ID)
	fmt.Fprintf(&b, "\n**Opened at** <t:%d:f> (<t:%d:R>)", ts, ts)
	if !forUser {
		fmt.Fprintf(&b, "\n**User** <@%s> `%s - %s`", owner.ID, owner.Username, owner.ID)
	}
	fmt.Fprintf(&b, "\n**Category** `%s`", titleCaser.String(view.Category))
	if !forUser && view.SupportChannel != "" {
		fmt.Fprintf(&b, "\n**Ticket Channel**: <#%s>", view.SupportChannel)
	}
	fmt.Fprintf(&b, "\n\n**Subject** \n```%s```", escapeBackticks(ticket.Subject))
	fmt.Fprintf(&b, "\n**Description** \n```%s```", escapeBackticks(ticket.Description))

	return gateway.Embed{Description: b.String(), Color: cardColor}
}

// cardComponents renders the card's action row: a create-channel button that
// turns into a channel link once the temporary channel exists, plus the close
// button.
func cardComponents(ticket *domain.Ticket, guildID string) []gateway.ActionRow {
	view, _ := ticket.ExtraView()

	var channelButton gateway.Button
	if view.SupportChannel != "" {
		channelButton = gateway.Button{
			Label: "Go to support channel",
			URL:   fmt.Sprintf("https://discord.com/channels/%s/%s", guildID, view.SupportChannel),
			Style: gateway.ButtonLink,
		}
	} else {
		channelButton = gateway.Button{
			Label:    "Create Temp Channel",
			CustomID: fmt.Sprintf("%screate_channel_%d", prefixTicket, ticket.ID),
			Emoji:    "📒",
			Style:    gateway.ButtonSuccess,
		}
	}

	closeButton := gateway.Button{
		Label:    "Close Ticket",
		CustomID: fmt.Sprintf("%sclose_%d", prefixTicket, ticket.ID),
		Style:    gateway.ButtonDanger,
	}

	return []gateway.ActionRow{{Buttons: []gateway.Button{channelButton, closeButton}}}
}

func escapeBackticks(s string) string {
	return strings.ReplaceAll(s, "`", "\\`")
}
