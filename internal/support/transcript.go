package support

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spec-kit/support-bot/internal/domain"
	"github.com/spec-kit/support-bot/internal/gateway"
)

const (
	transcriptTimeFormat = "January 02, 2006 15:04:05"
	supportMarker        = "🔨"
)

// BuildTranscript flattens a ticket's temporary-channel history into a text
// attachment. Lines come out in chronological send order regardless of the
// order chunks were delivered in: platform message ids are monotonically
// time-ordered, so the messages are sorted by id before rendering. With no
// history at all the transcript falls back to a single synthetic entry built
// from the ticket's own subject and description.
//
// A content-less message authored by the bot itself is its ticket-card
// placeholder; each such message is replaced by the ticket header line.
func BuildTranscript(ticket *domain.Ticket, messages []gateway.Message, botUserID string, isSupport func(authorID string) bool) gateway.File {
	name := fmt.Sprintf("ticket-%d-transcript.txt", ticket.ID)

	if len(messages) == 0 {
		return gateway.File{
			Name:        name,
			ContentType: "text/plain",
			Data:        []byte(transcriptHeader(ticket)),
		}
	}

	ordered := make([]gateway.Message, len(messages))
	copy(ordered, messages)
	sort.Slice(ordered, func(i, j int) bool {
		return snowflakeLess(ordered[i].ID, ordered[j].ID)
	})

	var body []byte
	for i, msg := range ordered {
		if i > 0 {
			body = append(body, '\n')
		}
		if msg.Content == "" && msg.AuthorID == botUserID {
			body = append(body, transcriptHeader(ticket)...)
			body = append(body, "\n\n"...)
			continue
		}
		marker := ""
		if isSupport != nil && isSupport(msg.AuthorID) {
			marker = supportMarker
		}
		line := fmt.Sprintf("[%s] %s%s (%s) » %s",
			msg.Timestamp.Format(transcriptTimeFormat),
			msg.AuthorName,
			marker,
			msg.AuthorID,
			msg.Content)
		body = append(body, line...)
	}

	return gateway.File{
		Name:        name,
		ContentType: "text/plain",
		Data:        body,
	}
}

func transcriptHeader(ticket *domain.Ticket) string {
	view, _ := ticket.ExtraView()
	return fmt.Sprintf("| Ticket ID - %d | Ticket Category - %s | Ticket Open Date %s |\nTicket Subject: %s\nTicket Description: %s",
		ticket.ID,
		titleCaser.String(view.Category),
		ticket.SubmissionDate.Format("2006-01-02 15:04:05.000000-07:00"),
		ticket.Subject,
		ticket.Description)
}

func snowflakeLess(a, b string) bool {
	ai, aerr := strconv.ParseUint(a, 10, 64)
	bi, berr := strconv.ParseUint(b, 10, 64)
	if aerr != nil || berr != nil {
		return a < b
	}
	return ai < bi
}
