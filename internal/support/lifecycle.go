package support

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-bot/internal/config"
	"github.com/spec-kit/support-bot/internal/domain"
	"github.com/spec-kit/support-bot/internal/events"
	"github.com/spec-kit/support-bot/internal/gateway"
	"github.com/spec-kit/support-bot/internal/observability"
	"github.com/spec-kit/support-bot/internal/repository"
	"github.com/spec-kit/support-bot/internal/wizard"
	"github.com/spec-kit/support-bot/pkg/util"
)

// Actor identifies who performs a ticket action. Not necessarily the ticket
// owner: support staff close tickets they do not own.
type Actor struct {
	ID       string
	Username string
	GuildID  string
}

// Manager owns the ticket state machine: creation, channel provisioning,
// close-reason capture, transcript assembly and closure.
type Manager struct {
	discordCfg  config.DiscordConfig
	supportCfg  config.SupportConfig
	gw          gateway.Gateway
	tickets     repository.TicketRepository
	coordinator *wizard.Coordinator
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	metrics     *observability.Metrics
	locks       *ticketLocks
	now         func() time.Time
}

// Dependencies bundles collaborators for the manager.
type Dependencies struct {
	Gateway     gateway.Gateway
	TicketRepo  repository.TicketRepository
	Coordinator *wizard.Coordinator
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Metrics     *observability.Metrics
}

// NewManager constructs the lifecycle manager.
func NewManager(discordCfg config.DiscordConfig, supportCfg config.SupportConfig, deps Dependencies) *Manager {
	return &Manager{
		discordCfg:  discordCfg,
		supportCfg:  supportCfg,
		gw:          deps.Gateway,
		tickets:     deps.TicketRepo,
		coordinator: deps.Coordinator,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		metrics:     deps.Metrics,
		locks:       newTicketLocks(),
		now:         time.Now,
	}
}

// PostEntryMessage sends the permanent "start a ticket" message to a channel.
func (m *Manager) PostEntryMessage(ctx context.Context, channelID string) error {
	_, err := m.gw.SendMessage(ctx, channelID, EntryMessage())
	return err
}

// StartTicket runs the category-selection step of the ticket wizard. On
// timeout the prompt is edited to a timeout notice and no ticket is created;
// the user restarts by pressing the entry button again.
func (m *Manager) StartTicket(ctx context.Context, ic gateway.Interaction) error {
	prompt, err := m.gw.RespondMessage(ctx, ic, categorySelectMessage(m.supportCfg.Categories))
	if err != nil {
		return err
	}

	selection, err := m.coordinator.AwaitEvent(ctx, m.supportCfg.SelectTimeout, wizard.ComponentOnMessage(prompt.ID))
	if util.IsTimeout(err) {
		m.metrics.RecordWizardTimeout("category_select")
		if err := m.gw.EditResponse(ctx, ic, msgTimedOut); err != nil {
			m.logger.Debug("unable to edit timed-out category prompt", zap.Error(err))
		}
		return nil
	}
	if err != nil {
		return err
	}
	if len(selection.Values) == 0 {
		return util.NewValidationError("category selection carried no value", nil)
	}

	if err := m.gw.RespondModal(ctx, selection, ticketModal(selection.Values[0])); err != nil {
		return err
	}
	if err := m.gw.DeleteResponse(ctx, ic); err != nil {
		m.logger.Debug("unable to delete category prompt", zap.Error(err))
	}
	return nil
}

// SubmitTicket handles the ticket modal submission: persists the ticket,
// renders its card into the submission channel, records the card message id
// back onto the ticket and acknowledges the submitter.
func (m *Manager) SubmitTicket(ctx context.Context, ic gateway.Interaction) error {
	category := strings.TrimPrefix(ic.CustomID, prefixFormSubmit)
	subject := strings.TrimSpace(ic.Fields[fieldSubject])
	description := strings.TrimSpace(ic.Fields[fieldDescription])
	if subject == "" || description == "" {
		if _, err := m.gw.RespondMessage(ctx, ic, gateway.OutgoingMessage{Content: msgMissingFields, Ephemeral: true}); err != nil {
			m.logger.Debug("unable to reject invalid submission", zap.Error(err))
		}
		return util.NewValidationError("ticket subject and description are required", map[string]any{"user_id": ic.UserID})
	}

	ticket := &domain.Ticket{
		UserID:         ic.UserID,
		SubmissionDate: m.now().UTC(),
		Subject:        subject,
		Description:    description,
		Status:         domain.TicketStatusOpen,
		Extra:          map[string]any{domain.ExtraKeyCategory: category},
	}
	if err := m.tickets.Create(ctx, ticket); err != nil {
		return err
	}

	owner := &gateway.User{ID: ic.UserID, Username: ic.Username}
	card, err := m.gw.SendMessage(ctx, m.discordCfg.SubmissionChannelID, gateway.OutgoingMessage{
		Embeds:     []gateway.Embed{cardEmbed(ticket, owner, false)},
		Components: cardComponents(ticket, ic.GuildID),
	})
	if err != nil {
		m.logger.Error("ticket created but card render failed",
			zap.Int64("ticket_id", ticket.ID), zap.Error(err))
		return err
	}

	ticket.SetExtra(domain.ExtraKeyTicketMessage, card.ID)
	if err := m.tickets.Update(ctx, ticket); err != nil {
		// the ticket stays OPEN but has no discoverable card
		m.logger.Error("ticket card rendered but its message id was not persisted",
			zap.Int64("ticket_id", ticket.ID), zap.String("message_id", card.ID), zap.Error(err))
		return err
	}

	couldDM := true
	if err := m.gw.SendDM(ctx, ic.UserID, gateway.OutgoingMessage{
		Content: msgDMReceived,
		Embeds:  []gateway.Embed{cardEmbed(ticket, owner, true)},
	}); err != nil {
		couldDM = false
		m.logger.Info("unable to DM ticket receipt",
			zap.Int64("ticket_id", ticket.ID), zap.String("user_id", ic.UserID), zap.Error(err))
	}

	ack := gateway.OutgoingMessage{Content: msgSubmissionSuccess, Ephemeral: true}
	if !couldDM {
		ack = gateway.OutgoingMessage{
			Content:   msgSubmissionNoDM,
			Embeds:    []gateway.Embed{cardEmbed(ticket, owner, true)},
			Ephemeral: true,
		}
	}
	if _, err := m.gw.RespondMessage(ctx, ic, ack); err != nil {
		m.logger.Debug("unable to acknowledge submission", zap.Int64("ticket_id", ticket.ID), zap.Error(err))
	}

	m.metrics.RecordTicket("opened")
	m.publish(ctx, events.Event{
		Type:     events.EventTicketOpened,
		TicketID: ticket.ID,
		ActorID:  ic.UserID,
		Payload: events.TicketOpenedPayload{
			Category: category,
			Subject:  subject,
			OwnerID:  ic.UserID,
		},
	})
	return nil
}

// CreateTempChannel provisions the ticket's temporary support channel, grants
// the owner access, posts the card into it and re-renders the original card
// so the create button becomes a channel link.
func (m *Manager) CreateTempChannel(ctx context.Context, ic gateway.Interaction, ticketID int64) error {
	unlock := m.locks.lock(ticketID)
	defer unlock()

	ticket, err := m.tickets.GetByID(ctx, ticketID)
	if util.IsNotFound(err) {
		_, err := m.gw.RespondMessage(ctx, ic, gateway.OutgoingMessage{Content: msgTicketNotFound, Ephemeral: true})
		return err
	}
	if err != nil {
		return err
	}

	view, err := ticket.ExtraView()
	if err != nil {
		return err
	}
	if view.SupportChannel != "" {
		// the card should not have offered the action; guard defensively
		return m.gw.AckComponent(ctx, ic)
	}

	owner, err := m.gw.User(ctx, ticket.UserID)
	if err != nil {
		return err
	}

	category := view.Category
	if category == "" {
		category = "other"
	}
	channel, err := m.gw.CreateTextChannel(ctx, ic.GuildID,
		fmt.Sprintf("%d-%s-%s", ticket.ID, category, owner.Username),
		m.discordCfg.ChannelCategoryID,
		fmt.Sprintf("%s created a support channel for Ticket %d", ic.Username, ticket.ID))
	if err != nil {
		if gateway.IsForbidden(err) {
			if _, replyErr := m.gw.RespondMessage(ctx, ic, gateway.OutgoingMessage{Content: msgChannelDenied, Ephemeral: true}); replyErr != nil {
				m.logger.Debug("unable to surface channel-permission error", zap.Int64("ticket_id", ticket.ID), zap.Error(replyErr))
			}
		}
		return err
	}

	if err := m.gw.SetMemberPermissions(ctx, channel.ID, owner.ID, gateway.TicketOwnerPermissions, 0); err != nil {
		return err
	}
	if _, err := m.gw.SendMessage(ctx, channel.ID, gateway.OutgoingMessage{
		Embeds: []gateway.Embed{cardEmbed(ticket, owner, false)},
	}); err != nil {
		m.logger.Warn("unable to post card into support channel",
			zap.Int64("ticket_id", ticket.ID), zap.String("channel_id", channel.ID), zap.Error(err))
	}

	ticket.SetExtra(domain.ExtraKeySupportChannel, channel.ID)
	if err := m.tickets.Update(ctx, ticket); err != nil {
		return err
	}

	m.refreshCard(ctx, ticket, owner, ic.GuildID)

	if err := m.gw.SendDM(ctx, owner.ID, gateway.OutgoingMessage{
		Content: fmt.Sprintf(msgTempChannelDM, ticket.ID, channel.ID),
	}); err != nil {
		if _, fallbackErr := m.gw.SendMessage(ctx, channel.ID, gateway.OutgoingMessage{
			Content:      fmt.Sprintf(msgTempChannelNoDM, owner.ID, ticket.ID),
			MentionUsers: true,
		}); fallbackErr != nil {
			m.logger.Warn("unable to notify owner of support channel",
				zap.Int64("ticket_id", ticket.ID), zap.Error(fallbackErr))
		}
	}

	m.metrics.RecordTicket("channel_created")
	m.publish(ctx, events.Event{
		Type:     events.EventTicketChannelCreated,
		TicketID: ticket.ID,
		ActorID:  ic.UserID,
		Payload: events.TicketChannelCreatedPayload{
			ChannelID: channel.ID,
			OwnerID:   owner.ID,
		},
	})
	return m.gw.AckComponent(ctx, ic)
}

// BeginClose runs the close-reason capture wizard, then closes the ticket.
func (m *Manager) BeginClose(ctx context.Context, ic gateway.Interaction, ticketID int64) error {
	ticket, err := m.tickets.GetByID(ctx, ticketID)
	if util.IsNotFound(err) {
		_, err := m.gw.RespondMessage(ctx, ic, gateway.OutgoingMessage{Content: msgTicketNotFound, Ephemeral: true})
		return err
	}
	if err != nil {
		return err
	}

	prompt, err := m.gw.RespondMessage(ctx, ic, reasonSelectMessage(m.supportCfg.CloseReasons))
	if err != nil {
		return err
	}

	selection, err := m.coordinator.AwaitEvent(ctx, m.supportCfg.SelectTimeout, wizard.ComponentOnMessage(prompt.ID))
	if util.IsTimeout(err) {
		m.metrics.RecordWizardTimeout("close_reason_select")
		if err := m.gw.EditResponse(ctx, ic, msgTimedOut); err != nil {
			m.logger.Debug("unable to edit timed-out reason prompt", zap.Error(err))
		}
		return nil
	}
	if err != nil {
		return err
	}
	if len(selection.Values) == 0 {
		return util.NewValidationError("close reason selection carried no value", nil)
	}

	var reason string
	if selection.Values[0] == closeReasonOther {
		modal := closeReasonModal(ticket.ID)
		if err := m.gw.RespondModal(ctx, selection, modal); err != nil {
			return err
		}
		if err := m.gw.DeleteResponse(ctx, ic); err != nil {
			m.logger.Debug("unable to delete reason prompt", zap.Error(err))
		}

		submission, err := m.coordinator.AwaitEvent(ctx, m.supportCfg.SelectTimeout, wizard.ModalWithCustomID(modal.CustomID))
		if err != nil {
			// abandon the close: the ticket stays OPEN and the card's close
			// button remains live for another attempt
			m.metrics.RecordWizardTimeout("close_reason_modal")
			m.logger.Warn("close reason capture abandoned",
				zap.Int64("ticket_id", ticket.ID), zap.String("actor_id", ic.UserID), zap.Error(err))
			return nil
		}
		reason = strings.TrimSpace(submission.Fields[fieldCloseReason])
		if _, err := m.gw.RespondMessage(ctx, submission, gateway.OutgoingMessage{Content: "👍", Ephemeral: true}); err != nil {
			m.logger.Debug("unable to acknowledge close reason", zap.Int64("ticket_id", ticket.ID), zap.Error(err))
		}
	} else {
		index, err := strconv.Atoi(selection.Values[0])
		if err != nil || index < 0 || index >= len(m.supportCfg.CloseReasons) {
			return util.NewValidationError("unknown close reason", map[string]any{"value": selection.Values[0]})
		}
		reason = m.supportCfg.CloseReasons[index]
		if err := m.gw.DeleteResponse(ctx, ic); err != nil {
			m.logger.Debug("unable to delete reason prompt", zap.Error(err))
		}
	}

	return m.CloseTicket(ctx, ticket.ID, reason, Actor{ID: ic.UserID, Username: ic.Username, GuildID: ic.GuildID})
}

// CloseTicket finalizes a ticket: builds the transcript, removes the
// temporary channel and the card, posts the durable closure log and notifies
// the owner. Cleanup steps are best-effort; the closure log post and the
// status save are not.
func (m *Manager) CloseTicket(ctx context.Context, ticketID int64, reason string, actor Actor) error {
	unlock := m.locks.lock(ticketID)
	defer unlock()

	ticket, err := m.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return err
	}
	if ticket.Status == domain.TicketStatusClosed {
		return util.NewConflict("ticket already closed", map[string]any{"id": ticket.ID})
	}

	view, err := ticket.ExtraView()
	if err != nil {
		return err
	}

	owner, err := m.gw.User(ctx, ticket.UserID)
	if err != nil {
		m.logger.Warn("unable to fetch ticket owner for closure",
			zap.Int64("ticket_id", ticket.ID), zap.String("user_id", ticket.UserID), zap.Error(err))
		owner = &gateway.User{ID: ticket.UserID, Username: "unknown"}
	}

	ticket.Status = domain.TicketStatusClosed

	var transcript gateway.File
	if view.SupportChannel != "" {
		history, err := m.gw.ChannelHistory(ctx, view.SupportChannel)
		if err != nil {
			m.logger.Error("unable to fetch support channel history; falling back to synthetic transcript",
				zap.Int64("ticket_id", ticket.ID), zap.String("channel_id", view.SupportChannel), zap.Error(err))
			history = nil
		}
		transcript = BuildTranscript(ticket, history, m.gw.BotUserID(), m.supportChecker(ctx, actor.GuildID))

		if err := m.gw.DeleteChannel(ctx, view.SupportChannel,
			fmt.Sprintf("Ticket %d closed by %s.", ticket.ID, actor.Username)); err != nil {
			m.logger.Error("unable to delete ticket channel",
				zap.Int64("ticket_id", ticket.ID), zap.String("channel_id", view.SupportChannel), zap.Error(err))
		}
	} else {
		transcript = BuildTranscript(ticket, nil, m.gw.BotUserID(), nil)
	}

	if view.TicketMessage != "" {
		if err := m.gw.DeleteMessage(ctx, m.discordCfg.SubmissionChannelID, view.TicketMessage); err != nil {
			m.logger.Error("unable to delete ticket card message",
				zap.Int64("ticket_id", ticket.ID), zap.String("message_id", view.TicketMessage), zap.Error(err))
		}
	}

	logEntry := fmt.Sprintf("[<t:%d:f>] [`Category: %s`] **Ticket #**`%d` Closed by `%s`\n**User**: <@%s> (`%s - %s`) \n**Reason**\n```%s```",
		m.now().Unix(),
		titleCaser.String(view.Category),
		ticket.ID,
		actor.Username,
		owner.ID,
		owner.Username,
		owner.ID,
		reason)
	if _, err := m.gw.SendMessage(ctx, m.discordCfg.LogsChannelID, gateway.OutgoingMessage{
		Content: logEntry,
		Files:   []gateway.File{transcript},
	}); err != nil {
		return fmt.Errorf("post closure log for ticket %d: %w", ticket.ID, err)
	}

	if err := m.tickets.Update(ctx, ticket); err != nil {
		return err
	}

	if err := m.gw.SendDM(ctx, owner.ID, gateway.OutgoingMessage{
		Content: fmt.Sprintf(msgTicketClosedDM, ticket.ID, reason),
		Files:   []gateway.File{transcript},
	}); err != nil {
		m.logger.Info("unable to DM closure notice",
			zap.Int64("ticket_id", ticket.ID), zap.String("user_id", owner.ID), zap.Error(err))
	}

	m.metrics.RecordTicket("closed")
	m.publish(ctx, events.Event{
		Type:     events.EventTicketClosed,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketClosedPayload{
			Category: view.Category,
			Reason:   reason,
			OwnerID:  owner.ID,
		},
	})
	return nil
}

// HasSupportAccess reports whether the interacting member may manage tickets.
func (m *Manager) HasSupportAccess(ic gateway.Interaction) bool {
	return HasSupportAccess(ic.Roles, m.supportCfg.SupportRoleIDs)
}

func (m *Manager) refreshCard(ctx context.Context, ticket *domain.Ticket, owner *gateway.User, guildID string) {
	view, err := ticket.ExtraView()
	if err != nil || view.TicketMessage == "" {
		return
	}
	if err := m.gw.EditMessage(ctx, m.discordCfg.SubmissionChannelID, view.TicketMessage, gateway.OutgoingMessage{
		Embeds:     []gateway.Embed{cardEmbed(ticket, owner, false)},
		Components: cardComponents(ticket, guildID),
	}); err != nil {
		m.logger.Warn("unable to refresh ticket card",
			zap.Int64("ticket_id", ticket.ID), zap.String("message_id", view.TicketMessage), zap.Error(err))
	}
}

func (m *Manager) supportChecker(ctx context.Context, guildID string) func(string) bool {
	return func(authorID string) bool {
		roles, err := m.gw.MemberRoles(ctx, guildID, authorID)
		if err != nil {
			return false
		}
		return HasSupportAccess(roles, m.supportCfg.SupportRoleIDs)
	}
}

func (m *Manager) publish(ctx context.Context, event events.Event) {
	if m.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = m.now()
	}
	_ = m.dispatcher.Publish(ctx, event)
}
