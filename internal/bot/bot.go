// Package bot owns the platform session: it converts inbound gateway events
// into the neutral interaction form and routes them, wizard waits first.
package bot

import (
	"context"
	"errors"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/spec-kit/support-bot/internal/config"
	"github.com/spec-kit/support-bot/internal/gateway"
	"github.com/spec-kit/support-bot/internal/observability"
	"github.com/spec-kit/support-bot/internal/support"
	"github.com/spec-kit/support-bot/internal/wizard"
)

const entryCommand = "sendsupportmessage"

// Bot wires the discord session to the ticket workflow.
type Bot struct {
	session     *discordgo.Session
	manager     *support.Manager
	coordinator *wizard.Coordinator
	metrics     *observability.Metrics
	logger      *zap.Logger
	discordCfg  config.DiscordConfig
	supportCfg  config.SupportConfig
}

// New creates the session and registers handlers. The session is not opened
// until Run. The lifecycle manager depends on the session's gateway adapter,
// so it is attached afterwards via BindManager.
func New(discordCfg config.DiscordConfig, supportCfg config.SupportConfig, coordinator *wizard.Coordinator, metrics *observability.Metrics, logger *zap.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + discordCfg.Token)
	if err != nil {
		return nil, err
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentMessageContent

	b := &Bot{
		session:     session,
		coordinator: coordinator,
		metrics:     metrics,
		logger:      logger,
		discordCfg:  discordCfg,
		supportCfg:  supportCfg,
	}
	session.AddHandler(b.handleInteraction)
	session.AddHandler(b.handleMessage)
	return b, nil
}

// BindManager attaches the lifecycle manager. Must be called before Run.
func (b *Bot) BindManager(manager *support.Manager) {
	b.manager = manager
}

// Session exposes the underlying session for the gateway adapter.
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

// Run opens the session and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return err
	}
	b.logger.Info("discord session open", zap.String("bot_user_id", b.session.State.User.ID))
	<-ctx.Done()
	return b.session.Close()
}

// Ready reports whether the session has completed its initial handshake.
func (b *Bot) Ready() bool {
	return b.session != nil && b.session.DataReady
}

func (b *Bot) handleInteraction(_ *discordgo.Session, event *discordgo.InteractionCreate) {
	ic, ok := gateway.FromInteractionCreate(event)
	if !ok {
		return
	}

	// wizard waits see every interaction first; consumed events resume a
	// suspended flow instead of starting a new one
	if b.coordinator.Dispatch(ic) {
		b.metrics.RecordInteraction("wizard_resume")
		return
	}

	// each flow runs in its own goroutine so N users can be mid-wizard
	// without interference
	go func() {
		ctx := context.Background()
		handled, err := b.manager.HandleInteraction(ctx, ic)
		if handled {
			b.metrics.RecordInteraction(ic.CustomID)
		}
		if err != nil {
			var apiErr *gateway.APIError
			if errors.As(err, &apiErr) {
				b.metrics.RecordGatewayError(apiErr.Op, strconv.Itoa(apiErr.Code))
			}
			b.logger.Error("interaction handling failed",
				zap.String("custom_id", ic.CustomID),
				zap.String("user_id", ic.UserID),
				zap.Error(err))
		}
	}()
}

func (b *Bot) handleMessage(_ *discordgo.Session, event *discordgo.MessageCreate) {
	if event.Author == nil || event.Author.Bot {
		return
	}
	if event.Content != b.discordCfg.CommandPrefix+entryCommand {
		return
	}
	if event.Member == nil || !support.HasSupportAccess(event.Member.Roles, b.supportCfg.SupportRoleIDs) {
		return
	}

	go func() {
		if err := b.manager.PostEntryMessage(context.Background(), event.ChannelID); err != nil {
			b.logger.Error("unable to post entry message",
				zap.String("channel_id", event.ChannelID), zap.Error(err))
		}
	}()
}
