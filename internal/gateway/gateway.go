package gateway

import "context"

// Member channel permissions granted to a ticket owner in their temporary
// channel: view channel, send messages, embed links, attach files.
const (
	PermissionViewChannel  = 1 << 10
	PermissionSendMessages = 1 << 11
	PermissionEmbedLinks   = 1 << 14
	PermissionAttachFiles  = 1 << 15

	TicketOwnerPermissions = PermissionViewChannel | PermissionSendMessages | PermissionEmbedLinks | PermissionAttachFiles
)

// Gateway is the platform REST surface the workflow depends on. Every call
// can fail with an *APIError carrying the platform's HTTP code; callers
// classify with IsNotFound/IsForbidden.
type Gateway interface {
	// BotUserID identifies the bot's own user, used to spot its messages in
	// channel history.
	BotUserID() string

	SendMessage(ctx context.Context, channelID string, msg OutgoingMessage) (*Message, error)
	EditMessage(ctx context.Context, channelID, messageID string, msg OutgoingMessage) error
	DeleteMessage(ctx context.Context, channelID, messageID string) error

	// ChannelHistory returns the full message history of a channel. Chunk
	// delivery order is not guaranteed to be chronological.
	ChannelHistory(ctx context.Context, channelID string) ([]Message, error)

	CreateTextChannel(ctx context.Context, guildID, name, parentID, reason string) (*Channel, error)
	DeleteChannel(ctx context.Context, channelID, reason string) error
	SetMemberPermissions(ctx context.Context, channelID, userID string, allow, deny int64) error

	User(ctx context.Context, userID string) (*User, error)
	// MemberRoles returns the role ids a guild member currently holds.
	MemberRoles(ctx context.Context, guildID, userID string) ([]string, error)
	SendDM(ctx context.Context, userID string, msg OutgoingMessage) error

	// RespondMessage replies to an interaction with a message and returns the
	// created response message so follow-up events can be correlated to it.
	RespondMessage(ctx context.Context, ic Interaction, msg OutgoingMessage) (*Message, error)
	RespondModal(ctx context.Context, ic Interaction, modal Modal) error
	// AckComponent acknowledges a component interaction without a visible
	// response.
	AckComponent(ctx context.Context, ic Interaction) error
	EditResponse(ctx context.Context, ic Interaction, content string) error
	DeleteResponse(ctx context.Context, ic Interaction) error
}
