package gateway

import "time"

// Message is a platform chat message.
type Message struct {
	ID         string
	ChannelID  string
	AuthorID   string
	AuthorName string
	AuthorBot  bool
	Content    string
	Timestamp  time.Time
}

// User is a platform user.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Bot      bool   `json:"bot"`
}

// Channel is a platform channel handle.
type Channel struct {
	ID   string
	Name string
}

// InteractionKind distinguishes component clicks from modal submissions.
type InteractionKind int

const (
	InteractionComponent InteractionKind = iota + 1
	InteractionModalSubmit
)

// Interaction is an inbound interaction event in platform-neutral form.
// Raw carries the underlying platform payload needed to respond.
type Interaction struct {
	ID        string
	Kind      InteractionKind
	CustomID  string
	Values    []string
	Fields    map[string]string
	MessageID string
	ChannelID string
	GuildID   string
	UserID    string
	Username  string
	Roles     []string
	Raw       any
}

// ButtonStyle mirrors the platform's button style values.
type ButtonStyle int

const (
	ButtonPrimary   ButtonStyle = 1
	ButtonSecondary ButtonStyle = 2
	ButtonSuccess   ButtonStyle = 3
	ButtonDanger    ButtonStyle = 4
	ButtonLink      ButtonStyle = 5
)

// Button is an interactive button. Link buttons carry a URL instead of a
// custom id.
type Button struct {
	Label    string
	CustomID string
	URL      string
	Emoji    string
	Style    ButtonStyle
}

// SelectOption is one choice in a select menu.
type SelectOption struct {
	Label string
	Value string
}

// SelectMenu is a single-choice string select.
type SelectMenu struct {
	CustomID    string
	Placeholder string
	Options     []SelectOption
}

// ActionRow holds either buttons or one select menu.
type ActionRow struct {
	Buttons []Button
	Select  *SelectMenu
}

// Embed is a rendered rich-content block.
type Embed struct {
	Description string
	Color       int
}

// TextInput is one field of a modal.
type TextInput struct {
	CustomID    string
	Label       string
	Placeholder string
	Paragraph   bool
	Required    bool
	MaxLength   int
}

// Modal is a form presented in response to an interaction.
type Modal struct {
	CustomID string
	Title    string
	Inputs   []TextInput
}

// File is a named attachment.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// OutgoingMessage is the payload for message sends, edits and interaction
// replies.
type OutgoingMessage struct {
	Content      string
	Embeds       []Embed
	Components   []ActionRow
	Files        []File
	Ephemeral    bool
	MentionUsers bool
}
