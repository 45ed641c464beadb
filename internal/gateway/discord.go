package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// Discord implements Gateway on top of a discordgo session.
type Discord struct {
	session *discordgo.Session
}

// NewDiscord wraps an opened (or about to be opened) session.
func NewDiscord(session *discordgo.Session) *Discord {
	return &Discord{session: session}
}

func (d *Discord) BotUserID() string {
	if d.session.State != nil && d.session.State.User != nil {
		return d.session.State.User.ID
	}
	return ""
}

func (d *Discord) SendMessage(ctx context.Context, channelID string, msg OutgoingMessage) (*Message, error) {
	sent, err := d.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:         msg.Content,
		Embeds:          toEmbeds(msg.Embeds),
		Components:      toComponents(msg.Components),
		Files:           toFiles(msg.Files),
		AllowedMentions: allowedMentions(msg),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrap("send message", err)
	}
	return fromMessage(sent), nil
}

func (d *Discord) EditMessage(ctx context.Context, channelID, messageID string, msg OutgoingMessage) error {
	content := msg.Content
	embeds := toEmbeds(msg.Embeds)
	components := toComponents(msg.Components)
	_, err := d.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    channelID,
		ID:         messageID,
		Content:    &content,
		Embeds:     &embeds,
		Components: &components,
	}, discordgo.WithContext(ctx))
	return wrap("edit message", err)
}

func (d *Discord) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return wrap("delete message", d.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)))
}

const historyPageSize = 100

func (d *Discord) ChannelHistory(ctx context.Context, channelID string) ([]Message, error) {
	var result []Message
	after := "0"
	for {
		chunk, err := d.session.ChannelMessages(channelID, historyPageSize, "", after, "", discordgo.WithContext(ctx))
		if err != nil {
			return nil, wrap("channel history", err)
		}
		if len(chunk) == 0 {
			break
		}
		var maxID uint64
		for _, raw := range chunk {
			result = append(result, *fromMessage(raw))
			if id, err := strconv.ParseUint(raw.ID, 10, 64); err == nil && id > maxID {
				maxID = id
			}
		}
		if len(chunk) < historyPageSize {
			break
		}
		after = strconv.FormatUint(maxID, 10)
	}
	return result, nil
}

func (d *Discord) CreateTextChannel(ctx context.Context, guildID, name, parentID, reason string) (*Channel, error) {
	created, err := d.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:     name,
		Type:     discordgo.ChannelTypeGuildText,
		ParentID: parentID,
	}, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	if err != nil {
		return nil, wrap("create channel", err)
	}
	return &Channel{ID: created.ID, Name: created.Name}, nil
}

func (d *Discord) DeleteChannel(ctx context.Context, channelID, reason string) error {
	_, err := d.session.ChannelDelete(channelID, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	return wrap("delete channel", err)
}

func (d *Discord) SetMemberPermissions(ctx context.Context, channelID, userID string, allow, deny int64) error {
	err := d.session.ChannelPermissionSet(channelID, userID, discordgo.PermissionOverwriteTypeMember, allow, deny, discordgo.WithContext(ctx))
	return wrap("set channel permissions", err)
}

func (d *Discord) User(ctx context.Context, userID string) (*User, error) {
	user, err := d.session.User(userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrap("fetch user", err)
	}
	return &User{ID: user.ID, Username: user.Username, Bot: user.Bot}, nil
}

func (d *Discord) MemberRoles(ctx context.Context, guildID, userID string) ([]string, error) {
	if d.session.State != nil {
		if member, err := d.session.State.Member(guildID, userID); err == nil && member != nil {
			return member.Roles, nil
		}
	}
	member, err := d.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrap("fetch member", err)
	}
	return member.Roles, nil
}

func (d *Discord) SendDM(ctx context.Context, userID string, msg OutgoingMessage) error {
	dm, err := d.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return wrap("open dm", err)
	}
	_, err = d.SendMessage(ctx, dm.ID, msg)
	return err
}

func (d *Discord) RespondMessage(ctx context.Context, ic Interaction, msg OutgoingMessage) (*Message, error) {
	raw, err := rawInteraction(ic)
	if err != nil {
		return nil, err
	}
	data := &discordgo.InteractionResponseData{
		Content:         msg.Content,
		Embeds:          toEmbeds(msg.Embeds),
		Components:      toComponents(msg.Components),
		Files:           toFiles(msg.Files),
		AllowedMentions: allowedMentions(msg),
	}
	if msg.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	if err := d.session.InteractionRespond(raw, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}, discordgo.WithContext(ctx)); err != nil {
		return nil, wrap("respond message", err)
	}
	sent, err := d.session.InteractionResponse(raw, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrap("fetch interaction response", err)
	}
	return fromMessage(sent), nil
}

func (d *Discord) RespondModal(ctx context.Context, ic Interaction, modal Modal) error {
	raw, err := rawInteraction(ic)
	if err != nil {
		return err
	}
	components := make([]discordgo.MessageComponent, 0, len(modal.Inputs))
	for _, input := range modal.Inputs {
		style := discordgo.TextInputShort
		if input.Paragraph {
			style = discordgo.TextInputParagraph
		}
		components = append(components, discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:    input.CustomID,
					Label:       input.Label,
					Style:       style,
					Placeholder: input.Placeholder,
					Required:    input.Required,
					MaxLength:   input.MaxLength,
				},
			},
		})
	}
	return wrap("respond modal", d.session.InteractionRespond(raw, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   modal.CustomID,
			Title:      modal.Title,
			Components: components,
		},
	}, discordgo.WithContext(ctx)))
}

func (d *Discord) AckComponent(ctx context.Context, ic Interaction) error {
	raw, err := rawInteraction(ic)
	if err != nil {
		return err
	}
	return wrap("ack component", d.session.InteractionRespond(raw, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}, discordgo.WithContext(ctx)))
}

func (d *Discord) EditResponse(ctx context.Context, ic Interaction, content string) error {
	raw, err := rawInteraction(ic)
	if err != nil {
		return err
	}
	empty := []discordgo.MessageComponent{}
	_, err = d.session.InteractionResponseEdit(raw, &discordgo.WebhookEdit{
		Content:    &content,
		Components: &empty,
	}, discordgo.WithContext(ctx))
	return wrap("edit interaction response", err)
}

func (d *Discord) DeleteResponse(ctx context.Context, ic Interaction) error {
	raw, err := rawInteraction(ic)
	if err != nil {
		return err
	}
	return wrap("delete interaction response", d.session.InteractionResponseDelete(raw, discordgo.WithContext(ctx)))
}

// FromInteractionCreate converts an inbound interaction event to the neutral
// representation. Only component and modal-submit interactions map; others
// return false.
func FromInteractionCreate(event *discordgo.InteractionCreate) (Interaction, bool) {
	ic := Interaction{
		ID:        event.ID,
		ChannelID: event.ChannelID,
		GuildID:   event.GuildID,
		Raw:       event.Interaction,
	}
	if event.Member != nil {
		ic.Roles = event.Member.Roles
		if event.Member.User != nil {
			ic.UserID = event.Member.User.ID
			ic.Username = event.Member.User.Username
		}
	} else if event.User != nil {
		ic.UserID = event.User.ID
		ic.Username = event.User.Username
	}
	if event.Message != nil {
		ic.MessageID = event.Message.ID
	}

	switch event.Type {
	case discordgo.InteractionMessageComponent:
		data := event.MessageComponentData()
		ic.Kind = InteractionComponent
		ic.CustomID = data.CustomID
		ic.Values = data.Values
	case discordgo.InteractionModalSubmit:
		data := event.ModalSubmitData()
		ic.Kind = InteractionModalSubmit
		ic.CustomID = data.CustomID
		ic.Fields = modalFields(data.Components)
	default:
		return Interaction{}, false
	}
	return ic, true
}

func modalFields(components []discordgo.MessageComponent) map[string]string {
	fields := map[string]string{}
	for _, row := range components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, component := range actionsRow.Components {
			if input, ok := component.(*discordgo.TextInput); ok {
				fields[input.CustomID] = input.Value
			}
		}
	}
	return fields
}

func rawInteraction(ic Interaction) (*discordgo.Interaction, error) {
	raw, ok := ic.Raw.(*discordgo.Interaction)
	if !ok || raw == nil {
		return nil, fmt.Errorf("interaction %s carries no platform payload", ic.ID)
	}
	return raw, nil
}

func fromMessage(msg *discordgo.Message) *Message {
	result := &Message{
		ID:        msg.ID,
		ChannelID: msg.ChannelID,
		Content:   msg.Content,
		Timestamp: msg.Timestamp,
	}
	if msg.Author != nil {
		result.AuthorID = msg.Author.ID
		result.AuthorName = msg.Author.Username
		result.AuthorBot = msg.Author.Bot
	}
	return result
}

func toEmbeds(embeds []Embed) []*discordgo.MessageEmbed {
	if len(embeds) == 0 {
		return nil
	}
	result := make([]*discordgo.MessageEmbed, 0, len(embeds))
	for _, embed := range embeds {
		result = append(result, &discordgo.MessageEmbed{
			Description: embed.Description,
			Color:       embed.Color,
		})
	}
	return result
}

func toComponents(rows []ActionRow) []discordgo.MessageComponent {
	if len(rows) == 0 {
		return nil
	}
	result := make([]discordgo.MessageComponent, 0, len(rows))
	for _, row := range rows {
		var components []discordgo.MessageComponent
		if row.Select != nil {
			options := make([]discordgo.SelectMenuOption, 0, len(row.Select.Options))
			for _, option := range row.Select.Options {
				options = append(options, discordgo.SelectMenuOption{
					Label: option.Label,
					Value: option.Value,
				})
			}
			one := 1
			components = append(components, discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    row.Select.CustomID,
				Placeholder: row.Select.Placeholder,
				MinValues:   &one,
				MaxValues:   1,
				Options:     options,
			})
		}
		for _, button := range row.Buttons {
			converted := discordgo.Button{
				Label:    button.Label,
				Style:    discordgo.ButtonStyle(button.Style),
				CustomID: button.CustomID,
				URL:      button.URL,
			}
			if button.Emoji != "" {
				converted.Emoji = &discordgo.ComponentEmoji{Name: button.Emoji}
			}
			components = append(components, converted)
		}
		result = append(result, discordgo.ActionsRow{Components: components})
	}
	return result
}

func toFiles(files []File) []*discordgo.File {
	if len(files) == 0 {
		return nil
	}
	result := make([]*discordgo.File, 0, len(files))
	for _, file := range files {
		result = append(result, &discordgo.File{
			Name:        file.Name,
			ContentType: file.ContentType,
			Reader:      bytes.NewReader(file.Data),
		})
	}
	return result
}

func allowedMentions(msg OutgoingMessage) *discordgo.MessageAllowedMentions {
	if !msg.MentionUsers {
		return nil
	}
	return &discordgo.MessageAllowedMentions{
		Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers},
	}
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		message := ""
		if rest.Message != nil {
			message = rest.Message.Message
		}
		return &APIError{Op: op, Code: rest.Response.StatusCode, Message: message, Err: err}
	}
	return &APIError{Op: op, Err: err}
}
