package discord

import (
	"context"
	"fmt"

	"github.com/PancyStudios/CapsFridayBot/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

// moderationAPI is the subset of *discordgo.Session used by Actions
type moderationAPI interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	GuildMemberDeleteWithReason(guildID, userID, reason string, options ...discordgo.RequestOption) error
}

// Actions delivers moderation notices as direct messages and kicks members from the guild
type Actions struct {
	api moderationAPI
}

var _ moderation.Actions = (*Actions)(nil)

// NewActions creates Actions backed by session
func NewActions(session *discordgo.Session) *Actions {
	return &Actions{api: session}
}

// Notice sends text to the user through a direct message channel
func (a *Actions) Notice(ctx context.Context, to moderation.User, text string) error {
	if to.ID == "" {
		return fmt.Errorf("discord: no se puede enviar DM a %q sin ID", to.Name)
	}

	ch, err := a.api.UserChannelCreate(to.ID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("discord: abrir DM con %s: %w", to.Name, err)
	}
	if _, err := a.api.ChannelMessageSend(ch.ID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord: enviar DM a %s: %w", to.Name, err)
	}
	return nil
}

// Kick removes the user from the guild room with reason shown in the audit log
func (a *Actions) Kick(ctx context.Context, room string, user moderation.User, reason string) error {
	if room == "" || user.ID == "" {
		return fmt.Errorf("discord: expulsión de %q sin servidor o ID", user.Name)
	}
	if err := a.api.GuildMemberDeleteWithReason(room, user.ID, reason, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord: expulsar a %s: %w", user.Name, err)
	}
	return nil
}
