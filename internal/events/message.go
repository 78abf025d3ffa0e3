package events

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/CapsFridayBot/pkg/discord"
	"github.com/PancyStudios/CapsFridayBot/pkg/errors"
	"github.com/PancyStudios/CapsFridayBot/pkg/logger"
	"github.com/PancyStudios/CapsFridayBot/pkg/moderation"
	"github.com/PancyStudios/CapsFridayBot/pkg/warnings"
	"github.com/bwmarrin/discordgo"
)

// handleTimeout bounds store and Discord calls made for a single message
const handleTimeout = 10 * time.Second

// Scope is the single room the policy is enforced in. Empty fields match anything.
type Scope struct {
	GuildID   string
	ChannelID string
}

// Matches reports whether a message posted in guildID/channelID is in scope
func (sc Scope) Matches(guildID, channelID string) bool {
	if guildID == "" {
		return false
	}
	if sc.GuildID != "" && sc.GuildID != guildID {
		return false
	}
	if sc.ChannelID != "" && sc.ChannelID != channelID {
		return false
	}
	return true
}

type messageHandler struct {
	ctx    context.Context
	engine Handler
	scope  Scope
}

// RegisterMessageEvents sends every in-scope guild message through the engine
func RegisterMessageEvents(ctx context.Context, client *discord.ExtendedClient, engine Handler, scope Scope) {
	h := &messageHandler{ctx: ctx, engine: engine, scope: scope}
	client.EventHandler.OnMessageCreate(h.onMessageCreate)
}

// toMessage converts a gateway message into an engine message. ok is false for
// messages the policy never looks at.
func toMessage(m *discordgo.MessageCreate, scope Scope) (moderation.Message, bool) {
	if m == nil || m.Message == nil || m.Author == nil {
		return moderation.Message{}, false
	}
	if m.Author.Bot || m.Author.System {
		return moderation.Message{}, false
	}
	if !scope.Matches(m.GuildID, m.ChannelID) {
		return moderation.Message{}, false
	}

	return moderation.Message{
		Sender: moderation.User{
			ID:   m.Author.ID,
			Name: m.Author.Username,
		},
		Room:    m.GuildID,
		Channel: m.ChannelID,
		Text:    m.Content,
	}, true
}

func (h *messageHandler) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	defer errors.RecoverMiddleware()()

	msg, ok := toMessage(m, h.scope)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(h.ctx, handleTimeout)
	defer cancel()

	d, err := h.engine.Handle(ctx, msg)
	if err != nil {
		if warnings.IsStorageError(err) {
			logger.Error(fmt.Sprintf("Mensaje de %s descartado, fallo del almacén: %v", msg.Sender.Name, err), "Message")
			return
		}
		logger.Error(fmt.Sprintf("Error moderando mensaje de %s: %v", msg.Sender.Name, err), "Message")
		return
	}

	if d.Enforced() {
		logger.Debug(fmt.Sprintf("Decisión %s para %s: %s", d.ID, d.Identity, d.Outcome), "Message")
	}
}
