// Package events wires Discord gateway events to the CapsFriday moderation engine.
package events

import (
	"context"

	"github.com/PancyStudios/CapsFridayBot/pkg/daygate"
	"github.com/PancyStudios/CapsFridayBot/pkg/discord"
	"github.com/PancyStudios/CapsFridayBot/pkg/logger"
	"github.com/PancyStudios/CapsFridayBot/pkg/moderation"
)

// Handler runs the moderation policy on one message
type Handler interface {
	Handle(ctx context.Context, msg moderation.Message) (moderation.Decision, error)
}

// Deps are the collaborators of the event handlers
type Deps struct {
	Engine Handler
	Gate   *daygate.Gate
	Scope  Scope
}

// RegisterAll registers all events with the Discord client. ctx bounds the
// background work started by the handlers.
func RegisterAll(ctx context.Context, client *discord.ExtendedClient, deps Deps) {
	logger.System("📋 Registrando eventos del bot...", "Events")

	RegisterReadyEvent(ctx, client, deps.Gate)
	RegisterConnectionEvents(client)
	RegisterMessageEvents(ctx, client, deps.Engine, deps.Scope)

	logger.Success("✅ Todos los eventos registrados correctamente", "Events")
}
