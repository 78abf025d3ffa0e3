// Package capsfriday provides the /capsfriday command group.
// Each subcommand is in its own file.
package capsfriday

import (
	"context"
	"time"

	"github.com/PancyStudios/CapsFridayBot/pkg/daygate"
	"github.com/PancyStudios/CapsFridayBot/pkg/discord"
	"github.com/PancyStudios/CapsFridayBot/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

const (
	colorActive   = 0xE74C3C
	colorInactive = 0x95A5A6
	colorOK       = 0x2ECC71
	colorWarn     = 0xF1C40F

	footerText = "🔠 - CapsFriday"

	commandTimeout = 5 * time.Second
)

// Moderator is the part of the moderation engine used by the commands
type Moderator interface {
	Active() bool
	Window() time.Duration
	Status(ctx context.Context, identity string) (moderation.WarningStatus, error)
	Forgive(ctx context.Context, identity string) error
}

// Deps are the collaborators of the /capsfriday commands
type Deps struct {
	Moderator Moderator
	Gate      *daygate.Gate
}

// RegisterCapsFridayCommands registers the /capsfriday subcommands
func RegisterCapsFridayCommands(client *discord.ExtendedClient, deps Deps) {
	c := &commands{deps: deps}

	client.CommandHandler.RegisterGroup(
		"capsfriday",
		"Comandos de CapsFriday",
		0,
		c.estadoCommand(),
		c.perdonarCommand(),
		c.revisarCommand(),
		c.puntuarCommand(),
	)
}

type commands struct {
	deps Deps
}

func (c *commands) location() *time.Location {
	if c.deps.Gate == nil {
		return time.UTC
	}
	return c.deps.Gate.Location()
}

func footer() *discordgo.MessageEmbedFooter {
	return &discordgo.MessageEmbedFooter{Text: footerText}
}
