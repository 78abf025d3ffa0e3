package capsfriday

import (
	"fmt"
	"time"

	"github.com/PancyStudios/CapsFridayBot/pkg/discord"
	"github.com/PancyStudios/CapsFridayBot/pkg/errors"
	"github.com/PancyStudios/CapsFridayBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// estadoCommand creates the /capsfriday estado subcommand
func (c *commands) estadoCommand() *discord.Command {
	return discord.NewCommand(
		"estado",
		"Muestra si CapsFriday está activo ahora",
		"capsfriday",
		c.estadoHandler,
	)
}

func (c *commands) estadoHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		now := time.Now()
		var next time.Time
		if c.deps.Gate != nil {
			next = c.deps.Gate.NextChange(now)
		}

		embed := estadoEmbed(c.deps.Moderator.Active(), c.deps.Moderator.Window(), c.location(), next)
		if err := ctx.ReplyEmbed(embed); err != nil {
			logger.Error(fmt.Sprintf("Error enviando estado: %v", err), "CMD-Estado")
		}
	}()
	return nil
}

// estadoEmbed describes the gate state. A zero next omits the next change field.
func estadoEmbed(active bool, window time.Duration, loc *time.Location, next time.Time) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "😴 - CapsFriday está inactivo",
		Description: "Hoy se puede escribir en minúsculas. El viernes no.",
		Color:       colorInactive,
		Footer:      footer(),
	}
	if active {
		embed.Title = "🔠 - ¡ES CAPSLOCK FRIDAY!"
		embed.Description = "Escribe en MAYÚSCULAS o recibirás un aviso. Un segundo aviso dentro de la ventana es una expulsión."
		embed.Color = colorActive
	}

	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "🕒 - Zona horaria", Value: loc.String(), Inline: true},
		{Name: "⏳ - Ventana de aviso", Value: window.String(), Inline: true},
	}
	if !next.IsZero() {
		label := "📅 - Empieza"
		if active {
			label = "📅 - Termina"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   label,
			Value:  fmt.Sprintf("<t:%d:R>", next.Unix()),
			Inline: true,
		})
	}
	return embed
}
