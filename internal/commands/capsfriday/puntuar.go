package capsfriday

import (
	"fmt"

	"github.com/PancyStudios/CapsFridayBot/pkg/discord"
	"github.com/PancyStudios/CapsFridayBot/pkg/textscore"
	"github.com/bwmarrin/discordgo"
)

// puntuarCommand creates the /capsfriday puntuar subcommand
func (c *commands) puntuarCommand() *discord.Command {
	return discord.NewCommand(
		"puntuar",
		"Calcula el porcentaje de mayúsculas de un texto",
		"capsfriday",
		c.puntuarHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "texto",
			Description: "Texto a puntuar",
			Required:    true,
		},
	)
}

func (c *commands) puntuarHandler(ctx *discord.CommandContext) error {
	return ctx.ReplyEphemeralEmbed(scoreEmbed(ctx.GetStringOption("texto")))
}

// scoreEmbed reports the score of text and whether it passes
func scoreEmbed(text string) *discordgo.MessageEmbed {
	score := textscore.Score(text)

	embed := &discordgo.MessageEmbed{
		Title:  "✅ - Mensaje válido",
		Color:  colorOK,
		Footer: footer(),
	}
	if !textscore.IsCompliant(score) {
		embed.Title = "⚠️ - Faltan MAYÚSCULAS"
		embed.Color = colorWarn
	}

	embed.Description = fmt.Sprintf(
		"> 🔠 - **Puntuación:** %.1f%%\n> 🎯 - **Mínimo:** %.0f%%",
		score,
		textscore.ComplianceThreshold,
	)
	return embed
}
