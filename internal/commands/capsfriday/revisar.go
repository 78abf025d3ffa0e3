package capsfriday

import (
	"context"
	"fmt"

	"github.com/PancyStudios/CapsFridayBot/pkg/discord"
	"github.com/PancyStudios/CapsFridayBot/pkg/errors"
	"github.com/PancyStudios/CapsFridayBot/pkg/logger"
	"github.com/PancyStudios/CapsFridayBot/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

// revisarCommand creates the /capsfriday revisar subcommand
func (c *commands) revisarCommand() *discord.Command {
	return discord.NewCommand(
		"revisar",
		"[STAFF] Muestra el aviso activo de un usuario",
		"capsfriday",
		c.revisarHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a revisar",
			Required:    true,
		},
	).WithUserPermissions(discordgo.PermissionKickMembers)
}

func (c *commands) revisarHandler(ctx *discord.CommandContext) error {
	target := ctx.GetUserOption("usuario")
	if target == nil {
		return ctx.ReplyEphemeral("❌ Usuario no encontrado.")
	}

	go func() {
		defer errors.RecoverMiddleware()()

		reqCtx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		st, err := c.deps.Moderator.Status(reqCtx, target.Username)
		if err != nil {
			logger.Error(fmt.Sprintf("Error consultando aviso de %s: %v", target.Username, err), "CMD-Revisar")
			ctx.ReplyEphemeral("❌ No se pudo consultar el almacén de avisos.")
			return
		}

		if err := ctx.ReplyEphemeralEmbed(statusEmbed(target.Username, st)); err != nil {
			logger.Error(fmt.Sprintf("Error enviando revisión: %v", err), "CMD-Revisar")
		}
	}()
	return nil
}

// statusEmbed describes the warning state of a user
func statusEmbed(name string, st moderation.WarningStatus) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:  fmt.Sprintf("🔖 - Aviso de %s", name),
		Footer: footer(),
	}

	switch {
	case !st.Found:
		embed.Description = "> 💫 - **Estado:** Sin avisos"
		embed.Color = colorOK
	case st.Live:
		embed.Description = fmt.Sprintf(
			"> 💫 - **Estado:** Aviso activo, el próximo fallo es expulsión\n> 🕒 - **Emitido:** <t:%d:R>\n> ⏳ - **Expira:** <t:%d:R>",
			st.IssuedAt.Unix(), st.ExpiresAt.Unix(),
		)
		embed.Color = colorActive
	default:
		embed.Description = fmt.Sprintf(
			"> 💫 - **Estado:** Aviso expirado, el próximo fallo lo renueva\n> 🕒 - **Emitido:** <t:%d:R>",
			st.IssuedAt.Unix(),
		)
		embed.Color = colorWarn
	}
	return embed
}
