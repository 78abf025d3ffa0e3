package capsfriday

import (
	"context"
	"fmt"

	"github.com/PancyStudios/CapsFridayBot/pkg/discord"
	"github.com/PancyStudios/CapsFridayBot/pkg/errors"
	"github.com/PancyStudios/CapsFridayBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// perdonarCommand creates the /capsfriday perdonar subcommand
func (c *commands) perdonarCommand() *discord.Command {
	return discord.NewCommand(
		"perdonar",
		"[STAFF] Elimina el aviso de un usuario",
		"capsfriday",
		c.perdonarHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a perdonar",
			Required:    true,
		},
	).WithUserPermissions(discordgo.PermissionKickMembers)
}

func (c *commands) perdonarHandler(ctx *discord.CommandContext) error {
	target := ctx.GetUserOption("usuario")
	if target == nil {
		return ctx.ReplyEphemeral("❌ Usuario no encontrado.")
	}

	go func() {
		defer errors.RecoverMiddleware()()

		reqCtx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		if err := c.deps.Moderator.Forgive(reqCtx, target.Username); err != nil {
			logger.Error(fmt.Sprintf("Error perdonando a %s: %v", target.Username, err), "CMD-Perdonar")
			ctx.ReplyEphemeral("❌ No se pudo eliminar el aviso.")
			return
		}

		logger.Info(fmt.Sprintf("%s perdonó a %s", ctx.User().Username, target.Username), "CMD-Perdonar")
		ctx.ReplyEphemeral(fmt.Sprintf("✅ %s ya no tiene avisos de CapsFriday.", target.Username))
	}()
	return nil
}
