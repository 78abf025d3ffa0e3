package discord

import (
	"github.com/PancyStudios/CapsFridayBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// CommandHandler manages command registration
type CommandHandler struct {
	client        *ExtendedClient
	slashCommands []*discordgo.ApplicationCommand
}

// NewCommandHandler creates a new CommandHandler
func NewCommandHandler(client *ExtendedClient) *CommandHandler {
	return &CommandHandler{
		client:        client,
		slashCommands: make([]*discordgo.ApplicationCommand, 0),
	}
}

// RegisterCommand adds a top level command to the handler
func (ch *CommandHandler) RegisterCommand(cmd *Command) {
	ch.client.Commands.Set(cmd.Name, cmd)
	ch.slashCommands = append(ch.slashCommands, cmd.ToApplicationCommand())
	logger.Debug("Comando registrado: "+cmd.Name, "CommandHandler")
}

// RegisterGroup builds a command group from subcommands and queues it for registration
func (ch *CommandHandler) RegisterGroup(name, description string, permissions int64, subcommands ...*Command) *discordgo.ApplicationCommand {
	group := ch.BuildCommandGroup(name, description, subcommands...)
	if permissions != 0 {
		group.DefaultMemberPermissions = &permissions
	}
	ch.slashCommands = append(ch.slashCommands, group)
	logger.Debug("Grupo de comandos registrado: "+name, "CommandHandler")
	return group
}

// BuildCommandGroup creates a command group with subcommands
func (ch *CommandHandler) BuildCommandGroup(name, description string, subcommands ...*Command) *discordgo.ApplicationCommand {
	options := make([]*discordgo.ApplicationCommandOption, 0, len(subcommands))

	for _, cmd := range subcommands {
		fullName := name + "." + cmd.Name
		ch.client.Commands.Set(fullName, cmd)

		opt := &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        cmd.Name,
			Description: cmd.Description,
			Options:     cmd.Options,
		}
		options = append(options, opt)
	}

	return &discordgo.ApplicationCommand{
		Name:        name,
		Description: description,
		Options:     options,
	}
}

// ApplicationCommands returns the commands queued for registration
func (ch *CommandHandler) ApplicationCommands() []*discordgo.ApplicationCommand {
	return ch.slashCommands
}

// RegisterCommands overwrites the bot's commands in the configured guild, or globally
func (ch *CommandHandler) RegisterCommands() {
	guildID := ch.client.GuildID
	scope := "globales"
	if guildID != "" {
		scope = "del servidor " + guildID
	}

	logger.Info("🔄 Registrando comandos "+scope+"...", "CommandHandler")

	_, err := ch.client.Session.ApplicationCommandBulkOverwrite(
		ch.client.Session.State.User.ID,
		guildID,
		ch.slashCommands,
	)
	if err != nil {
		logger.Error("Error registrando comandos: "+err.Error(), "CommandHandler")
		return
	}

	logger.Success("✅ Comandos "+scope+" registrados.", "CommandHandler")
}

// UnregisterCommands removes every command registered in guildID (empty for global)
func (ch *CommandHandler) UnregisterCommands(guildID string) error {
	commands, err := ch.client.Session.ApplicationCommands(ch.client.Session.State.User.ID, guildID)
	if err != nil {
		return err
	}

	for _, cmd := range commands {
		err := ch.client.Session.ApplicationCommandDelete(ch.client.Session.State.User.ID, guildID, cmd.ID)
		if err != nil {
			logger.Error("Error eliminando comando "+cmd.Name+": "+err.Error(), "CommandHandler")
		}
	}

	logger.Success("Comandos eliminados.", "CommandHandler")
	return nil
}
