// Package commands provides a registry for organizing bot commands.
// Commands are organized in subdirectories by category.
package commands

import (
	"github.com/PancyStudios/CapsFridayBot/internal/commands/capsfriday"
	"github.com/PancyStudios/CapsFridayBot/pkg/discord"
)

// RegisterAll registers all commands with the Discord client
func RegisterAll(client *discord.ExtendedClient, deps capsfriday.Deps) {
	// /capsfriday estado, perdonar, revisar, puntuar
	capsfriday.RegisterCapsFridayCommands(client, deps)
}
