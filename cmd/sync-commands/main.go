// Package main provides a utility to sync the bot's Discord slash commands.
//
// Usage:
//
//	go run ./cmd/sync-commands [options]
//
// Options:
//
//	-list           List the registered commands
//	-clean          Remove all commands without registering new ones
//	-guild <id>     Target a guild instead of global commands (defaults to guildId)
//	-sync           Overwrite the registered commands with the current ones (default)
package main

import (
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/PancyStudios/CapsFridayBot/internal/commands"
	"github.com/PancyStudios/CapsFridayBot/internal/commands/capsfriday"
	"github.com/PancyStudios/CapsFridayBot/pkg/config"
	"github.com/PancyStudios/CapsFridayBot/pkg/discord"
	"github.com/PancyStudios/CapsFridayBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

const readyTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	listCmd := flag.Bool("list", false, "List all registered commands")
	cleanCmd := flag.Bool("clean", false, "Remove all commands without registering new ones")
	guildID := flag.String("guild", cfg.GuildID, "Target a specific guild (empty for global)")
	flag.Bool("sync", true, "Overwrite registered commands with the current ones")
	flag.Parse()

	log := logger.Init(cfg.LogsDir, cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	logger.System("Iniciando utilidad de sincronización de comandos...", "SyncCommands")

	client, err := discord.NewClient(cfg.BotToken, *guildID)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "SyncCommands")
		os.Exit(1)
	}

	ready := make(chan struct{})
	var readyOnce sync.Once
	client.EventHandler.OnReady(func(s *discordgo.Session, r *discordgo.Ready) {
		readyOnce.Do(func() { close(ready) })
	})

	if err := client.Session.Open(); err != nil {
		logger.Critical(fmt.Sprintf("Error connecting to Discord: %v", err), "SyncCommands")
		os.Exit(1)
	}
	defer client.Session.Close()

	select {
	case <-ready:
	case <-time.After(readyTimeout):
		logger.Critical("Discord no envió READY a tiempo", "SyncCommands")
		os.Exit(1)
	}

	logger.Success("Conectado a Discord", "SyncCommands")

	// Handlers never run here; only the definitions are needed
	commands.RegisterAll(client, capsfriday.Deps{})

	switch {
	case *listCmd:
		listCommands(client, *guildID)
	case *cleanCmd:
		cleanCommands(client, *guildID)
	default:
		client.CommandHandler.RegisterCommands()
	}

	logger.Success("Operación completada exitosamente", "SyncCommands")
}

// listCommands lists all commands registered with Discord
func listCommands(client *discord.ExtendedClient, guildID string) {
	logger.Info("📋 Listando comandos registrados...", "SyncCommands")

	cmds, err := client.Session.ApplicationCommands(client.Session.State.User.ID, guildID)
	if err != nil {
		logger.Error(fmt.Sprintf("Error obteniendo comandos: %v", err), "SyncCommands")
		return
	}

	if len(cmds) == 0 {
		logger.Info("No hay comandos registrados", "SyncCommands")
		return
	}

	logger.Info(fmt.Sprintf("Comandos encontrados: %d", len(cmds)), "SyncCommands")
	for i, cmd := range cmds {
		logger.Info(fmt.Sprintf("  %d. /%s - %s (ID: %s)", i+1, cmd.Name, cmd.Description, cmd.ID), "SyncCommands")
	}
}

// cleanCommands removes all commands from Discord
func cleanCommands(client *discord.ExtendedClient, guildID string) {
	logger.Info("🧹 Eliminando todos los comandos...", "SyncCommands")

	if err := client.CommandHandler.UnregisterCommands(guildID); err != nil {
		logger.Error(fmt.Sprintf("Error eliminando comandos: %v", err), "SyncCommands")
		return
	}

	logger.Success("✅ Todos los comandos han sido eliminados", "SyncCommands")
}
