// Package main is the entry point for the CapsFriday bot.
// It initializes all systems and starts the Discord bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/PancyStudios/CapsFridayBot/internal/commands"
	"github.com/PancyStudios/CapsFridayBot/internal/commands/capsfriday"
	"github.com/PancyStudios/CapsFridayBot/internal/events"
	"github.com/PancyStudios/CapsFridayBot/pkg/config"
	"github.com/PancyStudios/CapsFridayBot/pkg/daygate"
	"github.com/PancyStudios/CapsFridayBot/pkg/discord"
	"github.com/PancyStudios/CapsFridayBot/pkg/errors"
	"github.com/PancyStudios/CapsFridayBot/pkg/logger"
	"github.com/PancyStudios/CapsFridayBot/pkg/metrics"
	"github.com/PancyStudios/CapsFridayBot/pkg/moderation"
	"github.com/PancyStudios/CapsFridayBot/pkg/mqtt"
	"github.com/PancyStudios/CapsFridayBot/pkg/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(cfg.LogsDir, cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	logger.System(fmt.Sprintf("Iniciando CapsFriday %s (%s)...", config.Version, config.BuildTime), "Main")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer cancel()

	var discordClient *discord.ExtendedClient
	errors.Init(cfg.ErrorWebhook, func() {
		cancel()
		if discordClient != nil {
			_ = discordClient.Stop()
		}
	})
	defer errors.Get().Stop()

	// An invalid zone is a configuration error, not something to guess around
	gate, err := daygate.New(cfg.Timezone)
	if err != nil {
		logger.Critical(err.Error(), "Main")
		os.Exit(1)
	}
	logger.Info(fmt.Sprintf("Zona horaria: %s, ventana de aviso: %s", gate.Location(), cfg.Window()), "Main")

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error abriendo el almacén de avisos (%s): %v", cfg.StoreDriver, err), "Main")
		os.Exit(1)
	}
	defer closeStore()
	logger.Success(fmt.Sprintf("Almacén de avisos: %s", cfg.StoreDriver), "Main")

	discordClient, err = discord.Init(cfg.BotToken, cfg.GuildID)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "Main")
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewRecorder(registry)

	engine, err := moderation.NewEngine(store, discord.NewActions(discordClient.Session), moderation.Options{
		Gate:      gate,
		Whitelist: moderation.ParseWhitelist(cfg.Whitelist),
		Window:    cfg.Window(),
		Observers: []moderation.Observer{recorder},
	})
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creando el motor de moderación: %v", err), "Main")
		os.Exit(1)
	}

	if cfg.MQTTEnabled() {
		mqttClientID := "capsfriday"
		if !cfg.IsProd() {
			mqttClientID = "capsfriday_canary"
		}

		mqttClient := mqtt.Init(cfg.MQTTHost, cfg.MQTTPort, cfg.MQTTUser, cfg.MQTTPassword, mqttClientID)
		defer mqttClient.Destroy()

		engine.AddObserver(mqtt.NewDecisionPublisher(mqttClient))
		mqttClient.RegisterHandlers(engine, gate.Location())
	}

	if cfg.APIToken == "" {
		logger.Warn("API_TOKEN vacío, las rutas /api/warnings rechazarán todas las peticiones", "Main")
	}

	webServer := web.Init(cfg.LogsWebhook)
	web.SetupAPIRoutes(webServer, web.Deps{
		Moderator: engine,
		Store:     store,
		Bot:       discordClient,
		Gatherer:  registry,
		Location:  gate.Location(),
		APIToken:  cfg.APIToken,
	})
	webServer.StartAsync(cfg.Port)
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = webServer.Shutdown(shutdownCtx)
	}()

	commands.RegisterAll(discordClient, capsfriday.Deps{Moderator: engine, Gate: gate})
	events.RegisterAll(ctx, discordClient, events.Deps{
		Engine: engine,
		Gate:   gate,
		Scope:  events.Scope{GuildID: cfg.GuildID, ChannelID: cfg.ChannelID},
	})

	if err := discordClient.Start(); err != nil {
		logger.Critical(fmt.Sprintf("Error starting Discord client: %v", err), "Main")
		os.Exit(1)
	}
	defer func() {
		_ = discordClient.Stop()
	}()

	logger.Success("CapsFriday iniciado correctamente!", "Main")

	<-ctx.Done()

	logger.System("Apagando CapsFriday...", "Main")
}
