package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/CapsFridayBot/pkg/daygate"
	"github.com/PancyStudios/CapsFridayBot/pkg/discord"
	"github.com/PancyStudios/CapsFridayBot/pkg/errors"
	"github.com/PancyStudios/CapsFridayBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

const (
	statusActive   = "🔠 ES CAPSLOCK FRIDAY"
	statusInactive = "Esperando al viernes"
)

// presenceText returns the game status shown while the gate is in the given state
func presenceText(active bool) string {
	if active {
		return statusActive
	}
	return statusInactive
}

// RegisterReadyEvent logs the connection and keeps the bot presence in sync with the gate
func RegisterReadyEvent(ctx context.Context, client *discord.ExtendedClient, gate *daygate.Gate) {
	var once sync.Once
	client.EventHandler.OnReady(func(s *discordgo.Session, r *discordgo.Ready) {
		logger.Success(fmt.Sprintf("✅ Bot conectado: %s", r.User.Username), "Ready")
		logger.Info(fmt.Sprintf("📊 Conectado a %d servidores", len(r.Guilds)), "Ready")

		if gate == nil {
			return
		}
		updatePresence(s, gate.Active(time.Now()))
		once.Do(func() {
			go presenceLoop(ctx, s, gate)
		})
	})
}

func updatePresence(s *discordgo.Session, active bool) {
	if err := s.UpdateGameStatus(0, presenceText(active)); err != nil {
		logger.Error(fmt.Sprintf("Error estableciendo estado: %v", err), "Ready")
		return
	}
	logger.Debug("Estado del bot establecido correctamente", "Ready")
}

// presenceLoop refreshes the presence each time the gate opens or closes
func presenceLoop(ctx context.Context, s *discordgo.Session, gate *daygate.Gate) {
	defer errors.RecoverMiddleware()()

	for {
		now := time.Now()
		next := gate.NextChange(now)
		timer := time.NewTimer(next.Sub(now) + time.Second)

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			active := gate.Active(time.Now())
			if active {
				logger.Info("CapsFriday activado", "Ready")
			} else {
				logger.Info("CapsFriday desactivado", "Ready")
			}
			updatePresence(s, active)
		}
	}
}
