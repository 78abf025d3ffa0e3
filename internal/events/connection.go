package events

import (
	"fmt"

	"github.com/PancyStudios/CapsFridayBot/pkg/discord"
	"github.com/PancyStudios/CapsFridayBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterConnectionEvents logs gateway disconnects and resumes. Messages sent
// while disconnected are never seen by the bot.
func RegisterConnectionEvents(client *discord.ExtendedClient) {
	client.EventHandler.RegisterEvent(onDisconnect)
	client.EventHandler.RegisterEvent(onResumed)
}

func onDisconnect(s *discordgo.Session, _ *discordgo.Disconnect) {
	logger.Warn(fmt.Sprintf("🔌 Shard %d desconectado, los mensajes no se moderan hasta reconectar.", s.ShardID), "Gateway")
}

func onResumed(s *discordgo.Session, _ *discordgo.Resumed) {
	logger.Success(fmt.Sprintf("✅ Shard %d reanudado.", s.ShardID), "Gateway")
}
