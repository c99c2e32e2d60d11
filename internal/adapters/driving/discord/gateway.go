package discord

import (
	"github.com/bwmarrin/discordgo"
)

// Intents the bot needs to see commands in servers and direct messages.
// Set them on the session before Open.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsDirectMessages |
	discordgo.IntentsMessageContent

// Register subscribes the router to new messages on s.
// The returned func unsubscribes.
func (r *Router) Register(s *discordgo.Session) func() {
	return s.AddHandler(r.OnMessageCreate)
}
