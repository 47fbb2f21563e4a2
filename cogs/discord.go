package cogs

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"

	"fgb-go/models"
)

// DiscordGateway adapts the Discord message stream to the core's inbound
// events and delivers dispatched replies back to the table channel. The
// core only ever sees models.Event and plain outbound text.
type DiscordGateway struct {
	session   *discordgo.Session
	channelID string
	logger    *log.Logger
}

// NewDiscordGateway creates the gateway for a single table channel.
func NewDiscordGateway(token, channelID string, logger *log.Logger) (*DiscordGateway, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	return &DiscordGateway{
		session:   session,
		channelID: channelID,
		logger:    logger.WithPrefix("discord"),
	}, nil
}

// Open connects to the gateway and forwards table-channel messages to
// handle.
func (g *DiscordGateway) Open(handle func(models.Event)) error {
	g.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.Author.Bot {
			return
		}
		if g.channelID != "" && m.ChannelID != g.channelID {
			return
		}
		handle(models.Event{
			Identity:  models.PlayerKey(m.Author.Username, m.ChannelID),
			Handle:    m.Author.Username,
			ChannelID: m.ChannelID,
			Text:      m.Content,
		})
	})

	if err := g.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	g.logger.Info("connected", "channel", g.channelID)
	return nil
}

// Send delivers one outbound message to the table channel. Used as the
// dispatcher's emit step.
func (g *DiscordGateway) Send(text string) {
	if _, err := g.session.ChannelMessageSend(g.channelID, text); err != nil {
		g.logger.Warn("message not delivered", "error", err)
	}
}

// Close disconnects from the gateway.
func (g *DiscordGateway) Close() error {
	return g.session.Close()
}
