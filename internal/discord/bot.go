package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/chatlight/internal/config"
	"github.com/keshon/chatlight/internal/light"
	"go.uber.org/zap"
)

// Handler consumes chat messages. *light.Dispatcher satisfies it.
type Handler interface {
	Dispatch(ctx context.Context, msg light.Message) (light.Outcome, error)
}

// Bot is a Discord bot that feeds channel messages to a Handler
type Bot struct {
	dg      *discordgo.Session
	cfg     config.DiscordConfig
	logger  *zap.Logger
	handler Handler
	ctx     context.Context
}

// NewBot creates the Discord session without connecting it
func NewBot(cfg config.DiscordConfig, logger *zap.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		dg:     dg,
		cfg:    cfg,
		logger: logger,
		ctx:    context.Background(),
	}, nil
}

// Replier returns a light.Replier that posts into Discord channels
func (b *Bot) Replier() light.Replier {
	return light.ReplierFunc(func(ctx context.Context, channelID, text string) error {
		if _, err := b.dg.ChannelMessageSend(channelID, text); err != nil {
			return fmt.Errorf("send message to %s: %w", channelID, err)
		}
		return nil
	})
}

// Run opens the session and handles messages with h until ctx is done
func (b *Bot) Run(ctx context.Context, h Handler) error {
	b.handler = h
	b.ctx = ctx

	b.configureIntents()
	// One message is handled to completion before the next one.
	b.dg.SyncEvents = true
	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onMessageCreate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	b.logger.Info("shutdown signal received, closing Discord session")
	return nil
}

// configureIntents configures the Discord intents
func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent
}

// onReady is called when the bot is ready
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("discord bot is running",
		zap.String("user", r.User.Username),
		zap.Int("guilds", len(r.Guilds)))
}

// onMessageCreate is called when a message is created
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	selfID := ""
	if s.State != nil && s.State.User != nil {
		selfID = s.State.User.ID
	}
	b.handleMessage(b.ctx, selfID, m)
}

func (b *Bot) handleMessage(ctx context.Context, selfID string, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == selfID || m.Author.Bot {
		return
	}
	if !b.cfg.ChannelAllowed(m.ChannelID) {
		return
	}

	outcome, err := b.handler.Dispatch(ctx, light.Message{
		ChannelID: m.ChannelID,
		Author:    m.Author.Username,
		Text:      m.Content,
	})
	if err != nil {
		b.logger.Error("command failed",
			zap.String("channel", m.ChannelID),
			zap.String("author", m.Author.Username),
			zap.Stringer("outcome", outcome),
			zap.Error(err))
		return
	}
	if outcome != light.OutcomeIgnored {
		b.logger.Info("command handled",
			zap.String("channel", m.ChannelID),
			zap.String("author", m.Author.Username),
			zap.Stringer("outcome", outcome))
	}
}
