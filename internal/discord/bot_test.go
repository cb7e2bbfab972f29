package discord

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/chatlight/internal/config"
	"github.com/keshon/chatlight/internal/device/fake"
	"github.com/keshon/chatlight/internal/light"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingHandler struct {
	msgs    []light.Message
	outcome light.Outcome
	err     error
}

func (h *recordingHandler) Dispatch(ctx context.Context, msg light.Message) (light.Outcome, error) {
	h.msgs = append(h.msgs, msg)
	return h.outcome, h.err
}

func message(channelID, authorID, content string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: channelID,
		Content:   content,
		Author:    &discordgo.User{ID: authorID, Username: "user-" + authorID},
	}}
}

func newTestBot(t *testing.T, cfg config.DiscordConfig, h Handler) (*Bot, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	b, err := NewBot(cfg, zap.New(core))
	require.NoError(t, err)
	b.handler = h
	return b, logs
}

func TestHandleMessageForwards(t *testing.T) {
	h := &recordingHandler{outcome: light.OutcomeDispatched}
	b, logs := newTestBot(t, config.DiscordConfig{Token: "t"}, h)

	b.handleMessage(context.Background(), "bot", message("c1", "42", "!light toggle"))

	require.Len(t, h.msgs, 1)
	assert.Equal(t, light.Message{ChannelID: "c1", Author: "user-42", Text: "!light toggle"}, h.msgs[0])
	assert.Equal(t, 1, logs.FilterMessage("command handled").Len())
}

func TestHandleMessageSkips(t *testing.T) {
	h := &recordingHandler{}
	b, _ := newTestBot(t, config.DiscordConfig{Token: "t", Channels: []string{"allowed"}}, h)

	b.handleMessage(context.Background(), "bot", message("allowed", "bot", "!light toggle"))
	b.handleMessage(context.Background(), "bot", message("elsewhere", "42", "!light toggle"))
	b.handleMessage(context.Background(), "bot", &discordgo.MessageCreate{Message: &discordgo.Message{ChannelID: "allowed"}})

	other := message("allowed", "7", "!light toggle")
	other.Author.Bot = true
	b.handleMessage(context.Background(), "bot", other)

	assert.Empty(t, h.msgs)

	b.handleMessage(context.Background(), "bot", message("allowed", "42", "hello"))
	assert.Len(t, h.msgs, 1)
}

func TestHandleMessageLogsFailures(t *testing.T) {
	h := &recordingHandler{outcome: light.OutcomeDispatched, err: errors.New("queue full")}
	b, logs := newTestBot(t, config.DiscordConfig{Token: "t"}, h)

	b.handleMessage(context.Background(), "bot", message("c1", "42", "!light toggle"))

	failed := logs.FilterMessage("command failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.ErrorLevel, failed[0].Level)
}

func TestIgnoredMessagesAreQuiet(t *testing.T) {
	b, logs := newTestBot(t, config.DiscordConfig{Token: "t"}, &recordingHandler{outcome: light.OutcomeIgnored})
	b.handleMessage(context.Background(), "bot", message("c1", "42", "just chatting"))
	assert.Zero(t, logs.Len())
}

func TestBotWithDispatcher(t *testing.T) {
	sender := fake.NewSender()
	replier := fake.NewReplier()
	d := light.NewDispatcher(light.DefaultSchema(), sender, replier)
	b, _ := newTestBot(t, config.DiscordConfig{Token: "t"}, d)

	b.handleMessage(context.Background(), "bot", message("c1", "42", "!light temp 9999"))
	b.handleMessage(context.Background(), "bot", message("c1", "42", "!light wat"))

	require.Len(t, sender.Sent(), 1)
	assert.Equal(t, "set_ct_abx", sender.Sent()[0].Method)
	assert.Equal(t, []fake.Reply{{ChannelID: "c1", Text: "usage: !light (toggle, power, rgb, temp, bright)"}}, replier.Replies())
}
