package telegram

import (
	"context"
	"log/slog"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vietddude/nodewatch/internal/core/domain"
)

// Command is a recognised command together with the chat it came from.
type Command struct {
	Name string
	Chat domain.SubscriberID
	From string // username of the sender, empty for channel posts
}

// CommandHandler reacts to commands. Calls may run concurrently.
type CommandHandler interface {
	HandleCommand(ctx context.Context, cmd Command)
}

// UpdateSource is the long-polling part of *tgbotapi.BotAPI.
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot receives updates and dispatches commands, one goroutine per command so
// a slow status report never holds up the update loop.
type Bot struct {
	api      UpdateSource
	username string
	handler  CommandHandler
	log      *slog.Logger
}

// NewBot creates a listener. username is the bot's own @name, used to
// recognise mentions in group chats.
func NewBot(api UpdateSource, username string, handler CommandHandler) *Bot {
	return &Bot{
		api:      api,
		username: username,
		handler:  handler,
		log:      slog.Default().With("component", "telegram", "bot", username),
	}
}

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.log.Info("Listening for commands")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil {
		msg = update.ChannelPost
	}
	if msg == nil || msg.Chat == nil {
		return
	}

	name, ok := ParseCommand(msg.Text, b.username)
	if !ok {
		return
	}

	cmd := Command{
		Name: name,
		Chat: domain.SubscriberID(strconv.FormatInt(msg.Chat.ID, 10)),
	}
	if msg.From != nil {
		cmd.From = msg.From.UserName
	}

	b.log.Info("Command received", "command", cmd.Name, "chat", cmd.Chat, "from", cmd.From)
	go b.handler.HandleCommand(ctx, cmd)
}
