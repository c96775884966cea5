// Package telegram connects the monitor to the Telegram Bot API.
//
// This package contains:
//   - Notifier: delivers rendered reports to chats and channels
//   - Bot: long-polls for updates and hands recognised commands to a handler
//   - ParseCommand: command recognition for private chats and group mentions
package telegram

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Connect authenticates against the Bot API and routes the library's own
// log output through slog.
func Connect(token string) (*tgbotapi.BotAPI, error) {
	if err := tgbotapi.SetLogger(botLogger{log: slog.Default().With("component", "tgbotapi")}); err != nil {
		return nil, fmt.Errorf("set telegram logger: %w", err)
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	return api, nil
}

type botLogger struct {
	log *slog.Logger
}

func (l botLogger) Println(v ...interface{}) {
	l.log.Debug(fmt.Sprint(v...))
}

func (l botLogger) Printf(format string, v ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, v...))
}
