package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vietddude/nodewatch/internal/core/domain"
	"github.com/vietddude/nodewatch/internal/infra/telegram"
	"github.com/vietddude/nodewatch/internal/monitoring/schedule"
)

// Replies to /autoreport.
const (
	MsgAutoReportStarted = "Auto-reporting started."
	MsgAlreadySubscribed = "You are already subscribed to auto-reporting."
	MsgAutoReportFailed  = "Auto-reporting is not available right now."
)

// Reporter is the part of the schedule manager the commands drive.
type Reporter interface {
	OnDemand(ctx context.Context, id domain.SubscriberID) error
	Subscribe(id domain.SubscriberID) (schedule.SubscribeResult, error)
	Interval() time.Duration
}

// Commands maps bot commands onto the reporter.
type Commands struct {
	reporter Reporter
	notifier schedule.Notifier
	log      *slog.Logger
}

// NewCommands creates the command dispatcher.
func NewCommands(reporter Reporter, notifier schedule.Notifier) *Commands {
	return &Commands{
		reporter: reporter,
		notifier: notifier,
		log:      slog.Default().With("component", "commands"),
	}
}

// HandleCommand implements telegram.CommandHandler.
func (c *Commands) HandleCommand(ctx context.Context, cmd telegram.Command) {
	switch cmd.Name {
	case telegram.CommandStart, telegram.CommandHelp:
		c.reply(ctx, cmd, UsageText(c.reporter.Interval()))

	case telegram.CommandStatus:
		if err := c.reporter.OnDemand(ctx, cmd.Chat); err != nil {
			c.log.Warn("Status report delivery failed", "chat", cmd.Chat, "error", err)
		}

	case telegram.CommandAutoReport:
		res, err := c.reporter.Subscribe(cmd.Chat)
		switch {
		case err != nil:
			c.log.Warn("Subscribe failed", "chat", cmd.Chat, "error", err)
			c.reply(ctx, cmd, MsgAutoReportFailed)
		case res == schedule.AlreadyActive:
			c.reply(ctx, cmd, MsgAlreadySubscribed)
		default:
			c.reply(ctx, cmd, MsgAutoReportStarted)
		}

	default:
		c.log.Debug("Ignoring unknown command", "command", cmd.Name)
	}
}

func (c *Commands) reply(ctx context.Context, cmd telegram.Command, text string) {
	if err := c.notifier.Send(ctx, cmd.Chat, text, domain.FormatPlain); err != nil {
		c.log.Warn("Reply failed", "command", cmd.Name, "chat", cmd.Chat, "error", err)
	}
}

// UsageText is the reply to /start and /help.
func UsageText(interval time.Duration) string {
	return fmt.Sprintf("Usage:\n"+
		"Use /status to get a complete status update once.\n"+
		"Use /autoreport to get all faulty nodes, automatically checked every %ds.",
		int64(interval.Seconds()))
}
