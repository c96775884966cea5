package telegram

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vietddude/nodewatch/internal/core/domain"
)

// MaxMessageLength is the Bot API limit for one text message.
const MaxMessageLength = 4096

// Sender is the part of *tgbotapi.BotAPI the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier sends text to a chat id (numeric) or a public channel (@name).
type Notifier struct {
	api Sender
}

// NewNotifier creates a notifier on top of a connected bot.
func NewNotifier(api Sender) *Notifier {
	return &Notifier{api: api}
}

// Send delivers text, split on line boundaries when it exceeds the message
// limit. The first failing chunk aborts delivery with a DeliveryError.
func (n *Notifier) Send(ctx context.Context, dest domain.SubscriberID, text string, format domain.Format) error {
	for _, chunk := range SplitMessage(text, MaxMessageLength) {
		if err := ctx.Err(); err != nil {
			return &domain.DeliveryError{Destination: dest, Err: err}
		}

		msg := newMessage(dest, chunk)
		if format == domain.FormatMarkdown {
			msg.ParseMode = tgbotapi.ModeMarkdown
		}
		if _, err := n.api.Send(msg); err != nil {
			return &domain.DeliveryError{Destination: dest, Err: err}
		}
	}
	return nil
}

func newMessage(dest domain.SubscriberID, text string) tgbotapi.MessageConfig {
	if chatID, err := strconv.ParseInt(string(dest), 10, 64); err == nil {
		return tgbotapi.NewMessage(chatID, text)
	}
	return tgbotapi.NewMessageToChannel(string(dest), text)
}

// SplitMessage cuts text into pieces of at most limit bytes, preferring line
// breaks. A single line longer than limit is cut hard.
func SplitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, strings.TrimRight(cur.String(), "\n"))
			cur.Reset()
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > limit {
			flush()
			cut := limit
			// Do not split a multi-byte rune.
			for cut > 0 && !isRuneStart(line[cut]) {
				cut--
			}
			if cut == 0 {
				cut = limit
			}
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		if cur.Len()+len(line) > limit {
			flush()
		}
		cur.WriteString(line)
	}
	flush()

	return chunks
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
