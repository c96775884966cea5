package telegram

import (
	"strings"
)

// Recognised bot commands.
const (
	CommandStart      = "start"
	CommandHelp       = "help"
	CommandStatus     = "status"
	CommandAutoReport = "autoreport"
)

// mentionOrder is the order in which commands are looked for inside a
// message that mentions the bot.
var mentionOrder = []string{CommandStart, CommandAutoReport, CommandStatus, CommandHelp}

// ParseCommand recognises "/cmd", "/cmd@bot" and, in group chats, free text
// that mentions @bot and contains "/cmd". Commands addressed to another bot
// are ignored.
func ParseCommand(text, botUsername string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}

	if strings.HasPrefix(text, "/") {
		token := strings.Fields(text)[0][1:]
		name, target, addressed := strings.Cut(token, "@")
		if addressed && !strings.EqualFold(target, botUsername) {
			return "", false
		}
		name = strings.ToLower(name)
		if isKnown(name) {
			return name, true
		}
		return "", false
	}

	if botUsername == "" || !strings.Contains(strings.ToLower(text), "@"+strings.ToLower(botUsername)) {
		return "", false
	}
	lower := strings.ToLower(text)
	for _, name := range mentionOrder {
		if strings.Contains(lower, "/"+name) {
			return name, true
		}
	}
	return "", false
}

func isKnown(name string) bool {
	for _, known := range mentionOrder {
		if name == known {
			return true
		}
	}
	return false
}
