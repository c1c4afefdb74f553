package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram rejects messages longer than this many characters.
const maxMessageLength = 4096

var ErrNoChat = errors.New("league chat ID not set")

// TelegramBot answers league commands and posts scheduled reports to the
// league chat.
type TelegramBot struct {
	api     *tgbotapi.BotAPI
	handler *Handler
	chatID  int64
}

func NewTelegramBot(token string, chatID int64, reports Reports) (*TelegramBot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("error connecting to telegram: %w", err)
	}

	return &TelegramBot{api: api, handler: NewHandler(reports), chatID: chatID}, nil
}

// Start polls for updates until ctx is cancelled. When a league chat is
// configured, commands from other chats are ignored.
func (t *TelegramBot) Start(ctx context.Context) error {
	slog.Info("Telegram bot listening", "username", t.api.Self.UserName, "chat", t.chatID)

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 60
	updates := t.api.GetUpdatesChan(cfg)
	defer t.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return errors.New("telegram update channel closed")
			}
			if !t.accepts(update) {
				continue
			}

			reply := t.handler.HandleCommand(ctx, update)
			if err := t.send(reply); err != nil {
				slog.Error("Error replying to command", "command", update.Message.Command(), "error", err)
			}
		}
	}
}

func (t *TelegramBot) accepts(update tgbotapi.Update) bool {
	if update.Message == nil || !update.Message.IsCommand() {
		return false
	}
	return t.chatID == 0 || update.Message.Chat.ID == t.chatID
}

// SendMessage posts a Markdown report to the league chat.
func (t *TelegramBot) SendMessage(text string) error {
	if t.chatID == 0 {
		return ErrNoChat
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if err := t.send(msg); err != nil {
		slog.Error("Error posting report", "chat", t.chatID, "error", err)
		return err
	}
	return nil
}

func (t *TelegramBot) send(msg tgbotapi.MessageConfig) error {
	for _, part := range splitMessage(msg.Text, maxMessageLength) {
		chunk := msg
		chunk.Text = part
		if _, err := t.api.Send(chunk); err != nil {
			return fmt.Errorf("error sending message: %w", err)
		}
	}
	return nil
}

// splitMessage cuts text into pieces of at most limit runes, breaking at
// line ends where possible.
func splitMessage(text string, limit int) []string {
	var parts []string
	var b strings.Builder
	n := 0

	flush := func() {
		if part := strings.TrimRight(b.String(), "\n"); part != "" {
			parts = append(parts, part)
		}
		b.Reset()
		n = 0
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		runes := []rune(line)
		if n+len(runes) > limit {
			flush()
		}
		for len(runes) > limit {
			parts = append(parts, string(runes[:limit]))
			runes = runes[limit:]
		}
		b.WriteString(string(runes))
		n += len(runes)
	}
	flush()

	if len(parts) == 0 {
		return []string{text}
	}
	return parts
}
