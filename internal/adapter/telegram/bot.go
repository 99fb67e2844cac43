package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"groq-chat-backend/internal/usecase/chat"
)

const (
	chunkSize     = 2048
	fileThreshold = 4 * chunkSize
)

type Bot struct {
	api    *tgbotapi.BotAPI
	chat   *chat.Service
	logger *slog.Logger
}

func NewBot(token string, chatSvc *chat.Service, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return newBot(api, chatSvc, logger), nil
}

func newBot(api *tgbotapi.BotAPI, chatSvc *chat.Service, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		api:    api,
		chat:   chatSvc,
		logger: logger.With("component", "telegram", "bot", api.Self.UserName),
	}
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	b.logger.Info("telegram bot polling")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	id := ConversationID(msg.Chat.ID)

	switch msg.Command() {
	case "start":
		b.sendText(msg.Chat.ID, msg.MessageID, "Send me a message to start chatting. /end closes the conversation.")
		return
	case "end":
		if err := b.chat.EndConversation(id); err != nil && !errors.Is(err, chat.ErrNotFound) {
			b.logger.Error("failed to end conversation", "conversation_id", id, "error", err)
		}
		b.sendText(msg.Chat.ID, msg.MessageID, "The chat session has ended.")
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		text = strings.TrimSpace(msg.Caption)
	}

	b.sendChatAction(msg.Chat.ID)

	reply, err := b.chat.HandleMessage(ctx, id, chat.Input{Text: text})
	if err != nil {
		var gwErr *chat.GatewayError
		switch {
		case errors.Is(err, chat.ErrEmptyMessage):
			b.sendText(msg.Chat.ID, msg.MessageID, "i need some text to work with")
		case errors.Is(err, chat.ErrSessionEnded):
			b.sendText(msg.Chat.ID, msg.MessageID, "The chat session has ended. Please start a new session.")
		case errors.As(err, &gwErr):
			b.logger.Error("completion request failed", "conversation_id", id, "error", err)
			b.sendText(msg.Chat.ID, msg.MessageID, "failed to reach the model, try again later")
		default:
			b.logger.Error("chat request failed", "conversation_id", id, "error", err)
			b.sendText(msg.Chat.ID, msg.MessageID, "something went wrong")
		}
		return
	}

	if len([]rune(reply.Text)) > fileThreshold {
		if err := b.sendAsFile(msg.Chat.ID, msg.MessageID, reply.Text); err != nil {
			b.logger.Warn("failed to send file", "error", err)
			b.sendText(msg.Chat.ID, msg.MessageID, reply.Text)
		}
		return
	}

	b.sendText(msg.Chat.ID, msg.MessageID, reply.Text)
}

// ConversationID namespaces Telegram chats inside the shared store.
func ConversationID(chatID int64) string {
	return "telegram:" + strconv.FormatInt(chatID, 10)
}

func (b *Bot) sendText(chatID int64, replyTo int, text string) {
	if text == "" {
		text = "(empty response)"
	}
	for idx, chunk := range splitText(text, chunkSize) {
		msg := tgbotapi.NewMessage(chatID, chunk)
		if idx == 0 {
			msg.ReplyToMessageID = replyTo
		}
		if _, err := b.api.Send(msg); err != nil {
			b.logger.Warn("failed to send reply", "chat_id", chatID, "error", err)
		}
	}
}

func (b *Bot) sendChatAction(chatID int64) {
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.logger.Debug("failed to send chat action", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) sendAsFile(chatID int64, replyTo int, content string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  "response.md",
		Bytes: []byte(content),
	})
	doc.ReplyToMessageID = replyTo

	_, err := b.api.Send(doc)
	return err
}

// splitText cuts text into pieces of at most size runes.
func splitText(text string, size int) []string {
	if size <= 0 || utf8.RuneCountInString(text) <= size {
		return []string{text}
	}

	var chunks []string
	start, n := 0, 0
	for i := range text {
		if n == size {
			chunks = append(chunks, text[start:i])
			start, n = i, 0
		}
		n++
	}
	return append(chunks, text[start:])
}
