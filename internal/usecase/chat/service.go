package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"groq-chat-backend/internal/config"
	"groq-chat-backend/internal/domain"
)

type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type CompletionRequest struct {
	Model       string
	Messages    []Message
	Temperature float32
	TopP        float32
	MaxTokens   int
}

type Message struct {
	Role string
	Text string
}

type Input struct {
	Text string
	Role string
}

type Reply struct {
	ConversationID string
	Text           string
}

type Service struct {
	store  domain.ConversationStore
	client Client
	cfg    config.Config
	logger *slog.Logger
	now    func() time.Time
}

func NewService(store domain.ConversationStore, client Client, cfg config.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		client: client,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// HandleMessage appends input to the conversation, asks the provider for a
// completion over the whole history and records the reply. Any string,
// including "", is a valid conversation id. The sequence runs under the
// conversation's lock.
//
// A provider failure leaves the user message in the history.
func (s *Service) HandleMessage(ctx context.Context, conversationID string, input Input) (Reply, error) {
	if strings.TrimSpace(input.Text) == "" {
		return Reply{}, ErrEmptyMessage
	}
	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.ValidRole(role) {
		return Reply{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	unlock := s.store.Lock(conversationID)
	defer unlock()

	conv := s.store.GetOrCreate(conversationID)
	if !conv.Active {
		return Reply{}, ErrSessionEnded
	}

	conv, err := s.store.Append(conversationID, domain.Message{
		Role:      role,
		Content:   input.Text,
		Timestamp: s.now(),
	})
	if err != nil {
		return Reply{}, fmt.Errorf("append user message: %w", err)
	}

	resp, err := s.client.Complete(ctx, CompletionRequest{
		Model:       s.cfg.Model,
		Messages:    toMessages(conv.Messages),
		Temperature: s.cfg.Temperature,
		TopP:        s.cfg.TopP,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if err != nil {
		s.logger.Error("completion failed",
			"conversation_id", conversationID,
			"messages", len(conv.Messages),
			"error", err)
		return Reply{}, &GatewayError{Err: err}
	}

	if _, err := s.store.Append(conversationID, domain.Message{
		Role:      domain.RoleAssistant,
		Content:   resp,
		Timestamp: s.now(),
	}); err != nil {
		return Reply{}, fmt.Errorf("append assistant message: %w", err)
	}

	s.logger.Debug("completion stored",
		"conversation_id", conversationID,
		"messages", len(conv.Messages)+1,
		"reply_len", len(resp))

	return Reply{ConversationID: conversationID, Text: resp}, nil
}

func (s *Service) Conversation(conversationID string) (domain.Conversation, error) {
	return s.store.Get(conversationID)
}

// EndConversation marks the conversation inactive; its history is kept.
func (s *Service) EndConversation(conversationID string) error {
	unlock := s.store.Lock(conversationID)
	defer unlock()

	if err := s.store.End(conversationID); err != nil {
		if errors.Is(err, domain.ErrConversationNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("end conversation: %w", err)
	}
	s.logger.Info("conversation ended", "conversation_id", conversationID)
	return nil
}

func toMessages(history []domain.Message) []Message {
	out := make([]Message, 0, len(history))
	for _, h := range history {
		out = append(out, Message{Role: h.Role, Text: h.Content})
	}
	return out
}
