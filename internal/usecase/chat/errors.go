package chat

import (
	"errors"

	"groq-chat-backend/internal/domain"
)

var (
	ErrEmptyMessage = errors.New("empty message")
	ErrInvalidRole  = errors.New("invalid role")
	ErrSessionEnded = domain.ErrSessionEnded
	ErrNotFound     = domain.ErrConversationNotFound
)

// GatewayError carries a failure reported by the completion provider.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string {
	return "Error with Groq API: " + e.Err.Error()
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
