package domain

import "errors"

var (
	ErrSessionEnded         = errors.New("session ended")
	ErrConversationNotFound = errors.New("conversation not found")
)

type ConversationStore interface {
	// GetOrCreate returns the conversation for id, creating it with the
	// system message when it does not exist yet.
	GetOrCreate(id string) Conversation
	Get(id string) (Conversation, error)
	// Append fails with ErrSessionEnded when the conversation is inactive.
	Append(id string, msg Message) (Conversation, error)
	End(id string) error
	// Lock serializes callers working on the same conversation id.
	Lock(id string) (unlock func())
}
