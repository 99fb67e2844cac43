package domain

import "time"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role      string
	Content   string
	Timestamp time.Time
}

// ValidRole reports whether role is one a conversation may carry.
func ValidRole(role string) bool {
	switch role {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Conversation is a point-in-time copy of a stored conversation.
// The first message is always the system prompt.
type Conversation struct {
	ID       string
	Messages []Message
	Active   bool
}
