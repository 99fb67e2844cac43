package memory

import (
	"sync"
	"time"

	"groq-chat-backend/internal/domain"
)

var _ domain.ConversationStore = (*Store)(nil)

type conversation struct {
	messages []domain.Message
	active   bool
}

// Store keeps every conversation for the life of the process. There is no
// eviction, size bound or expiry.
type Store struct {
	mu            sync.RWMutex
	systemPrompt  string
	conversations map[string]*conversation

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	now func() time.Time
}

func NewStore(systemPrompt string) *Store {
	return &Store{
		systemPrompt:  systemPrompt,
		conversations: make(map[string]*conversation),
		locks:         make(map[string]*sync.Mutex),
		now:           time.Now,
	}
}

func (s *Store) GetOrCreate(id string) domain.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		conv = &conversation{
			messages: []domain.Message{{
				Role:      domain.RoleSystem,
				Content:   s.systemPrompt,
				Timestamp: s.now(),
			}},
			active: true,
		}
		s.conversations[id] = conv
	}
	return snapshot(id, conv)
}

func (s *Store) Get(id string) (domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok {
		return domain.Conversation{}, domain.ErrConversationNotFound
	}
	return snapshot(id, conv), nil
}

func (s *Store) Append(id string, msg domain.Message) (domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return domain.Conversation{}, domain.ErrConversationNotFound
	}
	if !conv.active {
		return snapshot(id, conv), domain.ErrSessionEnded
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now()
	}
	conv.messages = append(conv.messages, msg)
	return snapshot(id, conv), nil
}

func (s *Store) End(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return domain.ErrConversationNotFound
	}
	conv.active = false
	return nil
}

// Lock hands out one mutex per conversation id so unrelated conversations
// never wait on each other. Mutexes live as long as the store does.
func (s *Store) Lock(id string) func() {
	s.locksMu.Lock()
	m, ok := s.locks[id]
	if !ok {
		m = &sync.Mutex{}
		s.locks[id] = m
	}
	s.locksMu.Unlock()

	m.Lock()
	return m.Unlock
}

func snapshot(id string, conv *conversation) domain.Conversation {
	return domain.Conversation{
		ID:       id,
		Messages: append([]domain.Message(nil), conv.messages...),
		Active:   conv.active,
	}
}
