package memory

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groq-chat-backend/internal/domain"
)

const prompt = "You are a useful AI assistant."

func TestGetOrCreate_NewConversationHasSystemMessage(t *testing.T) {
	s := NewStore(prompt)

	conv := s.GetOrCreate("abc")

	require.Len(t, conv.Messages, 1)
	assert.Equal(t, domain.RoleSystem, conv.Messages[0].Role)
	assert.Equal(t, prompt, conv.Messages[0].Content)
	assert.True(t, conv.Active)
	assert.Equal(t, "abc", conv.ID)
}

func TestGetOrCreate_ReturnsExisting(t *testing.T) {
	s := NewStore(prompt)
	s.GetOrCreate("abc")

	_, err := s.Append("abc", domain.Message{Role: domain.RoleUser, Content: "Hi"})
	require.NoError(t, err)

	conv := s.GetOrCreate("abc")
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "Hi", conv.Messages[1].Content)
}

func TestAppend_PreservesOrder(t *testing.T) {
	s := NewStore(prompt)
	s.GetOrCreate("abc")

	for i := 0; i < 5; i++ {
		_, err := s.Append("abc", domain.Message{Role: domain.RoleUser, Content: fmt.Sprintf("m%d", i)})
		require.NoError(t, err)
	}

	conv, err := s.Get("abc")
	require.NoError(t, err)
	require.Len(t, conv.Messages, 6)
	for i := 0; i < 5; i++ {
		assert.Equal(t, fmt.Sprintf("m%d", i), conv.Messages[i+1].Content)
	}
}

func TestAppend_StampsMissingTimestamp(t *testing.T) {
	s := NewStore(prompt)
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	s.GetOrCreate("abc")

	conv, err := s.Append("abc", domain.Message{Role: domain.RoleUser, Content: "Hi"})
	require.NoError(t, err)
	assert.Equal(t, fixed, conv.Messages[1].Timestamp)
}

func TestAppend_UnknownConversation(t *testing.T) {
	s := NewStore(prompt)

	_, err := s.Append("missing", domain.Message{Role: domain.RoleUser, Content: "Hi"})
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)
}

func TestAppend_EndedConversationIsUnchanged(t *testing.T) {
	s := NewStore(prompt)
	s.GetOrCreate("abc")
	require.NoError(t, s.End("abc"))

	_, err := s.Append("abc", domain.Message{Role: domain.RoleUser, Content: "Hi"})
	assert.ErrorIs(t, err, domain.ErrSessionEnded)

	conv, err := s.Get("abc")
	require.NoError(t, err)
	assert.False(t, conv.Active)
	assert.Len(t, conv.Messages, 1)
}

func TestEnd_UnknownConversation(t *testing.T) {
	s := NewStore(prompt)
	assert.ErrorIs(t, s.End("missing"), domain.ErrConversationNotFound)
}

func TestGet_DoesNotCreate(t *testing.T) {
	s := NewStore(prompt)

	_, err := s.Get("abc")
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)

	_, err = s.Get("abc")
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)
}

func TestConversationsAreIsolated(t *testing.T) {
	s := NewStore(prompt)
	s.GetOrCreate("a")
	s.GetOrCreate("b")

	_, err := s.Append("a", domain.Message{Role: domain.RoleUser, Content: "only in a"})
	require.NoError(t, err)

	b, err := s.Get("b")
	require.NoError(t, err)
	require.Len(t, b.Messages, 1)
	assert.Equal(t, domain.RoleSystem, b.Messages[0].Role)
}

func TestSnapshotIsDetached(t *testing.T) {
	s := NewStore(prompt)
	conv := s.GetOrCreate("abc")
	conv.Messages[0].Content = "mutated"

	again, err := s.Get("abc")
	require.NoError(t, err)
	assert.Equal(t, prompt, again.Messages[0].Content)
}

func TestLock_SerializesSameConversation(t *testing.T) {
	s := NewStore(prompt)
	s.GetOrCreate("abc")

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			unlock := s.Lock("abc")
			defer unlock()

			_, err := s.Append("abc", domain.Message{Role: domain.RoleUser, Content: fmt.Sprintf("q%d", i)})
			assert.NoError(t, err)
			_, err = s.Append("abc", domain.Message{Role: domain.RoleAssistant, Content: fmt.Sprintf("a%d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	conv, err := s.Get("abc")
	require.NoError(t, err)
	require.Len(t, conv.Messages, 1+2*workers)
	for i := 1; i < len(conv.Messages); i += 2 {
		q, a := conv.Messages[i], conv.Messages[i+1]
		assert.Equal(t, domain.RoleUser, q.Role)
		assert.Equal(t, domain.RoleAssistant, a.Role)
		assert.Equal(t, q.Content[1:], a.Content[1:])
	}
}

func TestLock_DistinctConversationsDoNotBlock(t *testing.T) {
	s := NewStore(prompt)

	unlockA := s.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := s.Lock("b")
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on b waited for lock on a")
	}
}
