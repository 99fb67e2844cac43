package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"groq-chat-backend/internal/domain"
	"groq-chat-backend/internal/usecase/chat"
)

const (
	sessionEndedDetail = "The chat session has ended. Please start a new session."
	chatPrefix         = "/chat/"
	endSuffix          = "/end"
)

type chatRequest struct {
	Message        *string `json:"message"`
	Role           string  `json:"role"`
	ConversationID *string `json:"conversation_id"`
}

type chatResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
}

type messageView struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type conversationView struct {
	ConversationID string        `json:"conversation_id"`
	Active         bool          `json:"active"`
	Messages       []messageView `json:"messages"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type ChatHandler struct {
	chat   *chat.Service
	logger *slog.Logger
}

func NewChatHandler(chatSvc *chat.Service, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{chat: chatSvc, logger: logger}
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if req.Message == nil {
		writeError(w, http.StatusUnprocessableEntity, "message is required")
		return
	}
	if req.ConversationID == nil {
		writeError(w, http.StatusUnprocessableEntity, "conversation_id is required")
		return
	}

	reply, err := h.chat.HandleMessage(r.Context(), *req.ConversationID, chat.Input{
		Text: *req.Message,
		Role: req.Role,
	})
	if err != nil {
		h.writeChatError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:       reply.Text,
		ConversationID: reply.ConversationID,
	})
}

func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := conversationIDFromPath(r, "")
	if !ok {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}
	conv, err := h.chat.Conversation(id)
	if err != nil {
		h.writeChatError(w, r, err)
		return
	}

	view := conversationView{
		ConversationID: conv.ID,
		Active:         conv.Active,
		Messages:       make([]messageView, 0, len(conv.Messages)),
	}
	for _, m := range conv.Messages {
		view.Messages = append(view.Messages, messageView{Role: m.Role, Content: m.Content})
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *ChatHandler) End(w http.ResponseWriter, r *http.Request) {
	id, ok := conversationIDFromPath(r, endSuffix)
	if !ok {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}
	if err := h.chat.EndConversation(id); err != nil {
		h.writeChatError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"conversation_id": id,
		"active":          false,
	})
}

func (h *ChatHandler) writeChatError(w http.ResponseWriter, r *http.Request, err error) {
	var gwErr *chat.GatewayError
	switch {
	case errors.Is(err, domain.ErrSessionEnded):
		writeError(w, http.StatusBadRequest, sessionEndedDetail)
	case errors.Is(err, domain.ErrConversationNotFound):
		writeError(w, http.StatusNotFound, "Conversation not found")
	case errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, chat.ErrInvalidRole):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &gwErr):
		writeError(w, http.StatusInternalServerError, gwErr.Error())
	default:
		h.logger.Error("chat request failed",
			"request_id", GetRequestID(r.Context()),
			"error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// conversationIDFromPath takes the id from the escaped request path, so ids
// holding "/" work both percent-encoded and verbatim.
func conversationIDFromPath(r *http.Request, suffix string) (string, bool) {
	raw := r.URL.EscapedPath()
	if !strings.HasPrefix(raw, chatPrefix) {
		return "", false
	}
	raw = strings.TrimPrefix(raw, chatPrefix)
	if suffix != "" {
		if !strings.HasSuffix(raw, suffix) {
			return "", false
		}
		raw = strings.TrimSuffix(raw, suffix)
	}
	id, err := url.PathUnescape(raw)
	if err != nil {
		return "", false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
