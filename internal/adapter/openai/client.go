package openai

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	openaiapi "github.com/sashabaranov/go-openai"

	"groq-chat-backend/internal/usecase/chat"
)

type Client struct {
	api *openaiapi.Client
}

// NewClient talks to any OpenAI-compatible endpoint. An empty baseURL keeps
// the library default. httpClient may be nil.
func NewClient(token, baseURL string, httpClient *http.Client) *Client {
	cfg := openaiapi.DefaultConfig(token)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &Client{
		api: openaiapi.NewClientWithConfig(cfg),
	}
}

// Complete requests a streamed completion and returns the concatenated
// fragments. No fragments yields an empty string.
func (c *Client) Complete(ctx context.Context, req chat.CompletionRequest) (string, error) {
	apiReq := openaiapi.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    toAPIMessages(req.Messages),
		Temperature: req.Temperature,
		TopP:        req.TopP,
		MaxTokens:   req.MaxTokens,
		Stream:      true,
	}

	stream, err := c.api.CreateChatCompletionStream(ctx, apiReq)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	return collect(stream)
}

type chunkReceiver interface {
	Recv() (openaiapi.ChatCompletionStreamResponse, error)
}

func collect(stream chunkReceiver) (string, error) {
	var sb strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return sb.String(), nil
		}
		if err != nil {
			return "", err
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		sb.WriteString(chunk.Choices[0].Delta.Content)
	}
}

func toAPIMessages(msgs []chat.Message) []openaiapi.ChatCompletionMessage {
	res := make([]openaiapi.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		res = append(res, openaiapi.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Text,
		})
	}
	return res
}
