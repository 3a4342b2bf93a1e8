package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/dmitrijs2005/ideaforge/internal/common"
	"github.com/dmitrijs2005/ideaforge/internal/logging"
	"github.com/dmitrijs2005/ideaforge/internal/models"
)

const genericChatFailure = "failed to get response from AI assistant"

// ChatService relays refinement conversations to an OpenAI-compatible
// chat completions endpoint.
type ChatService struct {
	apiURL     string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     logging.Logger
}

func NewChatService(apiURL, apiKey, model string, httpClient *http.Client, l logging.Logger) *ChatService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ChatService{
		apiURL:     apiURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: httpClient,
		logger:     l.With("module", "chat_service"),
	}
}

type chatRequest struct {
	Model    string               `json:"model"`
	Messages []models.ChatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message models.ChatMessage `json:"message"`
	} `json:"choices"`
	Usage *models.ChatUsage `json:"usage"`
}

// SendMessage forwards the conversation and returns the assistant's reply.
// Anonymous callers are rejected. Upstream failures come back as
// *common.UpstreamError carrying the upstream message when one was given.
func (s *ChatService) SendMessage(ctx context.Context, userID string, history []models.ChatMessage) (*models.ChatReply, error) {
	if userID == "" {
		return nil, common.ErrorUnauthorized
	}
	if len(history) == 0 {
		return nil, common.ErrorValidation
	}

	body, err := json.Marshal(chatRequest{Model: s.model, Messages: history})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error(ctx, "chat upstream unreachable", "error", err)
		return nil, &common.UpstreamError{Message: genericChatFailure}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &common.UpstreamError{Message: genericChatFailure}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := upstreamMessage(raw)
		s.logger.Warn(ctx, "chat upstream failed", "status", resp.StatusCode, "message", msg)
		return nil, &common.UpstreamError{Message: msg}
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil || len(out.Choices) == 0 {
		return nil, &common.UpstreamError{Message: genericChatFailure}
	}

	s.logger.Debug(ctx, "chat reply received", "user_id", userID)
	return &models.ChatReply{Message: out.Choices[0].Message.Content, Usage: out.Usage}, nil
}

// upstreamMessage extracts error.message or a plain error string.
func upstreamMessage(raw []byte) string {
	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &nested) == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}
	var flat struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &flat) == nil && flat.Error != "" {
		return flat.Error
	}
	return genericChatFailure
}
