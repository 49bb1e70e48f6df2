package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/codeversity/backend/internal/config"
	"github.com/google/uuid"
)

var ErrAssistantNotConfigured = errors.New("AI assistant is not configured")

const assistantSystemPrompt = `You are a helpful programming tutor for an online learning platform.
Answer questions about courses, programming concepts and code concisely.
If a question is unrelated to learning or programming, politely decline.`

type assistantChatRequest struct {
	Model       string                 `json:"model"`
	Messages    []assistantChatMessage `json:"messages"`
	Temperature float64                `json:"temperature,omitempty"`
}

type assistantChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type assistantChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// AssistantService proxies tutor questions to the configured chat-completion
// API. It is the main consumer of the entitlement ledger: every query is
// gated on an active membership and spends one unit of AI quota.
type AssistantService struct {
	cfg          *config.Config
	entitlements *EntitlementService
	httpClient   *http.Client
}

func NewAssistantService(cfg *config.Config, entitlements *EntitlementService) *AssistantService {
	return &AssistantService{
		cfg:          cfg,
		entitlements: entitlements,
		httpClient:   &http.Client{Timeout: cfg.AITimeout},
	}
}

// Query enforces entitlement and quota, then forwards the prompt. The quota
// check happens after the configuration check so a misconfigured deployment
// doesn't silently burn user quota.
func (s *AssistantService) Query(userID uuid.UUID, prompt string) (string, int, int, error) {
	if s.cfg.GLMAPIKey == "" {
		return "", 0, 0, ErrAssistantNotConfigured
	}

	membership, err := s.entitlements.ConsumeAIQuery(userID)
	if err != nil {
		return "", 0, 0, err
	}

	reqBody := assistantChatRequest{
		Model: s.cfg.GLMModel,
		Messages: []assistantChatMessage{
			{Role: "system", Content: assistantSystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", 0, 0, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.cfg.GLMAPIURL, bytes.NewReader(payload))
	if err != nil {
		return "", 0, 0, fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.GLMAPIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", 0, 0, fmt.Errorf("chat API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, 0, fmt.Errorf("failed to read chat API response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", 0, 0, fmt.Errorf("chat API returned status %d", resp.StatusCode)
	}

	var chatResp assistantChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", 0, 0, fmt.Errorf("failed to parse chat API response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", 0, 0, errors.New("chat API returned no choices")
	}

	return chatResp.Choices[0].Message.Content, membership.AIUsageCount, membership.AIUsageLimit, nil
}
