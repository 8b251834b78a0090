package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/supportbot-core/internal/core/ports/driven"
	"github.com/custodia-labs/supportbot-core/internal/retry"
)

// Ensure AnthropicLLM implements LLMService
var _ driven.LLMService = (*AnthropicLLM)(nil)

const anthropicVersion = "2023-06-01"

// AnthropicLLM implements LLMService using Anthropic's messages API
type AnthropicLLM struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
	client      *http.Client
	retryCfg    retry.Config
}

// NewAnthropicLLM creates a new Anthropic LLM service
func NewAnthropicLLM(apiKey, model, baseURL string, temperature float64, maxTokens int) (driven.LLMService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	if model == "" {
		model = "claude-3-5-haiku-latest"
	}
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	if maxTokens <= 0 {
		maxTokens = 512
	}

	return &AnthropicLLM{
		apiKey:      apiKey,
		model:       model,
		baseURL:     baseURL,
		temperature: temperature,
		maxTokens:   maxTokens,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
		retryCfg: retry.DefaultConfig(),
	}, nil
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate produces an answer from the system prompt, user message and
// retrieved context block.
func (l *AnthropicLLM) Generate(ctx context.Context, systemPrompt, userMessage, contextBlock string) (string, error) {
	reqBody := anthropicRequest{
		Model:       l.model,
		System:      systemPrompt,
		MaxTokens:   l.maxTokens,
		Temperature: l.temperature,
		Messages: []anthropicMessage{
			{Role: "user", Content: buildUserContent(userMessage, contextBlock)},
		},
	}

	var resp *anthropicResponse
	err := retry.Do(ctx, l.retryCfg, func(ctx context.Context) error {
		var reqErr error
		resp, reqErr = l.doRequest(ctx, reqBody)
		return reqErr
	})
	if err != nil {
		return "", err
	}

	for _, block := range resp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("Anthropic returned no text content")
}

// Model returns the model name being used
func (l *AnthropicLLM) Model() string {
	return l.model
}

// Ping verifies the LLM service is available. The messages endpoint has no
// cheap probe, so this sends a minimal one-token request.
func (l *AnthropicLLM) Ping(ctx context.Context) error {
	_, err := l.doRequest(ctx, anthropicRequest{
		Model:     l.model,
		MaxTokens: 1,
		Messages:  []anthropicMessage{{Role: "user", Content: "ping"}},
	})
	return err
}

// Close releases resources held by the LLM service
func (l *AnthropicLLM) Close() error {
	l.client.CloseIdleConnections()
	return nil
}

func (l *AnthropicLLM) doRequest(ctx context.Context, reqBody anthropicRequest) (*anthropicResponse, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", l.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var msgResp anthropicResponse
	if err := json.Unmarshal(respBody, &msgResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if msgResp.Error != nil {
		return nil, fmt.Errorf("Anthropic API error: %s (type: %s)", msgResp.Error.Message, msgResp.Error.Type)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Anthropic API returned status %d", resp.StatusCode)
	}

	return &msgResp, nil
}
