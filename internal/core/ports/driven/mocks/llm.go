package mocks

import (
	"context"
	"fmt"
)

// MockLLMService returns a canned response while recording the last
// prompts it was given.
type MockLLMService struct {
	Response    string
	generateErr error
	Calls       int
	LastSystem  string
	LastMessage string
	LastContext string
	Closed      bool
}

// NewMockLLMService creates a new MockLLMService
func NewMockLLMService(response string) *MockLLMService {
	return &MockLLMService{Response: response}
}

// FailGenerations makes Generate return err
func (m *MockLLMService) FailGenerations(err error) {
	m.generateErr = err
}

func (m *MockLLMService) Generate(_ context.Context, systemPrompt, userMessage, contextBlock string) (string, error) {
	m.Calls++
	m.LastSystem = systemPrompt
	m.LastMessage = userMessage
	m.LastContext = contextBlock
	if m.generateErr != nil {
		return "", m.generateErr
	}
	if m.Response != "" {
		return m.Response, nil
	}
	return fmt.Sprintf("answer based on %d context bytes", len(contextBlock)), nil
}

func (m *MockLLMService) Model() string {
	return "mock-llm"
}

func (m *MockLLMService) Ping(_ context.Context) error {
	return nil
}

func (m *MockLLMService) Close() error {
	m.Closed = true
	return nil
}
