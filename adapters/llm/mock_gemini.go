package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/mvanryn/worldweaver/domain/repositories"
)

// MockGeminiLLM is a placeholder model for running without an API key. It
// answers every user idea with an object description so the rest of the
// pipeline can be exercised end to end.
type MockGeminiLLM struct{}

func NewMockGeminiLLM() *MockGeminiLLM {
	return &MockGeminiLLM{}
}

func (m *MockGeminiLLM) GenerateChat(ctx context.Context, history []repositories.ChatMessage) (repositories.ChatSession, error) {
	return &mockGeminiChatSession{history: history}, nil
}

type mockGeminiChatSession struct {
	history []repositories.ChatMessage
}

func (s *mockGeminiChatSession) SendMessage(ctx context.Context, message repositories.ChatMessage) (repositories.ChatMessage, error) {
	s.history = append(s.history, message)

	idea := strings.TrimSpace(message.Content)
	var reply string
	if idea == "" {
		reply = "What kind of place are you imagining?"
	} else {
		reply = fmt.Sprintf("Let's create %s with a few whimsical details.", strings.ToLower(idea))
	}

	response := repositories.ChatMessage{
		Role:    repositories.AssistantRole,
		Content: reply,
	}
	s.history = append(s.history, response)
	return response, nil
}

func (s *mockGeminiChatSession) History() ([]repositories.ChatMessage, error) {
	return s.history, nil
}
