package scoring

import (
	"context"

	"github.com/jonathan/interview-conductor/internal/llm"
)

// MockLLMClient implements llm.Client for tests via function fields.
type MockLLMClient struct {
	GenerateContentFunc func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	GenerateJSONFunc    func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	GenerateChatFunc    func(ctx context.Context, system string, history []llm.Message, tier llm.ModelTier) (string, error)
}

func (m *MockLLMClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, prompt, tier)
	}
	return "mock content", nil
}

func (m *MockLLMClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier)
	}
	return "{}", nil
}

func (m *MockLLMClient) GenerateChat(ctx context.Context, system string, history []llm.Message, tier llm.ModelTier) (string, error) {
	if m.GenerateChatFunc != nil {
		return m.GenerateChatFunc(ctx, system, history, tier)
	}
	return "mock reply", nil
}

func (m *MockLLMClient) GetModel(tier llm.ModelTier) string {
	return "mock-model-" + string(tier)
}

func (m *MockLLMClient) Close() error {
	return nil
}
