package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/ontoscope/internal/config"
)

type mockLLM struct {
	response string
	err      error
	prompt   string
}

func (m *mockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.prompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func TestRankParsesIndices(t *testing.T) {
	mock := &mockLLM{response: "2, 0, 1"}
	r := NewSimpleLLMReranker(mock)

	got, err := r.Rank(context.Background(), "customer ontology", []string{"a", "b", "c"})

	assert.NoError(t, err)
	assert.Equal(t, []int{2, 0, 1}, got)
	assert.Contains(t, mock.prompt, "customer ontology")
	assert.Contains(t, mock.prompt, "[1] b")
}

func TestRankFallsBackToOriginalOrderOnError(t *testing.T) {
	mock := &mockLLM{err: errors.New("provider down")}
	r := NewSimpleLLMReranker(mock)

	got, err := r.Rank(context.Background(), "q", []string{"a", "b"})

	assert.NoError(t, err)
	assert.Equal(t, []int{0, 1}, got)
}

func TestRankShortInputsSkipTheModel(t *testing.T) {
	mock := &mockLLM{response: "should not be called"}
	r := NewSimpleLLMReranker(mock)
	ctx := context.Background()

	got, err := r.Rank(ctx, "q", nil)
	assert.NoError(t, err)
	assert.Nil(t, got)

	got, err = r.Rank(ctx, "q", []string{"only"})
	assert.NoError(t, err)
	assert.Equal(t, []int{0}, got)
	assert.Empty(t, mock.prompt)
}

func TestNewClientEmptyProviderIsDemoMode(t *testing.T) {
	client, err := NewClient(context.Background(), configFor(""))

	assert.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewClientUnknownProvider(t *testing.T) {
	_, err := NewClient(context.Background(), configFor("quantum"))

	assert.Error(t, err)
}

func TestNewClientOpenAICompatibleProviders(t *testing.T) {
	for _, provider := range []string{"openai", "claude", "ollama"} {
		client, err := NewClient(context.Background(), configFor(provider))
		assert.NoError(t, err, "provider %s", provider)
		assert.NotNil(t, client, "provider %s", provider)
	}
}

func configFor(provider string) config.LLMConfig {
	return config.LLMConfig{Provider: provider, Model: "test-model", APIKey: "key"}
}
