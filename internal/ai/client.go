package ai

import (
	"context"
	"errors"
	"strings"
)

// Client provides embedding and streamed answer generation.
type Client interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch returns one vector per input text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// StreamAnswer generates an answer and delivers it as ordered text
	// fragments through emit. A non-nil error from emit stops generation.
	StreamAnswer(ctx context.Context, system, prompt string, emit func(string) error) error
	Dim() int
}

// Provider is enumeration of supported AI providers
type Provider string

const (
	ProviderOpenAI   Provider = "openai"
	ProviderVertexAI Provider = "vertexai"
	ProviderStub     Provider = "stub"
)

// Generation defaults shared by all providers.
const (
	answerTemperature = 0.7
	answerMaxTokens   = 1000
)

// ClientConfig holds configuration for AI clients
type ClientConfig struct {
	APIKey      string
	EmbedModel  string
	AnswerModel string
	Dim         int
	ProjectID   string
	Provider    Provider
	Location    string
}

// NewClient creates a new AI client based on configuration
func NewClient(config *ClientConfig) (Client, error) {
	if config == nil {
		return nil, errors.New("client config is required")
	}

	ctx := context.Background()
	switch config.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(config), nil
	case ProviderVertexAI:
		return NewVertexAIClient(ctx, config)
	case ProviderStub:
		return NewStubClient(config.Dim), nil
	default:
		return nil, errors.New("unsupported provider: " + string(config.Provider))
	}
}

// StubClient is a stub implementation of the Client interface for testing
// and local runs without credentials.
type StubClient struct {
	dim int
}

// NewStubClient creates a new StubClient
func NewStubClient(dim int) *StubClient {
	if dim == 0 {
		dim = 8
	}
	return &StubClient{dim: dim}
}

// Embed returns a deterministic vector derived from the text so that equal
// inputs stay nearest neighbors.
func (s *StubClient) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, s.dim)
	for i, r := range text {
		vec[i%s.dim] += float32(r%31) / 31
	}
	return vec, nil
}

func (s *StubClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// StreamAnswer emits a canned answer word by word.
func (s *StubClient) StreamAnswer(ctx context.Context, system, prompt string, emit func(string) error) error {
	words := strings.Fields("This is a stub answer generated without a model provider.")
	for i, w := range words {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if i > 0 {
			w = " " + w
		}
		if err := emit(w); err != nil {
			return err
		}
	}
	return nil
}

// Dim returns the embedding dimension
func (s *StubClient) Dim() int {
	return s.dim
}
