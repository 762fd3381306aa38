package llm

import (
	"context"
	"fmt"

	"fuel-planner/internal/config"
	"fuel-planner/internal/shared"
)

// Prompt is a system instruction plus the user message it applies to.
type Prompt struct {
	System string
	User   string
}

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt Prompt) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}

// New returns the generator selected by cfg.LLMProvider. A missing key is
// reported as shared.ErrConfiguration before any network call.
func New(ctx context.Context, cfg *config.Config) (TextGenerator, error) {
	switch cfg.LLMProvider {
	case config.ProviderGroq:
		if cfg.GroqAPIKey == "" {
			return nil, fmt.Errorf("%w: GROQ_API_KEY environment variable not set", shared.ErrConfiguration)
		}
		return NewGroqClient(cfg), nil
	case config.ProviderGemini, "":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("%w: GEMINI_API_KEY environment variable not set", shared.ErrConfiguration)
		}
		c, err := NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("%w: unknown LLM provider %q", shared.ErrConfiguration, cfg.LLMProvider)
}

// ProviderName reports which backend produced a generator's output.
func ProviderName(gen TextGenerator) string {
	switch gen.(type) {
	case *geminiClient:
		return config.ProviderGemini
	case *groqClient:
		return config.ProviderGroq
	case unavailable:
		return "unavailable"
	}
	return "custom"
}

type unavailable struct {
	err error
}

// Unavailable returns a generator that fails every call with err. It stands
// in when the configured provider cannot be built, so the failure surfaces
// at generation time.
func Unavailable(err error) TextGenerator {
	return unavailable{err: err}
}

func (u unavailable) GenerateContent(context.Context, Prompt) (ContentResponse, error) {
	return ContentResponse{}, u.err
}
