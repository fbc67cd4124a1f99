package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// Provider names accepted by New.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// GeminiClient generates text through the Gemini API.
type GeminiClient struct {
	client    *genai.Client
	model     string
	maxTokens int32
	retry     retryPolicy
}

// NewGeminiClient constructs a Gemini-backed generator. BaseURL, when set,
// overrides the API endpoint.
func NewGeminiClient(ctx context.Context, cfg Config, opts ...Option) (*GeminiClient, error) {
	cfg = normalizeConfig(cfg)
	if cfg.APIKey == "" {
		return nil, errors.New("gemini client: api key required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}
	o, policy := buildOptions(cfg, opts)
	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: o.httpClient,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiClient{
		client:    client,
		model:     cfg.Model,
		maxTokens: int32(cfg.MaxTokens),
		retry:     policy,
	}, nil
}

// Generate sends prompt as a single user turn and returns the response text.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("gemini generate: prompt required")
	}
	return g.retry.run(ctx, "gemini generate", func(ctx context.Context) (string, error) {
		resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
			MaxOutputTokens: g.maxTokens,
		})
		if err != nil {
			return "", fmt.Errorf("gemini request: %w", err)
		}
		text := strings.TrimSpace(resp.Text())
		if text == "" {
			return "", errors.New("gemini request: empty content")
		}
		return text, nil
	})
}

// New returns the generator for provider.
func New(ctx context.Context, provider string, cfg Config, opts ...Option) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", ProviderOpenAI:
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, errors.New("llm client: api key required")
		}
		return NewClient(cfg, opts...), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg, opts...)
	default:
		return nil, fmt.Errorf("llm client: unsupported provider %q", provider)
	}
}
