package advisory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spec-kit/task-tracker/internal/config"
)

// GeminiAdvisor completes prompts with Google's Gemini API.
type GeminiAdvisor struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewGeminiAdvisor builds a client for the configured model.
func NewGeminiAdvisor(ctx context.Context, cfg config.AdvisoryConfig, logger *zap.Logger) (*GeminiAdvisor, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini api key is empty", ErrUnavailable)
	}
	if cfg.Model == "" {
		return nil, errors.New("advisory: model name is empty")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("advisory: create gemini client: %w", err)
	}
	return &GeminiAdvisor{client: client, model: cfg.Model, logger: logger.Named("gemini")}, nil
}

// New returns a Gemini advisor when a key is configured and Disabled otherwise.
func New(ctx context.Context, cfg config.AdvisoryConfig, logger *zap.Logger) Advisor {
	if cfg.GeminiAPIKey == "" {
		logger.Info("GEMINI_API_KEY not provided; AI features use fallbacks")
		return Disabled{}
	}
	adv, err := NewGeminiAdvisor(ctx, cfg, logger)
	if err != nil {
		logger.Warn("gemini advisor unavailable", zap.Error(err))
		return Disabled{}
	}
	return adv
}

func (g *GeminiAdvisor) Provider() string { return "gemini" }
func (g *GeminiAdvisor) Model() string    { return g.model }

// Complete sends one prompt and concatenates the text parts of the first candidate.
func (g *GeminiAdvisor) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}
	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", ErrBlocked
	}
	if candidate.Content == nil {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	g.logger.Debug("gemini completion", zap.Int("prompt_len", len(prompt)), zap.Int("response_len", len(text)))
	return text, nil
}
