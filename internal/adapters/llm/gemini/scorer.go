// Package gemini scores postings with the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/okian/autoapply/internal/adapters/llm"
	"github.com/okian/autoapply/internal/domain/scoring"
)

const defaultModel = "gemini-2.5-flash"

type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Scorer implements scoring.Scorer on top of a Gemini model.
type Scorer struct {
	models generator
	model  string
}

// New creates a Scorer for the Gemini API backend.
func New(ctx context.Context, apiKey, model string) (*Scorer, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	return &Scorer{models: client.Models, model: model}, nil
}

// Name implements scoring.Named.
func (s *Scorer) Name() string { return "gemini" }

// Score implements scoring.Scorer.
func (s *Scorer) Score(ctx context.Context, in scoring.Input) (scoring.Result, error) {
	var temperature float32
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      &temperature,
	}
	resp, err := s.models.GenerateContent(ctx, s.model, genai.Text(llm.Prompt(in)), cfg)
	if err != nil {
		return scoring.Result{}, fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			builder.WriteString(part.Text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return scoring.Result{}, fmt.Errorf("%w: gemini returned empty response", scoring.ErrInvalidResult)
	}
	return llm.ParseResult(output)
}
