// Package openai scores postings with the OpenAI chat completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared/constant"

	"github.com/okian/autoapply/internal/adapters/llm"
	"github.com/okian/autoapply/internal/domain/scoring"
)

const defaultModel = "gpt-4o-mini"

type completer interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Scorer implements scoring.Scorer on top of a chat completion model.
type Scorer struct {
	completions completer
	model       string
}

// New creates a Scorer. Retries are left to the caller, which falls back to
// the heuristic instead.
func New(apiKey, model string, opts ...option.RequestOption) (*Scorer, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	client := openai.NewClient(opts...)
	return &Scorer{completions: &client.Chat.Completions, model: model}, nil
}

// Name implements scoring.Named.
func (s *Scorer) Name() string { return "openai" }

// Score implements scoring.Scorer.
func (s *Scorer) Score(ctx context.Context, in scoring.Input) (scoring.Result, error) {
	completion, err := s.completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(llm.SystemPrompt),
			openai.UserMessage(llm.UserPrompt(in)),
		},
		Model: openai.ChatModel(s.model),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{
				Type: constant.JSONObject("json_object"),
			},
		},
		Temperature: openai.Float(0),
		MaxTokens:   openai.Int(200),
	})
	if err != nil {
		return scoring.Result{}, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return scoring.Result{}, fmt.Errorf("%w: no choices from openai", scoring.ErrInvalidResult)
	}
	return llm.ParseResult(completion.Choices[0].Message.Content)
}
