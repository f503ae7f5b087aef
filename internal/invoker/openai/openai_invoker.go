package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"ogarx/internal/config"
	"ogarx/internal/domain"
	"ogarx/internal/invoker"
	"ogarx/internal/port"
)

const (
	defaultModel     = goopenai.GPT4o
	defaultMaxTokens = 2000
)

func init() {
	invoker.RegisterProvider("openai", func(cfg *config.ModelConfig) (port.ModelInvoker, error) {
		return NewInvoker(cfg)
	})
}

// Invoker implements port.ModelInvoker using the OpenAI Chat Completions API.
type Invoker struct {
	client    *goopenai.Client
	model     string
	maxTokens int
}

// NewInvoker creates an OpenAI-backed ModelInvoker. cfg.BaseURL points it
// at any compatible endpoint.
func NewInvoker(cfg *config.ModelConfig) (*Invoker, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: time.Duration(cfg.TimeoutSecs) * time.Second}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Invoker{
		client:    goopenai.NewClientWithConfig(clientConfig),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

func (p *Invoker) Name() string {
	return "openai"
}

func (p *Invoker) Invoke(ctx context.Context, page domain.PageImage, prompt string) (domain.ModelReply, error) {
	encoded, err := invoker.EncodePNG(page.Image)
	if err != nil {
		return domain.ModelReply{}, err
	}

	req := goopenai.ChatCompletionRequest{
		Model: p.model,
		Messages: []goopenai.ChatCompletionMessage{
			{
				Role: goopenai.ChatMessageRoleUser,
				MultiContent: []goopenai.ChatMessagePart{
					{
						Type: goopenai.ChatMessagePartTypeText,
						Text: prompt,
					},
					{
						Type: goopenai.ChatMessagePartTypeImageURL,
						ImageURL: &goopenai.ChatMessageImageURL{
							URL: invoker.DataURI(encoded),
						},
					},
				},
			},
		},
		MaxTokens: p.maxTokens,
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		if status := statusCode(err); status == http.StatusTooManyRequests {
			return domain.ModelReply{}, invoker.NewRateLimitError("openai", err, 0)
		}
		return domain.ModelReply{}, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return domain.ModelReply{}, fmt.Errorf("no response from OpenAI")
	}

	model := resp.Model
	if model == "" {
		model = p.model
	}
	return domain.ModelReply{Text: resp.Choices[0].Message.Content, Model: model}, nil
}

func statusCode(err error) int {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
