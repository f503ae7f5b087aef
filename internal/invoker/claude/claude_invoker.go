package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"ogarx/internal/config"
	"ogarx/internal/domain"
	"ogarx/internal/invoker"
	"ogarx/internal/port"
)

const (
	apiURL           = "https://api.anthropic.com/v1/messages"
	apiVersion       = "2023-06-01"
	defaultModel     = "claude-sonnet-4-5"
	defaultMaxTokens = 4096
)

func init() {
	invoker.RegisterProvider("claude", func(cfg *config.ModelConfig) (port.ModelInvoker, error) {
		return NewInvoker(cfg), nil
	})
}

// Invoker implements port.ModelInvoker using the Anthropic Messages API.
type Invoker struct {
	apiKey    string
	model     string
	maxTokens int
	endpoint  string
	client    *http.Client
}

// NewInvoker creates a Claude-backed ModelInvoker.
func NewInvoker(cfg *config.ModelConfig) *Invoker {
	endpoint := apiURL
	if cfg.BaseURL != "" {
		endpoint = strings.TrimRight(cfg.BaseURL, "/") + "/v1/messages"
	}
	return newInvoker(cfg, endpoint)
}

// NewInvokerWithEndpoint creates an invoker pointing at a custom API endpoint (for testing).
func NewInvokerWithEndpoint(cfg *config.ModelConfig, endpoint string) *Invoker {
	return newInvoker(cfg, endpoint)
}

func newInvoker(cfg *config.ModelConfig, endpoint string) *Invoker {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Invoker{
		apiKey:    cfg.APIKey,
		model:     model,
		maxTokens: maxTokens,
		endpoint:  endpoint,
		client:    &http.Client{Timeout: time.Duration(cfg.TimeoutSecs) * time.Second},
	}
}

func (p *Invoker) Name() string {
	return "claude"
}

func (p *Invoker) Invoke(ctx context.Context, page domain.PageImage, prompt string) (domain.ModelReply, error) {
	encoded, err := invoker.EncodePNG(page.Image)
	if err != nil {
		return domain.ModelReply{}, err
	}

	reqBody := map[string]interface{}{
		"model":      p.model,
		"max_tokens": p.maxTokens,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{
						"type": "text",
						"text": prompt,
					},
					{
						"type": "image",
						"source": map[string]interface{}{
							"type":       "base64",
							"media_type": invoker.PageMediaType,
							"data":       encoded,
						},
					},
				},
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return domain.ModelReply{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return domain.ModelReply{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.ModelReply{}, fmt.Errorf("calling anthropic API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.ModelReply{}, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, invoker.Truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := invoker.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return domain.ModelReply{}, invoker.NewRateLimitError("claude", baseErr, retryAfter)
		}
		return domain.ModelReply{}, baseErr
	}

	return parseResponse(respBody, p.model, page)
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func parseResponse(body []byte, model string, page domain.PageImage) (domain.ModelReply, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.ModelReply{}, fmt.Errorf("unmarshaling response: %w", err)
	}

	for _, block := range resp.Content {
		if block.Type != "text" {
			continue
		}
		if resp.StopReason == "max_tokens" {
			log.Printf("claude.Invoker: reply for %s page %d hit max_tokens and may be incomplete", page.DocumentName, page.Page)
		}
		if resp.Model != "" {
			model = resp.Model
		}
		return domain.ModelReply{Text: block.Text, Model: model}, nil
	}
	return domain.ModelReply{}, fmt.Errorf("empty response from API")
}
