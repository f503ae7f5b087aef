package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ogarx/internal/config"
	"ogarx/internal/domain"
	"ogarx/internal/invoker"
	"ogarx/internal/port"
)

const (
	apiBaseURL       = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultModel     = "gemini-2.0-flash"
	defaultMaxTokens = 4096
)

func init() {
	invoker.RegisterProvider("gemini", func(cfg *config.ModelConfig) (port.ModelInvoker, error) {
		return NewInvoker(cfg), nil
	})
}

// Invoker implements port.ModelInvoker using Google's Gemini API.
type Invoker struct {
	apiKey    string
	model     string
	maxTokens int
	endpoint  string
	client    *http.Client
}

// NewInvoker creates a Gemini-backed ModelInvoker.
func NewInvoker(cfg *config.ModelConfig) *Invoker {
	return newInvoker(cfg, "")
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
	if endpoint == "" {
		base := apiBaseURL
		if cfg.BaseURL != "" {
			base = strings.TrimRight(cfg.BaseURL, "/")
		}
		endpoint = fmt.Sprintf("%s/%s:generateContent", base, model)
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
	return "gemini"
}

func (p *Invoker) Invoke(ctx context.Context, page domain.PageImage, prompt string) (domain.ModelReply, error) {
	encoded, err := invoker.EncodePNG(page.Image)
	if err != nil {
		return domain.ModelReply{}, err
	}

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]interface{}{
					{
						"text": prompt,
					},
					{
						"inline_data": map[string]interface{}{
							"mime_type": invoker.PageMediaType,
							"data":      encoded,
						},
					},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"maxOutputTokens": p.maxTokens,
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
	req.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.ModelReply{}, fmt.Errorf("calling gemini API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.ModelReply{}, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, invoker.Truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := invoker.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return domain.ModelReply{}, invoker.NewRateLimitError("gemini", baseErr, retryAfter)
		}
		return domain.ModelReply{}, baseErr
	}

	return parseResponse(respBody, p.model)
}

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	ModelVersion string `json:"modelVersion"`
}

func parseResponse(body []byte, model string) (domain.ModelReply, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.ModelReply{}, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return domain.ModelReply{}, fmt.Errorf("empty response from API: no candidates")
	}

	parts := resp.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return domain.ModelReply{}, fmt.Errorf("empty response from API: no parts")
	}

	var text strings.Builder
	for _, part := range parts {
		text.WriteString(part.Text)
	}

	if resp.ModelVersion != "" {
		model = resp.ModelVersion
	}
	return domain.ModelReply{Text: text.String(), Model: model}, nil
}
