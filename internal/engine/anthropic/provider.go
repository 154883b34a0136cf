package anthropic

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Rrens/health-insights/internal/engine"
)

const apiVersion = "2023-06-01"

// Provider implements engine.Provider for the Anthropic messages API
type Provider struct {
	apiKey       string
	defaultModel string
	client       *http.Client
	baseURL      string
}

// NewProvider creates a new Anthropic provider
func NewProvider(apiKey, defaultModel string) *Provider {
	if defaultModel == "" {
		defaultModel = "claude-3-5-sonnet-20241022"
	}
	return &Provider{
		apiKey:       apiKey,
		defaultModel: defaultModel,
		client:       &http.Client{Timeout: 120 * time.Second},
		baseURL:      "https://api.anthropic.com/v1",
	}
}

// WithBaseURL points the provider at another endpoint
func (p *Provider) WithBaseURL(baseURL string) *Provider {
	p.baseURL = strings.TrimRight(baseURL, "/")
	return p
}

func (p *Provider) Name() string {
	return "anthropic"
}

func (p *Provider) AvailableModels() []string {
	return []string{
		"claude-3-5-sonnet-20241022",
		"claude-3-5-haiku-20241022",
	}
}

func (p *Provider) DefaultModel() string {
	return p.defaultModel
}

func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Generate asks for an interpretation of the report in prompt.User. Text
// blocks of the reply are joined in order.
func (p *Provider) Generate(ctx context.Context, prompt engine.Prompt, model string) (*engine.Response, error) {
	if model == "" {
		model = p.defaultModel
	}

	req := messagesRequest{
		Model:       model,
		MaxTokens:   engine.MaxAnalysisTokens,
		Temperature: engine.AnalysisTemperature,
		System:      prompt.System,
		Messages:    []message{{Role: "user", Content: prompt.User}},
	}
	header := http.Header{
		"X-Api-Key":         {p.apiKey},
		"Anthropic-Version": {apiVersion},
	}

	start := time.Now()
	var resp messagesResponse
	if err := engine.PostJSON(ctx, p.client, p.Name(), p.baseURL+"/messages", header, req, &resp); err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "" || block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("anthropic returned no text (stop reason %q)", resp.StopReason)
	}

	return &engine.Response{
		Content:    text.String(),
		Model:      model,
		TokensUsed: resp.Usage.InputTokens + resp.Usage.OutputTokens,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}
