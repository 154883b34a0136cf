package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Rrens/health-insights/internal/engine"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Provider implements engine.Provider for OpenAI and for services speaking
// the same chat completions API
type Provider struct {
	name         string
	apiKey       string
	defaultModel string
	models       []string
	client       *http.Client
	baseURL      string
}

// NewProvider creates a new OpenAI provider. An empty baseURL targets api.openai.com.
func NewProvider(apiKey, defaultModel, baseURL string) *Provider {
	if defaultModel == "" {
		defaultModel = "gpt-4o-mini"
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	// long-context models only; a full panel report easily runs to several pages
	return NewCompatible("openai", apiKey, defaultModel, baseURL, []string{
		"gpt-4o",
		"gpt-4o-mini",
		"gpt-4.1",
		"gpt-4.1-mini",
	})
}

// NewCompatible creates a provider for another chat-completions service
func NewCompatible(name, apiKey, defaultModel, baseURL string, models []string) *Provider {
	return &Provider{
		name:         name,
		apiKey:       apiKey,
		defaultModel: defaultModel,
		models:       models,
		client:       &http.Client{Timeout: 120 * time.Second},
		baseURL:      strings.TrimRight(baseURL, "/"),
	}
}

func (p *Provider) Name() string {
	return p.name
}

func (p *Provider) AvailableModels() []string {
	return p.models
}

func (p *Provider) DefaultModel() string {
	return p.defaultModel
}

func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Generate asks for an interpretation of the report in prompt.User
func (p *Provider) Generate(ctx context.Context, prompt engine.Prompt, model string) (*engine.Response, error) {
	if model == "" {
		model = p.defaultModel
	}

	req := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
		Temperature: engine.AnalysisTemperature,
		MaxTokens:   engine.MaxAnalysisTokens,
	}
	header := http.Header{"Authorization": {"Bearer " + p.apiKey}}

	start := time.Now()
	var resp chatResponse
	if err := engine.PostJSON(ctx, p.client, p.name, p.baseURL+"/chat/completions", header, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s returned no choices", p.name)
	}

	return &engine.Response{
		Content:    resp.Choices[0].Message.Content,
		Model:      model,
		TokensUsed: resp.Usage.TotalTokens,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}
