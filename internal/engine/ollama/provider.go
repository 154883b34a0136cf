package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Rrens/health-insights/internal/engine"
)

// Local models read long reports slowly, so generation gets more room than
// the hosted providers.
const (
	clientTimeout = 300 * time.Second
	numPredict    = 2 * engine.MaxAnalysisTokens
)

// Provider implements engine.Provider for a local Ollama server
type Provider struct {
	host         string
	defaultModel string
	client       *http.Client
}

// NewProvider creates a new Ollama provider
func NewProvider(host, defaultModel string) *Provider {
	if defaultModel == "" {
		defaultModel = "llama3"
	}
	return &Provider{
		host:         strings.TrimRight(host, "/"),
		defaultModel: defaultModel,
		client:       &http.Client{Timeout: clientTimeout},
	}
}

func (p *Provider) Name() string {
	return "ollama"
}

// AvailableModels lists general models plus meditron, which is tuned on
// clinical text
func (p *Provider) AvailableModels() []string {
	return []string{
		"llama3",
		"llama3.1",
		"meditron",
		"mistral",
		"qwen2",
	}
}

func (p *Provider) DefaultModel() string {
	return p.defaultModel
}

// IsConfigured checks if a host is set
func (p *Provider) IsConfigured() bool {
	return p.host != ""
}

type generateRequest struct {
	Model   string          `json:"model"`
	System  string          `json:"system,omitempty"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response  string `json:"response"`
	Done      bool   `json:"done"`
	EvalCount int    `json:"eval_count"`
}

// Generate runs a single non-streaming generation
func (p *Provider) Generate(ctx context.Context, prompt engine.Prompt, model string) (*engine.Response, error) {
	if model == "" {
		model = p.defaultModel
	}

	req := generateRequest{
		Model:  model,
		System: prompt.System,
		Prompt: prompt.User,
		Options: generateOptions{
			Temperature: engine.AnalysisTemperature,
			NumPredict:  numPredict,
		},
	}

	start := time.Now()
	var resp generateResponse
	if err := engine.PostJSON(ctx, p.client, p.Name(), p.host+"/api/generate", nil, req, &resp); err != nil {
		return nil, err
	}

	return &engine.Response{
		Content:    resp.Response,
		Model:      model,
		TokensUsed: resp.EvalCount,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}
