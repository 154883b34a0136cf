// Package engine dispatches lab reports to text-generation providers and
// returns their free-text analysis.
package engine

import "context"

// Request carries the patient context and report text for one analysis
type Request struct {
	PatientName string
	Age         int
	Gender      string
	ReportText  string
}

// Prompt is a rendered system and user message pair
type Prompt struct {
	System string
	User   string
}

// Response contains a provider's generation result
type Response struct {
	Content    string
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Result is the engine outcome handed to the orchestrator.
// When Success is false, Error holds the reason and Content is empty.
type Result struct {
	Success   bool   `json:"success"`
	Content   string `json:"content,omitempty"`
	ModelUsed string `json:"model_used,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Provider defines the interface for text-generation providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Generate runs the prompt against model, or the default model when empty
	Generate(ctx context.Context, prompt Prompt, model string) (*Response, error)
}

// Analyzer is what the orchestrator calls
type Analyzer interface {
	Analyze(ctx context.Context, req Request) Result
}
