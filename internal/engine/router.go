package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Router manages providers and falls back across them
type Router struct {
	providers       map[string]Provider
	defaultProvider string
	fallbacks       []string
	profile         Profile
	mu              sync.RWMutex
}

// NewRouter creates a router that tries defaultProvider first, then fallbacks in order
func NewRouter(defaultProvider string, fallbacks []string, profile Profile) *Router {
	return &Router{
		providers:       make(map[string]Provider),
		defaultProvider: defaultProvider,
		fallbacks:       fallbacks,
		profile:         profile,
	}
}

// RegisterProvider registers a provider
func (r *Router) RegisterProvider(provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[provider.Name()] = provider
}

// GetProvider returns a configured provider by name
func (r *Router) GetProvider(name string) (Provider, error) {
	if name == "" {
		name = r.defaultProvider
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider not found: %s", name)
	}

	if !p.IsConfigured() {
		return nil, fmt.Errorf("provider not configured: %s", name)
	}

	return p, nil
}

// DefaultProvider returns the default provider name
func (r *Router) DefaultProvider() string {
	return r.defaultProvider
}

// ProviderInfo contains information about a provider
type ProviderInfo struct {
	Name       string   `json:"name"`
	Models     []string `json:"models"`
	Default    bool     `json:"default"`
	Configured bool     `json:"configured"`
}

// GetProvidersInfo returns information about all providers in routing order
func (r *Router) GetProvidersInfo() []ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var infos []ProviderInfo
	for _, name := range r.chain() {
		p, ok := r.providers[name]
		if !ok {
			continue
		}
		infos = append(infos, ProviderInfo{
			Name:       name,
			Models:     p.AvailableModels(),
			Default:    name == r.defaultProvider,
			Configured: p.IsConfigured(),
		})
	}
	return infos
}

func (r *Router) chain() []string {
	seen := map[string]bool{}
	var names []string
	for _, name := range append([]string{r.defaultProvider}, r.fallbacks...) {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// Analyze sends the request to the first configured provider that answers.
// Providers are tried in routing order until one succeeds or ctx is done.
func (r *Router) Analyze(ctx context.Context, req Request) Result {
	prompt := BuildPrompt(r.profile, req)

	r.mu.RLock()
	names := r.chain()
	r.mu.RUnlock()

	var failures []string
	for _, name := range names {
		p, err := r.GetProvider(name)
		if err != nil {
			failures = append(failures, err.Error())
			continue
		}

		resp, err := p.Generate(ctx, prompt, "")
		if err == nil && strings.TrimSpace(resp.Content) == "" {
			err = fmt.Errorf("empty response from %s", name)
		}
		if err != nil {
			log.Warn().Err(err).Str("provider", name).Msg("Analysis provider failed")
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		log.Info().
			Str("provider", name).
			Str("model", resp.Model).
			Int("tokens", resp.TokensUsed).
			Int64("latency_ms", resp.LatencyMs).
			Msg("Analysis generated")

		return Result{
			Success:   true,
			Content:   resp.Content,
			ModelUsed: name + "/" + resp.Model,
		}
	}

	if ctx.Err() != nil {
		return Result{Error: fmt.Sprintf("analysis timed out: %v", ctx.Err())}
	}
	if len(failures) == 0 {
		return Result{Error: "no analysis provider is configured"}
	}
	return Result{Error: "analysis failed: " + strings.Join(failures, "; ")}
}
