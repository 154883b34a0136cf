package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Rrens/health-insights/internal/engine"
)

type fakeProvider struct {
	name       string
	configured bool
	content    string
	err        error
	delay      time.Duration
	calls      int
}

func (f *fakeProvider) Name() string              { return f.name }
func (f *fakeProvider) AvailableModels() []string { return []string{"m1"} }
func (f *fakeProvider) DefaultModel() string      { return "m1" }
func (f *fakeProvider) IsConfigured() bool        { return f.configured }

func (f *fakeProvider) Generate(ctx context.Context, _ engine.Prompt, _ string) (*engine.Response, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &engine.Response{Content: f.content, Model: "m1"}, nil
}

func newRouter(t *testing.T, fallbacks []string, providers ...*fakeProvider) *engine.Router {
	t.Helper()
	profile, _ := engine.LookupProfile("")
	r := engine.NewRouter(providers[0].name, fallbacks, profile)
	for _, p := range providers {
		r.RegisterProvider(p)
	}
	return r
}

func TestRouter_DefaultProvider(t *testing.T) {
	primary := &fakeProvider{name: "gemini", configured: true, content: "**What is good**\nok"}
	r := newRouter(t, nil, primary)

	res := r.Analyze(context.Background(), engine.Request{PatientName: "A"})
	assert.True(t, res.Success)
	assert.Equal(t, "gemini/m1", res.ModelUsed)
	assert.Equal(t, "**What is good**\nok", res.Content)
}

func TestRouter_FallsBack(t *testing.T) {
	primary := &fakeProvider{name: "gemini", configured: true, err: errors.New("quota")}
	unconfigured := &fakeProvider{name: "openai"}
	backup := &fakeProvider{name: "ollama", configured: true, content: "text"}
	r := newRouter(t, []string{"openai", "ollama"}, primary, unconfigured, backup)

	res := r.Analyze(context.Background(), engine.Request{})
	assert.True(t, res.Success)
	assert.Equal(t, "ollama/m1", res.ModelUsed)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, unconfigured.calls)
}

func TestRouter_AllFail(t *testing.T) {
	primary := &fakeProvider{name: "gemini", configured: true, err: errors.New("quota")}
	empty := &fakeProvider{name: "openai", configured: true, content: "  "}
	r := newRouter(t, []string{"openai"}, primary, empty)

	res := r.Analyze(context.Background(), engine.Request{})
	assert.False(t, res.Success)
	assert.Empty(t, res.Content)
	assert.Contains(t, res.Error, "gemini: quota")
	assert.Contains(t, res.Error, "empty response from openai")
}

func TestRouter_NothingConfigured(t *testing.T) {
	r := newRouter(t, nil, &fakeProvider{name: "gemini"})

	res := r.Analyze(context.Background(), engine.Request{})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "provider not configured: gemini")
}

func TestRouter_Timeout(t *testing.T) {
	slow := &fakeProvider{name: "gemini", configured: true, content: "late", delay: time.Second}
	backup := &fakeProvider{name: "ollama", configured: true, content: "text"}
	r := newRouter(t, []string{"ollama"}, slow, backup)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res := r.Analyze(ctx, engine.Request{})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "timed out")
	assert.Equal(t, 0, backup.calls)
}

func TestRouter_GetProvidersInfo(t *testing.T) {
	r := newRouter(t, []string{"openai", "gemini"},
		&fakeProvider{name: "gemini", configured: true},
		&fakeProvider{name: "openai"})

	infos := r.GetProvidersInfo()
	if assert.Len(t, infos, 2) {
		assert.Equal(t, "gemini", infos[0].Name)
		assert.True(t, infos[0].Default)
		assert.Equal(t, "openai", infos[1].Name)
		assert.False(t, infos[1].Configured)
	}
}
