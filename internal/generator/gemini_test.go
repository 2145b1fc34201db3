package generator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func newTestGemini(t *testing.T, h http.HandlerFunc) *Gemini {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL + "/"},
	})
	require.NoError(t, err)
	return &Gemini{client: client}
}

func TestGemini_GenerateText(t *testing.T) {
	var gotPath string
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Keep going. #Growth #Habits"}]}}]}`))
	})

	text, err := g.GenerateText(context.Background(), DefaultModel, "write a post")
	require.NoError(t, err)
	assert.Equal(t, "Keep going. #Growth #Habits", text)
	assert.True(t, strings.HasSuffix(gotPath, DefaultModel+":generateContent"), gotPath)
}

func TestGemini_GenerateText_Error(t *testing.T) {
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`))
	})

	_, err := g.GenerateText(context.Background(), DefaultModel, "write a post")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GenAI generate failed")
}

func TestNewGemini_RequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "")
	assert.Error(t, err)
}
