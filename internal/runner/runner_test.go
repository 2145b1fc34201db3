package runner

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mikequentel/mindfulpost/internal/content"
	"github.com/mikequentel/mindfulpost/internal/generator"
	"github.com/mikequentel/mindfulpost/internal/publisher"
	"github.com/mikequentel/mindfulpost/internal/tweettext"
	"github.com/mikequentel/mindfulpost/internal/xapi"
)

func TestMain(m *testing.M) {
	// genai pulls in opencensus, whose stats worker starts in init
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

type stubModel struct{ text string }

func (s stubModel) GenerateText(context.Context, string, string) (string, error) {
	return s.text, nil
}

type fakePoster struct {
	err   error
	texts []string
}

func (f *fakePoster) CreatePost(_ context.Context, text string) (string, error) {
	f.texts = append(f.texts, text)
	if f.err != nil {
		return "", f.err
	}
	return "42", nil
}

type harness struct {
	runner *Runner
	poster *fakePoster
	logs   *observer.ObservedLogs
	lib    *content.Library
}

func newHarness(t *testing.T, modelText string, policy FallbackPolicy, postErr error) *harness {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	lib, err := content.Default()
	require.NoError(t, err)
	rnd := rand.New(rand.NewSource(99))

	gen := generator.New(stubModel{text: modelText}, "", lib.Prompts, generator.RandomSelector{Rand: rnd}, log)
	fp := &fakePoster{err: postErr}
	pub := publisher.New(fp, xapi.Credentials{AppKey: "k"}, log)

	return &harness{
		runner: New(gen, lib, rnd, pub, policy, log),
		poster: fp,
		logs:   logs,
		lib:    lib,
	}
}

func TestRun_ShortAIText(t *testing.T) {
	text := "Stay strong. #Motivation #Growth"
	h := newHarness(t, text, FallbackAbort, nil)

	out := h.runner.Run(context.Background())
	assert.Equal(t, StatusPublished, out.Status)
	assert.Equal(t, Publishing, out.State)
	assert.Equal(t, SourceAI, out.Source)
	assert.NoError(t, out.Err)
	assert.Equal(t, []string{text}, h.poster.texts)
	assert.Equal(t, "42", out.Result.ID)
	assert.NotEmpty(t, out.RunID)
	assert.GreaterOrEqual(t, h.logs.FilterMessageSnippet("32/280").Len(), 1)
}

func TestRun_LongAITextTruncated(t *testing.T) {
	h := newHarness(t, strings.Repeat("w", 310), FallbackAbort, nil)

	out := h.runner.Run(context.Background())
	assert.Equal(t, StatusPublished, out.Status)
	require.Len(t, h.poster.texts, 1)
	assert.Equal(t, strings.Repeat("w", 277)+"...", h.poster.texts[0])
	assert.Equal(t, 280, tweettext.Length(h.poster.texts[0]))
	assert.Equal(t, 1, h.logs.FilterMessageSnippet("Truncating").Len())
}

func TestRun_EmptyAIText_Abort(t *testing.T) {
	h := newHarness(t, "", FallbackAbort, nil)

	out := h.runner.Run(context.Background())
	assert.Equal(t, Aborted, out.State)
	assert.Equal(t, StatusAborted, out.Status)
	assert.ErrorIs(t, out.Err, generator.ErrGeneration)
	assert.Empty(t, h.poster.texts, "no post attempt")
	assert.Equal(t, 1, h.logs.FilterMessageSnippet("No tweet sent").Len())
}

func TestRun_EmptyAIText_Template(t *testing.T) {
	h := newHarness(t, "", FallbackTemplate, nil)

	out := h.runner.Run(context.Background())
	assert.Equal(t, StatusPublished, out.Status)
	assert.Equal(t, SourceTemplate, out.Source)
	require.Len(t, h.poster.texts, 1)
	assert.Equal(t, out.Text, h.poster.texts[0])
	assert.Empty(t, content.Placeholders(out.Text))
	assert.True(t, fromLibrary(h.lib, out.Text), "posted text should come from a template: %q", out.Text)
}

func TestRun_ShortAITextNeverPosted(t *testing.T) {
	h := newHarness(t, "too short", FallbackAbort, nil)
	out := h.runner.Run(context.Background())
	assert.Equal(t, StatusAborted, out.Status)
	assert.Empty(t, h.poster.texts)
}

func TestRun_Publish401(t *testing.T) {
	h := newHarness(t, "Stay strong. #Motivation #Growth", FallbackAbort,
		&xapi.APIError{StatusCode: 401, Endpoint: "POST /2/tweets", Detail: "Unauthorized"})

	out := h.runner.Run(context.Background())
	assert.Equal(t, StatusPublishFailed, out.Status)
	var pe *publisher.PublishError
	require.True(t, errors.As(out.Err, &pe))
	assert.Equal(t, publisher.AuthError, pe.Kind)
	assert.Len(t, h.poster.texts, 1)
	for _, line := range publisher.Remediation(publisher.AuthError) {
		assert.Equal(t, 1, h.logs.FilterMessage(line).Len(), line)
	}
}

func TestRun_RunIDOnEveryLine(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		postErr error
	}{
		{"published", "Stay strong. #Motivation #Growth", nil},
		{"aborted", "", nil},
		{"rejected", "Stay strong. #Motivation #Growth", &xapi.APIError{StatusCode: 401, Endpoint: "POST /2/tweets"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.text, FallbackAbort, tt.postErr)
			out := h.runner.Run(context.Background())

			all := h.logs.All()
			require.NotEmpty(t, all)
			tagged := h.logs.FilterField(zap.String("run_id", out.RunID)).Len()
			assert.Equal(t, len(all), tagged, "every line, generator and publisher included, carries run_id")
		})
	}
}

func TestPreview(t *testing.T) {
	h := newHarness(t, "A calm and steady post. #Peace", FallbackAbort, nil)
	out := h.runner.Preview(context.Background())
	assert.Equal(t, StatusPreviewed, out.Status)
	assert.Equal(t, "A calm and steady post. #Peace", out.Text)
	assert.Empty(t, h.poster.texts)

	h = newHarness(t, "", FallbackAbort, nil)
	out = h.runner.Preview(context.Background())
	assert.Equal(t, StatusAborted, out.Status)
}

func TestParseFallbackPolicy(t *testing.T) {
	p, err := ParseFallbackPolicy("template")
	require.NoError(t, err)
	assert.Equal(t, FallbackTemplate, p)

	_, err = ParseFallbackPolicy("sometimes")
	assert.Error(t, err)
}

// fromLibrary reports whether text is a rendering of some template.
func fromLibrary(lib *content.Library, text string) bool {
	for _, ct := range lib.ContentTypes {
		for _, tpl := range ct.Templates {
			prefix := tpl
			if i := strings.Index(tpl, "{"); i >= 0 {
				prefix = tpl[:i]
			}
			if strings.HasPrefix(text, prefix) {
				return true
			}
		}
	}
	return false
}
