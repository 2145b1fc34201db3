// Package generator asks a generative text model for a post and checks that
// the answer fits.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mikequentel/mindfulpost/internal/logctx"
	"github.com/mikequentel/mindfulpost/internal/tweettext"
)

const DefaultModel = "gemini-1.5-flash"

// ErrGeneration matches every *GenerationError via errors.Is.
var ErrGeneration = errors.New("generation failed")

type Reason string

const (
	ReasonUpstream Reason = "upstream"
	ReasonEmpty    Reason = "empty"
	ReasonTooShort Reason = "too_short"
)

type GenerationError struct {
	Reason Reason
	Prompt string
	Err    error
}

func (e *GenerationError) Error() string {
	switch e.Reason {
	case ReasonUpstream:
		return fmt.Sprintf("generate content: %v", e.Err)
	case ReasonEmpty:
		return "generated text is empty"
	default:
		return "generated text too short"
	}
}

func (e *GenerationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrGeneration}
	}
	return []error{ErrGeneration, e.Err}
}

// TextModel is a single-shot text completion API.
type TextModel interface {
	GenerateText(ctx context.Context, model, prompt string) (string, error)
}

type Generator struct {
	model    TextModel
	modelID  string
	prompts  []string
	selector PromptSelector
	log      *zap.Logger
}

func New(model TextModel, modelID string, prompts []string, selector PromptSelector, log *zap.Logger) *Generator {
	if modelID == "" {
		modelID = DefaultModel
	}
	return &Generator{
		model:    model,
		modelID:  modelID,
		prompts:  prompts,
		selector: selector,
		log:      log,
	}
}

// Generate makes exactly one upstream call. It truncates over-long answers
// and rejects empty or short ones; it never retries or falls back.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	log := logctx.From(ctx, g.log)
	prompt := g.prompts[g.selector.Select(len(g.prompts))]
	log.Debug("selected prompt", zap.String("prompt", prompt))

	text, err := g.model.GenerateText(ctx, g.modelID, prompt)
	if err != nil {
		return "", &GenerationError{Reason: ReasonUpstream, Prompt: prompt, Err: err}
	}
	text = strings.TrimSpace(text)

	if n := tweettext.Length(text); n > tweettext.MaxLength {
		log.Warn(fmt.Sprintf("⚠️ Gemini generated %d characters. Truncating...", n))
		text, _ = tweettext.Truncate(text)
	}

	if text == "" {
		return "", &GenerationError{Reason: ReasonEmpty, Prompt: prompt}
	}
	if tweettext.Length(text) < tweettext.MinGeneratedLength {
		return "", &GenerationError{Reason: ReasonTooShort, Prompt: prompt}
	}

	log.Info(fmt.Sprintf("📝 AI generated text: %d/%d characters", tweettext.Length(text), tweettext.MaxLength))
	return text, nil
}
