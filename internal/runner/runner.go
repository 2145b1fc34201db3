// Package runner drives one post attempt: generate, optionally fall back to
// a template, publish.
package runner

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mikequentel/mindfulpost/internal/content"
	"github.com/mikequentel/mindfulpost/internal/logctx"
	"github.com/mikequentel/mindfulpost/internal/publisher"
)

type FallbackPolicy string

const (
	// FallbackAbort skips the post when generation fails, so the feed never
	// repeats a canned template.
	FallbackAbort    FallbackPolicy = "abort"
	FallbackTemplate FallbackPolicy = "template"
)

func ParseFallbackPolicy(s string) (FallbackPolicy, error) {
	switch p := FallbackPolicy(s); p {
	case FallbackAbort, FallbackTemplate:
		return p, nil
	}
	return "", fmt.Errorf("unknown fallback policy %q", s)
}

type State string

const (
	Generating State = "generating"
	Publishing State = "publishing"
	Aborted    State = "aborted"
)

type Status string

const (
	StatusPublished     Status = "published"
	StatusPublishFailed Status = "publish_failed"
	StatusAborted       Status = "aborted"
	StatusPreviewed     Status = "previewed"
)

type Source string

const (
	SourceAI       Source = "ai"
	SourceTemplate Source = "template"
)

// Outcome describes how a run ended. Err holds the handled error, if any;
// it has already been logged.
type Outcome struct {
	RunID  string
	State  State
	Status Status
	Source Source
	Text   string
	Result *publisher.PostResult
	Err    error
}

type Generator interface {
	Generate(ctx context.Context) (string, error)
}

type Publisher interface {
	Publish(ctx context.Context, text string) (*publisher.PostResult, error)
}

type Runner struct {
	gen    Generator
	lib    *content.Library
	rnd    content.Rand
	pub    Publisher
	policy FallbackPolicy
	log    *zap.Logger
}

func New(gen Generator, lib *content.Library, rnd content.Rand, pub Publisher, policy FallbackPolicy, log *zap.Logger) *Runner {
	return &Runner{gen: gen, lib: lib, rnd: rnd, pub: pub, policy: policy, log: log}
}

// Run makes one post attempt. It never fails; every error ends up in the log
// and in Outcome.Err.
func (r *Runner) Run(ctx context.Context) Outcome {
	out, ctx := r.compose(ctx)
	log := logctx.From(ctx, r.log)
	if out.State == Aborted {
		return out
	}

	res, err := r.pub.Publish(ctx, out.Text)
	if err != nil {
		out.Status = StatusPublishFailed
		out.Err = err
		log.Warn("No tweet sent.", zap.Error(err))
		return out
	}
	out.Status = StatusPublished
	out.Result = res
	log.Info("run complete", zap.String("post_id", res.ID), zap.String("source", string(out.Source)))
	return out
}

// Preview produces the text Run would post without posting it.
func (r *Runner) Preview(ctx context.Context) Outcome {
	out, _ := r.compose(ctx)
	if out.State != Aborted {
		out.Status = StatusPreviewed
	}
	return out
}

// compose returns the outcome so far and a context carrying the run-scoped
// logger, which the generator and publisher pick up.
func (r *Runner) compose(ctx context.Context) (Outcome, context.Context) {
	out := Outcome{RunID: uuid.NewString(), State: Generating}
	log := r.log.With(zap.String("run_id", out.RunID))
	ctx = logctx.With(ctx, log)

	text, err := r.gen.Generate(ctx)
	if err == nil {
		log.Info("Generated AI text: " + text)
		out.State, out.Source, out.Text = Publishing, SourceAI, text
		return out, ctx
	}

	log.Error("Error generating AI content", zap.Error(err))
	out.Err = err
	if r.policy != FallbackTemplate {
		log.Error("No tweet sent. Fix Gemini API issues or re-enable fallback if desired.")
		out.State, out.Status = Aborted, StatusAborted
		return out, ctx
	}

	fb := r.lib.SelectFallback(r.rnd)
	log.Info("Using template content instead", zap.String("content_type", fb.ContentType))
	out.State, out.Source, out.Text = Publishing, SourceTemplate, fb.Text
	return out, ctx
}
