// Package publisher validates a post and submits it.
package publisher

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mikequentel/mindfulpost/internal/logctx"
	"github.com/mikequentel/mindfulpost/internal/tweettext"
	"github.com/mikequentel/mindfulpost/internal/xapi"
)

// Poster creates one post and returns its id.
type Poster interface {
	CreatePost(ctx context.Context, text string) (string, error)
}

type PostResult struct {
	ID   string
	Text string
}

type Publisher struct {
	poster Poster
	creds  xapi.Credentials
	log    *zap.Logger
}

func New(poster Poster, creds xapi.Credentials, log *zap.Logger) *Publisher {
	return &Publisher{poster: poster, creds: creds, log: log}
}

// Publish submits text once and waits for the answer. Failures come back as
// *PublishError after they have been logged with remediation hints.
func (p *Publisher) Publish(ctx context.Context, text string) (*PostResult, error) {
	log := logctx.From(ctx, p.log)

	if n := tweettext.Length(text); n > tweettext.MaxLength {
		log.Warn(fmt.Sprintf("⚠️ Tweet too long (%d characters). Truncating...", n))
		text, _ = tweettext.Truncate(text)
	}

	log.Info(fmt.Sprintf("📝 Tweet length: %d/%d characters", tweettext.Length(text), tweettext.MaxLength))
	log.Info("Attempting to tweet: " + text)
	logCredentials(log, p.creds)

	id, err := p.poster.CreatePost(ctx, text)
	if err != nil {
		pe := classify(err)
		log.Error("Error sending tweet", zap.Error(err), zap.String("kind", string(pe.Kind)))
		detail := pe.Detail
		if detail == "" {
			detail = err.Error()
		}
		log.Error("Error details: " + detail)
		for _, line := range Remediation(pe.Kind) {
			log.Info(line)
		}
		return nil, pe
	}

	log.Info("Tweet sent successfully!", zap.String("id", id))
	return &PostResult{ID: id, Text: text}, nil
}

func logCredentials(log *zap.Logger, creds xapi.Credentials) {
	log.Info("Using credentials:")
	for _, c := range []struct {
		name, val string
	}{
		{"APP_KEY", creds.AppKey},
		{"APP_SECRET", creds.AppSecret},
		{"ACCESS_TOKEN", creds.AccessToken},
		{"ACCESS_SECRET", creds.AccessSecret},
	} {
		log.Info(fmt.Sprintf("- %s: %s", c.name, presence(c.val)))
	}
}

func presence(v string) string {
	if v != "" {
		return "✓ Set"
	}
	return "✗ Missing"
}
