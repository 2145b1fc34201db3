package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mikequentel/mindfulpost/internal/config"
	"github.com/mikequentel/mindfulpost/internal/content"
	"github.com/mikequentel/mindfulpost/internal/generator"
	"github.com/mikequentel/mindfulpost/internal/publisher"
	"github.com/mikequentel/mindfulpost/internal/runner"
	"github.com/mikequentel/mindfulpost/internal/xapi"
)

var (
	envFile string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "poster",
	Short: "Post one AI-generated message to X",
	Long: `Asks Gemini for a short motivational post and publishes it to X.

Run it once per post from cron or any other scheduler. Credentials come from
the environment or a .env file: APP_KEY, APP_SECRET, ACCESS_TOKEN,
ACCESS_SECRET and GEMINI_API_KEY. Set DRY_RUN=1 to print instead of posting.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(envFile)
		if err != nil {
			return err
		}
		logger, err = newLogger(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.DryRun {
			return preview(cmd.Context())
		}
		return post(cmd.Context())
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Generate the next post and print it without posting",
	RunE: func(cmd *cobra.Command, args []string) error {
		return preview(cmd.Context())
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the X credentials against account/verify_credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := withTimeout(cmd.Context())
		defer cancel()
		name, err := xapi.VerifyCredentials(ctx, signedClient(ctx, cfg))
		if err != nil {
			return err
		}
		fmt.Printf("Credentials OK: @%s\n", name)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file read before the environment")
	rootCmd.AddCommand(previewCmd, verifyCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// post exits cleanly whatever the run outcome; failures are in the log.
func post(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	r, err := buildRunner(ctx, cfg, logger)
	if err != nil {
		return err
	}
	out := r.Run(ctx)
	logger.Debug("run finished", zap.String("run_id", out.RunID), zap.String("status", string(out.Status)))
	return nil
}

func preview(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	r, err := buildRunner(ctx, cfg, logger)
	if err != nil {
		return err
	}
	out := r.Preview(ctx)
	if out.Status != runner.StatusPreviewed {
		fmt.Println("DRY RUN: nothing to post")
		return nil
	}
	fmt.Println("DRY RUN ✅ (no post sent)")
	fmt.Printf("Will post (%s):\n---\n%s\n---\n", out.Source, out.Text)
	return nil
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if cfg.RequestTimeout > 0 {
		return context.WithTimeout(ctx, cfg.RequestTimeout)
	}
	return context.WithCancel(ctx)
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.Sampling = nil
	zc.DisableStacktrace = true
	return zc.Build()
}

func buildRunner(ctx context.Context, cfg *config.Config, log *zap.Logger) (*runner.Runner, error) {
	lib, err := content.Load(cfg.ContentLibrary)
	if err != nil {
		return nil, err
	}
	policy, err := runner.ParseFallbackPolicy(cfg.FallbackPolicy)
	if err != nil {
		return nil, err
	}
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	selector, err := generator.NewSelector(cfg.PromptSelection, rnd)
	if err != nil {
		return nil, err
	}

	gen := generator.New(newTextModel(ctx, cfg), cfg.GeminiModel, lib.Prompts, selector, log)
	pub := publisher.New(newPoster(ctx, cfg), cfg.Credentials, log)
	return runner.New(gen, lib, rnd, pub, policy, log), nil
}

// newTextModel never fails; a client that cannot be built turns into a
// model whose every call fails, so the run follows the generation-failure path.
func newTextModel(ctx context.Context, cfg *config.Config) generator.TextModel {
	g, err := generator.NewGemini(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return unavailableModel{err: err}
	}
	return g
}

func newPoster(ctx context.Context, cfg *config.Config) publisher.Poster {
	if cfg.Driver == "gotwi" {
		var hc *http.Client
		if cfg.RequestTimeout > 0 {
			hc = &http.Client{Timeout: cfg.RequestTimeout}
		}
		c, err := xapi.NewGotwiClient(cfg.Credentials, hc)
		if err != nil {
			return unavailablePoster{err: err}
		}
		return c
	}
	return xapi.NewClient(signedClient(ctx, cfg))
}

// signedClient carries REQUEST_TIMEOUT itself, since go-twitter never sees
// the request context.
func signedClient(ctx context.Context, cfg *config.Config) *http.Client {
	hc := xapi.NewHTTPClient(ctx, cfg.Credentials)
	if cfg.RequestTimeout > 0 {
		hc.Timeout = cfg.RequestTimeout
	}
	return hc
}

type unavailableModel struct{ err error }

func (u unavailableModel) GenerateText(context.Context, string, string) (string, error) {
	return "", u.err
}

type unavailablePoster struct{ err error }

func (u unavailablePoster) CreatePost(context.Context, string) (string, error) {
	return "", u.err
}
