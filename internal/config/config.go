// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mikequentel/mindfulpost/internal/xapi"
)

type Config struct {
	Credentials  xapi.Credentials
	GeminiAPIKey string
	GeminiModel  string

	FallbackPolicy  string // abort | template
	PromptSelection string // random | rotating
	Driver          string // oauth1 | gotwi
	ContentLibrary  string // empty = built-in

	DryRun         bool
	RequestTimeout time.Duration // 0 = wait forever
	LogLevel       string
}

// Load reads envFile (if it exists) and then the process environment, which
// wins. Missing credentials are not an error here; the publisher reports them.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("FALLBACK_POLICY", "abort")
	v.SetDefault("PROMPT_SELECTION", "random")
	v.SetDefault("X_DRIVER", "oauth1")
	v.SetDefault("REQUEST_TIMEOUT", "0s")
	v.SetDefault("LOG_LEVEL", "info")

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
	}
	v.AutomaticEnv()

	cfg := &Config{
		Credentials: xapi.Credentials{
			AppKey:       firstOf(v, "APP_KEY", "X_CONSUMER_KEY"),
			AppSecret:    firstOf(v, "APP_SECRET", "X_CONSUMER_SECRET"),
			AccessToken:  firstOf(v, "ACCESS_TOKEN", "X_ACCESS_TOKEN"),
			AccessSecret: firstOf(v, "ACCESS_SECRET", "X_ACCESS_SECRET"),
		},
		GeminiAPIKey:    v.GetString("GEMINI_API_KEY"),
		GeminiModel:     v.GetString("GEMINI_MODEL"),
		FallbackPolicy:  v.GetString("FALLBACK_POLICY"),
		PromptSelection: v.GetString("PROMPT_SELECTION"),
		Driver:          v.GetString("X_DRIVER"),
		ContentLibrary:  v.GetString("CONTENT_LIBRARY"),
		DryRun:          v.GetString("DRY_RUN") == "1" || v.GetBool("DRY_RUN"),
		LogLevel:        v.GetString("LOG_LEVEL"),
	}
	timeoutErr := cfg.parseTimeout(v.GetString("REQUEST_TIMEOUT"))
	if err := errors.Join(timeoutErr, cfg.validate()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseTimeout rejects values viper's cast would quietly turn into 0.
func (c *Config) parseTimeout(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("REQUEST_TIMEOUT must be a duration such as 90s, got %q", raw)
	}
	c.RequestTimeout = d
	return nil
}

func (c *Config) validate() error {
	var errs []error
	if c.FallbackPolicy != "abort" && c.FallbackPolicy != "template" {
		errs = append(errs, fmt.Errorf("FALLBACK_POLICY must be abort or template, got %q", c.FallbackPolicy))
	}
	if c.PromptSelection != "random" && c.PromptSelection != "rotating" {
		errs = append(errs, fmt.Errorf("PROMPT_SELECTION must be random or rotating, got %q", c.PromptSelection))
	}
	if c.Driver != "oauth1" && c.Driver != "gotwi" {
		errs = append(errs, fmt.Errorf("X_DRIVER must be oauth1 or gotwi, got %q", c.Driver))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT must not be negative, got %s", c.RequestTimeout))
	}
	return errors.Join(errs...)
}

func firstOf(v *viper.Viper, keys ...string) string {
	for _, k := range keys {
		if s := v.GetString(k); s != "" {
			return s
		}
	}
	return ""
}
