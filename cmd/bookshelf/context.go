package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"bookshelf/internal/catalog"
	"bookshelf/internal/config"
	"bookshelf/internal/engine"
	"bookshelf/internal/logging"
	"bookshelf/internal/metrics"
)

type globalFlags struct {
	config    string
	logLevel  string
	logFormat string
	metrics   bool
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error

	engineOnce sync.Once
	engine     *engine.Engine
	engineErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		path := strings.TrimSpace(c.flags.config)
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(cmd *cobra.Command) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	level := cfg.Logging.Level
	if v := strings.TrimSpace(c.flags.logLevel); v != "" {
		level = v
	}
	format := cfg.Logging.Format
	if v := strings.TrimSpace(c.flags.logFormat); v != "" {
		format = v
	}
	return logging.New(logging.Options{Level: level, Format: format, Writer: cmd.ErrOrStderr()})
}

func (c *commandContext) ensureEngine(cmd *cobra.Command) (*engine.Engine, error) {
	c.engineOnce.Do(func() {
		logger, err := c.logger(cmd)
		if err != nil {
			c.engineErr = err
			return
		}
		c.engine, c.engineErr = engine.New(c.config, logger)
	})
	return c.engine, c.engineErr
}

// withEngine runs fn against the engine and dumps metrics afterwards when
// requested, including after failures.
func (c *commandContext) withEngine(cmd *cobra.Command, fn func(*engine.Engine) error) error {
	eng, err := c.ensureEngine(cmd)
	if err != nil {
		return err
	}
	runErr := fn(eng)
	if c.flags.metrics {
		if err := metrics.WriteText(cmd.ErrOrStderr(), eng.Gatherer()); err != nil && runErr == nil {
			runErr = fmt.Errorf("write metrics: %w", err)
		}
	}
	return runErr
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func domainFlag(cmd *cobra.Command, value *string) {
	cmd.Flags().StringVarP(value, "domain", "d", "", "Item domain (book, movie, tv, podcast, article)")
	_ = cmd.MarkFlagRequired("domain")
}

func parseDomain(value string) (catalog.Domain, error) {
	domain, err := catalog.ParseDomain(value)
	if err != nil {
		return "", fmt.Errorf("invalid --domain: %w", err)
	}
	return domain, nil
}
