// Package main implements the lexisum CLI: extractive summaries from files or
// stdin, and an HTTP server exposing the same operations.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fyrsmithlabs/lexisum/internal/config"
	"github.com/fyrsmithlabs/lexisum/internal/embeddings"
	"github.com/fyrsmithlabs/lexisum/internal/logging"
	"github.com/fyrsmithlabs/lexisum/internal/summarizer"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version information (set via ldflags during build)
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cli holds the persistent flags shared by every subcommand.
type cli struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "lexisum",
		Short: "Extractive text summarization",
		Long: `lexisum scores every sentence of a document with several signals
(boundary probabilities, TextRank centrality, TF-IDF or embedding similarity
to the document centroid, and position) and keeps the highest weighted ones.

Configuration is read from ~/.config/lexisum/config.yaml and LEXISUM_*
environment variables.`,
		Version:      version,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/lexisum/config.yaml)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level override (trace, debug, info, warn, error)")

	root.AddCommand(newSummarizeCmd(c))
	root.AddCommand(newWeightsCmd(c))
	root.AddCommand(newServeCmd(c))
	root.AddCommand(newInitCmd())

	return root
}

// load reads the layered configuration and applies flag overrides.
func (c *cli) load() (*config.Config, error) {
	cfg, err := config.LoadWithFile(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}
	return cfg, nil
}

// newLogger builds a logger writing to w. Summaries own stdout, so commands
// pass stderr here.
func newLogger(cfg *config.Config, w io.Writer) (*logging.Logger, error) {
	logCfg, err := logging.FromAppConfig(cfg.Logging)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logCfg, w, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// newSummarizer builds a summarizer from the loaded configuration.
func newSummarizer(cfg *config.Config, logger *logging.Logger) (*summarizer.Summarizer, error) {
	sc := summarizer.FromAppConfig(cfg.Summarizer)
	return summarizer.New(sc,
		summarizer.WithLogger(logger.Zap()),
		summarizer.WithEmbeddingProviderConfig(
			embeddings.ProviderConfigFrom(cfg.Embeddings, sc.EmbeddingModelName, logger.Zap()),
		),
	)
}

// runContext tags a single CLI invocation with a run id and stores a logger
// naming the command, so every line of the run can be correlated.
func runContext(cmd *cobra.Command, logger *logging.Logger) context.Context {
	ctx := logging.WithRequestID(cmd.Context(), uuid.NewString())
	return logging.WithLogger(ctx, logger.With(zap.String("command", cmd.Name())))
}
