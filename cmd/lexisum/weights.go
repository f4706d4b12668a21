package main

import (
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/fyrsmithlabs/lexisum/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type weightsFlags struct {
	probsPath string
	lines     bool
	asJSON    bool
}

func newWeightsCmd(c *cli) *cobra.Command {
	f := &weightsFlags{}

	cmd := &cobra.Command{
		Use:   "weights [file|-]",
		Short: "Print the combined weight of every sentence",
		Long: `Print the combined weight of every sentence of a document, one row per
sentence. With --json the per-signal components and warnings are included.

Examples:
  lexisum weights article.txt
  lexisum weights --lines --probs probs.txt --json sentences.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWeights(cmd, c, f, args)
		},
	}

	cmd.Flags().StringVar(&f.probsPath, "probs", "", "file of per-sentence boundary probabilities")
	cmd.Flags().BoolVar(&f.lines, "lines", false, "treat each input line as one sentence")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print the full result as JSON")

	return cmd
}

func runWeights(cmd *cobra.Command, c *cli, f *weightsFlags, args []string) error {
	cfg, err := c.load()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	text, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	probs, err := readProbs(f.probsPath)
	if err != nil {
		return err
	}
	sentences := sentencesOf(text, f.lines)

	svc, err := newSummarizer(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	ctx := runContext(cmd, logger)
	w, err := svc.ComputeSentenceWeights(ctx, sentences, text, probs)
	if err != nil {
		return fmt.Errorf("compute weights failed: %w", err)
	}
	logging.FromContext(ctx).Debug(ctx, "weights computed",
		zap.Int("sentences", len(w.Combined)),
		zap.Strings("components", slices.Sorted(maps.Keys(w.Components))),
	)

	if f.asJSON {
		return writeJSON(cmd.OutOrStdout(), w)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tWEIGHT\tSENTENCE")
	for i, s := range sentences {
		fmt.Fprintf(tw, "%d\t%.4f\t%s\n", i, w.Combined[i], truncate(s, 60))
	}
	return tw.Flush()
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
