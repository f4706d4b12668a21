package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fyrsmithlabs/lexisum/internal/logging"
	"github.com/fyrsmithlabs/lexisum/internal/summarizer"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type summarizeFlags struct {
	topK        int
	compression float64
	keepOrder   bool
	probsPath   string
	lines       bool
	asJSON      bool
}

func newSummarizeCmd(c *cli) *cobra.Command {
	f := &summarizeFlags{}

	cmd := &cobra.Command{
		Use:   "summarize [file|-]",
		Short: "Summarize a document from a file or stdin",
		Long: `Summarize a document by keeping its highest weighted sentences.

Without --top-k or --compression, 30% of the sentences are kept (at least two).
--top-k takes precedence over --compression.

Examples:
  # Keep three sentences
  lexisum summarize --top-k 3 article.txt

  # Keep a fifth of a piped document
  cat article.txt | lexisum summarize --compression 0.2 -

  # Pre-split input with boundary probabilities, full JSON result
  lexisum summarize --lines --probs probs.txt --json sentences.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummarize(cmd, c, f, args)
		},
	}

	cmd.Flags().IntVarP(&f.topK, "top-k", "k", 0, "number of sentences to keep")
	cmd.Flags().Float64VarP(&f.compression, "compression", "r", 0, "fraction of sentences to keep, in (0, 1]")
	cmd.Flags().BoolVar(&f.keepOrder, "keep-order", true, "keep the summary in document order")
	cmd.Flags().StringVar(&f.probsPath, "probs", "", "file of per-sentence boundary probabilities")
	cmd.Flags().BoolVar(&f.lines, "lines", false, "treat each input line as one sentence")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print the full result as JSON")

	return cmd
}

func runSummarize(cmd *cobra.Command, c *cli, f *summarizeFlags, args []string) error {
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

	req := summarizer.Request{
		Sentences:     sentencesOf(text, f.lines),
		OriginalText:  text,
		BoundaryProbs: probs,
		PreserveOrder: &f.keepOrder,
	}
	if cmd.Flags().Changed("top-k") {
		req.TopK = &f.topK
	}
	if cmd.Flags().Changed("compression") {
		req.Compression = &f.compression
	}

	svc, err := newSummarizer(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	ctx := runContext(cmd, logger)
	res, err := svc.Summarize(ctx, req)
	if err != nil {
		if errors.Is(err, summarizer.ErrInvalidSelection) {
			return fmt.Errorf("invalid selection: %w", err)
		}
		return fmt.Errorf("summarize failed: %w", err)
	}
	logging.FromContext(ctx).Debug(ctx, "summary produced",
		zap.Int("sentences", len(res.Weights)),
		zap.Int("selected", len(res.Indices)),
		zap.String("similarity", svc.Mode()),
		zap.Int("warnings", len(res.Warnings)),
	)

	out := cmd.OutOrStdout()
	if f.asJSON {
		return writeJSON(out, res)
	}
	for _, s := range res.Sentences {
		if _, err := fmt.Fprintln(out, s); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
