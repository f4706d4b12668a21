package main

import (
	"fmt"

	"github.com/fyrsmithlabs/lexisum/internal/embeddings"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var (
		force       bool
		onnxVersion string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Download the ONNX runtime for local embeddings",
		Long: `Download the ONNX runtime library used by the fastembed provider when
summarizer.use_embeddings is set. The library is installed to:
  ~/.config/lexisum/lib/

If the ONNX_PATH environment variable is set, that path takes precedence.

Examples:
  # Download the ONNX runtime
  lexisum init

  # Force re-download even if already installed
  lexisum init --force

  # Pin a different runtime release
  lexisum init --force --onnx-version 1.22.0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, force, onnxVersion)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Force re-download even if ONNX runtime exists")
	cmd.Flags().StringVar(&onnxVersion, "onnx-version", embeddings.DefaultONNXRuntimeVersion, "ONNX runtime release to download")

	return cmd
}

func runInit(cmd *cobra.Command, force bool, onnxVersion string) error {
	if !force {
		if path := embeddings.GetONNXLibraryPath(); path != "" {
			cmd.Printf("ONNX runtime already installed at: %s\n", path)
			cmd.Println("Use --force to re-download.")
			return nil
		}
	}

	cmd.Printf("Downloading ONNX runtime v%s...\n", onnxVersion)

	if err := embeddings.DownloadONNXRuntime(cmd.Context(), onnxVersion); err != nil {
		return fmt.Errorf("failed to download ONNX runtime: %w", err)
	}

	path := embeddings.GetONNXLibraryPath()
	if path == "" {
		return fmt.Errorf("download completed but library not found")
	}

	cmd.Printf("ONNX runtime installed at: %s\n", path)
	return nil
}
