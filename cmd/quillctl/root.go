package main

import (
	"fmt"
	"io"
	"os"

	"github.com/RishiKendai/quill/internal/fingerprint"
	"github.com/spf13/cobra"
)

type sizeFlags struct {
	ngram  int
	window int
}

func newRootCommand() *cobra.Command {
	sizes := &sizeFlags{}

	rootCmd := &cobra.Command{
		Use:           "quillctl",
		Short:         "Fingerprint and compare text documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return fingerprint.ValidateSizes(sizes.ngram, sizes.window)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().IntVarP(&sizes.ngram, "ngram", "n", fingerprint.DefaultNgramSize, "Words per n-gram")
	rootCmd.PersistentFlags().IntVarP(&sizes.window, "window", "w", fingerprint.DefaultWindowSize, "Winnowing window size")

	rootCmd.AddCommand(newFingerprintCommand(sizes))
	rootCmd.AddCommand(newCompareCommand(sizes))

	return rootCmd
}

// readInput reads a file, or stdin when path is "-"
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
