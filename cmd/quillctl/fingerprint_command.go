package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/RishiKendai/quill/internal/fingerprint"
	"github.com/spf13/cobra"
)

func newFingerprintCommand(sizes *sizeFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "fingerprint <file>",
		Short: "Print the winnowed fingerprints of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			set, err := fingerprint.GenerateFingerprints(text, filepath.Base(args[0]), sizes.ngram, sizes.window)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, set)
			}

			rows := make([][]string, 0, len(set.Fingerprints))
			for i, fp := range set.Fingerprints {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					strconv.Itoa(fp.Position),
					strconv.FormatUint(uint64(fp.Hash), 10),
					fp.Text,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Position", "Hash", "N-gram"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "words: %d  fingerprints: %d  guarantee: %d words\n",
				set.WordCount, set.Len(), fingerprint.GuaranteeThreshold(sizes.ngram, sizes.window))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
