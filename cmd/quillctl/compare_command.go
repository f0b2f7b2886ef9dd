package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/RishiKendai/quill/internal/fingerprint"
	"github.com/RishiKendai/quill/internal/plagiarism"
	"github.com/spf13/cobra"
)

type compareOutput struct {
	DocumentA        string              `json:"documentA"`
	DocumentB        string              `json:"documentB"`
	SharedNgrams     int                 `json:"sharedNgrams"`
	FingerprintScore float64             `json:"fingerprintScore"`
	TilingScore      float64             `json:"tilingScore"`
	FinalScore       float64             `json:"finalScore"`
	Risk             string              `json:"risk"`
	Matches          []fingerprint.Match `json:"matches"`
}

func newCompareCommand(sizes *sizeFlags) *cobra.Command {
	var asJSON bool
	var cutoff float64

	cmd := &cobra.Command{
		Use:   "compare <a> <b>",
		Short: "Compare two documents and list their shared n-grams",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			texts := make([]*plagiarism.Text, 2)
			for i, path := range args {
				raw, err := readInput(cmd, path)
				if err != nil {
					return err
				}
				set, err := fingerprint.GenerateFingerprints(raw, filepath.Base(path), sizes.ngram, sizes.window)
				if err != nil {
					return err
				}
				texts[i] = &plagiarism.Text{Raw: raw, Set: set}
			}

			result := plagiarism.CascadePipeline(texts[0], texts[1], cutoff)
			sort.Slice(result.Matches, func(i, j int) bool {
				a, b := result.Matches[i], result.Matches[j]
				if a.Doc1Fingerprint.Position != b.Doc1Fingerprint.Position {
					return a.Doc1Fingerprint.Position < b.Doc1Fingerprint.Position
				}
				return a.Doc2Fingerprint.Position < b.Doc2Fingerprint.Position
			})

			output := compareOutput{
				DocumentA:        texts[0].Set.DocumentID,
				DocumentB:        texts[1].Set.DocumentID,
				SharedNgrams:     result.Shared,
				FingerprintScore: result.FingerprintScore,
				TilingScore:      result.TilingScore,
				FinalScore:       result.FinalScore,
				Risk:             plagiarism.RiskLevel(result.FinalScore),
				Matches:          result.Matches,
			}

			if asJSON {
				return writeJSON(cmd, output)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Metric", "Value"},
				[][]string{
					{"Shared n-grams", strconv.Itoa(output.SharedNgrams)},
					{"Fingerprint score", formatScore(output.FingerprintScore)},
					{"Tiling score", formatScore(output.TilingScore)},
					{"Final score", formatScore(output.FinalScore)},
					{"Risk", output.Risk},
				},
				[]columnAlignment{alignLeft, alignRight},
			))

			if len(result.Matches) == 0 {
				fmt.Fprintln(out, "no shared fingerprints")
				return nil
			}

			rows := make([][]string, 0, len(result.Matches))
			for _, m := range result.Matches {
				rows = append(rows, []string{
					strconv.Itoa(m.Doc1Fingerprint.Position),
					strconv.Itoa(m.Doc2Fingerprint.Position),
					m.Doc1Fingerprint.Text,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{output.DocumentA, output.DocumentB, "N-gram"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().Float64Var(&cutoff, "cutoff", 0.05, "Fingerprint score under which tiling is skipped")
	return cmd
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
