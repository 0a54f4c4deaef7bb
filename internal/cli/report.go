package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/lockscan/internal/detector"
	"github.com/example/lockscan/internal/events"
)

func newReportCmd() *cobra.Command {
	var inputPath string
	var summaryPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate aggregate stats from a scan artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" {
				return errors.New("--input is required")
			}

			data, err := os.ReadFile(inputPath)
			if err != nil {
				return err
			}

			var results []detector.Result
			if err := json.Unmarshal(data, &results); err != nil {
				return fmt.Errorf("parse %s: %w", inputPath, err)
			}

			stats := reportStats(inputPath, len(data), results)

			emitter := events.NewEmitter(cmd.OutOrStdout(), uuid.NewString())
			if err := emitter.Emit(events.Event{Type: "report", Message: "Report generated", Fields: stats}); err != nil {
				return err
			}

			if summaryPath != "" {
				if err := writeReportSummary(summaryPath, stats); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Summary written to %s\n", summaryPath)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "Path to JSON scan artifact")
	cmd.Flags().StringVar(&summaryPath, "summary-file", "", "Optional path to store summary JSON")
	if err := cmd.MarkFlagRequired("input"); err != nil {
		panic(err)
	}

	return cmd
}

func reportStats(inputPath string, inputSize int, results []detector.Result) map[string]interface{} {
	var protected, encrypted, errored int
	var confidenceSum float64
	for _, res := range results {
		if res.Protected {
			protected++
		}
		if res.Encrypted {
			encrypted++
		}
		if res.Error != "" {
			errored++
		}
		confidenceSum += res.Confidence
	}

	avgConfidence := 0.0
	if len(results) > 0 {
		avgConfidence = confidenceSum / float64(len(results))
	}

	return map[string]interface{}{
		"input":         inputPath,
		"inputSize":     humanize.IBytes(uint64(inputSize)),
		"generatedAt":   time.Now().UTC().Format(time.RFC3339),
		"files":         len(results),
		"protected":     protected,
		"encrypted":     encrypted,
		"errored":       errored,
		"avgConfidence": avgConfidence,
	}
}

func writeReportSummary(path string, stats map[string]interface{}) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}
