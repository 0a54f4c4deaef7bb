package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/lockscan/internal/config"
	"github.com/example/lockscan/internal/detector"
	"github.com/example/lockscan/internal/events"
)

func newScanCmd(loader *config.Loader) *cobra.Command {
	flags := &runtimeFlagSet{}
	var batch bool

	cmd := &cobra.Command{
		Use:   "scan <path>",
		Short: "Scan a file or directory tree for password protection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := flags.toOverrides(cmd)
			cfg, err := loader.Load(overrides)
			if err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			root := args[0]
			info, err := os.Stat(root)
			if err != nil {
				return fmt.Errorf("invalid path %q: %w", root, err)
			}
			if info.IsDir() && !batch {
				return fmt.Errorf("%q is a directory; use --batch to scan recursively", root)
			}

			if len(cfg.Formats) > 0 {
				if err := ensureOutputDir(cfg.OutputDir); err != nil {
					return err
				}
			}

			engine := detector.NewEngine(detector.Options{
				SampleSize:        cfg.SampleSize,
				EntropyBaseline:   cfg.EntropyBaseline,
				DecisionThreshold: cfg.DecisionThreshold,
				Timeout:           time.Duration(cfg.TimeoutSeconds) * time.Second,
				Workers:           cfg.Workers,
				Sequential:        cfg.Sync,
			})

			runID := uuid.NewString()
			var emitter *events.Emitter
			if cfg.Events {
				emitter = events.NewEmitter(cmd.ErrOrStderr(), runID)
				if err := emitter.Emit(events.Event{
					Type:    "scan-start",
					Message: "Starting scan",
					Fields:  map[string]interface{}{"root": root, "batch": batch, "sync": cfg.Sync, "workers": cfg.Workers},
				}); err != nil {
					return err
				}
			}

			start := time.Now()

			var results []detector.Result
			if batch {
				results, err = engine.ScanDir(cmd.Context(), root)
				if err != nil {
					return err
				}
				// Parallel collection is completion-ordered; sort for
				// stable output.
				detector.SortResults(results)
			} else {
				results = []detector.Result{engine.AnalyzeFile(cmd.Context(), root)}
			}

			for _, res := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (Encrypted: %t, Confidence: %.2f, Time: %.4fs)\n",
					res.Path, res.Status(), res.Encrypted, res.Confidence, res.Elapsed)
				if emitter != nil {
					if err := emitter.FileResult(res); err != nil {
						return err
					}
				}
			}

			var artifacts []string
			for _, format := range cfg.Formats {
				path, err := writeArtifact(cfg.OutputDir, format, results)
				if err != nil {
					return err
				}
				artifacts = append(artifacts, path)
			}

			if cfg.SummaryFile != "" {
				if err := writeScanSummary(cfg.SummaryFile, runID, root, results, artifacts, time.Since(start)); err != nil {
					return err
				}
			}

			if emitter != nil {
				return emitter.Emit(events.Event{
					Type:    "scan-finished",
					Message: "Scan complete",
					Fields: map[string]interface{}{
						"files":          len(results),
						"protected":      countProtected(results),
						"elapsedSeconds": time.Since(start).Seconds(),
					},
				})
			}

			return nil
		},
	}

	bindRuntimeFlags(cmd, flags)
	cmd.Flags().BoolVar(&batch, "batch", false, "Recursively scan a directory tree")

	return cmd
}

func countProtected(results []detector.Result) int {
	var n int
	for _, res := range results {
		if res.Protected {
			n++
		}
	}
	return n
}

func writeArtifact(dir, format string, results []detector.Result) (string, error) {
	timestamp := time.Now().UTC().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("scan_%s.%s", timestamp, format))

	switch format {
	case "json":
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return "", err
		}
		return path, os.WriteFile(path, append(data, '\n'), 0o644)
	case "csv":
		file, err := os.Create(path)
		if err != nil {
			return "", err
		}
		defer file.Close()

		w := csv.NewWriter(file)
		if err := w.Write([]string{"path", "status", "encrypted", "confidence", "elapsed_seconds", "error"}); err != nil {
			return "", err
		}
		for _, res := range results {
			record := []string{
				res.Path,
				res.Status(),
				strconv.FormatBool(res.Encrypted),
				strconv.FormatFloat(res.Confidence, 'f', 2, 64),
				strconv.FormatFloat(res.Elapsed, 'f', 4, 64),
				res.Error,
			}
			if err := w.Write(record); err != nil {
				return "", err
			}
		}
		w.Flush()
		return path, w.Error()
	default:
		return "", fmt.Errorf("unsupported format %s", format)
	}
}

func writeScanSummary(path, runID, root string, results []detector.Result, artifacts []string, elapsed time.Duration) error {
	summary := map[string]interface{}{
		"generatedAt":    time.Now().UTC().Format(time.RFC3339),
		"runId":          runID,
		"root":           root,
		"files":          len(results),
		"protected":      countProtected(results),
		"artifacts":      artifacts,
		"elapsedSeconds": elapsed.Seconds(),
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}

	if err := ensureOutputDir(filepath.Dir(path)); err != nil {
		return err
	}

	return os.WriteFile(path, append(data, '\n'), 0o644)
}
