package cli

import (
	"fmt"

	"github.com/example/lockscan/internal/config"
	"github.com/spf13/cobra"
)

// runtimeFlagSet tracks shared scan/init flags before they are converted
// into config overrides.
type runtimeFlagSet struct {
	workers     int
	syncMode    bool
	sampleSize  int
	baseline    float64
	threshold   float64
	timeout     int
	outputDir   string
	formats     string
	summaryFile string
	events      bool
}

func bindRuntimeFlags(cmd *cobra.Command, flags *runtimeFlagSet) {
	cmd.Flags().IntVar(&flags.workers, "workers", 0, fmt.Sprintf("Number of concurrent workers (1-%d)", config.MaxWorkers))
	cmd.Flags().BoolVar(&flags.syncMode, "sync", false, "Force sequential execution on the calling goroutine")
	cmd.Flags().IntVar(&flags.sampleSize, "sample-size", 0, "Bytes sampled from each file for entropy analysis")
	cmd.Flags().Float64Var(&flags.baseline, "entropy-baseline", 0, "Bits/byte below which files are presumed unencrypted")
	cmd.Flags().Float64Var(&flags.threshold, "threshold", 0, "Suspicion level at which entropy classifies a file as protected")
	cmd.Flags().IntVar(&flags.timeout, "timeout", 0, "Per-file analysis timeout in seconds")
	cmd.Flags().StringVar(&flags.outputDir, "output-dir", "", "Directory for scan artifacts")
	cmd.Flags().StringVar(&flags.formats, "formats", "", "Comma-separated artifact formats (json,csv)")
	cmd.Flags().StringVar(&flags.summaryFile, "summary-file", "", "Optional summary JSON output path")
	cmd.Flags().BoolVar(&flags.events, "events", false, "Emit NDJSON progress events on stderr")
}

func (f runtimeFlagSet) toOverrides(cmd *cobra.Command) config.Overrides {
	ov := config.Overrides{}
	if cmd.Flags().Changed("workers") {
		ov.Workers = f.workers
		ov.WorkersSet = true
	}

	if cmd.Flags().Changed("sync") {
		ov.Sync = &f.syncMode
	}

	if cmd.Flags().Changed("sample-size") {
		ov.SampleSize = f.sampleSize
		ov.SampleSizeSet = true
	}

	if cmd.Flags().Changed("entropy-baseline") {
		ov.Baseline = f.baseline
		ov.BaselineSet = true
	}

	if cmd.Flags().Changed("threshold") {
		ov.Threshold = f.threshold
		ov.ThresholdSet = true
	}

	if cmd.Flags().Changed("timeout") {
		ov.TimeoutSeconds = f.timeout
		ov.TimeoutSet = true
	}

	if cmd.Flags().Changed("output-dir") {
		ov.OutputDir = f.outputDir
	}

	if cmd.Flags().Changed("formats") {
		ov.Formats = config.ParseFormats(f.formats)
	}

	if cmd.Flags().Changed("summary-file") {
		ov.SummaryFile = f.summaryFile
	}

	if cmd.Flags().Changed("events") {
		ov.Events = &f.events
	}

	return ov
}
