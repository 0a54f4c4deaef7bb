package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/lockscan/internal/detector"
	"github.com/example/lockscan/internal/entropy"
)

const (
	DefaultConfigPath = "lockscan.config.yml"

	envWorkers     = "LOCKSCAN_WORKERS"
	envSync        = "LOCKSCAN_SYNC"
	envSampleSize  = "LOCKSCAN_SAMPLE_SIZE"
	envBaseline    = "LOCKSCAN_ENTROPY_BASELINE"
	envThreshold   = "LOCKSCAN_THRESHOLD"
	envTimeout     = "LOCKSCAN_TIMEOUT_SECONDS"
	envOutputDir   = "LOCKSCAN_OUTPUT_DIR"
	envFormats     = "LOCKSCAN_FORMATS"
	envSummaryFile = "LOCKSCAN_SUMMARY_FILE"
	envEvents      = "LOCKSCAN_EVENTS"

	MaxWorkers = 256
)

// Loader merges configuration coming from files, environment variables, and
// CLI flags, in that order of increasing precedence.
type Loader struct {
	ConfigPath string
}

// RuntimeConfig contains the fully merged settings required by sub-commands.
type RuntimeConfig struct {
	Workers           int
	Sync              bool
	SampleSize        int
	EntropyBaseline   float64
	DecisionThreshold float64
	TimeoutSeconds    int
	OutputDir         string
	Formats           []string
	SummaryFile       string
	Events            bool
}

// Overrides captures values coming from a config file, env vars, or flags.
type Overrides struct {
	Workers        int
	WorkersSet     bool
	Sync           *bool
	SampleSize     int
	SampleSizeSet  bool
	Baseline       float64
	BaselineSet    bool
	Threshold      float64
	ThresholdSet   bool
	TimeoutSeconds int
	TimeoutSet     bool
	OutputDir      string
	Formats        []string
	SummaryFile    string
	Events         *bool
}

// DefaultRuntimeConfig returns the baseline configuration when no overrides
// are provided.
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		Workers:           detector.DefaultWorkers(),
		SampleSize:        entropy.DefaultSampleSize,
		EntropyBaseline:   entropy.DefaultBaseline,
		DecisionThreshold: detector.DefaultDecisionThreshold,
		TimeoutSeconds:    int(detector.DefaultTimeout.Seconds()),
		OutputDir:         "scan-results",
	}
}

// Load resolves the final runtime configuration.
func (l Loader) Load(override Overrides) (RuntimeConfig, error) {
	cfg := DefaultRuntimeConfig()
	path := l.ConfigPath
	if path == "" {
		path = DefaultConfigPath
	}

	if fileExists(path) {
		fileOv, err := loadFromFile(path)
		if err != nil {
			return cfg, err
		}
		cfg.apply(fileOv)
	}

	cfg.apply(overridesFromEnv())
	cfg.apply(override)

	return cfg, nil
}

// Validate ensures the merged configuration is usable for a scan.
func (c RuntimeConfig) Validate() error {
	if c.Workers < 1 || c.Workers > MaxWorkers {
		return fmt.Errorf("workers must be between 1 and %d (got %d)", MaxWorkers, c.Workers)
	}

	if c.SampleSize < 256 {
		return fmt.Errorf("entropy sample size must be at least 256 bytes (got %d)", c.SampleSize)
	}

	if c.EntropyBaseline <= 0 || c.EntropyBaseline >= 8 {
		return fmt.Errorf("entropy baseline must be in (0, 8) bits/byte (got %f)", c.EntropyBaseline)
	}

	if c.DecisionThreshold <= 0 || c.DecisionThreshold >= 1 {
		return fmt.Errorf("decision threshold must be in (0, 1) (got %f)", c.DecisionThreshold)
	}

	if c.TimeoutSeconds < 1 {
		return fmt.Errorf("per-file timeout must be at least 1 second (got %d)", c.TimeoutSeconds)
	}

	for _, format := range c.Formats {
		switch strings.ToLower(format) {
		case "json", "csv":
		default:
			return fmt.Errorf("unsupported artifact format %q", format)
		}
	}

	if len(c.Formats) > 0 && c.OutputDir == "" {
		return errors.New("output directory cannot be empty when artifact formats are set")
	}

	return nil
}

func (c *RuntimeConfig) apply(src Overrides) {
	if src.WorkersSet {
		c.Workers = src.Workers
	}

	if src.Sync != nil {
		c.Sync = *src.Sync
	}

	if src.SampleSizeSet {
		c.SampleSize = src.SampleSize
	}

	if src.BaselineSet {
		c.EntropyBaseline = src.Baseline
	}

	if src.ThresholdSet {
		c.DecisionThreshold = src.Threshold
	}

	if src.TimeoutSet {
		c.TimeoutSeconds = src.TimeoutSeconds
	}

	if src.OutputDir != "" {
		c.OutputDir = src.OutputDir
	}

	if len(src.Formats) > 0 {
		c.Formats = cleanList(src.Formats)
	}

	if src.SummaryFile != "" {
		c.SummaryFile = src.SummaryFile
	}

	if src.Events != nil {
		c.Events = *src.Events
	}
}

func loadFromFile(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Overrides{}, err
	}

	type rawConfig struct {
		Workers     *int     `yaml:"workers"`
		Sync        *bool    `yaml:"sync"`
		SampleSize  *int     `yaml:"sampleSize"`
		Baseline    *float64 `yaml:"entropyBaseline"`
		Threshold   *float64 `yaml:"decisionThreshold"`
		Timeout     *int     `yaml:"timeoutSeconds"`
		OutputDir   string   `yaml:"outputDir"`
		Formats     []string `yaml:"formats"`
		SummaryFile string   `yaml:"summaryFile"`
		Events      *bool    `yaml:"events"`
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Overrides{}, err
	}

	over := Overrides{
		OutputDir:   raw.OutputDir,
		Formats:     raw.Formats,
		SummaryFile: raw.SummaryFile,
		Sync:        raw.Sync,
		Events:      raw.Events,
	}

	if raw.Workers != nil {
		over.Workers = *raw.Workers
		over.WorkersSet = true
	}

	if raw.SampleSize != nil {
		over.SampleSize = *raw.SampleSize
		over.SampleSizeSet = true
	}

	if raw.Baseline != nil {
		over.Baseline = *raw.Baseline
		over.BaselineSet = true
	}

	if raw.Threshold != nil {
		over.Threshold = *raw.Threshold
		over.ThresholdSet = true
	}

	if raw.Timeout != nil {
		over.TimeoutSeconds = *raw.Timeout
		over.TimeoutSet = true
	}

	return over, nil
}

func overridesFromEnv() Overrides {
	ov := Overrides{}

	if value := os.Getenv(envWorkers); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			ov.Workers = parsed
			ov.WorkersSet = true
		}
	}

	if value := os.Getenv(envSync); value != "" {
		parsed := parseBool(value)
		ov.Sync = &parsed
	}

	if value := os.Getenv(envSampleSize); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			ov.SampleSize = parsed
			ov.SampleSizeSet = true
		}
	}

	if value := os.Getenv(envBaseline); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			ov.Baseline = parsed
			ov.BaselineSet = true
		}
	}

	if value := os.Getenv(envThreshold); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			ov.Threshold = parsed
			ov.ThresholdSet = true
		}
	}

	if value := os.Getenv(envTimeout); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			ov.TimeoutSeconds = parsed
			ov.TimeoutSet = true
		}
	}

	if value := os.Getenv(envOutputDir); value != "" {
		ov.OutputDir = value
	}

	if value := os.Getenv(envFormats); value != "" {
		ov.Formats = ParseFormats(value)
	}

	if value := os.Getenv(envSummaryFile); value != "" {
		ov.SummaryFile = value
	}

	if value := os.Getenv(envEvents); value != "" {
		parsed := parseBool(value)
		ov.Events = &parsed
	}

	return ov
}

// ParseFormats splits comma separated format strings.
func ParseFormats(input string) []string {
	if input == "" {
		return nil
	}

	separator := func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r' || r == ' '
	}

	return cleanList(strings.FieldsFunc(strings.TrimSpace(input), separator))
}

func parseBool(value string) bool {
	return strings.EqualFold(value, "true") || value == "1"
}

func cleanList(values []string) []string {
	var out []string
	for _, v := range values {
		candidate := strings.TrimSpace(v)
		if candidate != "" {
			out = append(out, candidate)
		}
	}
	return out
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
