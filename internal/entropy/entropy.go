// Package entropy scores how random a file's leading bytes look. High
// Shannon entropy is used as a heuristic signal for encryption when no
// structural indicator is available.
package entropy

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// ErrIOUnavailable is returned when the file cannot be opened or read.
// Callers treat it as "no entropy evidence", not as a fatal condition.
var ErrIOUnavailable = errors.New("entropy: file unavailable")

const (
	// DefaultSampleSize is how many bytes are read from the start of the file.
	DefaultSampleSize = 8192

	// DefaultBaseline is the bits-per-byte value below which a file is
	// presumed unencrypted. Plain text sits around 4-5, compressed data
	// around 6-7, ciphertext close to 8.
	DefaultBaseline = 7.0
)

// Evidence is the outcome of sampling one file.
type Evidence struct {
	// SampleBytes is the number of bytes actually read.
	SampleBytes int
	// BitsPerByte is the Shannon entropy of the sample, in [0, 8].
	BitsPerByte float64
	// Skew is the skewness of the byte-frequency histogram. Values near
	// zero indicate a uniform distribution, which corroborates ciphertext.
	Skew float64
	// Suspicion maps entropy above the baseline into [0, 1].
	Suspicion float64
}

// Analyzer computes entropy evidence with configurable sampling.
// The zero value is not usable; construct with NewAnalyzer.
type Analyzer struct {
	sampleSize int
	baseline   float64
}

// NewAnalyzer returns an analyzer reading up to sampleSize bytes and using
// baseline as the suspicion floor. Non-positive or out-of-range arguments
// fall back to the documented defaults.
func NewAnalyzer(sampleSize int, baseline float64) *Analyzer {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	if baseline <= 0 || baseline >= 8 {
		baseline = DefaultBaseline
	}
	return &Analyzer{sampleSize: sampleSize, baseline: baseline}
}

// Analyze reads at most the configured sample from the start of the file
// and scores it. Open or read failures wrap ErrIOUnavailable.
func (a *Analyzer) Analyze(path string) (Evidence, error) {
	file, err := os.Open(path)
	if err != nil {
		return Evidence{}, fmt.Errorf("%w: %v", ErrIOUnavailable, err)
	}
	defer file.Close()

	buf := make([]byte, a.sampleSize)
	n, err := io.ReadFull(file, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return Evidence{}, fmt.Errorf("%w: %v", ErrIOUnavailable, err)
	}

	return a.AnalyzeBytes(buf[:n]), nil
}

// AnalyzeBytes scores an in-memory sample. An empty sample yields zero
// entropy and zero suspicion.
func (a *Analyzer) AnalyzeBytes(sample []byte) Evidence {
	ev := Evidence{SampleBytes: len(sample)}
	if len(sample) == 0 {
		return ev
	}

	var counts [256]int
	for _, b := range sample {
		counts[b]++
	}

	total := float64(len(sample))
	var h float64
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / total
		h -= p * math.Log2(p)
	}

	ev.BitsPerByte = h
	ev.Skew = histogramSkew(counts)
	ev.Suspicion = clamp01((h - a.baseline) / (8.0 - a.baseline))
	return ev
}

// histogramSkew computes the skewness of the 256-bucket frequency histogram.
func histogramSkew(counts [256]int) float64 {
	const buckets = 256.0

	var sum float64
	for _, c := range counts {
		sum += float64(c)
	}
	mean := sum / buckets

	var variance float64
	for _, c := range counts {
		d := float64(c) - mean
		variance += d * d
	}
	variance /= buckets

	std := math.Sqrt(variance) + 1e-8
	var skew float64
	for _, c := range counts {
		d := (float64(c) - mean) / std
		skew += d * d * d
	}
	return skew / buckets
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
