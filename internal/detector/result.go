// Package detector orchestrates protection scans: per-file type resolution,
// inspector dispatch, entropy fallback, confidence aggregation, and the
// concurrency policy for directory batches.
package detector

// Result is the final outcome for one file. It is created once per task,
// never mutated afterwards, and carries a finite confidence in [0, 1].
type Result struct {
	Path string `json:"path"`
	// Protected reports an interactive password gate.
	Protected bool `json:"passwordProtected"`
	// Encrypted reports content opacity, which can exist without a
	// password gate (encrypted-at-rest archives, obfuscated stores).
	Encrypted  bool    `json:"encrypted"`
	Confidence float64 `json:"confidence"`
	Category   string  `json:"category,omitempty"`
	// Elapsed is the per-file wall time in seconds.
	Elapsed float64 `json:"elapsedSeconds"`
	// Detail carries inspector diagnostics, when any.
	Detail string `json:"detail,omitempty"`
	// Error is set for per-file faults (unreadable, timeout). Faulted
	// results always carry confidence 0 and never abort a batch.
	Error string `json:"error,omitempty"`
}

// Status renders the classification the way the CLI prints it.
func (r Result) Status() string {
	if r.Protected {
		return "PASSWORD PROTECTED"
	}
	return "NOT PASSWORD PROTECTED"
}
