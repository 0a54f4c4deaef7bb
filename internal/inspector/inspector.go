// Package inspector provides format-specific protection checks. Each
// inspector reads a file's native structure looking for an explicit
// encryption indicator and reports a structured verdict; it never panics
// across the boundary and never performs the statistical fallback itself.
package inspector

import (
	"fmt"

	"github.com/example/lockscan/internal/filetype"
)

// Outcome is the classification an inspector arrives at.
type Outcome int

const (
	// Inconclusive means the structure could not be interpreted either way.
	Inconclusive Outcome = iota
	// Protected means an explicit protection indicator was found.
	Protected
	// NotProtected means the structure was readable and carries no indicator.
	NotProtected
	// Error means the inspector itself failed; treated like Inconclusive
	// by the aggregator but surfaced in diagnostics.
	Error
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case Protected:
		return "protected"
	case NotProtected:
		return "not-protected"
	case Error:
		return "error"
	default:
		return "inconclusive"
	}
}

// Verdict is the result of one inspection. Inspectors that read explicit
// protocol flags report confidence 1.0; heuristic checks report less.
type Verdict struct {
	Outcome    Outcome
	Confidence float64
	Detail     string
}

// Definite reports whether the verdict asserts a boolean outcome with at
// least the given confidence.
func (v Verdict) Definite(threshold float64) bool {
	return (v.Outcome == Protected || v.Outcome == NotProtected) && v.Confidence >= threshold
}

// Inspector checks one format family for protection indicators.
type Inspector interface {
	Name() string
	Inspect(path string) Verdict
}

// Registry maps categories to their bound inspector. It is built once and
// never mutated afterwards, so concurrent lookups need no synchronization.
type Registry map[filetype.Category]Inspector

// DefaultRegistry binds every built-in inspector to its category.
func DefaultRegistry() Registry {
	return Registry{
		filetype.OfficeOpenXML: &OfficeOpenXMLInspector{},
		filetype.OfficeLegacy:  &OfficeLegacyInspector{},
		filetype.PDF:           &PDFInspector{},
		filetype.Zip:           &ZipInspector{},
		filetype.Rar:           &RarInspector{},
		filetype.SevenZip:      &SevenZipInspector{},
		filetype.Sqlite:        &SqliteInspector{},
		filetype.OutlookPST:    &PSTInspector{},
		filetype.OutlookMSG:    &MSGInspector{},
		filetype.LibreOffice:   &LibreOfficeInspector{},
	}
}

// Lookup returns the inspector bound to the category, if any. An absent
// binding is not an error; the caller falls back to entropy analysis.
func (r Registry) Lookup(cat filetype.Category) (Inspector, bool) {
	insp, ok := r[cat]
	return insp, ok
}

// inspect wraps fn so that a panic inside a parsing library becomes an
// Error verdict instead of crossing the boundary.
func inspect(name string, fn func() Verdict) (v Verdict) {
	defer func() {
		if r := recover(); r != nil {
			v = Verdict{Outcome: Error, Detail: fmt.Sprintf("%s: recovered: %v", name, r)}
		}
	}()
	return fn()
}
