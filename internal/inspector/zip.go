package inspector

import (
	"archive/zip"
	"fmt"
)

// zipFlagEncrypted is bit 0 of the general purpose flag field: the entry's
// data is encrypted (classic ZipCrypto or AES via extra fields).
const zipFlagEncrypted = 0x1

// ZipInspector reads the central directory and checks the per-entry
// encryption flag bit.
type ZipInspector struct{}

// Name implements Inspector.
func (i *ZipInspector) Name() string { return "zip" }

// Inspect implements Inspector.
func (i *ZipInspector) Inspect(path string) Verdict {
	return inspect(i.Name(), func() Verdict {
		rc, err := zip.OpenReader(path)
		if err != nil {
			return Verdict{Outcome: Inconclusive, Detail: fmt.Sprintf("zip: %v", err)}
		}
		defer rc.Close()

		for _, f := range rc.File {
			if f.Flags&zipFlagEncrypted != 0 {
				return Verdict{
					Outcome:    Protected,
					Confidence: 1.0,
					Detail:     fmt.Sprintf("encrypted entry %q", f.Name),
				}
			}
		}

		return Verdict{Outcome: NotProtected, Confidence: 1.0, Detail: "no entry encryption flags"}
	})
}
