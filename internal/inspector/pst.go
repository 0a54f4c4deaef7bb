package inspector

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
)

const (
	// [MS-PST] header layout: dwMagic at 0, wVer at 10, bCryptMethod at a
	// version-dependent offset.
	pstVersionOffset      = 10
	pstCryptOffsetANSI    = 461
	pstCryptOffsetUnicode = 513

	// wVer values: 14/15 are ANSI files, 23 and above are Unicode.
	pstVerUnicodeMin = 23
)

var pstMagic = []byte("!BDN")

// PSTInspector reads the documented bCryptMethod field from the PST header.
// Nonzero values (permute, cyclic, or Windows Information Protection)
// mean node data is stored encoded or encrypted.
type PSTInspector struct{}

// Name implements Inspector.
func (i *PSTInspector) Name() string { return "pst" }

// Inspect implements Inspector.
func (i *PSTInspector) Inspect(path string) Verdict {
	return inspect(i.Name(), func() Verdict {
		file, err := os.Open(path)
		if err != nil {
			return Verdict{Outcome: Inconclusive, Detail: fmt.Sprintf("open: %v", err)}
		}
		defer file.Close()

		header := make([]byte, pstCryptOffsetUnicode+1)
		if _, err := file.ReadAt(header, 0); err != nil {
			return Verdict{Outcome: Inconclusive, Detail: "file shorter than PST header"}
		}

		if !bytes.Equal(header[:4], pstMagic) {
			return Verdict{Outcome: Inconclusive, Detail: "missing !BDN magic"}
		}

		version := binary.LittleEndian.Uint16(header[pstVersionOffset : pstVersionOffset+2])
		cryptOffset := pstCryptOffsetANSI
		if version >= pstVerUnicodeMin {
			cryptOffset = pstCryptOffsetUnicode
		}

		method := header[cryptOffset]
		if method != 0 {
			return Verdict{
				Outcome:    Protected,
				Confidence: 1.0,
				Detail:     fmt.Sprintf("bCryptMethod 0x%02X", method),
			}
		}

		return Verdict{Outcome: NotProtected, Confidence: 1.0, Detail: "bCryptMethod none"}
	})
}
