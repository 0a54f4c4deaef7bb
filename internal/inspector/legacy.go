package inspector

import (
	"encoding/binary"
	"fmt"
	"io"
)

// OfficeLegacyInspector handles pre-2007 Office binaries (.doc, .xls, .ppt)
// stored as compound files. Protection indicators, most to least explicit:
// an EncryptionInfo/EncryptedPackage stream, the FIB fEncrypted bit inside
// WordDocument, and a FilePass record inside the Workbook stream.
type OfficeLegacyInspector struct{}

// Name implements Inspector.
func (i *OfficeLegacyInspector) Name() string { return "office-legacy" }

// Inspect implements Inspector.
func (i *OfficeLegacyInspector) Inspect(path string) Verdict {
	return inspect(i.Name(), func() Verdict {
		doc, err := openCFB(path)
		if err != nil {
			return Verdict{Outcome: Inconclusive, Detail: fmt.Sprintf("compound file: %v", err)}
		}
		defer doc.Close()

		var sawContent bool
		for entry, err := doc.reader.Next(); err == nil; entry, err = doc.reader.Next() {
			switch entry.Name {
			case "EncryptionInfo", "EncryptedPackage":
				return Verdict{
					Outcome:    Protected,
					Confidence: 1.0,
					Detail:     fmt.Sprintf("encryption stream %q present", entry.Name),
				}
			case "WordDocument":
				sawContent = true
				if encrypted, ok := wordFIBEncrypted(entry); ok && encrypted {
					return Verdict{Outcome: Protected, Confidence: 1.0, Detail: "FIB fEncrypted bit set"}
				}
			case "Workbook", "Book":
				sawContent = true
				if filePassRecord(entry) {
					return Verdict{Outcome: Protected, Confidence: 1.0, Detail: "BIFF FilePass record present"}
				}
			case "PowerPoint Document":
				sawContent = true
			}
		}

		if !sawContent {
			return Verdict{Outcome: Inconclusive, Detail: "no recognizable Office stream"}
		}

		return Verdict{Outcome: NotProtected, Confidence: 1.0, Detail: "no encryption indicator in streams"}
	})
}

// wordFIBEncrypted reads the File Information Block header of a WordDocument
// stream. Bit 8 of the 16-bit flag field at offset 10 is fEncrypted.
func wordFIBEncrypted(r io.Reader) (encrypted, ok bool) {
	header := make([]byte, 12)
	if _, err := io.ReadFull(r, header); err != nil {
		return false, false
	}

	flags := binary.LittleEndian.Uint16(header[10:12])
	return flags&0x0100 != 0, true
}

// filePassRecord walks BIFF records looking for FilePass (0x002F), which
// precedes workbook content in every encrypted .xls. The walk is bounded;
// FilePass always appears within the first few records when present.
func filePassRecord(r io.Reader) bool {
	const (
		recFilePass   = 0x002F
		maxRecords    = 64
		recHeaderSize = 4
	)

	header := make([]byte, recHeaderSize)
	for i := 0; i < maxRecords; i++ {
		if _, err := io.ReadFull(r, header); err != nil {
			return false
		}

		opcode := binary.LittleEndian.Uint16(header[0:2])
		length := binary.LittleEndian.Uint16(header[2:4])

		if opcode == recFilePass {
			return true
		}

		if _, err := io.CopyN(io.Discard, r, int64(length)); err != nil {
			return false
		}
	}
	return false
}
