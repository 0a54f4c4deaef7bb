package inspector

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

var sevenZipSignature = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}

// sevenZipAESCoder is the codec ID of 7zAES as it appears literally in the
// header's coder declarations.
var sevenZipAESCoder = []byte{0x06, 0xF1, 0x07, 0x01}

const (
	sevenZipKHeader        = 0x01
	sevenZipKEncodedHeader = 0x17

	// sevenZipHeaderCap bounds how much of the end header is loaded.
	sevenZipHeaderCap = 1 << 20
)

// SevenZipInspector reads the 7z start header and scans the end header's
// coder declarations for the AES codec. An archive with encrypted content
// always names 7zAES among its coders; when the end header itself is
// compressed the packing declaration is still stored in the clear.
type SevenZipInspector struct{}

// Name implements Inspector.
func (i *SevenZipInspector) Name() string { return "7z" }

// Inspect implements Inspector.
func (i *SevenZipInspector) Inspect(path string) Verdict {
	return inspect(i.Name(), func() Verdict {
		file, err := os.Open(path)
		if err != nil {
			return Verdict{Outcome: Inconclusive, Detail: fmt.Sprintf("open: %v", err)}
		}
		defer file.Close()

		// Signature(6) version(2) startHeaderCRC(4) then the start header:
		// nextHeaderOffset(8) nextHeaderSize(8) nextHeaderCRC(4).
		prefix := make([]byte, 32)
		if _, err := io.ReadFull(file, prefix); err != nil {
			return Verdict{Outcome: Inconclusive, Detail: "truncated 7z prefix"}
		}
		if !bytes.Equal(prefix[:6], sevenZipSignature) {
			return Verdict{Outcome: Inconclusive, Detail: "not a 7z signature"}
		}

		offset := binary.LittleEndian.Uint64(prefix[12:20])
		size := binary.LittleEndian.Uint64(prefix[20:28])
		if size == 0 {
			return Verdict{Outcome: NotProtected, Confidence: 1.0, Detail: "empty 7z archive"}
		}
		if size > sevenZipHeaderCap {
			size = sevenZipHeaderCap
		}

		header := make([]byte, size)
		if _, err := file.ReadAt(header, 32+int64(offset)); err != nil {
			return Verdict{Outcome: Inconclusive, Detail: fmt.Sprintf("read end header: %v", err)}
		}

		hasAES := bytes.Contains(header, sevenZipAESCoder)
		switch header[0] {
		case sevenZipKHeader:
			if hasAES {
				return Verdict{Outcome: Protected, Confidence: 1.0, Detail: "7zAES coder declared"}
			}
			return Verdict{Outcome: NotProtected, Confidence: 1.0, Detail: "no AES coder in header"}
		case sevenZipKEncodedHeader:
			if hasAES {
				// The header itself is packed through AES: encrypted file
				// names, always password-gated.
				return Verdict{Outcome: Protected, Confidence: 1.0, Detail: "7z encrypted header"}
			}
			// Compressed header; per-file coders are not visible without
			// decompressing it.
			return Verdict{Outcome: Inconclusive, Detail: "compressed 7z header"}
		default:
			return Verdict{Outcome: Inconclusive, Detail: "unrecognized 7z header marker"}
		}
	})
}
