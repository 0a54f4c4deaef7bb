package inspector

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// pdfTailWindow bounds how much of the file end is searched for the
// trailer. Trailers sit at the end of the document; 8 KiB comfortably
// covers real-world trailer plus cross-reference dictionaries.
const pdfTailWindow = 8192

// PDFInspector looks for an /Encrypt entry in the document trailer. The
// trailer (or the cross-reference stream dictionary in newer PDFs) must
// reference the encryption dictionary for any protected document.
type PDFInspector struct{}

// Name implements Inspector.
func (i *PDFInspector) Name() string { return "pdf" }

// Inspect implements Inspector.
func (i *PDFInspector) Inspect(path string) Verdict {
	return inspect(i.Name(), func() Verdict {
		file, err := os.Open(path)
		if err != nil {
			return Verdict{Outcome: Inconclusive, Detail: fmt.Sprintf("open: %v", err)}
		}
		defer file.Close()

		header := make([]byte, 5)
		if _, err := io.ReadFull(file, header); err != nil || !bytes.Equal(header, []byte("%PDF-")) {
			return Verdict{Outcome: Inconclusive, Detail: "missing %PDF- header"}
		}

		tail, err := readTail(file, pdfTailWindow)
		if err != nil {
			return Verdict{Outcome: Inconclusive, Detail: fmt.Sprintf("read tail: %v", err)}
		}

		// The last startxref marks the final cross-reference section; a
		// classic trailer dictionary follows the "trailer" keyword, while
		// cross-reference-stream PDFs inline the same keys in the stream
		// dictionary. Both live inside the tail window.
		if bytes.LastIndex(tail, []byte("startxref")) < 0 {
			return Verdict{Outcome: Inconclusive, Detail: "no startxref in tail"}
		}

		searchFrom := 0
		if idx := bytes.LastIndex(tail, []byte("trailer")); idx >= 0 {
			searchFrom = idx
		}

		if bytes.Contains(tail[searchFrom:], []byte("/Encrypt")) {
			return Verdict{Outcome: Protected, Confidence: 1.0, Detail: "/Encrypt entry in trailer"}
		}

		return Verdict{Outcome: NotProtected, Confidence: 1.0, Detail: "trailer carries no /Encrypt entry"}
	})
}

// readTail returns up to window bytes from the end of the file.
func readTail(file *os.File, window int64) ([]byte, error) {
	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	offset := info.Size() - window
	if offset < 0 {
		offset = 0
	}

	tail := make([]byte, info.Size()-offset)
	if _, err := file.ReadAt(tail, offset); err != nil && err != io.EOF {
		return nil, err
	}
	return tail, nil
}
