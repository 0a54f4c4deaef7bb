package inspector

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// sqliteMagic is the fixed 16-byte header of every plaintext SQLite 3
// database. Encrypted databases (SQLCipher, SEE) overwrite the entire
// first page, magic included.
var sqliteMagic = []byte("SQLite format 3\x00")

// SqliteInspector reads the fixed-offset header magic. A mismatch is not
// asserted as protection: header corruption is indistinguishable from
// encryption here, so the file falls through to entropy analysis.
type SqliteInspector struct{}

// Name implements Inspector.
func (i *SqliteInspector) Name() string { return "sqlite" }

// Inspect implements Inspector.
func (i *SqliteInspector) Inspect(path string) Verdict {
	return inspect(i.Name(), func() Verdict {
		file, err := os.Open(path)
		if err != nil {
			return Verdict{Outcome: Inconclusive, Detail: fmt.Sprintf("open: %v", err)}
		}
		defer file.Close()

		header := make([]byte, len(sqliteMagic))
		if _, err := io.ReadFull(file, header); err != nil {
			return Verdict{Outcome: Inconclusive, Detail: "file shorter than SQLite header"}
		}

		if bytes.Equal(header, sqliteMagic) {
			return Verdict{Outcome: NotProtected, Confidence: 1.0, Detail: "plaintext SQLite header"}
		}

		return Verdict{Outcome: Inconclusive, Detail: "SQLite magic mismatch"}
	})
}
