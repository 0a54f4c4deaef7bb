package inspector

import (
	"bytes"
	"io"
	"os"

	"github.com/richardlehane/mscfb"
)

// cfbSignature is the 8-byte magic of a compound file binary (OLE2) header.
var cfbSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// hasCFBSignature reports whether the file starts with the compound-file magic.
func hasCFBSignature(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	header := make([]byte, len(cfbSignature))
	if _, err := io.ReadFull(file, header); err != nil {
		return false
	}
	return bytes.Equal(header, cfbSignature)
}

// cfbDoc is an open compound file plus the underlying handle.
type cfbDoc struct {
	file   *os.File
	reader *mscfb.Reader
}

// openCFB opens path as a compound file. The caller must Close on success.
func openCFB(path string) (*cfbDoc, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	reader, err := mscfb.New(file)
	if err != nil {
		file.Close()
		return nil, err
	}

	return &cfbDoc{file: file, reader: reader}, nil
}

func (d *cfbDoc) Close() error { return d.file.Close() }

// findStream walks the directory once and returns the first entry whose
// name matches any of the given names, or nil.
func (d *cfbDoc) findStream(names ...string) *mscfb.File {
	for entry, err := d.reader.Next(); err == nil; entry, err = d.reader.Next() {
		for _, name := range names {
			if entry.Name == name {
				return entry
			}
		}
	}
	return nil
}
