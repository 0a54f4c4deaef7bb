package inspector

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

var (
	rar4Signature = []byte{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x00}
	rar5Signature = []byte{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x01, 0x00}
)

// RarInspector reads native RAR block headers and checks the documented
// encryption flag bits: the v4 archive-header password flag and per-file
// flag, and the v5 encryption block that precedes everything when archive
// headers are encrypted.
type RarInspector struct{}

// Name implements Inspector.
func (i *RarInspector) Name() string { return "rar" }

// Inspect implements Inspector.
func (i *RarInspector) Inspect(path string) Verdict {
	return inspect(i.Name(), func() Verdict {
		file, err := os.Open(path)
		if err != nil {
			return Verdict{Outcome: Inconclusive, Detail: fmt.Sprintf("open: %v", err)}
		}
		defer file.Close()

		sig := make([]byte, len(rar5Signature))
		n, _ := io.ReadFull(file, sig)
		sig = sig[:n]

		switch {
		case bytes.HasPrefix(sig, rar5Signature):
			return inspectRar5(file)
		case bytes.HasPrefix(sig, rar4Signature):
			// v4 signature is one byte shorter; rewind the extra byte.
			if _, err := file.Seek(int64(len(rar4Signature)), io.SeekStart); err != nil {
				return Verdict{Outcome: Inconclusive, Detail: fmt.Sprintf("seek: %v", err)}
			}
			return inspectRar4(file)
		default:
			return Verdict{Outcome: Inconclusive, Detail: "not a RAR signature"}
		}
	})
}

// RAR4 block layout: CRC(2) type(1) flags(2) size(2) [addSize(4)].
func inspectRar4(r io.ReadSeeker) Verdict {
	const (
		blockArchive = 0x73
		blockFile    = 0x74

		flagArchivePassword = 0x0080 // MHD_PASSWORD: headers encrypted
		flagFilePassword    = 0x0004 // LHD_PASSWORD: file data encrypted
		flagAddSize         = 0x8000

		maxBlocks = 128
	)

	header := make([]byte, 7)
	for i := 0; i < maxBlocks; i++ {
		if _, err := io.ReadFull(r, header); err != nil {
			if i > 0 {
				// Walked at least one block without finding a flag.
				return Verdict{Outcome: NotProtected, Confidence: 1.0, Detail: "no RAR4 encryption flags"}
			}
			return Verdict{Outcome: Inconclusive, Detail: fmt.Sprintf("RAR4 block header: %v", err)}
		}

		blockType := header[2]
		flags := binary.LittleEndian.Uint16(header[3:5])
		size := int64(binary.LittleEndian.Uint16(header[5:7]))

		switch blockType {
		case blockArchive:
			if flags&flagArchivePassword != 0 {
				return Verdict{Outcome: Protected, Confidence: 1.0, Detail: "RAR4 encrypted headers"}
			}
		case blockFile:
			if flags&flagFilePassword != 0 {
				return Verdict{Outcome: Protected, Confidence: 1.0, Detail: "RAR4 encrypted file entry"}
			}
		}

		skip := size - 7
		if flags&flagAddSize != 0 {
			var addBuf [4]byte
			if _, err := io.ReadFull(r, addBuf[:]); err != nil {
				return Verdict{Outcome: Inconclusive, Detail: "truncated RAR4 block"}
			}
			skip += int64(binary.LittleEndian.Uint32(addBuf[:])) - 4
		}
		if skip < 0 {
			return Verdict{Outcome: Inconclusive, Detail: "malformed RAR4 block size"}
		}
		if _, err := r.Seek(skip, io.SeekCurrent); err != nil {
			return Verdict{Outcome: Inconclusive, Detail: fmt.Sprintf("seek: %v", err)}
		}
	}

	return Verdict{Outcome: NotProtected, Confidence: 1.0, Detail: "no RAR4 encryption flags"}
}

// RAR5 block layout: CRC32(4) headerSize(vint) type(vint) flags(vint) ...
// An encryption block (type 4) as the first block means all further
// headers are encrypted; a file block (type 2) may carry a per-file
// encryption record (type 1) in its extra area.
func inspectRar5(r io.Reader) Verdict {
	const (
		blockMain       = 1
		blockFile       = 2
		blockService    = 3
		blockEncryption = 4
		blockEnd        = 5

		flagExtraArea = 0x0001
		flagDataArea  = 0x0002

		maxBlocks = 128
	)

	br := bufio.NewReader(r)
	for i := 0; i < maxBlocks; i++ {
		if _, err := io.CopyN(io.Discard, br, 4); err != nil { // header CRC
			if i > 0 {
				return Verdict{Outcome: NotProtected, Confidence: 1.0, Detail: "no RAR5 encryption blocks"}
			}
			return Verdict{Outcome: Inconclusive, Detail: "truncated RAR5 archive"}
		}

		headerSize, err := readVint(br)
		if err != nil {
			return Verdict{Outcome: Inconclusive, Detail: "malformed RAR5 header size"}
		}

		header := make([]byte, headerSize)
		if _, err := io.ReadFull(br, header); err != nil {
			return Verdict{Outcome: Inconclusive, Detail: "truncated RAR5 header"}
		}

		hr := bytes.NewReader(header)
		blockType, err := readVint(hr)
		if err != nil {
			return Verdict{Outcome: Inconclusive, Detail: "malformed RAR5 block type"}
		}
		flags, err := readVint(hr)
		if err != nil {
			return Verdict{Outcome: Inconclusive, Detail: "malformed RAR5 block flags"}
		}

		if blockType == blockEncryption {
			return Verdict{Outcome: Protected, Confidence: 1.0, Detail: "RAR5 encrypted headers"}
		}

		var extraSize, dataSize uint64
		if flags&flagExtraArea != 0 {
			if extraSize, err = readVint(hr); err != nil {
				return Verdict{Outcome: Inconclusive, Detail: "malformed RAR5 extra size"}
			}
		}
		if flags&flagDataArea != 0 {
			if dataSize, err = readVint(hr); err != nil {
				return Verdict{Outcome: Inconclusive, Detail: "malformed RAR5 data size"}
			}
		}

		if blockType == blockFile || blockType == blockService {
			if extraSize > 0 && extraSize <= uint64(hr.Len()) && rar5ExtraHasEncryption(header[len(header)-int(extraSize):]) {
				return Verdict{Outcome: Protected, Confidence: 1.0, Detail: "RAR5 encrypted file entry"}
			}
		}

		if blockType == blockEnd {
			return Verdict{Outcome: NotProtected, Confidence: 1.0, Detail: "no RAR5 encryption blocks"}
		}

		if dataSize > 0 {
			if _, err := io.CopyN(io.Discard, br, int64(dataSize)); err != nil {
				return Verdict{Outcome: Inconclusive, Detail: "truncated RAR5 data area"}
			}
		}
	}

	return Verdict{Outcome: NotProtected, Confidence: 1.0, Detail: "no RAR5 encryption blocks"}
}

// rar5ExtraHasEncryption scans a block's extra area records for the file
// encryption record (type 1).
func rar5ExtraHasEncryption(extra []byte) bool {
	const recEncryption = 1

	r := bytes.NewReader(extra)
	for r.Len() > 0 {
		size, err := readVint(r)
		if err != nil || size == 0 || size > uint64(r.Len()) {
			return false
		}

		rec := make([]byte, size)
		if _, err := io.ReadFull(r, rec); err != nil {
			return false
		}

		recType, err := readVint(bytes.NewReader(rec))
		if err != nil {
			return false
		}
		if recType == recEncryption {
			return true
		}
	}
	return false
}

// readVint decodes the RAR5 variable-length integer: little-endian 7-bit
// groups with a continuation bit.
func readVint(r io.ByteReader) (uint64, error) {
	var v uint64
	for shift := uint(0); shift < 70; shift += 7 {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		v |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, fmt.Errorf("vint too long")
}
