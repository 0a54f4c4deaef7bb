// Package filetype maps files to the canonical format categories the
// inspector registry dispatches on. Extension lookup is the primary signal;
// a pluggable content classifier is consulted only when the extension is
// missing or unrecognized.
package filetype

import (
	"path/filepath"
	"strings"
)

// Category is a canonical format tag. Exactly one category applies per file;
// Unknown routes straight to the entropy fallback.
type Category string

const (
	OfficeOpenXML Category = "office_openxml"
	OfficeLegacy  Category = "office_legacy"
	PDF           Category = "pdf"
	Zip           Category = "zip"
	Rar           Category = "rar"
	SevenZip      Category = "7z"
	Sqlite        Category = "sqlite"
	OutlookPST    Category = "pst"
	OutlookMSG    Category = "msg"
	LibreOffice   Category = "libre_office"
	Unknown       Category = "unknown"
)

// extensionMap is the primary, static lookup table. Keys carry no dot and
// are compared case-insensitively.
var extensionMap = map[string]Category{
	"docx": OfficeOpenXML,
	"xlsx": OfficeOpenXML,
	"pptx": OfficeOpenXML,
	"docm": OfficeOpenXML,
	"xlsm": OfficeOpenXML,
	"pptm": OfficeOpenXML,

	"doc": OfficeLegacy,
	"xls": OfficeLegacy,
	"ppt": OfficeLegacy,

	"pdf": PDF,

	"zip": Zip,
	"rar": Rar,
	"7z":  SevenZip,

	"db":      Sqlite,
	"sqlite":  Sqlite,
	"sqlite3": Sqlite,

	"pst": OutlookPST,
	"msg": OutlookMSG,

	"odt": LibreOffice,
	"ods": LibreOffice,
	"odp": LibreOffice,
}

// highEntropyExts are extensions that conventionally mark already-encrypted
// payloads. They carry no inspector; the aggregator uses them as a hint.
var highEntropyExts = map[string]struct{}{
	"gpg":   {},
	"enc":   {},
	"aes":   {},
	"crypt": {},
	"pgp":   {},
}

// HighEntropyExt reports whether the path carries an extension that
// conventionally marks encrypted content (.gpg, .enc, .aes, .crypt, .pgp).
func HighEntropyExt(path string) bool {
	_, ok := highEntropyExts[normalizeExt(path)]
	return ok
}

// Resolver determines the format category of a file.
type Resolver struct {
	classifier Classifier
}

// NewResolver builds a resolver with the given fallback classifier.
// A nil classifier disables content-based fallback entirely.
func NewResolver(classifier Classifier) *Resolver {
	return &Resolver{classifier: classifier}
}

// Resolve maps a path to a Category. Extension wins; the content classifier
// is only consulted for unrecognized extensions, and its failure is
// non-fatal: the file resolves to Unknown rather than aborting the scan.
func (r *Resolver) Resolve(path string) Category {
	if cat, ok := extensionMap[normalizeExt(path)]; ok {
		return cat
	}

	if r.classifier == nil {
		return Unknown
	}

	label, err := r.classifier.Match(path)
	if err != nil {
		return Unknown
	}
	return categoryForLabel(label)
}

// labelMap translates classifier MIME labels into categories. Labels the
// table does not know collapse to Unknown.
var labelMap = map[string]Category{
	"application/pdf": PDF,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   OfficeOpenXML,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         OfficeOpenXML,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": OfficeOpenXML,
	"application/msword":                      OfficeLegacy,
	"application/vnd.ms-excel":                OfficeLegacy,
	"application/vnd.ms-powerpoint":           OfficeLegacy,
	"application/x-ole-storage":               OfficeLegacy,
	"application/zip":                         Zip,
	"application/x-rar":                       Rar,
	"application/x-rar-compressed":            Rar,
	"application/x-7z-compressed":             SevenZip,
	"application/vnd.sqlite3":                 Sqlite,
	"application/x-sqlite3":                   Sqlite,
	"application/vnd.ms-outlook":              OutlookMSG,
	"application/vnd.oasis.opendocument.text": LibreOffice,
	"application/vnd.oasis.opendocument.spreadsheet":  LibreOffice,
	"application/vnd.oasis.opendocument.presentation": LibreOffice,
}

func categoryForLabel(label string) Category {
	// Strip any "; charset=..." style parameters before lookup.
	if idx := strings.IndexByte(label, ';'); idx >= 0 {
		label = label[:idx]
	}
	label = strings.TrimSpace(strings.ToLower(label))

	if cat, ok := labelMap[label]; ok {
		return cat
	}
	return Unknown
}

func normalizeExt(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}
