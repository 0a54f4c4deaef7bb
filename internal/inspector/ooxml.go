package inspector

import (
	"archive/zip"
	"fmt"
)

// OfficeOpenXMLInspector handles modern Office documents (.docx, .xlsx,
// .pptx). A plaintext OOXML file is a ZIP container; an encrypted one is
// repackaged as a compound file holding an EncryptionInfo stream and the
// ciphertext in EncryptedPackage.
type OfficeOpenXMLInspector struct{}

// Name implements Inspector.
func (i *OfficeOpenXMLInspector) Name() string { return "office-openxml" }

// Inspect implements Inspector.
func (i *OfficeOpenXMLInspector) Inspect(path string) Verdict {
	return inspect(i.Name(), func() Verdict {
		if v, ok := inspectOOXMLZip(path); ok {
			return v
		}

		// Not a readable ZIP. Encrypted OOXML is stored as a compound file.
		if !hasCFBSignature(path) {
			return Verdict{Outcome: Inconclusive, Detail: "neither ZIP nor compound file"}
		}

		doc, err := openCFB(path)
		if err != nil {
			// OLE signature present but the directory is unreadable; this is
			// the shape whole-file encryption leaves behind.
			return Verdict{
				Outcome:    Protected,
				Confidence: 0.6,
				Detail:     fmt.Sprintf("compound-file signature with unreadable directory: %v", err),
			}
		}
		defer doc.Close()

		if entry := doc.findStream("EncryptionInfo", "EncryptedPackage"); entry != nil {
			return Verdict{
				Outcome:    Protected,
				Confidence: 1.0,
				Detail:     fmt.Sprintf("encryption stream %q present", entry.Name),
			}
		}

		return Verdict{
			Outcome:    Protected,
			Confidence: 0.6,
			Detail:     "OOXML repackaged as compound file without plaintext package",
		}
	})
}

// inspectOOXMLZip returns a verdict when the file opens as a ZIP container.
func inspectOOXMLZip(path string) (Verdict, bool) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return Verdict{}, false
	}
	defer rc.Close()

	for _, f := range rc.File {
		if f.Name == "[Content_Types].xml" {
			return Verdict{
				Outcome:    NotProtected,
				Confidence: 1.0,
				Detail:     "plaintext OOXML package",
			}, true
		}
	}

	// A valid ZIP that is not an OOXML package; the container itself is
	// readable, so there is no password gate.
	return Verdict{Outcome: NotProtected, Confidence: 1.0, Detail: "readable ZIP container"}, true
}
