package inspector

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
)

// LibreOfficeInspector handles OpenDocument files. Encrypted ODF keeps the
// ZIP container readable and records per-entry encryption-data elements in
// META-INF/manifest.xml.
type LibreOfficeInspector struct{}

// Name implements Inspector.
func (i *LibreOfficeInspector) Name() string { return "libre-office" }

// Inspect implements Inspector.
func (i *LibreOfficeInspector) Inspect(path string) Verdict {
	return inspect(i.Name(), func() Verdict {
		rc, err := zip.OpenReader(path)
		if err != nil {
			return Verdict{Outcome: Inconclusive, Detail: fmt.Sprintf("zip: %v", err)}
		}
		defer rc.Close()

		var manifest *zip.File
		for _, f := range rc.File {
			if f.Name == "META-INF/manifest.xml" {
				manifest = f
				break
			}
		}
		if manifest == nil {
			return Verdict{Outcome: Inconclusive, Detail: "no META-INF/manifest.xml"}
		}

		mr, err := manifest.Open()
		if err != nil {
			return Verdict{Outcome: Inconclusive, Detail: fmt.Sprintf("open manifest: %v", err)}
		}
		defer mr.Close()

		encrypted, err := manifestHasEncryptionData(mr)
		if err != nil {
			return Verdict{Outcome: Inconclusive, Detail: fmt.Sprintf("parse manifest: %v", err)}
		}

		if encrypted {
			return Verdict{Outcome: Protected, Confidence: 1.0, Detail: "manifest encryption-data element"}
		}
		return Verdict{Outcome: NotProtected, Confidence: 1.0, Detail: "manifest carries no encryption-data"}
	})
}

// manifestHasEncryptionData streams the manifest looking for any
// encryption-data element, regardless of namespace prefix.
func manifestHasEncryptionData(r io.Reader) (bool, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if start, ok := tok.(xml.StartElement); ok && start.Name.Local == "encryption-data" {
			return true, nil
		}
	}
}
