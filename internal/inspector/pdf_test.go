package inspector

import (
	"os"
	"path/filepath"
	"testing"
)

func writePDFFixture(t *testing.T, name, trailer string) string {
	t.Helper()

	body := "%PDF-1.7\n" +
		"1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n" +
		"2 0 obj\n<< /Type /Pages /Kids [] /Count 0 >>\nendobj\n" +
		"xref\n0 3\n0000000000 65535 f \n0000000009 00000 n \n0000000060 00000 n \n" +
		trailer +
		"startxref\n110\n%%EOF\n"

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestPDFInspectorEncryptDictionary(t *testing.T) {
	path := writePDFFixture(t, "locked.pdf",
		"trailer\n<< /Size 3 /Root 1 0 R /Encrypt 4 0 R /ID [<aa><bb>] >>\n")

	v := (&PDFInspector{}).Inspect(path)
	if v.Outcome != Protected || v.Confidence != 1.0 {
		t.Fatalf("expected Protected 1.0 for /Encrypt trailer, got %s conf=%f", v.Outcome, v.Confidence)
	}
}

func TestPDFInspectorCleanTrailer(t *testing.T) {
	path := writePDFFixture(t, "plain.pdf", "trailer\n<< /Size 3 /Root 1 0 R >>\n")

	v := (&PDFInspector{}).Inspect(path)
	if v.Outcome != NotProtected || v.Confidence != 1.0 {
		t.Fatalf("expected NotProtected 1.0, got %s conf=%f", v.Outcome, v.Confidence)
	}
}

func TestPDFInspectorMissingHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	if err := os.WriteFile(path, []byte("not a pdf"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	v := (&PDFInspector{}).Inspect(path)
	if v.Outcome != Inconclusive {
		t.Fatalf("expected Inconclusive without %%PDF- header, got %s", v.Outcome)
	}
}

func TestPDFInspectorTruncatedTrailer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cut.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4\nsome objects but no xref"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	v := (&PDFInspector{}).Inspect(path)
	if v.Outcome != Inconclusive {
		t.Fatalf("expected Inconclusive for missing startxref, got %s", v.Outcome)
	}
}
