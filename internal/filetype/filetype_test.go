package filetype

import (
	"errors"
	"testing"
)

func TestResolveByExtension(t *testing.T) {
	cases := []struct {
		path string
		want Category
	}{
		{"report.docx", OfficeOpenXML},
		{"REPORT.DOCX", OfficeOpenXML},
		{"ledger.xls", OfficeLegacy},
		{"paper.pdf", PDF},
		{"backup.zip", Zip},
		{"backup.rar", Rar},
		{"backup.7z", SevenZip},
		{"app.sqlite3", Sqlite},
		{"mailbox.pst", OutlookPST},
		{"note.msg", OutlookMSG},
		{"letter.odt", LibreOffice},
		{"Überschrift.PDF", PDF},
	}

	resolver := NewResolver(nil)
	for _, tc := range cases {
		if got := resolver.Resolve(tc.path); got != tc.want {
			t.Fatalf("Resolve(%q) = %s, want %s", tc.path, got, tc.want)
		}
	}
}

func TestResolveFallsBackToClassifier(t *testing.T) {
	classifier := ClassifierFunc(func(string) (string, error) {
		return "application/pdf", nil
	})

	resolver := NewResolver(classifier)
	if got := resolver.Resolve("mystery.bin"); got != PDF {
		t.Fatalf("expected classifier fallback to PDF, got %s", got)
	}
}

func TestResolveClassifierNotConsultedForKnownExtension(t *testing.T) {
	classifier := ClassifierFunc(func(string) (string, error) {
		t.Fatal("classifier must not run when the extension is known")
		return "", nil
	})

	resolver := NewResolver(classifier)
	if got := resolver.Resolve("doc.pdf"); got != PDF {
		t.Fatalf("expected PDF, got %s", got)
	}
}

func TestResolveClassifierFailureIsNonFatal(t *testing.T) {
	classifier := ClassifierFunc(func(string) (string, error) {
		return "", errors.New("classifier exploded")
	})

	resolver := NewResolver(classifier)
	if got := resolver.Resolve("mystery.bin"); got != Unknown {
		t.Fatalf("classifier failure should resolve to Unknown, got %s", got)
	}
}

func TestCategoryForLabelParameters(t *testing.T) {
	if got := categoryForLabel("application/zip; charset=binary"); got != Zip {
		t.Fatalf("expected parameterized label to map to Zip, got %s", got)
	}
	if got := categoryForLabel("text/plain"); got != Unknown {
		t.Fatalf("unmapped label should be Unknown, got %s", got)
	}
}

func TestHighEntropyExt(t *testing.T) {
	if !HighEntropyExt("secrets.tar.gpg") {
		t.Fatal("expected .gpg to be a high-entropy extension")
	}
	if HighEntropyExt("notes.txt") {
		t.Fatal(".txt must not be a high-entropy extension")
	}
}
