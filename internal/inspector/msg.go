package inspector

import (
	"fmt"
	"strings"
)

// MSGInspector handles Outlook item files, which are compound files. An
// EncryptedSummary stream is an explicit protection marker; a readable
// directory with ordinary message streams is a clean negative.
type MSGInspector struct{}

// Name implements Inspector.
func (i *MSGInspector) Name() string { return "msg" }

// Inspect implements Inspector.
func (i *MSGInspector) Inspect(path string) Verdict {
	return inspect(i.Name(), func() Verdict {
		doc, err := openCFB(path)
		if err != nil {
			return Verdict{Outcome: Inconclusive, Detail: fmt.Sprintf("compound file: %v", err)}
		}
		defer doc.Close()

		var sawMessage bool
		for entry, err := doc.reader.Next(); err == nil; entry, err = doc.reader.Next() {
			if entry.Name == "EncryptedSummary" {
				// Marker stream rather than a protocol flag read, hence the
				// slightly reduced confidence.
				return Verdict{Outcome: Protected, Confidence: 0.9, Detail: "EncryptedSummary stream present"}
			}
			if strings.HasPrefix(entry.Name, "__properties_version") ||
				strings.HasPrefix(entry.Name, "__substg1.0_") {
				sawMessage = true
			}
		}

		if !sawMessage {
			return Verdict{Outcome: Inconclusive, Detail: "no message property streams"}
		}

		return Verdict{Outcome: NotProtected, Confidence: 1.0, Detail: "readable message streams"}
	})
}
