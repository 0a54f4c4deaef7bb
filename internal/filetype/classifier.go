package filetype

import "github.com/gabriel-vasile/mimetype"

// Classifier identifies a file's content type and returns a MIME-like label.
// Implementations must not panic across this boundary; errors are reported
// and the resolver degrades to Unknown.
type Classifier interface {
	Match(path string) (string, error)
}

// MimeClassifier detects content types by magic-byte sniffing via the
// mimetype library. It reads only a bounded header from the file.
type MimeClassifier struct{}

// NewMimeClassifier returns the production content classifier.
func NewMimeClassifier() *MimeClassifier {
	return &MimeClassifier{}
}

// Match implements Classifier.
func (c *MimeClassifier) Match(path string) (string, error) {
	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return "", err
	}
	return mime.String(), nil
}

// ClassifierFunc adapts a plain function to the Classifier interface.
type ClassifierFunc func(path string) (string, error)

// Match implements Classifier.
func (f ClassifierFunc) Match(path string) (string, error) { return f(path) }
