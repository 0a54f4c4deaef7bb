package detector

import (
	"bytes"
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"
	"time"

	"github.com/example/lockscan/internal/filetype"
	"github.com/example/lockscan/internal/inspector"
)

// stubInspector returns a canned verdict and records invocations.
type stubInspector struct {
	verdict inspector.Verdict
	calls   int
}

func (s *stubInspector) Name() string { return "stub" }

func (s *stubInspector) Inspect(string) inspector.Verdict {
	s.calls++
	return s.verdict
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// randomBytes produces a deterministic high-entropy sample.
func randomBytes(n int) []byte {
	rng := rand.New(rand.NewSource(42))
	buf := make([]byte, n)
	rng.Read(buf)
	return buf
}

func TestAnalyzeFileEmptyFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.bin", nil)

	engine := NewEngine(Options{})
	res := engine.AnalyzeFile(context.Background(), path)

	if res.Protected || res.Encrypted {
		t.Fatal("empty file must classify clean")
	}
	if res.Confidence != 1.0 {
		t.Fatalf("empty file confidence must be 1.0, got %f", res.Confidence)
	}
	if res.Elapsed < 0 {
		t.Fatalf("elapsed must be non-negative, got %f", res.Elapsed)
	}
}

func TestAnalyzeFileMissingFileIsNonFatal(t *testing.T) {
	engine := NewEngine(Options{})
	res := engine.AnalyzeFile(context.Background(), filepath.Join(t.TempDir(), "gone.bin"))

	if res.Error == "" {
		t.Fatal("missing file should carry an error")
	}
	if res.Confidence != 0 {
		t.Fatalf("faulted result must carry confidence 0, got %f", res.Confidence)
	}
}

func TestAnalyzeFileSkipsEntropyOnDefiniteVerdict(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.stub", randomBytes(4096))

	stub := &stubInspector{verdict: inspector.Verdict{Outcome: inspector.NotProtected, Confidence: 1.0}}
	engine := NewEngine(Options{
		Classifier: filetype.ClassifierFunc(func(string) (string, error) {
			return "application/pdf", nil
		}),
		Registry: inspector.Registry{filetype.PDF: stub},
	})

	res := engine.AnalyzeFile(context.Background(), path)
	if res.Protected {
		t.Fatal("definite NotProtected must win despite random content")
	}
	// High-entropy content would have flipped Encrypted had the fallback
	// run; the short-circuit must prevent that.
	if res.Encrypted {
		t.Fatal("entropy fallback must be skipped on a confident verdict")
	}
	if stub.calls != 1 {
		t.Fatalf("inspector should run exactly once, ran %d times", stub.calls)
	}
}

func TestAnalyzeFileUnknownCategoryUsesEntropy(t *testing.T) {
	dir := t.TempDir()
	highEntropy := writeFile(t, dir, "blob.xyz", randomBytes(8192))
	plainText := writeFile(t, dir, "notes.xyz", bytes.Repeat([]byte("plain old text content\n"), 300))

	engine := NewEngine(Options{
		Classifier: filetype.ClassifierFunc(func(string) (string, error) {
			return "unknown", nil
		}),
	})

	res := engine.AnalyzeFile(context.Background(), highEntropy)
	if !res.Protected || !res.Encrypted {
		t.Fatalf("random bytes should classify protected via entropy, got %+v", res)
	}
	if res.Confidence < 0.3 || res.Confidence > 0.85 {
		t.Fatalf("entropy-only confidence %f outside [0.3, 0.85]", res.Confidence)
	}

	res = engine.AnalyzeFile(context.Background(), plainText)
	if res.Protected || res.Encrypted {
		t.Fatalf("plain text should classify clean, got %+v", res)
	}
}

func TestAnalyzeFileTimeout(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "slow.pdf", []byte("%PDF-1.4 whatever"))

	slow := &slowInspector{delay: 500 * time.Millisecond}
	engine := NewEngine(Options{
		Timeout:  20 * time.Millisecond,
		Registry: inspector.Registry{filetype.PDF: slow},
	})

	res := engine.AnalyzeFile(context.Background(), path)
	if res.Error != "timeout" {
		t.Fatalf("expected timeout error, got %q", res.Error)
	}
	if res.Confidence != 0 {
		t.Fatalf("timeout result must carry confidence 0, got %f", res.Confidence)
	}
}

type slowInspector struct{ delay time.Duration }

func (s *slowInspector) Name() string { return "slow" }

func (s *slowInspector) Inspect(string) inspector.Verdict {
	time.Sleep(s.delay)
	return inspector.Verdict{Outcome: inspector.Inconclusive}
}

func TestScanDirParallelMatchesSequential(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "random.xyz", randomBytes(8192))
	writeFile(t, dir, "text.txt", bytes.Repeat([]byte("hello lockscan\n"), 200))
	writeFile(t, dir, "empty.bin", nil)
	sub := filepath.Join(dir, "nested")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, sub, "more.xyz", randomBytes(2048))

	classifier := filetype.ClassifierFunc(func(string) (string, error) { return "unknown", nil })

	parallel := NewEngine(Options{Classifier: classifier, Workers: 8})
	sequential := NewEngine(Options{Classifier: classifier, Sequential: true})

	pr, err := parallel.ScanDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("parallel scan: %v", err)
	}
	sr, err := sequential.ScanDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("sequential scan: %v", err)
	}

	if len(pr) != 4 || len(sr) != 4 {
		t.Fatalf("expected 4 results each, got %d and %d", len(pr), len(sr))
	}

	SortResults(pr)
	SortResults(sr)
	for i := range pr {
		// Elapsed differs between modes; classification must not.
		pr[i].Elapsed, sr[i].Elapsed = 0, 0
		if !reflect.DeepEqual(pr[i], sr[i]) {
			t.Fatalf("mode mismatch for %s:\nparallel:   %+v\nsequential: %+v",
				pr[i].Path, pr[i], sr[i])
		}
	}
}

func TestScanDirInvalidRootIsFatal(t *testing.T) {
	engine := NewEngine(Options{})
	if _, err := engine.ScanDir(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("nonexistent root must be a fatal error")
	}
}

func TestScanDirSkipsSymlinkCycles(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation not reliable on windows")
	}

	dir := t.TempDir()
	writeFile(t, dir, "a.txt", []byte("content"))
	if err := os.Symlink(dir, filepath.Join(dir, "loop")); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	engine := NewEngine(Options{
		Sequential: true,
		Classifier: filetype.ClassifierFunc(func(string) (string, error) { return "unknown", nil }),
	})

	done := make(chan struct{})
	var results []Result
	var scanErr error
	go func() {
		defer close(done)
		results, scanErr = engine.ScanDir(context.Background(), dir)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("scan did not terminate with a symlink cycle present")
	}

	if scanErr != nil {
		t.Fatalf("scan failed: %v", scanErr)
	}
	if len(results) != 1 {
		t.Fatalf("cycle members must appear at most once, got %d results", len(results))
	}
}

func TestScanDirDeletedFileYieldsErrorResult(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.txt", []byte("still here"))
	doomed := writeFile(t, dir, "doomed.txt", []byte("going away"))

	engine := NewEngine(Options{
		Sequential: true,
		Classifier: filetype.ClassifierFunc(func(string) (string, error) { return "unknown", nil }),
	})

	paths, err := engine.collectFiles(dir)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 files, got %d", len(paths))
	}

	// Simulate deletion between enumeration and analysis.
	if err := os.Remove(doomed); err != nil {
		t.Fatalf("remove: %v", err)
	}

	var results []Result
	for _, p := range paths {
		results = append(results, engine.AnalyzeFile(context.Background(), p))
	}

	if len(results) != 2 {
		t.Fatalf("result set must keep one entry per enumerated file, got %d", len(results))
	}

	var faulted *Result
	for i := range results {
		if results[i].Path == doomed {
			faulted = &results[i]
		}
	}
	if faulted == nil {
		t.Fatal("deleted file entry missing from results")
	}
	if faulted.Error == "" || faulted.Confidence != 0 {
		t.Fatalf("deleted file must carry a non-fatal error with confidence 0, got %+v", faulted)
	}
}

func TestScanDirSingleFileRoot(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "only.txt", []byte("single file"))

	engine := NewEngine(Options{
		Classifier: filetype.ClassifierFunc(func(string) (string, error) { return "unknown", nil }),
	})

	results, err := engine.ScanDir(context.Background(), path)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(results) != 1 || results[0].Path != path {
		t.Fatalf("expected exactly the given file, got %+v", results)
	}
}
