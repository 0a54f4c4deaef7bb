package detector

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/example/lockscan/internal/entropy"
	"github.com/example/lockscan/internal/filetype"
	"github.com/example/lockscan/internal/inspector"
)

const (
	// DefaultTimeout bounds a single file's analysis so a pathological
	// input cannot stall a batch.
	DefaultTimeout = 10 * time.Second

	// extHintBoost is added to entropy suspicion for unrecognized files
	// whose extension conventionally marks encrypted payloads.
	extHintBoost = 0.2
)

// DefaultWorkers sizes the parallel pool for I/O-bound scanning.
func DefaultWorkers() int {
	n := 2*runtime.NumCPU() + 4
	if n < 32 {
		n = 32
	}
	return n
}

// Options tunes an Engine. Zero values select the documented defaults.
type Options struct {
	SampleSize        int
	EntropyBaseline   float64
	DecisionThreshold float64
	Timeout           time.Duration
	Workers           int
	// Sequential disables the worker pool; tasks run one at a time in
	// directory-walk order.
	Sequential bool
	// Classifier overrides the content-based type classifier. Nil selects
	// the production magic-byte classifier.
	Classifier filetype.Classifier
	// Registry overrides the inspector registry. Nil selects the built-in
	// set. The registry is read concurrently and must not be mutated after
	// the Engine is constructed.
	Registry inspector.Registry
}

// Engine drives single-file and batch analysis. It owns the task lifecycle;
// inspectors and the entropy analyzer only ever see a path and return value
// types. Safe for concurrent use.
type Engine struct {
	resolver  *filetype.Resolver
	registry  inspector.Registry
	analyzer  *entropy.Analyzer
	threshold float64
	timeout   time.Duration
	workers   int
	seq       bool
}

// NewEngine builds an engine from the given options.
func NewEngine(opts Options) *Engine {
	classifier := opts.Classifier
	if classifier == nil {
		classifier = filetype.NewMimeClassifier()
	}

	registry := opts.Registry
	if registry == nil {
		registry = inspector.DefaultRegistry()
	}

	threshold := opts.DecisionThreshold
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultDecisionThreshold
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}

	return &Engine{
		resolver:  filetype.NewResolver(classifier),
		registry:  registry,
		analyzer:  entropy.NewAnalyzer(opts.SampleSize, opts.EntropyBaseline),
		threshold: threshold,
		timeout:   timeout,
		workers:   workers,
		seq:       opts.Sequential,
	}
}

// AnalyzeFile classifies a single file. Every fault is converted into a
// Result carrying the error; the method itself never fails.
func (e *Engine) AnalyzeFile(ctx context.Context, path string) Result {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	done := make(chan Result, 1)
	go func() {
		done <- e.analyze(path)
	}()

	var res Result
	select {
	case res = <-done:
	case <-ctx.Done():
		res = Result{Path: path, Error: "timeout", Confidence: 0}
	}

	res.Elapsed = time.Since(start).Seconds()
	return res
}

// analyze runs the per-file pipeline without timing concerns.
func (e *Engine) analyze(path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		return Result{Path: path, Error: fmt.Sprintf("stat: %v", err)}
	}
	if !info.Mode().IsRegular() {
		return Result{Path: path, Error: "not a regular file"}
	}

	// Empty files carry nothing to protect; no ambiguity.
	if info.Size() == 0 {
		return Result{Path: path, Confidence: 1.0, Detail: "empty file"}
	}

	category := e.resolver.Resolve(path)

	var verdict *inspector.Verdict
	if insp, ok := e.registry.Lookup(category); ok {
		v := insp.Inspect(path)
		verdict = &v
	}

	// Skip entropy when the inspector already produced a definite
	// high-confidence verdict. This short-circuit is part of the contract,
	// not an evaluation-order accident.
	var evidence *entropy.Evidence
	if verdict == nil || !verdict.Definite(definiteConfidence) {
		ev, err := e.analyzer.Analyze(path)
		if err == nil {
			if category == filetype.Unknown && filetype.HighEntropyExt(path) {
				ev.Suspicion = minFloat(ev.Suspicion+extHintBoost, 1.0)
			}
			evidence = &ev
		}
	}

	res := Result{Path: path, Category: string(category)}
	if verdict != nil {
		res.Detail = verdict.Detail
	}

	hasVerdict := verdict != nil && definite(verdict)
	if !hasVerdict && evidence == nil {
		res.Error = "no evidence: inspector inconclusive and file unreadable"
		return res
	}

	res.Protected, res.Confidence, res.Encrypted = aggregate(verdict, evidence, e.threshold)
	return res
}

// ScanDir walks root recursively and analyzes every regular file. Symlinks
// are skipped, which also rules out traversal cycles. A root that does not
// exist is the only fatal error; per-file faults surface inside results.
// In parallel mode results arrive in completion order; callers needing a
// stable order should SortResults afterwards.
func (e *Engine) ScanDir(ctx context.Context, root string) ([]Result, error) {
	paths, err := e.collectFiles(root)
	if err != nil {
		return nil, err
	}

	if e.seq {
		results := make([]Result, 0, len(paths))
		for _, path := range paths {
			results = append(results, e.AnalyzeFile(ctx, path))
		}
		return results, nil
	}

	results := make([]Result, 0, len(paths))
	resultCh := make(chan Result, len(paths))

	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for res := range resultCh {
			results = append(results, res)
		}
	}()

	group := errgroup.Group{}
	group.SetLimit(e.workers)
	for _, path := range paths {
		path := path
		group.Go(func() error {
			resultCh <- e.AnalyzeFile(ctx, path)
			return nil
		})
	}

	// Workers never return errors; faults live inside each Result.
	_ = group.Wait()
	close(resultCh)
	<-collected

	return results, nil
}

// collectFiles enumerates regular files under root in walk order.
func (e *Engine) collectFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("invalid scan root %q: %w", root, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtree: skip rather than abort the batch.
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			// Symlinks are not followed; this guarantees cycle-free walks
			// and visits each real file at most once.
			return nil
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// SortResults orders results by path, for callers that need stable output
// after a parallel scan.
func SortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
}
