// Package store loads benchmark results from a results directory.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/grainchain/grainbench/internal/models"
	"golang.org/x/sync/errgroup"
)

// ErrNoResults is returned by Latest when the store holds no runs.
var ErrNoResults = errors.New("no benchmark results found")

// Store is a queryable set of benchmark runs.
type Store interface {
	All() ([]models.BenchmarkResult, error)
	RunsForProvider(provider string) ([]models.BenchmarkResult, error)
	RunsInRange(start, end time.Time) ([]models.BenchmarkResult, error)
	Latest() (models.BenchmarkResult, error)
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

// FileStore reads grainchain_benchmark_* files from a directory. JSON results
// are preferred; Markdown reports are read only when no JSON result exists.
type FileStore struct {
	dir    string
	now    func() time.Time
	loc    *time.Location
	logger *slog.Logger

	mu     sync.RWMutex
	runs   []models.BenchmarkResult
	loaded bool
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithClock sets the time used for runs whose timestamp cannot be parsed.
func WithClock(now func() time.Time) Option {
	return func(fs *FileStore) { fs.now = now }
}

// WithLocation sets the zone used for timestamps without an offset.
func WithLocation(loc *time.Location) Option {
	return func(fs *FileStore) { fs.loc = loc }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(fs *FileStore) { fs.logger = l }
}

// NewFileStore creates a FileStore that reads results from dir.
func NewFileStore(dir string, opts ...Option) *FileStore {
	fs := &FileStore{
		dir:    dir,
		now:    time.Now,
		loc:    time.Local,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(fs)
	}
	return fs
}

// Dir returns the results directory.
func (fs *FileStore) Dir() string {
	return fs.dir
}

func (fs *FileStore) load() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("results directory not found: %s", fs.dir)
		}
		return fmt.Errorf("reading results directory: %w", err)
	}

	var jsonFiles, mdFiles []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch name := e.Name(); {
		case IsJSONResult(name):
			jsonFiles = append(jsonFiles, filepath.Join(fs.dir, name))
		case IsMarkdownResult(name):
			mdFiles = append(mdFiles, filepath.Join(fs.dir, name))
		}
	}

	parser := NewParser(fs.now, fs.loc, fs.logger)
	runs := fs.parseAll(jsonFiles, parser.ParseJSON)
	if len(runs) == 0 {
		runs = fs.parseAll(mdFiles, parser.ParseMarkdown)
	}
	models.SortByTimestamp(runs)

	fs.logger.Debug("loaded benchmark results", "dir", fs.dir, "runs", len(runs))
	fs.runs = runs
	fs.loaded = true
	return nil
}

// parseAll parses paths concurrently. Files that cannot be read or parsed are
// logged and skipped. The result keeps the order of paths.
func (fs *FileStore) parseAll(paths []string, parse func([]byte, string) (models.BenchmarkResult, error)) []models.BenchmarkResult {
	parsed := make([]*models.BenchmarkResult, len(paths))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			data, err := ReadFile(path)
			if err == nil {
				var r models.BenchmarkResult
				if r, err = parse(data, path); err == nil {
					parsed[i] = &r
					return nil
				}
			}
			fs.logger.Warn("skipping benchmark result", "file", path, "error", err)
			return nil
		})
	}
	_ = g.Wait()

	runs := make([]models.BenchmarkResult, 0, len(paths))
	for _, r := range parsed {
		if r != nil {
			runs = append(runs, *r)
		}
	}
	return runs
}

func (fs *FileStore) ensureLoaded() error {
	fs.mu.RLock()
	if fs.loaded {
		fs.mu.RUnlock()
		return nil
	}
	fs.mu.RUnlock()
	return fs.load()
}

// Reload forces a fresh read of the results directory.
func (fs *FileStore) Reload() error {
	return fs.load()
}

// All returns every run in ascending timestamp order.
func (fs *FileStore) All() ([]models.BenchmarkResult, error) {
	if err := fs.ensureLoaded(); err != nil {
		return nil, err
	}
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return append([]models.BenchmarkResult(nil), fs.runs...), nil
}

// RunsForProvider returns the runs that list provider among the providers
// tested.
func (fs *FileStore) RunsForProvider(provider string) ([]models.BenchmarkResult, error) {
	runs, err := fs.All()
	if err != nil {
		return nil, err
	}
	return forProvider(runs, provider), nil
}

// RunsInRange returns the runs with a timestamp in [start, end].
func (fs *FileStore) RunsInRange(start, end time.Time) ([]models.BenchmarkResult, error) {
	runs, err := fs.All()
	if err != nil {
		return nil, err
	}
	return models.FilterRange(runs, start, end), nil
}

// Latest returns the newest run.
func (fs *FileStore) Latest() (models.BenchmarkResult, error) {
	runs, err := fs.All()
	if err != nil {
		return models.BenchmarkResult{}, err
	}
	return latest(runs)
}

func forProvider(runs []models.BenchmarkResult, provider string) []models.BenchmarkResult {
	var out []models.BenchmarkResult
	for _, r := range runs {
		if r.Tested(provider) {
			out = append(out, r)
		}
	}
	return out
}

func latest(runs []models.BenchmarkResult) (models.BenchmarkResult, error) {
	if len(runs) == 0 {
		return models.BenchmarkResult{}, ErrNoResults
	}
	return runs[len(runs)-1], nil
}
