package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dupimg/dupimg/pkg/api"
	"github.com/sirupsen/logrus"
)

// Config defines scanner behavior: the root sets to walk/skip/mark,
// the accepted format set, and attribute/size gates, per spec §4.1.
type Config struct {
	Roots          Roots
	Extensions     []string
	MinFileSize    int64
	MaxFileSize    int64
	IncludeHidden  bool
	IncludeSystem  bool
	FollowSymlinks bool
	NumWorkers     int
}

// DefaultConfig returns a Config with the teacher's default format
// set and worker count, no roots configured.
func DefaultConfig() Config {
	return Config{
		Extensions:  DefaultImageExtensions,
		MaxFileSize: 500 * 1024 * 1024,
		NumWorkers:  4,
	}
}

// Scanner walks the configured search roots and emits FileInfo records
// for every accepted file, per spec §4.1's data-flow step.
type Scanner struct {
	config Config
	filter *Filter
	logger *logrus.Logger
}

// NewScanner builds a Scanner from cfg, defaulting NumWorkers if unset.
func NewScanner(cfg Config) *Scanner {
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 4
	}
	filter := NewFilter(cfg.Extensions)
	filter.SetSizeLimits(cfg.MinFileSize, cfg.MaxFileSize)
	filter.SetAttributeOptions(cfg.IncludeHidden, cfg.IncludeSystem)

	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	return &Scanner{config: cfg, filter: filter, logger: logger}
}

// dirJob is one directory queued for a worker to enumerate.
type dirJob struct {
	path      string
	rootIndex int
}

// ScanAll walks every configured search root and returns every accepted
// file as a FileInfo, tagged with the ordinal of the search root it was
// found under. Per spec §4.1, a path under any ignore root is skipped
// outright (and, for a directory, its whole subtree is never
// descended); per-file errors are logged and skipped. Directory
// enumeration failures are logged too, and make ScanAll return an error
// only when no file at all was accepted.
func (s *Scanner) ScanAll(ctx context.Context) ([]api.FileInfo, error) {
	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		found []api.FileInfo
	)

	jobs := make(chan dirJob, s.config.NumWorkers*2)
	errs := make(chan error, s.config.NumWorkers*2)

	for i := 0; i < s.config.NumWorkers; i++ {
		wg.Add(1)
		go s.worker(ctx, &wg, jobs, errs, &mu, &found)
	}

	go func() {
		defer close(jobs)
		for i, root := range s.config.Roots.Search {
			if err := s.walkRoot(ctx, root, i, jobs); err != nil {
				errs <- err
			}
		}
	}()

	go func() {
		wg.Wait()
		close(errs)
	}()

	var scanErrors []error
	for err := range errs {
		if err != nil {
			scanErrors = append(scanErrors, err)
			s.logger.Warnf("scan error: %v", err)
		}
	}

	if len(scanErrors) > 0 && len(found) == 0 {
		return nil, fmt.Errorf("scan failed with %d errors: %w", len(scanErrors), scanErrors[0])
	}

	s.logger.Infof("scan completed: %d files accepted, %d errors", len(found), len(scanErrors))
	return found, nil
}

// walkRoot enumerates directories under root, skipping ignored
// subtrees, and queues each directory for a worker to read.
func (s *Scanner) walkRoot(ctx context.Context, root string, rootIndex int, jobs chan<- dirJob) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving search root %s: %w", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return fmt.Errorf("accessing search root %s: %w", absRoot, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("search root %s is not a directory", absRoot)
	}

	return filepath.WalkDir(absRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			s.logger.Debugf("walk error at %s: %v", path, err)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if !d.IsDir() {
			return nil
		}
		if s.config.Roots.IsIgnored(path) {
			return filepath.SkipDir
		}
		select {
		case jobs <- dirJob{path: path, rootIndex: rootIndex}:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	})
}

func (s *Scanner) worker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan dirJob, errs chan<- error, mu *sync.Mutex, found *[]api.FileInfo) {
	defer wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			s.processDirectory(job, mu, found, errs)
		}
	}
}

func (s *Scanner) processDirectory(job dirJob, mu *sync.Mutex, found *[]api.FileInfo, errs chan<- error) {
	entries, err := os.ReadDir(job.path)
	if err != nil {
		errs <- fmt.Errorf("reading directory %s: %w", job.path, err)
		return
	}

	var accepted []api.FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(job.path, entry.Name())
		fi, err := entry.Info()
		if err != nil {
			s.logger.Debugf("stat failed for %s: %v", path, err)
			continue
		}
		if !s.filter.Accept(path, fi.Size()) {
			continue
		}
		accepted = append(accepted, api.FileInfo{
			Path:    path,
			Size:    fi.Size(),
			Time:    fi.ModTime(),
			RootIdx: job.rootIndex,
		})
	}

	if len(accepted) == 0 {
		return
	}
	mu.Lock()
	*found = append(*found, accepted...)
	mu.Unlock()
}

// IsValid reports whether path falls under a configured valid root.
func (s *Scanner) IsValid(path string) bool { return s.config.Roots.IsValid(path) }

// IsDeletePath reports whether path falls under a configured delete root.
func (s *Scanner) IsDeletePath(path string) bool { return s.config.Roots.IsDeletePath(path) }
