package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/meghashyamc/rabbit/db/kvdb"
	"github.com/meghashyamc/rabbit/db/searchdb"
	"github.com/meghashyamc/rabbit/logger"
	"github.com/meghashyamc/rabbit/services/convert"
)

// Indexer represents the search database operations needed for ingestion
type Indexer interface {
	Exists(signature uint64) (bool, error)
	Signatures(filename string) ([]uint64, error)
	Filenames(prefix string) ([]string, error)
	Writer() (searchdb.Writer, error)
}

type Converter interface {
	Convert(ctx context.Context, tag convert.FormatTag, path string) (string, error)
}

const (
	defaultWorkers       = 8
	maxIndexBuildingTime = 2 * time.Hour

	StatePending  = "pending"
	StateRunning  = "running"
	StateComplete = "complete"
	StateFailed   = "failed"
)

var ErrIndexingInProgress = errors.New("indexing already in progress")

type Options struct {
	// Workers is the number of files converted concurrently.
	Workers int
	// CommitInterval triggers an interim commit after this many staged
	// documents. Zero commits once at the end of the run.
	CommitInterval int
	Progress       Progress
	// Classify defaults to convert.Classify.
	Classify func(path string) (convert.FormatTag, error)
}

type Service struct {
	logger         logger.Logger
	indexer        Indexer
	walker         *Walker
	converter      Converter
	classify       func(path string) (convert.FormatTag, error)
	metadataStore  MetadataStore
	workers        int
	commitInterval int
	progress       Progress
	buildIndexC    chan indexRequest
	building       atomic.Bool
}

type indexRequest struct {
	rootPath  string
	requestID string
}

// RequestStatus is what GetStatus reports for an asynchronous Build.
type RequestStatus struct {
	State  string  `json:"state"`
	Report *Report `json:"report,omitempty"`
	Error  string  `json:"error,omitempty"`
}

func New(ctx context.Context, logger logger.Logger, indexer Indexer, walker *Walker, converter Converter, metadataStore MetadataStore, opts Options) *Service {
	indexService := &Service{
		logger:         logger,
		indexer:        indexer,
		walker:         walker,
		converter:      converter,
		classify:       opts.Classify,
		metadataStore:  metadataStore,
		workers:        opts.Workers,
		commitInterval: opts.CommitInterval,
		progress:       opts.Progress,
		buildIndexC:    make(chan indexRequest, 1),
	}
	if indexService.workers <= 0 {
		indexService.workers = defaultWorkers
	}
	if indexService.classify == nil {
		indexService.classify = convert.Classify
	}
	if indexService.progress == nil {
		indexService.progress = noProgress{}
	}

	go indexService.build(ctx)
	return indexService
}

// Run walks root, converts new and changed files on the worker pool and
// commits them through a single writer. It returns once the final commit is
// done. Per-file failures are counted in the report; failures to open the
// writer or to commit are returned.
func (s *Service) Run(ctx context.Context, rootPath string) (Report, error) {
	startedAt := time.Now()

	root, err := resolveRoot(rootPath)
	if err != nil {
		s.logger.Error("invalid root path", "root", rootPath, "err", err.Error())
		return Report{Root: rootPath, StartedAt: startedAt}, err
	}

	writer, err := s.indexer.Writer()
	if err != nil {
		s.logger.Error("could not acquire index writer", "root", root, "err", err.Error())
		if errors.Is(err, searchdb.ErrWriterBusy) {
			return Report{Root: root, StartedAt: startedAt}, ErrIndexingInProgress
		}
		return Report{Root: root, StartedAt: startedAt}, err
	}
	defer writer.Close()

	s.logger.Info("begin", "root", root, "workers", s.workers, "commit_interval", s.commitInterval)

	stats := &stats{}
	ops := make(chan commitOp, s.workers)
	commitErrC := make(chan error, 1)
	c := &committer{
		logger:   s.logger,
		indexer:  s.indexer,
		writer:   writer,
		stats:    stats,
		progress: s.progress,
		interval: s.commitInterval,
	}
	go func() {
		commitErrC <- c.run(ctx, ops)
	}()

	seen, walkErrors := s.convertFiles(ctx, root, stats, ops)
	if ctx.Err() == nil {
		s.removeVanishedFiles(root, seen, walkErrors > 0, ops)
	}
	close(ops)

	commitErr := <-commitErrC
	report := stats.report(root, startedAt)
	if commitErr != nil {
		if ctx.Err() != nil {
			s.logger.Warn("indexing cancelled, nothing committed", "root", root, "report", report.String())
			return report, ctx.Err()
		}
		s.logger.Error("indexing failed", "root", root, "report", report.String(), "err", commitErr.Error())
		return report, fmt.Errorf("failed to commit index: %w", commitErr)
	}

	s.logger.Info("finished indexing", "root", root, "report", report.String())
	s.saveReport(report)

	return report, nil
}

// convertFiles feeds the walk into the worker pool and waits for it to
// drain. It returns the paths seen and the number of walk errors.
func (s *Service) convertFiles(ctx context.Context, root string, stats *stats, ops chan<- commitOp) (map[string]struct{}, int) {
	seen := make(map[string]struct{})
	walkErrors := 0

	var workers errgroup.Group
	workers.SetLimit(s.workers)

	for candidate, err := range s.walker.Walk(root) {
		if ctx.Err() != nil {
			s.logger.Warn("walk cancelled", "root", root, "err", ctx.Err())
			break
		}
		if err != nil {
			walkErrors++
			s.logger.Error("could not walk through file or directory", "err", err.Error())
			continue
		}

		stats.scanned.Add(1)
		seen[candidate.Path] = struct{}{}
		s.progress.OnFileScanned(candidate.Path)

		workers.Go(func() error {
			s.processFile(ctx, candidate, stats, ops)
			return nil
		})
	}

	_ = workers.Wait()
	return seen, walkErrors
}

// removeVanishedFiles queues removal of indexed files under root that the
// walk did not produce. When the walk was incomplete only files that are
// really gone from disk are removed.
func (s *Service) removeVanishedFiles(root string, seen map[string]struct{}, walkIncomplete bool, ops chan<- commitOp) {
	prefix := root
	if prefix != string(filepath.Separator) {
		prefix += string(filepath.Separator)
	}

	filenames, err := s.indexer.Filenames(prefix)
	if err != nil {
		s.logger.Warn("could not list indexed files", "root", root, "err", err.Error())
		return
	}

	for _, filename := range filenames {
		if _, ok := seen[filename]; ok {
			continue
		}
		if walkIncomplete {
			if _, err := os.Lstat(filename); !errors.Is(err, fs.ErrNotExist) {
				continue
			}
		}
		ops <- commitOp{removed: filename}
	}
}

// LastReport returns the report saved by the most recent successful run
// over root.
func (s *Service) LastReport(rootPath string) (Report, error) {
	root, err := resolveRoot(rootPath)
	if err != nil {
		return Report{}, fmt.Errorf("invalid root path: %w", err)
	}

	value, err := s.metadataStore.Get(kvdb.RunsBucket, root)
	if err != nil {
		return Report{}, fmt.Errorf("no run recorded for %s: %w", root, err)
	}

	var report Report
	if err := json.Unmarshal([]byte(value), &report); err != nil {
		return Report{}, fmt.Errorf("invalid run record for %s: %w", root, err)
	}

	return report, nil
}

// Reports returns the last recorded report of every indexed root, ordered by
// root.
func (s *Service) Reports() ([]Report, error) {
	roots, err := s.metadataStore.GetAllKeys(kvdb.RunsBucket)
	if err != nil {
		return nil, fmt.Errorf("could not list indexed roots: %w", err)
	}
	slices.Sort(roots)

	reports := make([]Report, 0, len(roots))
	for _, root := range roots {
		value, err := s.metadataStore.Get(kvdb.RunsBucket, root)
		if err != nil {
			return nil, fmt.Errorf("no run recorded for %s: %w", root, err)
		}
		var report Report
		if err := json.Unmarshal([]byte(value), &report); err != nil {
			return nil, fmt.Errorf("invalid run record for %s: %w", root, err)
		}
		reports = append(reports, report)
	}

	return reports, nil
}

func (s *Service) saveReport(report Report) {
	data, err := json.Marshal(report)
	if err != nil {
		s.logger.Error("failed to marshal report", "root", report.Root, "err", err.Error())
		return
	}

	if err := s.metadataStore.Set(kvdb.RunsBucket, report.Root, string(data)); err != nil {
		s.logger.Error("failed to save report", "root", report.Root, "err", err.Error())
	}
}

// Build queues an asynchronous run over rootPath. Only one run is accepted at
// a time. The next is accepted as soon as the previous run returns, so before
// its final status is visible.
func (s *Service) Build(rootPath string, requestID string) error {
	if !s.building.CompareAndSwap(false, true) {
		s.logger.Warn("request to index while indexing is already in progress", "request_id", requestID)
		return ErrIndexingInProgress
	}

	s.setRequestStatus(requestID, RequestStatus{State: StatePending})

	// This leads to s.Run being called
	s.buildIndexC <- indexRequest{rootPath: rootPath, requestID: requestID}
	return nil
}

// GetStatus retrieves the status of an asynchronous Build
func (s *Service) GetStatus(requestID string) (RequestStatus, error) {
	value, err := s.metadataStore.Get(kvdb.RequestsBucket, requestID)
	if err != nil {
		return RequestStatus{}, fmt.Errorf("request not found: %w", err)
	}

	var status RequestStatus
	if err := json.Unmarshal([]byte(value), &status); err != nil {
		return RequestStatus{}, fmt.Errorf("invalid status value: %w", err)
	}

	return status, nil
}

func (s *Service) build(ctx context.Context) {

	for {
		select {
		case req := <-s.buildIndexC:
			s.setRequestStatus(req.requestID, RequestStatus{State: StateRunning})

			indexTimeoutCtx, cancel := context.WithTimeout(ctx, maxIndexBuildingTime)
			report, err := s.Run(indexTimeoutCtx, req.rootPath)
			cancel()
			s.building.Store(false)

			if err != nil {
				s.logger.Error("failed to build index", "request_id", req.requestID, "err", err.Error())
				s.setRequestStatus(req.requestID, RequestStatus{State: StateFailed, Report: &report, Error: err.Error()})
			} else {
				s.setRequestStatus(req.requestID, RequestStatus{State: StateComplete, Report: &report})
			}
		case <-ctx.Done():
			s.logger.Info("index service stopped", "reason", ctx.Err())
			return
		}
	}
}

func (s *Service) setRequestStatus(requestID string, status RequestStatus) {
	data, err := json.Marshal(status)
	if err != nil {
		s.logger.Error("failed to marshal request status", "request_id", requestID, "err", err.Error())
		return
	}

	if err := s.metadataStore.Set(kvdb.RequestsBucket, requestID, string(data)); err != nil {
		s.logger.Error("failed to update request status", "request_id", requestID, "state", status.State, "err", err.Error())
	}
}

// resolveRoot returns the absolute, symlink-free form of rootPath. Indexed
// filenames are recorded under this form.
func resolveRoot(rootPath string) (string, error) {
	root, err := filepath.Abs(rootPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", rootPath, err)
	}
	root, err = filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", rootPath, err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", root)
	}

	return root, nil
}
