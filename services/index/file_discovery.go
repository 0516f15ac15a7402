package index

import (
	"fmt"
	"io/fs"
	"iter"
	"path/filepath"
	"strings"
	"time"

	"github.com/gobwas/glob"
)

type CandidateFile struct {
	Path       string
	ModifiedAt time.Time
}

type WalkError struct {
	Path string
	Err  error
}

func (e *WalkError) Error() string {
	return fmt.Sprintf("could not walk %s: %s", e.Path, e.Err)
}

func (e *WalkError) Unwrap() error {
	return e.Err
}

type Walker struct {
	excludes []glob.Glob
	// info stats an entry before it is yielded or descended into.
	info func(path string, d fs.DirEntry) (fs.FileInfo, error)
}

// NewWalker compiles the exclusion patterns. A pattern is matched against an
// entry's base name and against its slash-separated path relative to the root.
func NewWalker(excludePatterns []string) (*Walker, error) {
	excludes := make([]glob.Glob, 0, len(excludePatterns))
	for _, pattern := range excludePatterns {
		compiled, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		excludes = append(excludes, compiled)
	}

	return &Walker{excludes: excludes, info: entryInfo}, nil
}

// Walk lazily yields the regular files below root. Hidden entries and
// excluded entries are dropped, and when they are directories their whole
// subtree is never visited. A failure on one entry is yielded as a
// *WalkError and the walk goes on.
func (w *Walker) Walk(root string) iter.Seq2[CandidateFile, error] {
	stat := w.info
	if stat == nil {
		stat = entryInfo
	}

	return func(yield func(CandidateFile, error) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if !yield(CandidateFile{}, &WalkError{Path: path, Err: err}) {
					return filepath.SkipAll
				}
				return nil
			}

			if path != root && (isHidden(d.Name()) || w.isExcluded(root, path, d.Name())) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			info, err := stat(path, d)
			if err != nil {
				if !yield(CandidateFile{}, &WalkError{Path: path, Err: err}) {
					return filepath.SkipAll
				}
				if d.IsDir() && path != root {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				return nil
			}

			// Symlinks, sockets and devices are not documents
			if !info.Mode().IsRegular() {
				return nil
			}

			if !yield(CandidateFile{Path: path, ModifiedAt: info.ModTime()}, nil) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func entryInfo(path string, d fs.DirEntry) (fs.FileInfo, error) {
	return d.Info()
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func (w *Walker) isExcluded(root string, path string, name string) bool {
	if len(w.excludes) == 0 {
		return false
	}

	relPath, err := filepath.Rel(root, path)
	if err != nil {
		relPath = path
	}
	relPath = filepath.ToSlash(relPath)

	for _, exclude := range w.excludes {
		if exclude.Match(name) || exclude.Match(relPath) {
			return true
		}
	}

	return false
}
