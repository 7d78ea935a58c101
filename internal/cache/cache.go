// Package cache stores one CBOR snapshot of a sprint's search result per
// sprint name. A snapshot is written on the first miss and then served for
// every later run until an operator removes it; there is no expiry.
package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fxamacker/cbor/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sprintreport/sprintreport/internal/debug"
	"github.com/sprintreport/sprintreport/internal/jira"
	"github.com/sprintreport/sprintreport/internal/telemetry"
)

// DefaultDir is the cache directory, relative to the working directory.
const DefaultDir = "cache"

// tempInfix marks in-progress snapshot writes.
const tempInfix = ".tmp."

// ErrNotCached is returned by Load when no snapshot exists for the sprint.
var ErrNotCached = errors.New("no cached snapshot")

// CorruptError reports a snapshot that exists but cannot be read back.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("cache file %s is unreadable: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// QueryFunc builds the remote query for a cache miss.
type QueryFunc func() (string, error)

// RemoteFunc fetches the issue set for a query. It is only called on a miss.
type RemoteFunc func(ctx context.Context, jql string, fields []string, maxResults int) ([]jira.Issue, error)

// Store reads and writes sprint snapshots under Dir.
type Store struct {
	Dir        string
	Fields     []string
	MaxResults int

	// OnWarning receives non-fatal write failures. Nil logs via debug.Warnf.
	OnWarning func(msg string)
}

// New returns a Store rooted at dir (DefaultDir when empty) that requests
// the given fields on a miss.
func New(dir string, fields []string) *Store {
	if dir == "" {
		dir = DefaultDir
	}
	return &Store{Dir: dir, Fields: fields, MaxResults: jira.DefaultMaxResults}
}

// Result is the issue set for a sprint and where it came from.
type Result struct {
	Issues    []jira.Issue
	UsedCache bool
	Path      string
}

// Path returns the snapshot location for a sprint. Keys are used verbatim
// and are case-sensitive.
func (s *Store) Path(sprint string) string {
	return filepath.Join(s.Dir, sprint)
}

// FetchOrLoad returns the cached snapshot for sprint if one exists.
// Otherwise it builds the query, fetches the issues, and writes a snapshot.
// A failed write is reported through OnWarning and the fetched issues are
// still returned. An unreadable snapshot is an error; there is no fallback to
// the remote.
func (s *Store) FetchOrLoad(ctx context.Context, sprint string, query QueryFunc, remote RemoteFunc) (Result, error) {
	path := s.Path(sprint)
	ctx, span := telemetry.Tracer("").Start(ctx, "cache.fetch_or_load",
		trace.WithAttributes(attribute.String("sprint", sprint), attribute.String("cache.path", path)))
	defer span.End()

	issues, err := s.Load(sprint)
	switch {
	case err == nil:
		debug.Logf("cache hit: %s (%d issues)\n", path, len(issues))
		span.SetAttributes(attribute.Bool("cache.hit", true))
		telemetry.Count(ctx, "sprintreport.cache.hits", 1)
		return Result{Issues: issues, UsedCache: true, Path: path}, nil
	case !errors.Is(err, ErrNotCached):
		span.RecordError(err)
		return Result{}, err
	}

	debug.Logf("cache miss: %s\n", path)
	span.SetAttributes(attribute.Bool("cache.hit", false))
	telemetry.Count(ctx, "sprintreport.cache.misses", 1)

	jql, err := query()
	if err != nil {
		return Result{}, fmt.Errorf("build query: %w", err)
	}
	debug.Logf("query: %s\n", jql)

	issues, err = remote(ctx, jql, s.Fields, s.maxResults())
	if err != nil {
		span.RecordError(err)
		return Result{}, fmt.Errorf("fetch sprint %q: %w", sprint, err)
	}

	if err := s.Save(sprint, issues); err != nil {
		s.warn(fmt.Sprintf("Error writing to cache file. %v", err))
	}
	return Result{Issues: issues, Path: path}, nil
}

// Load reads the snapshot for sprint. It returns ErrNotCached when there is
// none, including when Dir is not a directory, and a *CorruptError when the
// file exists but cannot be opened or decoded.
func (s *Store) Load(sprint string) ([]jira.Issue, error) {
	path := s.Path(sprint)
	f, err := os.Open(path) // #nosec G304 -- path is cache dir + sprint name
	if err != nil {
		if isAbsent(err) {
			return nil, ErrNotCached
		}
		return nil, &CorruptError{Path: path, Err: err}
	}
	defer f.Close()

	var issues []jira.Issue
	if err := cbor.NewDecoder(f).Decode(&issues); err != nil {
		return nil, &CorruptError{Path: path, Err: err}
	}
	return issues, nil
}

// Save writes the snapshot for sprint, creating Dir if needed. The file is
// replaced atomically so readers never see a partial snapshot.
func (s *Store) Save(sprint string, issues []jira.Issue) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	path := s.Path(sprint)
	tempFile, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+tempInfix+"*")
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}
	tempPath := tempFile.Name()
	defer func() {
		_ = tempFile.Close()    // Best effort: may already be closed before rename
		_ = os.Remove(tempPath) // Best effort: may already be renamed
	}()

	if err := cbor.NewEncoder(tempFile).Encode(issues); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("replace cache file: %w", err)
	}
	debug.Logf("cache written: %s (%d issues)\n", path, len(issues))
	return nil
}

// Entry describes one snapshot on disk.
type Entry struct {
	Sprint  string
	Size    int64
	ModTime time.Time
}

// List returns the snapshots in Dir sorted by sprint name. A missing
// directory is an empty cache. Leftover temp files are skipped.
func (s *Store) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache dir: %w", err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if !de.Type().IsRegular() || isTempName(de.Name()) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Sprint: de.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Sprint < entries[j].Sprint })
	return entries, nil
}

// Remove deletes the snapshot for sprint. It returns ErrNotCached when there
// is none.
func (s *Store) Remove(sprint string) error {
	if err := os.Remove(s.Path(sprint)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotCached
		}
		return fmt.Errorf("remove cache file: %w", err)
	}
	return nil
}

// Clear deletes every snapshot in Dir and returns how many were removed.
func (s *Store) Clear() (int, error) {
	entries, err := s.List()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if err := s.Remove(e.Sprint); err != nil && !errors.Is(err, ErrNotCached) {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// isAbsent reports whether an open error means there is no snapshot file.
// ENOTDIR covers a Dir that exists as a regular file; Save reports that case.
func isAbsent(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

// isTempName reports whether name is a snapshot write left behind by an
// interrupted Save.
func isTempName(name string) bool {
	return strings.Contains(name, tempInfix)
}

func (s *Store) maxResults() int {
	if s.MaxResults <= 0 {
		return jira.DefaultMaxResults
	}
	return s.MaxResults
}

func (s *Store) warn(msg string) {
	if s.OnWarning != nil {
		s.OnWarning(msg)
		return
	}
	debug.Warnf("%s", msg)
}
