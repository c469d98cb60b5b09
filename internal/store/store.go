// Package store implements the sandboxed upload-root file store: name
// sanitization, path sandboxing, and the primitive file operations shared
// by the flat upload API, the filesystem-browser API, and the command
// interpreter. The filesystem is the single source of truth; the store
// holds no cache and no cross-request locks, so concurrent writers to the
// same name race with last-writer-wins semantics.
package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Store is an explicit handle on the upload root. All operations stay
// inside it.
type Store struct {
	root    string // canonical absolute path of the upload root
	maxText int64  // text read/write size cap in bytes
}

// FileInfo describes a file in the flat upload listing.
type FileInfo struct {
	Filename   string    `json:"filename"`
	SizeBytes  int64     `json:"size_bytes"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Entry describes one item in a sandboxed directory listing. SizeBytes is
// nil for directories.
type Entry struct {
	Path       string    `json:"path"`
	IsDir      bool      `json:"is_dir"`
	SizeBytes  *int64    `json:"size_bytes"`
	ModifiedAt time.Time `json:"modified_at"`
}

// WriteSummary reports the outcome of a mutating file operation.
type WriteSummary struct {
	Filename     string `json:"filename"`
	BytesWritten int64  `json:"bytes_written"`
}

// New creates a store rooted at dir, creating the directory if absent.
func New(dir string, maxText int64) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload root is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload root %s: %w", dir, err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload root %s: %w", dir, err)
	}
	root, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("canonicalize upload root %s: %w", abs, err)
	}
	return &Store{root: root, maxText: maxText}, nil
}

// Root returns the canonical upload root.
func (s *Store) Root() string { return s.root }

// MaxTextBytes returns the configured text size cap.
func (s *Store) MaxTextBytes() int64 { return s.maxText }

// NamePath maps a client-supplied filename to its absolute path in the
// flat store, sanitizing the name first. Every flat endpoint goes through
// this, so no raw name ever reaches the filesystem.
func (s *Store) NamePath(name string) string {
	return filepath.Join(s.root, SanitizeName(name))
}

// ListUploads returns the files directly inside the upload root, sorted
// by name. Subdirectories are skipped.
func (s *Store) ListUploads() ([]FileInfo, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read upload root: %w", err)
	}
	items := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		items = append(items, FileInfo{
			Filename:   info.Name(),
			SizeBytes:  info.Size(),
			ModifiedAt: info.ModTime().UTC(),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Filename < items[j].Filename })
	return items, nil
}

// Usage returns the file count and total byte usage of the flat store.
func (s *Store) Usage() (int, int64) {
	items, err := s.ListUploads()
	if err != nil {
		return 0, 0
	}
	var bytes int64
	for _, item := range items {
		bytes += item.SizeBytes
	}
	return len(items), bytes
}

// SaveUpload stores an uploaded body under the sanitized form of name.
// On collision a numeric suffix is appended before the extension until a
// free name is found.
func (s *Store) SaveUpload(name string, body io.Reader) (WriteSummary, error) {
	sanitized := SanitizeName(name)
	target := filepath.Join(s.root, sanitized)

	ext := filepath.Ext(sanitized)
	stem := strings.TrimSuffix(sanitized, ext)
	for counter := 1; ; counter++ {
		if _, err := os.Lstat(target); os.IsNotExist(err) {
			break
		}
		target = filepath.Join(s.root, fmt.Sprintf("%s-%d%s", stem, counter, ext))
	}

	n, err := writeAtomic(target, body)
	if err != nil {
		return WriteSummary{}, fmt.Errorf("save upload %s: %w", sanitized, err)
	}
	return WriteSummary{Filename: filepath.Base(target), BytesWritten: n}, nil
}

// writeAtomic streams body into path via a temp file in the same
// directory plus rename, so readers never observe a torn write. Parent
// directories are created as needed.
func writeAtomic(path string, body io.Reader) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("create dirs for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, ".doja-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temp for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	n, err := io.Copy(tmp, body)
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("close temp for %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("chmod temp for %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("rename temp to %s: %w", path, err)
	}
	return n, nil
}
