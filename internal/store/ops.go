package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// Stat returns metadata for a resolved path.
func (s *Store) Stat(path string) (Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Entry{}, fmt.Errorf("%s: %w", s.Rel(path), ErrNotFound)
		}
		return Entry{}, fmt.Errorf("stat %s: %w", s.Rel(path), err)
	}
	entry := Entry{
		Path:       s.Rel(path),
		IsDir:      info.IsDir(),
		ModifiedAt: info.ModTime().UTC(),
	}
	if !info.IsDir() {
		size := info.Size()
		entry.SizeBytes = &size
	}
	return entry, nil
}

// List returns the entries of a resolved directory path, sorted
// case-insensitively by name.
func (s *Store) List(path string) ([]Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("directory %s: %w", s.Rel(path), ErrNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", s.Rel(path), err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", s.Rel(path), ErrNotADirectory)
	}

	dirEntries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", s.Rel(path), err)
	}

	items := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		fi, err := de.Info()
		if err != nil {
			continue
		}
		entry := Entry{
			Path:       s.Rel(filepath.Join(path, de.Name())),
			IsDir:      de.IsDir(),
			ModifiedAt: fi.ModTime().UTC(),
		}
		if !de.IsDir() {
			size := fi.Size()
			entry.SizeBytes = &size
		}
		items = append(items, entry)
	}
	sort.Slice(items, func(i, j int) bool {
		return strings.ToLower(items[i].Path) < strings.ToLower(items[j].Path)
	})
	return items, nil
}

// ReadText reads a resolved file path as UTF-8 text, subject to the size
// cap.
func (s *Store) ReadText(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s: %w", s.Rel(path), ErrNotFound)
	}
	if info.Size() > s.maxText {
		return "", fmt.Errorf("%s (%d bytes): %w", s.Rel(path), info.Size(), ErrTooLarge)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", s.Rel(path), err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s: %w", s.Rel(path), ErrInvalidEncoding)
	}
	return string(data), nil
}

// WriteText writes UTF-8 text to a resolved path, creating parent
// directories as needed. The write is temp-file-and-rename so a
// concurrent reader never sees partial content; a payload over the cap
// fails before anything touches disk.
func (s *Store) WriteText(path, content string) (WriteSummary, error) {
	if int64(len(content)) > s.maxText {
		return WriteSummary{}, fmt.Errorf("payload of %d bytes: %w", len(content), ErrTooLarge)
	}
	n, err := writeAtomic(path, strings.NewReader(content))
	if err != nil {
		return WriteSummary{}, err
	}
	return WriteSummary{Filename: s.baseName(path), BytesWritten: n}, nil
}

// Delete removes a resolved regular file and reports its prior size.
func (s *Store) Delete(path string) (WriteSummary, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return WriteSummary{}, fmt.Errorf("%s: %w", s.Rel(path), ErrNotFound)
	}
	size := info.Size()
	if err := os.Remove(path); err != nil {
		return WriteSummary{}, fmt.Errorf("delete %s: %w", s.Rel(path), err)
	}
	return WriteSummary{Filename: s.baseName(path), BytesWritten: size}, nil
}

// Rename moves src to dst (both resolved paths). The destination must not
// already exist.
func (s *Store) Rename(src, dst string) (WriteSummary, error) {
	info, err := os.Stat(src)
	if err != nil || !info.Mode().IsRegular() {
		return WriteSummary{}, fmt.Errorf("source %s: %w", s.Rel(src), ErrNotFound)
	}
	if _, err := os.Lstat(dst); err == nil {
		return WriteSummary{}, fmt.Errorf("%s: %w", s.Rel(dst), ErrAlreadyExists)
	}
	if err := os.Rename(src, dst); err != nil {
		return WriteSummary{}, fmt.Errorf("rename %s to %s: %w", s.Rel(src), s.Rel(dst), err)
	}
	return WriteSummary{Filename: s.baseName(dst), BytesWritten: info.Size()}, nil
}

// Touch creates an empty file if absent, or bumps its modification time.
// The second return reports whether the file was created.
func (s *Store) Touch(path string) (WriteSummary, bool, error) {
	if _, err := os.Lstat(path); os.IsNotExist(err) {
		summary, werr := s.WriteText(path, "")
		return summary, true, werr
	}
	info, err := os.Stat(path)
	if err != nil {
		return WriteSummary{}, false, fmt.Errorf("stat %s: %w", s.Rel(path), err)
	}
	now := time.Now()
	if err := os.Chtimes(path, now, now); err != nil {
		return WriteSummary{}, false, fmt.Errorf("touch %s: %w", s.Rel(path), err)
	}
	return WriteSummary{Filename: s.baseName(path), BytesWritten: info.Size()}, false, nil
}

func (s *Store) baseName(path string) string {
	rel := s.Rel(path)
	if rel == "." {
		return ""
	}
	return rel
}
