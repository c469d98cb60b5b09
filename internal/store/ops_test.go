package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	st := newTestStore(t)
	path, _ := st.Resolve("notes/today.txt")

	text := "line one\nline two\n"
	summary, err := st.WriteText(path, text)
	if err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if summary.BytesWritten != int64(len(text)) {
		t.Errorf("expected %d bytes written, got %d", len(text), summary.BytesWritten)
	}

	got, err := st.ReadText(path)
	if err != nil {
		t.Fatalf("ReadText: %v", err)
	}
	if got != text {
		t.Errorf("round trip mismatch: got %q", got)
	}
}

func TestWriteTooLargeLeavesNothing(t *testing.T) {
	st, err := New(filepath.Join(t.TempDir(), "uploads"), 16)
	if err != nil {
		t.Fatal(err)
	}
	path, _ := st.Resolve("big.txt")

	_, err = st.WriteText(path, strings.Repeat("x", 17))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if _, err := st.ReadText(path); !errors.Is(err, ErrNotFound) {
		t.Errorf("oversized write should leave no file, read got %v", err)
	}
}

func TestWriteOverCapKeepsOldContent(t *testing.T) {
	st, err := New(filepath.Join(t.TempDir(), "uploads"), 16)
	if err != nil {
		t.Fatal(err)
	}
	path, _ := st.Resolve("keep.txt")
	if _, err := st.WriteText(path, "original"); err != nil {
		t.Fatal(err)
	}

	if _, err := st.WriteText(path, strings.Repeat("y", 100)); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	got, err := st.ReadText(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != "original" {
		t.Errorf("failed write must not disturb existing content, got %q", got)
	}
}

func TestReadTextErrors(t *testing.T) {
	st := newTestStore(t)

	missing, _ := st.Resolve("missing.txt")
	if _, err := st.ReadText(missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	binary, _ := st.Resolve("raw.bin")
	if err := os.WriteFile(binary, []byte{0xff, 0xfe, 0x00, 0x80}, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := st.ReadText(binary); !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("expected ErrInvalidEncoding, got %v", err)
	}

	dir, _ := st.Resolve("somedir")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if _, err := st.ReadText(dir); !errors.Is(err, ErrNotFound) {
		t.Errorf("reading a directory should be ErrNotFound, got %v", err)
	}
}

func TestListSortedCaseInsensitive(t *testing.T) {
	st := newTestStore(t)
	for _, name := range []string{"Zeta.txt", "alpha.txt", "Beta.txt"} {
		path, _ := st.Resolve(name)
		if _, err := st.WriteText(path, "x"); err != nil {
			t.Fatal(err)
		}
	}
	sub, _ := st.Resolve("docs")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}

	items, err := st.List(st.Root())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"alpha.txt", "Beta.txt", "docs", "Zeta.txt"}
	if len(items) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(items))
	}
	for i, entry := range items {
		if entry.Path != want[i] {
			t.Errorf("entry %d: expected %q, got %q", i, want[i], entry.Path)
		}
	}
	for _, entry := range items {
		if entry.IsDir && entry.SizeBytes != nil {
			t.Errorf("directory %q should have no size", entry.Path)
		}
		if !entry.IsDir && entry.SizeBytes == nil {
			t.Errorf("file %q should have a size", entry.Path)
		}
	}
}

func TestListErrors(t *testing.T) {
	st := newTestStore(t)

	missing, _ := st.Resolve("nope")
	if _, err := st.List(missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	file, _ := st.Resolve("plain.txt")
	if _, err := st.WriteText(file, "x"); err != nil {
		t.Fatal(err)
	}
	if _, err := st.List(file); !errors.Is(err, ErrNotADirectory) {
		t.Errorf("expected ErrNotADirectory, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	st := newTestStore(t)
	path, _ := st.Resolve("gone.txt")
	if _, err := st.WriteText(path, "12345"); err != nil {
		t.Fatal(err)
	}

	summary, err := st.Delete(path)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if summary.BytesWritten != 5 {
		t.Errorf("expected prior size 5, got %d", summary.BytesWritten)
	}
	if _, err := st.Delete(path); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete should be ErrNotFound, got %v", err)
	}
}

func TestRenameConflictKeepsBoth(t *testing.T) {
	st := newTestStore(t)
	src, _ := st.Resolve("a.txt")
	dst, _ := st.Resolve("b.txt")
	st.WriteText(src, "content a")
	st.WriteText(dst, "content b")

	if _, err := st.Rename(src, dst); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	for path, want := range map[string]string{src: "content a", dst: "content b"} {
		got, err := st.ReadText(path)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("failed rename changed %s: got %q", path, got)
		}
	}
}

func TestRename(t *testing.T) {
	st := newTestStore(t)
	src, _ := st.Resolve("old.txt")
	dst, _ := st.Resolve("new.txt")
	st.WriteText(src, "hello")

	summary, err := st.Rename(src, dst)
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if summary.Filename != "new.txt" || summary.BytesWritten != 5 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if _, err := st.ReadText(src); !errors.Is(err, ErrNotFound) {
		t.Error("source should be gone after rename")
	}
}

func TestTouch(t *testing.T) {
	st := newTestStore(t)
	path, _ := st.Resolve("new.txt")

	summary, created, err := st.Touch(path)
	if err != nil {
		t.Fatalf("Touch: %v", err)
	}
	if !created {
		t.Error("first touch should create")
	}
	if summary.Filename != "new.txt" {
		t.Errorf("unexpected name %q", summary.Filename)
	}
	if got, err := st.ReadText(path); err != nil || got != "" {
		t.Errorf("touched file should be empty, got %q err %v", got, err)
	}

	_, created, err = st.Touch(path)
	if err != nil {
		t.Fatalf("second Touch: %v", err)
	}
	if created {
		t.Error("second touch should update, not create")
	}
}

func TestSaveUploadCollisionSuffix(t *testing.T) {
	st := newTestStore(t)

	names := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		summary, err := st.SaveUpload("report.txt", strings.NewReader("data"))
		if err != nil {
			t.Fatalf("SaveUpload: %v", err)
		}
		names = append(names, summary.Filename)
	}
	want := []string{"report.txt", "report-1.txt", "report-2.txt"}
	for i, name := range names {
		if name != want[i] {
			t.Errorf("upload %d: expected %q, got %q", i, want[i], name)
		}
	}
}

func TestSaveUploadSanitizesTraversal(t *testing.T) {
	st := newTestStore(t)

	summary, err := st.SaveUpload("../../etc/passwd", strings.NewReader("root:x"))
	if err != nil {
		t.Fatalf("SaveUpload: %v", err)
	}
	if strings.ContainsAny(summary.Filename, "/\\") {
		t.Fatalf("stored name contains separators: %q", summary.Filename)
	}
	if _, err := os.Stat(filepath.Join(st.Root(), summary.Filename)); err != nil {
		t.Errorf("stored file missing inside root: %v", err)
	}
}

func TestListUploadsSkipsDirectories(t *testing.T) {
	st := newTestStore(t)
	filePath, _ := st.Resolve("kept.txt")
	st.WriteText(filePath, "x")
	dirPath, _ := st.Resolve("subdir")
	os.Mkdir(dirPath, 0755)

	items, err := st.ListUploads()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Filename != "kept.txt" {
		t.Errorf("unexpected flat listing: %+v", items)
	}
}
