package command

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/debtcoder/debtcoder/internal/store"
)

func newTestInterpreter(t *testing.T) (*Interpreter, *store.Store) {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "uploads"), 512*1024)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	return New(st), st
}

func write(t *testing.T, st *store.Store, name, content string) {
	t.Helper()
	if _, err := st.WriteText(st.NamePath(name), content); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestRunEmptyCommand(t *testing.T) {
	in, _ := newTestInterpreter(t)

	for _, line := range []string{"", "   ", "\t"} {
		result := in.Run(line)
		if result.Status != StatusNoop {
			t.Errorf("Run(%q): expected noop, got %q", line, result.Status)
		}
		if result.Error != "No command provided" {
			t.Errorf("Run(%q): unexpected error %q", line, result.Error)
		}
		if len(result.Output) != 0 {
			t.Errorf("Run(%q): expected empty output, got %v", line, result.Output)
		}
	}
}

func TestRunMalformedQuoting(t *testing.T) {
	in, _ := newTestInterpreter(t)

	result := in.Run(`cat "unterminated`)
	if result.Status != StatusError {
		t.Fatalf("expected error status, got %q", result.Status)
	}
	if result.Error == "" {
		t.Error("expected a parse error message")
	}
	if len(result.Output) != 0 {
		t.Errorf("expected empty output, got %v", result.Output)
	}
}

func TestRunUnknownVerb(t *testing.T) {
	in, _ := newTestInterpreter(t)

	result := in.Run("chmod 777 x")
	if result.Status != StatusUnknown {
		t.Fatalf("expected unknown status, got %q", result.Status)
	}
	if result.Error != "Unsupported command: chmod" {
		t.Errorf("unexpected error %q", result.Error)
	}
	if len(result.Output) != 0 {
		t.Errorf("expected empty output, got %v", result.Output)
	}
}

func TestLsEmptyStore(t *testing.T) {
	in, _ := newTestInterpreter(t)

	result := in.Run("ls")
	if result.Status != StatusOK {
		t.Fatalf("expected ok, got %q (%s)", result.Status, result.Error)
	}
	if len(result.Output) != 1 || result.Output[0] != "(empty)" {
		t.Errorf("expected [(empty)], got %v", result.Output)
	}
}

func TestLsListing(t *testing.T) {
	in, st := newTestInterpreter(t)
	write(t, st, "b.txt", "bb")
	write(t, st, "a.txt", "a")

	result := in.Run("ls")
	if result.Status != StatusOK {
		t.Fatalf("ls failed: %s", result.Error)
	}
	if len(result.Output) != 2 {
		t.Fatalf("expected 2 lines, got %v", result.Output)
	}
	if !strings.HasSuffix(result.Output[0], "  a.txt") || !strings.HasSuffix(result.Output[1], "  b.txt") {
		t.Errorf("expected name-sorted lines, got %v", result.Output)
	}
	// right-justified 8-char size column
	if !strings.HasPrefix(result.Output[0], "       1  ") {
		t.Errorf("unexpected size column in %q", result.Output[0])
	}
}

func TestCatFile(t *testing.T) {
	in, st := newTestInterpreter(t)
	write(t, st, "poem.txt", "roses\nviolets\n")

	result := in.Run("cat poem.txt")
	if result.Status != StatusOK {
		t.Fatalf("cat failed: %s", result.Error)
	}
	if len(result.Output) != 2 || result.Output[0] != "roses" || result.Output[1] != "violets" {
		t.Errorf("unexpected output %v", result.Output)
	}
}

func TestCatEmptyFileYieldsOneEmptyLine(t *testing.T) {
	in, st := newTestInterpreter(t)
	write(t, st, "empty.txt", "")

	result := in.Run("cat empty.txt")
	if result.Status != StatusOK {
		t.Fatalf("cat failed: %s", result.Error)
	}
	if len(result.Output) != 1 || result.Output[0] != "" {
		t.Errorf("expected one empty line, got %v", result.Output)
	}
}

func TestCatMissingFile(t *testing.T) {
	in, _ := newTestInterpreter(t)

	result := in.Run("cat nonexistent.txt")
	if result.Status != StatusError {
		t.Fatalf("expected error status, got %q", result.Status)
	}
	if result.Error == "" {
		t.Error("expected a non-empty error message")
	}
	if len(result.Output) != 0 {
		t.Errorf("expected empty output, got %v", result.Output)
	}
}

func TestCatQuotedFilename(t *testing.T) {
	in, st := newTestInterpreter(t)
	// Sanitization strips the space, so the quoted argument still lands
	// on a single flat name.
	write(t, st, "my file.txt", "hello")

	result := in.Run(`cat "my file.txt"`)
	if result.Status != StatusOK {
		t.Fatalf("cat failed: %s", result.Error)
	}
	if len(result.Output) != 1 || result.Output[0] != "hello" {
		t.Errorf("unexpected output %v", result.Output)
	}
}

func TestMissingArguments(t *testing.T) {
	in, _ := newTestInterpreter(t)

	cases := map[string]string{
		"cat":        "cat requires a filename",
		"rm":         "rm requires a filename",
		"touch":      "touch requires a filename",
		"mv onlyone": "mv requires source and destination",
	}
	for line, wantMsg := range cases {
		result := in.Run(line)
		if result.Status != StatusError {
			t.Errorf("Run(%q): expected error status, got %q", line, result.Status)
		}
		if result.Error != wantMsg {
			t.Errorf("Run(%q): expected %q, got %q", line, wantMsg, result.Error)
		}
	}
}

func TestRmReportsBytes(t *testing.T) {
	in, st := newTestInterpreter(t)
	write(t, st, "junk.txt", "12345")

	result := in.Run("rm junk.txt")
	if result.Status != StatusOK {
		t.Fatalf("rm failed: %s", result.Error)
	}
	if len(result.Output) != 1 || result.Output[0] != "deleted junk.txt (5 bytes)" {
		t.Errorf("unexpected output %v", result.Output)
	}
}

func TestTouchCreateThenUpdate(t *testing.T) {
	in, _ := newTestInterpreter(t)

	first := in.Run("touch new.txt")
	if first.Status != StatusOK {
		t.Fatalf("touch failed: %s", first.Error)
	}
	if len(first.Output) != 1 || first.Output[0] != "created new.txt" {
		t.Errorf("unexpected output %v", first.Output)
	}

	second := in.Run("touch new.txt")
	if second.Status != StatusOK {
		t.Fatalf("second touch failed: %s", second.Error)
	}
	if len(second.Output) != 1 || second.Output[0] != "updated timestamp for new.txt" {
		t.Errorf("unexpected output %v", second.Output)
	}
}

func TestMvRename(t *testing.T) {
	in, st := newTestInterpreter(t)
	write(t, st, "a.txt", "content")

	result := in.Run("mv a.txt b.txt")
	if result.Status != StatusOK {
		t.Fatalf("mv failed: %s", result.Error)
	}
	if len(result.Output) != 1 || result.Output[0] != "renamed to b.txt" {
		t.Errorf("unexpected output %v", result.Output)
	}
}

func TestMvDestinationExists(t *testing.T) {
	in, st := newTestInterpreter(t)
	write(t, st, "a.txt", "content a")
	write(t, st, "b.txt", "content b")

	result := in.Run("mv a.txt b.txt")
	if result.Status != StatusError {
		t.Fatalf("expected error, got %q", result.Status)
	}
	if len(result.Output) != 0 {
		t.Errorf("expected empty output, got %v", result.Output)
	}

	for name, want := range map[string]string{"a.txt": "content a", "b.txt": "content b"} {
		got, err := st.ReadText(st.NamePath(name))
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("failed mv changed %s: got %q", name, got)
		}
	}
}

func TestSplitFields(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{`touch $report.txt`, []string{"touch", "$report.txt"}},
		{`cat "budget $q3.txt"`, []string{"cat", "budget $q3.txt"}},
		{`cat '$(date).txt'`, []string{"cat", "$(date).txt"}},
		{"cat `hostname`.txt", []string{"cat", "`hostname`.txt"}},
		{`cat a\ b.txt`, []string{"cat", "a b.txt"}},
		{`cat "a\"b"`, []string{"cat", `a"b`}},
		{`cat "a\nb"`, []string{"cat", `a\nb`}},
		{`mv "old name.txt" new.txt`, []string{"mv", "old name.txt", "new.txt"}},
	}
	for _, tt := range tests {
		got, err := splitFields(tt.line)
		if err != nil {
			t.Errorf("splitFields(%q): %v", tt.line, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("splitFields(%q) = %v, want %v", tt.line, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("splitFields(%q) = %v, want %v", tt.line, got, tt.want)
				break
			}
		}
	}
}

func TestSplitFieldsUnterminatedQuote(t *testing.T) {
	if _, err := splitFields(`cat "broken`); err == nil {
		t.Fatal("expected parse error for unterminated quote")
	}
}

func TestTouchDollarName(t *testing.T) {
	in, _ := newTestInterpreter(t)

	result := in.Run("touch $report.txt")
	if result.Status != StatusOK {
		t.Fatalf("touch failed: %s", result.Error)
	}
	// The dollar sign passes through tokenization as argument text and
	// the sanitizer strips it.
	if len(result.Output) != 1 || result.Output[0] != "created report.txt" {
		t.Errorf("unexpected output %v", result.Output)
	}
}

func TestCatCRLFFile(t *testing.T) {
	in, st := newTestInterpreter(t)
	write(t, st, "dos.txt", "one\r\ntwo\r\n")

	result := in.Run("cat dos.txt")
	if result.Status != StatusOK {
		t.Fatalf("cat failed: %s", result.Error)
	}
	if len(result.Output) != 2 || result.Output[0] != "one" || result.Output[1] != "two" {
		t.Errorf("unexpected output %v", result.Output)
	}
}
