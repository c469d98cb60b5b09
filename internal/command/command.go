// Package command implements the terminal-like interpreter for the flat
// upload store: ls, cat, rm, touch and mv over store operations only.
package command

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/debtcoder/debtcoder/internal/metrics"
	"github.com/debtcoder/debtcoder/internal/store"
)

// Result statuses.
const (
	StatusOK      = "ok"
	StatusNoop    = "noop"
	StatusUnknown = "unknown"
	StatusError   = "error"
)

// ErrMissingArgument marks an argument-count violation. ErrUnsupported
// marks an unrecognized verb. Both stay machine-readable inside the
// package; Run flattens them to text at the boundary.
var (
	ErrMissingArgument = errors.New("missing argument")
	ErrUnsupported     = errors.New("unsupported command")
)

// argError carries the human-readable message of an argument-count
// violation while still matching ErrMissingArgument via errors.Is.
type argError struct{ msg string }

func (e *argError) Error() string        { return e.msg }
func (e *argError) Is(target error) bool { return target == ErrMissingArgument }

// Result is the structured outcome of one command line.
type Result struct {
	Command string   `json:"command"`
	Output  []string `json:"output"`
	Status  string   `json:"status"`
	Error   string   `json:"error,omitempty"`
}

// Interpreter parses and executes single-line commands against the store.
type Interpreter struct {
	store *store.Store
}

// New creates an interpreter over the given store.
func New(st *store.Store) *Interpreter {
	return &Interpreter{store: st}
}

// Run parses one command line and executes it. Every failure is folded
// into the Result rather than returned: parse errors and store failures
// become status "error", unrecognized verbs become status "unknown".
// Each verb is a single store operation, so there is nothing to roll back
// on error.
func (in *Interpreter) Run(line string) Result {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Result{Command: trimmed, Output: []string{}, Status: StatusNoop, Error: "No command provided"}
	}

	args, err := splitFields(trimmed)
	if err != nil {
		metrics.RecordCommand("", StatusError)
		return Result{Command: trimmed, Output: []string{}, Status: StatusError, Error: err.Error()}
	}
	if len(args) == 0 {
		return Result{Command: trimmed, Output: []string{}, Status: StatusNoop, Error: "No command provided"}
	}

	verb, rest := args[0], args[1:]
	output, err := in.dispatch(verb, rest)

	result := Result{Command: trimmed, Output: output, Status: StatusOK}
	switch {
	case errors.Is(err, ErrUnsupported):
		result = Result{Command: trimmed, Output: []string{}, Status: StatusUnknown, Error: "Unsupported command: " + verb}
	case err != nil:
		result = Result{Command: trimmed, Output: []string{}, Status: StatusError, Error: err.Error()}
	}
	metrics.RecordCommand(verb, result.Status)
	return result
}

func (in *Interpreter) dispatch(verb string, args []string) ([]string, error) {
	switch verb {
	case "ls":
		return in.runLs()
	case "cat":
		if len(args) < 1 {
			return nil, &argError{"cat requires a filename"}
		}
		return in.runCat(args[0])
	case "rm":
		if len(args) < 1 {
			return nil, &argError{"rm requires a filename"}
		}
		return in.runRm(args[0])
	case "touch":
		if len(args) < 1 {
			return nil, &argError{"touch requires a filename"}
		}
		return in.runTouch(args[0])
	case "mv":
		if len(args) != 2 {
			return nil, &argError{"mv requires source and destination"}
		}
		return in.runMv(args[0], args[1])
	default:
		return nil, ErrUnsupported
	}
}

func (in *Interpreter) runLs() ([]string, error) {
	items, err := in.store.ListUploads()
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []string{"(empty)"}, nil
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%8d  %s  %s",
			item.SizeBytes, item.ModifiedAt.Format(time.RFC3339), item.Filename))
	}
	return lines, nil
}

func (in *Interpreter) runCat(name string) ([]string, error) {
	content, err := in.store.ReadText(in.store.NamePath(name))
	if err != nil {
		return nil, err
	}
	lines := strings.Split(content, "\n")
	// Trailing newline is a line terminator, not an extra empty line. An
	// empty file still yields one empty line.
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines, nil
}

func (in *Interpreter) runRm(name string) ([]string, error) {
	summary, err := in.store.Delete(in.store.NamePath(name))
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("deleted %s (%d bytes)", summary.Filename, summary.BytesWritten)}, nil
}

func (in *Interpreter) runTouch(name string) ([]string, error) {
	summary, created, err := in.store.Touch(in.store.NamePath(name))
	if err != nil {
		return nil, err
	}
	if created {
		return []string{"created " + summary.Filename}, nil
	}
	return []string{"updated timestamp for " + summary.Filename}, nil
}

func (in *Interpreter) runMv(src, dst string) ([]string, error) {
	summary, err := in.store.Rename(in.store.NamePath(src), in.store.NamePath(dst))
	if err != nil {
		return nil, err
	}
	return []string{"renamed to " + summary.Filename}, nil
}
