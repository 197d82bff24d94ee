// Package apkerr defines the typed errors returned by every build stage.
//
// A stage failure is one of four kinds. The kind decides whether the executor
// may retry the node and which exit code the CLI reports.
package apkerr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a build failure.
type Kind int

const (
	// KindConfig is an invalid or incomplete configuration value.
	KindConfig Kind = iota + 1
	// KindToolchain is a missing SDK/NDK path or tool binary.
	KindToolchain
	// KindIO is a filesystem failure. Only this kind is considered transient.
	KindIO
	// KindProcess is an external tool that ran and exited non-zero.
	KindProcess
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindToolchain:
		return "toolchain"
	case KindIO:
		return "io"
	case KindProcess:
		return "process"
	default:
		return "unknown"
	}
}

// Error is a classified build failure.
type Error struct {
	Kind Kind
	// Op names the stage or tool that failed, e.g. "aapt package".
	Op string
	// Path is the file or directory involved, if any.
	Path string
	// ExitCode and Output are set for KindProcess.
	ExitCode int
	Output   string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	b.WriteString(" error")
	if e.Op != "" {
		fmt.Fprintf(&b, " in %s", e.Op)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " (%s)", e.Path)
	}
	if e.Kind == KindProcess {
		fmt.Fprintf(&b, ": exit status %d", e.ExitCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		fmt.Fprintf(&b, "\n%s", out)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Config reports an invalid configuration value.
func Config(op string, err error) *Error {
	return &Error{Kind: KindConfig, Op: op, Err: err}
}

// Configf is Config with a formatted message.
func Configf(op, format string, args ...any) *Error {
	return Config(op, fmt.Errorf(format, args...))
}

// Toolchain reports a missing or unusable toolchain component at path.
func Toolchain(op, path string, err error) *Error {
	return &Error{Kind: KindToolchain, Op: op, Path: path, Err: err}
}

// IO reports a filesystem failure on path.
func IO(op, path string, err error) *Error {
	return &Error{Kind: KindIO, Op: op, Path: path, Err: err}
}

// Process reports an external tool that exited with a non-zero status.
func Process(op string, exitCode int, output string, err error) *Error {
	return &Error{Kind: KindProcess, Op: op, ExitCode: exitCode, Output: output, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindIO
}
