package cli

import (
	"errors"

	"github.com/specialistvlad/nativeapk/internal/apkerr"
)

// Exit codes.
const (
	ExitFailure   = 1
	ExitUsage     = 2
	ExitToolchain = 3
)

// ExitError is an error that carries the process exit code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// ExitCode maps err to a process exit code: configuration errors exit
// with 2, toolchain errors with 3 and everything else with 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	switch kind, _ := apkerr.KindOf(err); kind {
	case apkerr.KindConfig:
		return ExitUsage
	case apkerr.KindToolchain:
		return ExitToolchain
	default:
		return ExitFailure
	}
}
