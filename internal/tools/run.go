package tools

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/specialistvlad/nativeapk/internal/apkerr"
	"github.com/specialistvlad/nativeapk/internal/ctxlog"
)

var secretFlags = map[string]bool{
	"-storepass": true,
	"-keypass":   true,
}

// Redact returns the command line with password values masked.
func Redact(cmd *exec.Cmd) string {
	args := make([]string, len(cmd.Args))
	copy(args, cmd.Args)
	for i := 0; i < len(args)-1; i++ {
		if secretFlags[args[i]] {
			args[i+1] = "****"
		}
	}
	return strings.Join(args, " ")
}

// Op names a command for error reports: the tool's base name plus its first
// argument when that is a subcommand, e.g. "aapt package".
func Op(cmd *exec.Cmd) string {
	name := filepath.Base(cmd.Path)
	if len(cmd.Args) > 1 && !strings.HasPrefix(cmd.Args[1], "-") && !strings.ContainsAny(cmd.Args[1], `/\.`) {
		return name + " " + cmd.Args[1]
	}
	return name
}

// Run executes cmd and returns its combined output. The process is killed
// when ctx is cancelled. A tool that cannot be started is a KindToolchain
// error; a non-zero exit is a KindProcess error carrying the exit code and
// output.
func Run(ctx context.Context, cmd *exec.Cmd) ([]byte, error) {
	logger := ctxlog.FromContext(ctx)
	op := Op(cmd)

	out := &syncBuffer{}
	cmd.Stdout = teeTo(cmd.Stdout, out)
	cmd.Stderr = teeTo(cmd.Stderr, out)

	if cmd.WaitDelay == 0 {
		// Grandchildren may keep the output pipes open after a kill.
		cmd.WaitDelay = time.Second
	}

	logger.Debug("Running external tool.", "op", op, "cmd", Redact(cmd))
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, apkerr.Toolchain(op, cmd.Path, err)
		}
		return nil, apkerr.IO(op, cmd.Path, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return out.Bytes(), ctx.Err()
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			logger.Debug("External tool failed.", "op", op, "exit_code", exitErr.ExitCode())
			return out.Bytes(), apkerr.Process(op, exitErr.ExitCode(), out.String(), nil)
		}
		return out.Bytes(), apkerr.IO(op, cmd.Path, err)
	}
	return out.Bytes(), nil
}

// syncBuffer collects stdout and stderr, which exec may write from two
// goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Clone(b.buf.Bytes())
}

func (b *syncBuffer) String() string {
	return string(b.Bytes())
}

func teeTo(existing io.Writer, buf *syncBuffer) io.Writer {
	if existing == nil {
		return buf
	}
	return io.MultiWriter(existing, buf)
}
