// Command zipinject stores one file inside an existing zip archive:
//
//	zipinject <archive> <source-file> <entry-name>
//
// An existing entry with the same name is replaced. Exit status is 0 on
// success, 1 on failure and 2 on a usage error.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/specialistvlad/nativeapk/internal/archive"
	"github.com/specialistvlad/nativeapk/internal/cli"
	"github.com/specialistvlad/nativeapk/internal/ctxlog"
)

func main() {
	if err := run(os.Stderr, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(outW io.Writer, args []string) error {
	if len(args) != 3 {
		return &cli.ExitError{Code: cli.ExitUsage, Message: "usage: zipinject <archive> <source-file> <entry-name>"}
	}

	level := slog.LevelWarn
	if os.Getenv("ZIPINJECT_DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(outW, &slog.HandlerOptions{Level: level}))
	ctx := ctxlog.WithLogger(context.Background(), logger)

	return archive.NewZipMutator(nil).Inject(ctx, args[0], args[1], args[2])
}
