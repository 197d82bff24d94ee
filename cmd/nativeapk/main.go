// Command nativeapk assembles and signs Android APKs around Go native
// libraries. See `nativeapk --help` for the available commands.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/specialistvlad/nativeapk/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

// run is the testable body of main.
func run(ctx context.Context, outW io.Writer, args []string) error {
	return cli.Execute(ctx, outW, args)
}
