package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/gookit/color"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/specialistvlad/nativeapk/internal/executor"
	"github.com/specialistvlad/nativeapk/internal/node"
)

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ProgressObserver draws a progress bar over the nodes of a run and prints
// one colored line per failed or skipped node.
type ProgressObserver struct {
	w   io.Writer
	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

var (
	_ executor.Observer = (*ProgressObserver)(nil)
	_ io.Closer         = (*ProgressObserver)(nil)
)

// NewProgress creates a progress observer writing to w.
func NewProgress(w io.Writer) *ProgressObserver {
	return &ProgressObserver{w: w}
}

func (p *ProgressObserver) OnPlan(_ context.Context, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription("building"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (p *ProgressObserver) OnStart(_ context.Context, n *node.Node) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		p.bar.Describe(n.ID.String())
	}
}

func (p *ProgressObserver) OnFinish(_ context.Context, ev executor.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch ev.Status {
	case node.StatusFailed:
		fmt.Fprintf(p.w, "\n%s %s: %v\n", color.Danger.Sprint("FAIL"), ev.Node.ID.String(), ev.Err)
	case node.StatusSkipped:
		fmt.Fprintf(p.w, "\n%s %s\n", color.Warn.Sprint("SKIP"), ev.Node.ID.String())
	}
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

// Close finishes the bar.
func (p *ProgressObserver) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil {
		return nil
	}
	return p.bar.Finish()
}
