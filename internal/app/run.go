package app

import (
	"context"
	"fmt"

	"github.com/gookit/color"

	"github.com/specialistvlad/nativeapk/internal/apkerr"
	"github.com/specialistvlad/nativeapk/internal/checksum"
	"github.com/specialistvlad/nativeapk/internal/ctxlog"
	"github.com/specialistvlad/nativeapk/internal/deploy"
	"github.com/specialistvlad/nativeapk/internal/executor"
	"github.com/specialistvlad/nativeapk/internal/ndk"
	"github.com/specialistvlad/nativeapk/internal/node"
	"github.com/specialistvlad/nativeapk/internal/nodeid"
	"github.com/specialistvlad/nativeapk/internal/notify"
	"github.com/specialistvlad/nativeapk/internal/pipeline"
	"github.com/specialistvlad/nativeapk/internal/publish"
	"github.com/specialistvlad/nativeapk/internal/symbols"
)

// Summary describes a successful build.
type Summary struct {
	// APK is the final archive: the aligned one when alignment ran.
	APK       string
	BLAKE3    string
	Nodes     int
	Libraries []ndk.Library
}

type plan struct {
	result *pipeline.Result
	final  string
}

// assemble constructs the pipeline and attaches the stages enabled in the
// configuration.
func (a *App) assemble(ctx context.Context) (*plan, error) {
	res, err := pipeline.Build(ctx, nil, pipeline.Deps{
		Config:     a.model,
		Locker:     a.locker,
		Recompress: a.cfg.Recompress,
	})
	if err != nil {
		return nil, err
	}
	topo := res.Graph.Topology()

	if a.cfg.Symbols {
		compiles := make([]nodeid.Address, len(res.Libraries))
		for i, lib := range res.Libraries {
			compiles[i] = pipeline.CompileID(lib.Arch)
		}
		if _, err := symbols.Attach(ctx, topo, a.model.Output.APK, res.Libraries, compiles...); err != nil {
			return nil, err
		}
	}

	last, final, err := deploy.Attach(ctx, topo, res.Terminal, a.model, deploy.Options{
		Align:   a.cfg.Align,
		Install: a.cfg.Install,
		Launch:  a.cfg.Launch,
	})
	if err != nil {
		return nil, err
	}

	if a.cfg.Publish {
		if a.model.Publish == nil {
			return nil, apkerr.Configf("publish", "--publish requires a publish block in %s", a.cfg.ConfigPath)
		}
		p, err := publish.New(ctx, *a.model.Publish)
		if err != nil {
			return nil, err
		}
		if _, err := publish.Attach(ctx, topo, last, p, final); err != nil {
			return nil, err
		}
	}
	return &plan{result: res, final: final}, nil
}

// Graph constructs the build graph without running it and returns its
// nodes in dependency order.
func (a *App) Graph(ctx context.Context) ([]*node.Node, *pipeline.Result, error) {
	ctx = a.context(ctx)
	p, err := a.assemble(ctx)
	if err != nil {
		return nil, nil, err
	}
	order, err := p.result.Graph.Order(ctx)
	if err != nil {
		return nil, nil, err
	}
	return order, p.result, nil
}

// Run builds the APK and every enabled follow-up stage.
func (a *App) Run(ctx context.Context) (*Summary, error) {
	ctx = a.context(ctx)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("App.Run method started.")

	p, err := a.assemble(ctx)
	if err != nil {
		return nil, err
	}
	g := p.result.Graph

	observer, err := a.observer(ctx)
	if err != nil {
		return nil, err
	}
	sess, err := a.sessions.NewSession(ctx, g, executor.Options{
		Workers:  a.cfg.Workers,
		Retries:  a.cfg.Retries,
		Observer: observer,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := sess.Close(ctx); err != nil {
			logger.Warn("Failed to close session.", "error", err)
		}
	}()

	exec, err := sess.GetExecutor()
	if err != nil {
		return nil, err
	}
	if err := exec.Execute(ctx); err != nil {
		return nil, err
	}

	digest, err := checksum.File(p.final)
	if err != nil {
		return nil, err
	}
	summary := &Summary{
		APK:       p.final,
		BLAKE3:    digest,
		Nodes:     len(g.AllNodes(ctx)),
		Libraries: p.result.Libraries,
	}
	a.printSummary(summary)
	logger.Debug("App.Run method finished.")
	return summary, nil
}

func (a *App) observer(ctx context.Context) (executor.Observer, error) {
	observers := []executor.Observer{}
	if a.cfg.Progress {
		observers = append(observers, notify.NewProgress(a.outW))
	} else {
		observers = append(observers, notify.LogObserver{})
	}

	if a.cfg.Notify {
		if a.model.Notify == nil {
			return nil, apkerr.Configf("notify", "--notify requires a notify block in %s", a.cfg.ConfigPath)
		}
		sio, err := notify.Dial(ctx, *a.model.Notify)
		if err != nil {
			// The dashboard is best effort; the build goes on without it.
			ctxlog.FromContext(ctx).Warn("Build dashboard unavailable.", "error", err)
		} else {
			observers = append(observers, sio)
		}
	}
	return notify.Multi(observers...), nil
}

func (a *App) printSummary(s *Summary) {
	fmt.Fprintf(a.outW, "%s %s\n", color.Success.Sprint("BUILD SUCCESSFUL"), s.APK)
	fmt.Fprintf(a.outW, "  blake3:    %s\n", s.BLAKE3)
	fmt.Fprintf(a.outW, "  nodes:     %d\n", s.Nodes)
	for _, lib := range s.Libraries {
		fmt.Fprintf(a.outW, "  library:   %s\n", color.Note.Sprint(lib.Entry))
	}
}
