package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/specialistvlad/nativeapk/internal/config"
	"github.com/specialistvlad/nativeapk/internal/ctxlog"
	"github.com/specialistvlad/nativeapk/internal/executor"
	"github.com/specialistvlad/nativeapk/internal/node"
)

// Event names emitted to the dashboard.
const (
	EventPlan = "plan"
	EventNode = "node"
)

// ConnectTimeout bounds the wait for the initial connection.
var ConnectTimeout = 15 * time.Second

// SocketIOObserver emits build events over a socket.io connection. Every
// payload carries the run id so a dashboard can group events per build.
type SocketIOObserver struct {
	RunID string

	mu         sync.Mutex
	emit       func(event string, payload map[string]any)
	disconnect func()
}

var _ executor.Observer = (*SocketIOObserver)(nil)

// NewSocketIOObserver wraps an emit function; Dial builds the real one.
func NewSocketIOObserver(runID string, emit func(string, map[string]any), disconnect func()) *SocketIOObserver {
	if runID == "" {
		runID = uuid.NewString()
	}
	return &SocketIOObserver{RunID: runID, emit: emit, disconnect: disconnect}
}

// Dial connects to the dashboard described by cfg.
func Dial(ctx context.Context, cfg config.Notify) (*SocketIOObserver, error) {
	logger := ctxlog.FromContext(ctx).With("url", cfg.URL, "namespace", cfg.Namespace)

	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse notify URL: %w", err)
	}

	opts := socket.DefaultOptions()
	if cfg.Path != "" {
		opts.SetPath(cfg.Path)
	} else if parsed.Path != "" {
		opts.SetPath(parsed.Path)
	}
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification.")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host), opts)
	io := manager.Socket(cfg.Namespace, opts)

	connected := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		connected <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		if len(errs) > 0 {
			if err, ok := errs[0].(error); ok {
				connected <- err
				return
			}
		}
		connected <- fmt.Errorf("connect error")
	})

	logger.Debug("Connecting to build dashboard.")
	io.Connect()

	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, ctx.Err()
	case <-time.After(ConnectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", ConnectTimeout)
	}

	o := NewSocketIOObserver("",
		func(event string, payload map[string]any) { io.Emit(event, payload) },
		func() { io.Disconnect() },
	)
	logger.Info("Connected to build dashboard.", "run_id", o.RunID)
	return o, nil
}

func (s *SocketIOObserver) send(event string, payload map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emit == nil {
		return
	}
	payload["run_id"] = s.RunID
	s.emit(event, payload)
}

func (s *SocketIOObserver) OnPlan(_ context.Context, total int) {
	s.send(EventPlan, map[string]any{"nodes": total})
}

func (s *SocketIOObserver) OnStart(_ context.Context, n *node.Node) {
	s.send(EventNode, nodePayload(n, node.StatusRunning))
}

func (s *SocketIOObserver) OnFinish(_ context.Context, ev executor.Event) {
	p := nodePayload(ev.Node, ev.Status)
	p["attempts"] = ev.Attempts
	p["duration_ms"] = ev.Duration.Milliseconds()
	if ev.Err != nil {
		p["error"] = ev.Err.Error()
	}
	s.send(EventNode, p)
}

func nodePayload(n *node.Node, status node.Status) map[string]any {
	p := map[string]any{
		"node":   n.ID.String(),
		"kind":   string(n.Kind),
		"status": status.String(),
	}
	if n.Arch != "" {
		p["arch"] = n.Arch
	}
	return p
}

// Close disconnects; later events are dropped.
func (s *SocketIOObserver) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disconnect != nil {
		s.disconnect()
	}
	s.emit = nil
	s.disconnect = nil
	return nil
}
