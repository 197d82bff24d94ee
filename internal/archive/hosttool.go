package archive

import (
	"context"
	"os"
	"os/exec"

	"github.com/specialistvlad/nativeapk/internal/ctxlog"
	"github.com/specialistvlad/nativeapk/internal/tools"
)

// HostTool injects through an external helper executable. The helper's exit
// status is the only success signal.
type HostTool struct {
	Path   string
	Locker *Locker
}

var _ Mutator = (*HostTool)(nil)

// NewHostTool creates a mutator delegating to the helper at path.
func NewHostTool(path string, locker *Locker) *HostTool {
	if locker == nil {
		locker = NewLocker()
	}
	return &HostTool{Path: path, Locker: locker}
}

// Command builds the helper invocation.
func (h *HostTool) Command(archive, source, entry string) *exec.Cmd {
	cmd := exec.Command(h.Path, archive, source, entry)
	cmd.Env = append(os.Environ(), LockHeldEnv+"=1")
	return cmd
}

func (h *HostTool) Inject(ctx context.Context, archive, source, entry string) error {
	unlock, err := h.Locker.Lock(ctx, archive)
	if err != nil {
		return err
	}
	defer unlock()

	ctxlog.FromContext(ctx).Debug("Injecting with host tool.", "tool", h.Path, "entry", entry)
	_, err = tools.Run(ctx, h.Command(archive, source, entry))
	return err
}
