package minecraft

import (
	"fmt"
	"os/exec"
)

// detachedStarter runs the game in its own session/process group with no
// stdio attached, then releases the handle so this process can exit first.
type detachedStarter struct{}

func (detachedStarter) Start(spec ProcessSpec) (int, error) {
	cmd := exec.Command(spec.Path, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.SysProcAttr = detachedAttrs()

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start %s: %w", spec.Path, err)
	}

	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return pid, fmt.Errorf("release pid %d: %w", pid, err)
	}
	return pid, nil
}
