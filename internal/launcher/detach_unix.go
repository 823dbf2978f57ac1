//go:build unix

package launcher

import (
	"os/exec"
	"syscall"
)

// detachSysProcAttr puts the child in its own session so it survives the
// launching terminal going away.
func detachSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
