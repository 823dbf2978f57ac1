//go:build !unix

package launcher

import "os/exec"

// detachSysProcAttr is a no-op on platforms without sessions; the child is
// still started without a wait, which is the best detachment available.
func detachSysProcAttr(cmd *exec.Cmd) {
}
