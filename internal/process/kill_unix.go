//go:build !windows

package process

import "syscall"

// Chrome is started in its own process group, so a negative pid reaches
// the renderer and GPU helpers too.
func killTree(pid int) error {
	return syscall.Kill(-pid, syscall.SIGKILL)
}
