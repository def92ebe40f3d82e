// Package process terminates a browser together with the helper processes
// it forked.
package process

import "errors"

// ErrInvalidPID is returned for PIDs that would address more than one tree.
var ErrInvalidPID = errors.New("process: invalid pid")

// KillTree kills pid and its descendants. It is best effort: the returned
// error is informational and callers usually fall back to killing pid alone.
func KillTree(pid int) error {
	// pid 0 and 1 would signal our own group or init.
	if pid <= 1 {
		return ErrInvalidPID
	}
	return killTree(pid)
}
