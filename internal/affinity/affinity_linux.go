//go:build linux

// Package affinity pins the calling goroutine's OS thread to a single CPU
// core, preventing the scheduler from migrating the matcher mid-run and
// cooling its caches.
package affinity

import (
	"runtime"

	"golang.org/x/sys/unix"

	"github.com/yanun0323/errors"
)

// PinCurrentThread locks the calling goroutine to its current OS thread
// and restricts that thread to coreID. The caller must not have other
// goroutines sharing responsibility for this OS thread afterward; it is
// meant to be called once, at the top of a dedicated matcher goroutine.
func PinCurrentThread(coreID int) error {
	if coreID < 0 {
		return nil
	}
	runtime.LockOSThread()

	var set unix.CPUSet
	set.Zero()
	set.Set(coreID)

	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return errors.Wrap(err, "sched_setaffinity").With("core", coreID)
	}
	return nil
}
