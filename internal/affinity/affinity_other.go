//go:build !linux

package affinity

// PinCurrentThread is a no-op outside Linux: there is no portable
// equivalent of sched_setaffinity wired here, so callers fall back to
// running unpinned. Callers must warn, not fail, when this returns nil
// without actually pinning.
func PinCurrentThread(coreID int) error {
	return nil
}
