// Package flock provides cross-platform advisory file locks.
//
// Exclusive and Unlock are the non-blocking platform primitives. Acquire
// wraps them in a retry loop bounded by a deadline, which is how the
// workspace store serializes writers across processes:
//
//	lock, err := flock.Acquire(ctx, path, constants.LockTimeout)
//	if err != nil {
//	    return err
//	}
//	defer func() { _ = lock.Release() }()
package flock
