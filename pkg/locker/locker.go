// Package locker provides keyed mutual exclusion, used to serialise turns on
// the same support session.
package locker

import (
	"context"
	"errors"
)

// ErrLockTimeout is returned when the context ends before the lock is acquired.
var ErrLockTimeout = errors.New("lock not acquired")

// Unlock releases a held lock. It is safe to call more than once.
type Unlock func()

type Locker interface {
	Lock(ctx context.Context, key string) (Unlock, error)
}
