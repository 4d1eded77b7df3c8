package shared

import "context"

// Locker serializes writers per ledger key. Lock blocks until every key is held or
// ctx ends; the returned release function frees all of them.
type Locker interface {
	Lock(ctx context.Context, keys ...string) (release func(), err error)
}
