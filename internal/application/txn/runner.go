package txn

import (
	"context"
	"fmt"
	"sort"

	"github.com/erp/backoffice/internal/domain/shared"
)

// Runner executes a unit of work while holding the ledger locks it names
type Runner struct {
	scope  Scope
	locker shared.Locker
}

// NewRunner creates a runner over a transaction scope and a locker
func NewRunner(scope Scope, locker shared.Locker) *Runner {
	return &Runner{scope: scope, locker: locker}
}

// Run acquires every key, then runs fn in one transaction. The locks are released
// after the transaction commits or rolls back.
func (r *Runner) Run(ctx context.Context, keys []string, fn func(repos Repositories) error) error {
	keys = SortedKeys(keys...)
	if len(keys) > 0 {
		release, err := r.locker.Lock(ctx, keys...)
		if err != nil {
			return fmt.Errorf("acquire ledger locks: %w", err)
		}
		defer release()
	}
	return r.scope.Execute(ctx, fn)
}

// Read runs fn in a transaction without taking locks
func (r *Runner) Read(ctx context.Context, fn func(repos Repositories) error) error {
	return r.scope.Execute(ctx, fn)
}

// SortedKeys returns the keys deduplicated and in ascending order, which is the
// order every locker acquires them in
func SortedKeys(keys ...string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
