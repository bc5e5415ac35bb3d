// Package context holds per-operation state for the quote use cases.
//
// # Memoized reads
//
// GetOrFetch caches a lookup for the lifetime of one operation, so a save that
// needs the client record in several steps reads it from the store once:
//
//	rc := context.FromContext(ctx)
//	client, err := context.Fetch(rc, "client:Acme", func(ctx context.Context) (domain.Client, error) {
//	    return store.FindClientByName(ctx, "Acme")
//	})
//
// # Staged writes
//
// Child-record writes are staged as actions and committed in order:
//
//	rc.AddAction(context.ActionFunc("delete quote_items", deleteItems))
//	rc.AddAction(context.ActionFunc("insert quote_items", insertItems))
//
//	if err := rc.Commit(ctx); err != nil {
//	    // writes before the failing one stay committed
//	}
//
// The store has no transactions, so Commit stops at the first failure and
// reports which action failed. Already executed actions are not undone.
package context
