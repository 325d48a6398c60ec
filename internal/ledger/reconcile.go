package ledger

// ReconcileResult reports how far a card's cached balance has drifted from
// what the operation ledger says.
type ReconcileResult struct {
	OldBalance float64 `json:"old_balance"`
	NewBalance float64 `json:"new_balance"`
	Delta      float64 `json:"delta"`
}

// Reconcile recomputes the authoritative balance of cardID from the full
// operation list and compares it with the currently cached value. Persisting
// NewBalance is the caller's responsibility; the function itself is pure and
// safe to re-run (once the cache holds NewBalance a second call reports a
// zero delta).
func Reconcile(cardID int, cachedBalance float64, ops []Operation) ReconcileResult {
	newBalance := TotalBalance(ops, cardID)
	return ReconcileResult{
		OldBalance: cachedBalance,
		NewBalance: newBalance,
		Delta:      Round2(newBalance - cachedBalance),
	}
}
