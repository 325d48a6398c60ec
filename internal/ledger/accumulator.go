package ledger

import (
	"sort"

	"fuelcards/internal/metrics"
)

// Entry is one row of a card statement: the operation plus the balance
// after applying it.
type Entry struct {
	Operation
	Balance float64 `json:"balance"`
}

func signedQuantity(op Operation) float64 {
	eff := Effect(op.OperationType)
	if eff == 0 {
		// Data-quality problem, not an error: the operation contributes
		// nothing to the balance but the occurrence is counted.
		metrics.RecordUnknownOperationType(string(op.OperationType))
		return 0
	}
	return float64(eff) * op.Quantity
}

// TotalBalance sums the signed quantities of all operations belonging to
// cardID. The result does not depend on the order of ops. No matching
// operations yields 0.
func TotalBalance(ops []Operation, cardID int) float64 {
	var total float64
	for _, op := range ops {
		if op.CardID != cardID {
			continue
		}
		total += signedQuantity(op)
	}
	return Round2(total)
}

// RunningBalance filters ops to cardID, orders them chronologically
// (operation_date ascending, ties broken by id ascending) and returns the
// inclusive prefix-sum sequence. The last entry's balance equals TotalBalance
// over the same operations. Pure function: ops is never modified.
func RunningBalance(ops []Operation, cardID int) []Entry {
	filtered := make([]Operation, 0, len(ops))
	for _, op := range ops {
		if op.CardID == cardID {
			filtered = append(filtered, op)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].OperationDate != filtered[j].OperationDate {
			return filtered[i].OperationDate < filtered[j].OperationDate
		}
		return filtered[i].ID < filtered[j].ID
	})

	entries := make([]Entry, 0, len(filtered))
	var balance float64
	for _, op := range filtered {
		balance += signedQuantity(op)
		entries = append(entries, Entry{Operation: op, Balance: Round2(balance)})
	}
	return entries
}
