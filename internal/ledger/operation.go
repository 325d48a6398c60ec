package ledger

import (
	"math"
	"time"
)

// OperationType — тип операции в журнале карты.
type OperationType string

const (
	TypeTopUp  OperationType = "topup"  // пополнение картой администратора
	TypeFill   OperationType = "fill"   // заправка на АЗС
	TypeDebit  OperationType = "debit"  // списание при перемещении на другую карту
	TypeCredit OperationType = "credit" // оприходование при перемещении с другой карты
)

// WarehouseStation marks non-pump operations (top-ups and transfers).
const WarehouseStation = "Склад"

// DateTimeLayout keeps operation dates lexicographically sortable.
const DateTimeLayout = "2006-01-02 15:04"

// Operation is a single append-only ledger entry for a fuel card.
type Operation struct {
	ID            int           `json:"id"`
	CardID        int           `json:"fuel_card_id"`
	CardCode      string        `json:"card_code"`
	StationName   string        `json:"station_name"`
	OperationDate string        `json:"operation_date"`
	OperationType OperationType `json:"operation_type"`
	Quantity      float64       `json:"quantity"`
	Price         float64       `json:"price"`
	Amount        float64       `json:"amount"`
	Comment       string        `json:"comment"`
}

// Effect maps an operation type to its signed effect on a card balance:
// +1 credits liters, -1 debits them, 0 for anything unrecognized.
func Effect(t OperationType) int {
	switch t {
	case TypeTopUp, TypeCredit:
		return 1
	case TypeFill, TypeDebit:
		return -1
	default:
		return 0
	}
}

// KnownType reports whether t belongs to the closed operation type enumeration.
func KnownType(t OperationType) bool {
	switch t {
	case TypeTopUp, TypeFill, TypeDebit, TypeCredit:
		return true
	}
	return false
}

// Round2 rounds liters and rubles to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Timestamp formats t in the ledger date layout.
func Timestamp(t time.Time) string {
	return t.Format(DateTimeLayout)
}

// NormalizeCardRefs resolves the dual card representation (numeric id vs card
// code) to one canonical view: every returned operation carries both the id and
// the code when either can be resolved. The input slice is never modified.
func NormalizeCardRefs(ops []Operation, idByCode map[string]int, codeByID map[int]string) []Operation {
	out := make([]Operation, len(ops))
	copy(out, ops)
	for i := range out {
		if out[i].CardID == 0 && out[i].CardCode != "" {
			out[i].CardID = idByCode[out[i].CardCode]
		}
		if out[i].CardCode == "" && out[i].CardID != 0 {
			out[i].CardCode = codeByID[out[i].CardID]
		}
	}
	return out
}
