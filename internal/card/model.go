package card

// Card statuses as stored in the record store.
const (
	StatusActive  = "active"
	StatusBlocked = "blocked"
)

// Card — топливная карта клиента. BalanceLiters is a cached value that is
// eventually consistent with the operation ledger; reconciliation overwrites
// it from ledger truth.
type Card struct {
	ID            int     `json:"id"`
	CardCode      string  `json:"card_code"`
	ClientID      int     `json:"client_id"`
	ClientName    string  `json:"client_name,omitempty"`
	FuelTypeID    int     `json:"fuel_type_id"`
	FuelType      string  `json:"fuel_type,omitempty"`
	BalanceLiters float64 `json:"balance_liters"`
	DailyLimit    float64 `json:"daily_limit"`
	Status        string  `json:"status"`
	BlockReason   string  `json:"block_reason,omitempty"`
	PinCode       string  `json:"pin_code,omitempty"`
}

func (c Card) Blocked() bool {
	return c.Status == StatusBlocked
}
