package ledger

import (
	"errors"
	"fmt"
)

var ErrInvalidTransfer = errors.New("invalid transfer")

// ComposeTransfer builds the two ledger entries of an inter-card transfer: a
// debit on the source card and a credit on the target card. Both share the
// same date, quantity and amount, are booked on the warehouse station and
// cross-reference each other through the comment. Neither operation is
// persisted here.
//
// The source card's balance is NOT checked; callers must verify it covers
// quantity before composing the transfer.
func ComposeTransfer(sourceCardID, targetCardID int, quantity, price float64, sourceCode, targetCode, operationDate string) (debit, credit Operation, err error) {
	if quantity <= 0 {
		return Operation{}, Operation{}, fmt.Errorf("%w: quantity must be positive", ErrInvalidTransfer)
	}
	if sourceCardID == targetCardID {
		return Operation{}, Operation{}, fmt.Errorf("%w: source and target cards are the same", ErrInvalidTransfer)
	}

	amount := Round2(quantity * price)

	debit = Operation{
		CardID:        sourceCardID,
		CardCode:      sourceCode,
		StationName:   WarehouseStation,
		OperationDate: operationDate,
		OperationType: TypeDebit,
		Quantity:      quantity,
		Price:         price,
		Amount:        amount,
		Comment:       fmt.Sprintf("Перемещение на карту %s", targetCode),
	}

	credit = Operation{
		CardID:        targetCardID,
		CardCode:      targetCode,
		StationName:   WarehouseStation,
		OperationDate: operationDate,
		OperationType: TypeCredit,
		Quantity:      quantity,
		Price:         price,
		Amount:        amount,
		Comment:       fmt.Sprintf("Перемещение с карты %s", sourceCode),
	}

	return debit, credit, nil
}
