package recordstore

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestListOperationsOrder(t *testing.T) {
	repo, mock := newTestRepo(t)

	rows := sqlmock.NewRows([]string{
		"id", "fuel_card_id", "card_code", "station_name", "operation_date",
		"operation_type", "quantity", "price", "amount", "comment",
	}).
		AddRow(2, 1, "FC-001", "АЗС-12", "2024-03-02 09:15", "fill", 40.0, 52.5, 2100.0, "").
		AddRow(1, 1, "FC-001", "Склад", "2024-03-01 10:00", "topup", 500.0, 52.5, 26250.0, "")

	mock.ExpectQuery("ORDER BY o.operation_date DESC, o.id DESC").WillReturnRows(rows)

	ops, err := repo.ListOperations(context.Background())
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, 2, ops[0].ID)
	assert.Equal(t, "fill", ops[0].OperationType)
	assert.Equal(t, "Склад", ops[1].StationName)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOperationRejectsUnknownType(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.CreateOperation(context.Background(), Operation{
		FuelCardID:    1,
		StationName:   "Склад",
		OperationType: "cashback",
		Quantity:      10,
	}, "")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestCreateOperationDeduplicatesByRequestID(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT id FROM card_operations WHERE request_id").
		WithArgs("req-123").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	existing := sqlmock.NewRows([]string{
		"id", "fuel_card_id", "card_code", "station_name", "operation_date",
		"operation_type", "quantity", "price", "amount", "comment",
	}).AddRow(7, 1, "FC-001", "Склад", "2024-03-01 10:00", "topup", 500.0, 52.5, 26250.0, "")
	mock.ExpectQuery("WHERE o.id =").WithArgs(7).WillReturnRows(existing)

	op, err := repo.CreateOperation(context.Background(), Operation{
		FuelCardID:    1,
		StationName:   "Склад",
		OperationType: "topup",
		Quantity:      500,
	}, "req-123")
	require.NoError(t, err)
	assert.Equal(t, 7, op.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOperationResolvesCardCode(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT id FROM fuel_cards WHERE card_code").
		WithArgs("FC-009").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
	mock.ExpectQuery("SELECT id FROM stations WHERE name").
		WithArgs("АЗС-3").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectQuery("INSERT INTO card_operations").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(15))

	created := sqlmock.NewRows([]string{
		"id", "fuel_card_id", "card_code", "station_name", "operation_date",
		"operation_type", "quantity", "price", "amount", "comment",
	}).AddRow(15, 9, "FC-009", "АЗС-3", "2024-03-05 08:00", "fill", 25.0, 51.0, 1275.0, "")
	mock.ExpectQuery("WHERE o.id =").WithArgs(15).WillReturnRows(created)

	op, err := repo.CreateOperation(context.Background(), Operation{
		CardCode:      "FC-009",
		StationName:   "АЗС-3",
		OperationType: "fill",
		Quantity:      25,
		Price:         51,
		Amount:        1275,
	}, "")
	require.NoError(t, err)
	assert.Equal(t, 15, op.ID)
	assert.Equal(t, 9, op.FuelCardID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func cardRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "card_code", "client_id", "fuel_type_id", "balance_liters",
		"daily_limit", "status", "block_reason", "pin_code",
	})
}

func TestRefuel(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("FC-001").
		WillReturnRows(cardRows().AddRow(1, "FC-001", 3, 1, 500.0, 0.0, "active", "", ""))
	mock.ExpectQuery("SELECT id FROM stations WHERE name").
		WithArgs("АЗС-12").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectQuery("INSERT INTO card_operations").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21))
	mock.ExpectExec("UPDATE fuel_cards SET balance_liters").
		WithArgs(460.0, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := repo.Refuel(context.Background(), RefuelRequest{
		CardCode:    "FC-001",
		StationName: "АЗС-12",
		Quantity:    40,
		Price:       52.5,
	})
	require.NoError(t, err)
	assert.Equal(t, 21, result.OperationID)
	assert.Equal(t, 460.0, result.BalanceLiters)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefuelInsufficientFuel(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("FC-001").
		WillReturnRows(cardRows().AddRow(1, "FC-001", 3, 1, 10.0, 0.0, "active", "", ""))
	mock.ExpectRollback()

	_, err := repo.Refuel(context.Background(), RefuelRequest{
		CardCode:    "FC-001",
		StationName: "АЗС-12",
		Quantity:    40,
	})
	assert.ErrorIs(t, err, ErrInsufficientFuel)
}

func TestRefuelBlockedCard(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("FC-001").
		WillReturnRows(cardRows().AddRow(1, "FC-001", 3, 1, 500.0, 0.0, "blocked", "утеряна", ""))
	mock.ExpectRollback()

	_, err := repo.Refuel(context.Background(), RefuelRequest{
		CardCode:    "FC-001",
		StationName: "АЗС-12",
		Quantity:    40,
	})
	assert.ErrorIs(t, err, ErrCardBlocked)
}

func TestRefuelWrongPin(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("FC-001").
		WillReturnRows(cardRows().AddRow(1, "FC-001", 3, 1, 500.0, 0.0, "active", "", "1234"))
	mock.ExpectRollback()

	_, err := repo.Refuel(context.Background(), RefuelRequest{
		CardCode:    "FC-001",
		PinCode:     "0000",
		StationName: "АЗС-12",
		Quantity:    40,
	})
	assert.ErrorIs(t, err, ErrWrongPin)
}

func TestRefuelDailyLimitExceeded(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("FC-001").
		WillReturnRows(cardRows().AddRow(1, "FC-001", 3, 1, 500.0, 100.0, "active", "", ""))
	mock.ExpectQuery("COALESCE").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(80.0))
	mock.ExpectRollback()

	_, err := repo.Refuel(context.Background(), RefuelRequest{
		CardCode:    "FC-001",
		StationName: "АЗС-12",
		Quantity:    40,
	})
	assert.ErrorIs(t, err, ErrDailyLimitExceeded)
}

func TestCardStatusNotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("FROM fuel_cards fc").
		WithArgs("FC-404").
		WillReturnRows(sqlmock.NewRows([]string{"card_code", "status", "balance_liters", "daily_limit", "fuel_type"}))

	_, err := repo.CardStatus(context.Background(), "FC-404")
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestUpdateClientNotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec("UPDATE clients").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateClient(context.Background(), Client{ID: 99, Login: "ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}
