package card

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fuelcards/internal/ledger"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) ListCards(ctx context.Context) ([]Card, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Card), args.Error(1)
}

func (m *mockStore) CreateCard(ctx context.Context, cd Card) (Card, error) {
	args := m.Called(ctx, cd)
	return args.Get(0).(Card), args.Error(1)
}

func (m *mockStore) UpdateCard(ctx context.Context, cd Card) error {
	args := m.Called(ctx, cd)
	return args.Error(0)
}

func (m *mockStore) DeleteCard(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) Snapshot(ctx context.Context) ([]ledger.Operation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Operation), args.Error(1)
}

func (m *mockLedger) Create(ctx context.Context, op ledger.Operation) (ledger.Operation, error) {
	args := m.Called(ctx, op)
	return args.Get(0).(ledger.Operation), args.Error(1)
}

func twoCards() []Card {
	return []Card{
		{ID: 1, CardCode: "FC-001", ClientID: 3, BalanceLiters: 500, Status: StatusActive},
		{ID: 2, CardCode: "FC-002", ClientID: 3, BalanceLiters: 50, Status: StatusActive},
	}
}

func TestTransfer(t *testing.T) {
	store := new(mockStore)
	ldg := new(mockLedger)
	ctx := context.Background()

	fixed := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return fixed }
	defer func() { nowFunc = time.Now }()

	store.On("ListCards", ctx).Return(twoCards(), nil)

	var recorded []ledger.Operation
	ldg.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
		recorded = append(recorded, args.Get(1).(ledger.Operation))
	}).Return(ledger.Operation{}, nil).Twice()

	var updated []Card
	store.On("UpdateCard", ctx, mock.Anything).Run(func(args mock.Arguments) {
		updated = append(updated, args.Get(1).(Card))
	}).Return(nil).Twice()

	svc := NewService(store, ldg)
	_, _, err := svc.Transfer(ctx, 3, 1, 2, 100, 52.5)
	require.NoError(t, err)

	require.Len(t, recorded, 2)
	debit, credit := recorded[0], recorded[1]
	assert.Equal(t, ledger.TypeDebit, debit.OperationType)
	assert.Equal(t, ledger.TypeCredit, credit.OperationType)
	assert.Equal(t, 1, debit.CardID)
	assert.Equal(t, 2, credit.CardID)
	assert.Equal(t, 100.0, debit.Quantity)
	assert.Equal(t, debit.Quantity, credit.Quantity)
	assert.Equal(t, 5250.0, debit.Amount)
	assert.Equal(t, debit.Amount, credit.Amount)
	assert.Equal(t, "Склад", debit.StationName)
	assert.Equal(t, "2024-03-10 12:00", credit.OperationDate)

	require.Len(t, updated, 2)
	assert.Equal(t, 400.0, updated[0].BalanceLiters)
	assert.Equal(t, 150.0, updated[1].BalanceLiters)
}

func TestTransferInsufficientBalance(t *testing.T) {
	store := new(mockStore)
	ldg := new(mockLedger)
	ctx := context.Background()

	store.On("ListCards", ctx).Return(twoCards(), nil)

	svc := NewService(store, ldg)
	_, _, err := svc.Transfer(ctx, 3, 2, 1, 100, 52.5)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	ldg.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTransferBlockedCard(t *testing.T) {
	store := new(mockStore)
	ldg := new(mockLedger)
	ctx := context.Background()

	cards := twoCards()
	cards[1].Status = StatusBlocked
	store.On("ListCards", ctx).Return(cards, nil)

	svc := NewService(store, ldg)
	_, _, err := svc.Transfer(ctx, 3, 1, 2, 10, 52.5)
	assert.ErrorIs(t, err, ErrCardBlocked)
}

func TestTransferForeignCard(t *testing.T) {
	store := new(mockStore)
	ldg := new(mockLedger)
	ctx := context.Background()

	store.On("ListCards", ctx).Return(twoCards(), nil)

	svc := NewService(store, ldg)
	_, _, err := svc.Transfer(ctx, 9, 1, 2, 10, 52.5)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestTransferSameCard(t *testing.T) {
	store := new(mockStore)
	ldg := new(mockLedger)
	ctx := context.Background()

	store.On("ListCards", ctx).Return(twoCards(), nil)

	svc := NewService(store, ldg)
	_, _, err := svc.Transfer(ctx, 3, 1, 1, 10, 52.5)
	assert.ErrorIs(t, err, ledger.ErrInvalidTransfer)
}

func TestReconcilePersists(t *testing.T) {
	store := new(mockStore)
	ldg := new(mockLedger)
	ctx := context.Background()

	store.On("ListCards", ctx).Return([]Card{
		{ID: 1, CardCode: "FC-001", ClientID: 3, BalanceLiters: 900, Status: StatusActive},
	}, nil)
	ldg.On("Snapshot", ctx).Return([]ledger.Operation{
		{ID: 1, CardID: 1, OperationType: ledger.TypeTopUp, Quantity: 1000},
		{ID: 2, CardID: 1, OperationType: ledger.TypeFill, Quantity: 45},
	}, nil)

	var saved Card
	store.On("UpdateCard", ctx, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(Card)
	}).Return(nil)

	svc := NewService(store, ldg)
	outcome, err := svc.Reconcile(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 900.0, outcome.OldBalance)
	assert.Equal(t, 955.0, outcome.NewBalance)
	assert.Equal(t, 55.0, outcome.Delta)
	assert.True(t, outcome.Saved)
	assert.Equal(t, 955.0, saved.BalanceLiters)
}

func TestReconcilePersistFailureStillReportsBalances(t *testing.T) {
	store := new(mockStore)
	ldg := new(mockLedger)
	ctx := context.Background()

	store.On("ListCards", ctx).Return([]Card{
		{ID: 1, CardCode: "FC-001", BalanceLiters: 900, Status: StatusActive},
	}, nil)
	ldg.On("Snapshot", ctx).Return([]ledger.Operation{
		{ID: 1, CardID: 1, OperationType: ledger.TypeTopUp, Quantity: 955},
	}, nil)
	store.On("UpdateCard", ctx, mock.Anything).Return(errors.New("store down"))

	svc := NewService(store, ldg)
	outcome, err := svc.Reconcile(ctx, 1)
	require.NoError(t, err)

	assert.False(t, outcome.Saved)
	assert.Equal(t, 900.0, outcome.OldBalance)
	assert.Equal(t, 955.0, outcome.NewBalance)
	assert.Equal(t, 55.0, outcome.Delta)
}

func TestReconcileIdempotent(t *testing.T) {
	store := new(mockStore)
	ldg := new(mockLedger)
	ctx := context.Background()

	store.On("ListCards", ctx).Return([]Card{
		{ID: 1, CardCode: "FC-001", BalanceLiters: 955, Status: StatusActive},
	}, nil)
	ldg.On("Snapshot", ctx).Return([]ledger.Operation{
		{ID: 1, CardID: 1, OperationType: ledger.TypeTopUp, Quantity: 955},
	}, nil)
	store.On("UpdateCard", ctx, mock.Anything).Return(nil)

	svc := NewService(store, ldg)
	outcome, err := svc.Reconcile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, outcome.Delta)
}

func TestSetDailyLimit(t *testing.T) {
	store := new(mockStore)
	ldg := new(mockLedger)
	ctx := context.Background()

	store.On("ListCards", ctx).Return(twoCards(), nil)
	store.On("UpdateCard", ctx, mock.MatchedBy(func(cd Card) bool {
		return cd.ID == 1 && cd.DailyLimit == 120
	})).Return(nil)

	svc := NewService(store, ldg)
	cd, err := svc.SetDailyLimit(ctx, 3, 1, 120)
	require.NoError(t, err)
	assert.Equal(t, 120.0, cd.DailyLimit)

	_, err = svc.SetDailyLimit(ctx, 3, 1, -5)
	assert.Error(t, err)
}

func TestBlockUnblock(t *testing.T) {
	store := new(mockStore)
	ldg := new(mockLedger)
	ctx := context.Background()

	store.On("ListCards", ctx).Return(twoCards(), nil)
	store.On("UpdateCard", ctx, mock.Anything).Return(nil)

	svc := NewService(store, ldg)

	cd, err := svc.Block(ctx, 3, 1, "утеряна")
	require.NoError(t, err)
	assert.Equal(t, StatusBlocked, cd.Status)
	assert.Equal(t, "утеряна", cd.BlockReason)

	cd, err = svc.Unblock(ctx, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, cd.Status)
	assert.Empty(t, cd.BlockReason)
}

func TestListByClientHidesPin(t *testing.T) {
	store := new(mockStore)
	ctx := context.Background()

	cards := twoCards()
	cards[0].PinCode = "1234"
	store.On("ListCards", ctx).Return(cards, nil)

	svc := NewService(store, new(mockLedger))
	got, err := svc.ListByClient(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Empty(t, got[0].PinCode)
}
