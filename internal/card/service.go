package card

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fuelcards/internal/ledger"
	"fuelcards/internal/logger"
	"fuelcards/internal/metrics"
)

var (
	ErrNotFound            = errors.New("card not found")
	ErrNotOwner            = errors.New("card belongs to another client")
	ErrCardBlocked         = errors.New("card is blocked")
	ErrInsufficientBalance = errors.New("insufficient card balance")
)

// nowFunc is swapped in tests.
var nowFunc = time.Now

// Store is the record-store surface the service needs.
type Store interface {
	ListCards(ctx context.Context) ([]Card, error)
	CreateCard(ctx context.Context, cd Card) (Card, error)
	UpdateCard(ctx context.Context, cd Card) error
	DeleteCard(ctx context.Context, id int) error
}

// Ledger provides the operation journal. Implemented by the operation
// service; declared here to keep the dependency one-directional.
type Ledger interface {
	Snapshot(ctx context.Context) ([]ledger.Operation, error)
	Create(ctx context.Context, op ledger.Operation) (ledger.Operation, error)
}

// ReconcileOutcome is what the reconciliation endpoint returns: the computed
// balances plus whether the recomputed value was persisted.
type ReconcileOutcome struct {
	ledger.ReconcileResult
	Saved bool `json:"saved"`
}

type Service struct {
	store  Store
	ledger Ledger
}

func NewService(store Store, ldg Ledger) *Service {
	return &Service{store: store, ledger: ldg}
}

func (s *Service) List(ctx context.Context) ([]Card, error) {
	return s.store.ListCards(ctx)
}

func (s *Service) ListByClient(ctx context.Context, clientID int) ([]Card, error) {
	cards, err := s.store.ListCards(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Card, 0, len(cards))
	for _, cd := range cards {
		if cd.ClientID == clientID {
			cd.PinCode = ""
			out = append(out, cd)
		}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, cardID int) (Card, error) {
	cards, err := s.store.ListCards(ctx)
	if err != nil {
		return Card{}, err
	}
	for _, cd := range cards {
		if cd.ID == cardID {
			return cd, nil
		}
	}
	return Card{}, ErrNotFound
}

// getOwned fetches cardID and enforces that it belongs to clientID.
// clientID <= 0 skips the ownership check (admin paths).
func (s *Service) getOwned(ctx context.Context, clientID, cardID int) (Card, error) {
	cd, err := s.Get(ctx, cardID)
	if err != nil {
		return Card{}, err
	}
	if clientID > 0 && cd.ClientID != clientID {
		return Card{}, ErrNotOwner
	}
	return cd, nil
}

func (s *Service) Create(ctx context.Context, cd Card) (Card, error) {
	if cd.Status == "" {
		cd.Status = StatusActive
	}
	return s.store.CreateCard(ctx, cd)
}

func (s *Service) Update(ctx context.Context, cd Card) error {
	return s.store.UpdateCard(ctx, cd)
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.store.DeleteCard(ctx, id)
}

func (s *Service) SetDailyLimit(ctx context.Context, clientID, cardID int, limit float64) (Card, error) {
	if limit < 0 {
		return Card{}, fmt.Errorf("daily limit must not be negative")
	}
	cd, err := s.getOwned(ctx, clientID, cardID)
	if err != nil {
		return Card{}, err
	}
	cd.DailyLimit = limit
	if err := s.store.UpdateCard(ctx, cd); err != nil {
		return Card{}, err
	}
	return cd, nil
}

func (s *Service) Block(ctx context.Context, clientID, cardID int, reason string) (Card, error) {
	cd, err := s.getOwned(ctx, clientID, cardID)
	if err != nil {
		return Card{}, err
	}
	cd.Status = StatusBlocked
	cd.BlockReason = reason
	if err := s.store.UpdateCard(ctx, cd); err != nil {
		return Card{}, err
	}
	return cd, nil
}

func (s *Service) Unblock(ctx context.Context, clientID, cardID int) (Card, error) {
	cd, err := s.getOwned(ctx, clientID, cardID)
	if err != nil {
		return Card{}, err
	}
	cd.Status = StatusActive
	cd.BlockReason = ""
	if err := s.store.UpdateCard(ctx, cd); err != nil {
		return Card{}, err
	}
	return cd, nil
}

// Transfer moves quantity liters from one of the client's cards to another.
// The check against the source's cached balance happens here, before the
// transfer pair is composed; the composition itself never looks at balances.
func (s *Service) Transfer(ctx context.Context, clientID, sourceID, targetID int, quantity, price float64) (debit, credit ledger.Operation, err error) {
	source, err := s.getOwned(ctx, clientID, sourceID)
	if err != nil {
		return ledger.Operation{}, ledger.Operation{}, err
	}
	target, err := s.getOwned(ctx, clientID, targetID)
	if err != nil {
		return ledger.Operation{}, ledger.Operation{}, err
	}
	if source.Blocked() || target.Blocked() {
		return ledger.Operation{}, ledger.Operation{}, ErrCardBlocked
	}
	if source.BalanceLiters < quantity {
		return ledger.Operation{}, ledger.Operation{}, ErrInsufficientBalance
	}

	debit, credit, err = ledger.ComposeTransfer(
		source.ID, target.ID, quantity, price,
		source.CardCode, target.CardCode,
		ledger.Timestamp(nowFunc()),
	)
	if err != nil {
		return ledger.Operation{}, ledger.Operation{}, err
	}

	debit, err = s.ledger.Create(ctx, debit)
	if err != nil {
		return ledger.Operation{}, ledger.Operation{}, fmt.Errorf("create debit: %w", err)
	}
	credit, err = s.ledger.Create(ctx, credit)
	if err != nil {
		// Половина перемещения записана. Сверка по исходной карте восстановит
		// кэш, но журнал требует ручной правки.
		logger.Error("transfer credit failed after debit was recorded",
			"source_card", source.CardCode, "target_card", target.CardCode, "error", err)
		return ledger.Operation{}, ledger.Operation{}, fmt.Errorf("create credit: %w", err)
	}

	source.BalanceLiters = ledger.Round2(source.BalanceLiters - quantity)
	target.BalanceLiters = ledger.Round2(target.BalanceLiters + quantity)
	if err := s.store.UpdateCard(ctx, source); err != nil {
		logger.Error("failed to update source card balance", "card", source.CardCode, "error", err)
	}
	if err := s.store.UpdateCard(ctx, target); err != nil {
		logger.Error("failed to update target card balance", "card", target.CardCode, "error", err)
	}

	metrics.RecordTransfer()
	metrics.SetCardBalance(source.CardCode, source.BalanceLiters)
	metrics.SetCardBalance(target.CardCode, target.BalanceLiters)

	return debit, credit, nil
}

// Reconcile recomputes cardID's balance from the journal and tries to persist
// it. A failed persist is not an error: the outcome still carries the
// computed balances with Saved false, so the caller sees the drift either way.
func (s *Service) Reconcile(ctx context.Context, cardID int) (ReconcileOutcome, error) {
	cd, err := s.Get(ctx, cardID)
	if err != nil {
		return ReconcileOutcome{}, err
	}
	ops, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return ReconcileOutcome{}, fmt.Errorf("load operations: %w", err)
	}

	outcome := ReconcileOutcome{
		ReconcileResult: ledger.Reconcile(cardID, cd.BalanceLiters, ops),
	}

	cd.BalanceLiters = outcome.NewBalance
	if err := s.store.UpdateCard(ctx, cd); err != nil {
		logger.Error("failed to persist reconciled balance", "card", cd.CardCode, "error", err)
	} else {
		outcome.Saved = true
		metrics.SetCardBalance(cd.CardCode, cd.BalanceLiters)
	}

	metrics.RecordReconciliation(outcome.Saved)
	return outcome, nil
}
