package operation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fuelcards/internal/card"
	"fuelcards/internal/ledger"
	"fuelcards/internal/logger"
	"fuelcards/internal/metrics"
)

// nowFunc is swapped in tests.
var nowFunc = time.Now

var (
	ErrUnknownType  = errors.New("unknown operation type")
	ErrCardNotFound = errors.New("card not found")
	ErrNotCardOwner = errors.New("card belongs to another client")
)

// Store is the record-store surface the service needs.
type Store interface {
	ListOperations(ctx context.Context) ([]ledger.Operation, error)
	CreateOperation(ctx context.Context, op ledger.Operation) (ledger.Operation, error)
	UpdateOperation(ctx context.Context, op ledger.Operation) error
	DeleteOperation(ctx context.Context, id int) error
	ListCards(ctx context.Context) ([]card.Card, error)
}

// Cache holds the journal snapshot between reads.
type Cache interface {
	Get(ctx context.Context) ([]ledger.Operation, error)
	Set(ctx context.Context, ops []ledger.Operation) error
	Invalidate(ctx context.Context) error
}

// Filter narrows an operation listing. Zero values mean "no constraint".
// Dates are half-open on neither side: DateFrom and DateTo are both inclusive,
// DateTo covering the whole day.
type Filter struct {
	CardCode string
	Station  string
	Type     ledger.OperationType
	DateFrom string // YYYY-MM-DD
	DateTo   string // YYYY-MM-DD
}

func (f Filter) matches(op ledger.Operation) bool {
	if f.CardCode != "" && op.CardCode != f.CardCode {
		return false
	}
	if f.Station != "" && op.StationName != f.Station {
		return false
	}
	if f.Type != "" && op.OperationType != f.Type {
		return false
	}
	if f.DateFrom != "" && op.OperationDate < f.DateFrom {
		return false
	}
	if f.DateTo != "" && op.OperationDate > f.DateTo+" 23:59" {
		return false
	}
	return true
}

type Service struct {
	store Store
	cache Cache
}

func NewService(store Store, cache Cache) *Service {
	return &Service{store: store, cache: cache}
}

// Snapshot returns the full operation journal with card references
// normalized: every operation carries both the numeric card id and the card
// code. Served from cache when fresh, refetched from the record store
// otherwise.
func (s *Service) Snapshot(ctx context.Context) ([]ledger.Operation, error) {
	if ops, err := s.cache.Get(ctx); err == nil {
		return ops, nil
	}

	ops, err := s.store.ListOperations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}
	cards, err := s.store.ListCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}

	idByCode := make(map[string]int, len(cards))
	codeByID := make(map[int]string, len(cards))
	for _, cd := range cards {
		idByCode[cd.CardCode] = cd.ID
		codeByID[cd.ID] = cd.CardCode
	}
	ops = ledger.NormalizeCardRefs(ops, idByCode, codeByID)

	if err := s.cache.Set(ctx, ops); err != nil {
		logger.Error("failed to cache operations snapshot", "error", err)
	}
	return ops, nil
}

// List returns journal entries matching f, newest first (the record store
// already orders by operation_date desc, id desc and Snapshot preserves it).
func (s *Service) List(ctx context.Context, f Filter) ([]ledger.Operation, error) {
	ops, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ledger.Operation, 0, len(ops))
	for _, op := range ops {
		if f.matches(op) {
			out = append(out, op)
		}
	}
	return out, nil
}

// CardStatement builds the running-balance statement of one card, filtered by
// f. The balance column is computed over the card's complete history first, so
// filtering never distorts it. clientID > 0 enforces ownership.
func (s *Service) CardStatement(ctx context.Context, clientID, cardID int, f Filter) ([]ledger.Entry, error) {
	if clientID > 0 {
		cards, err := s.store.ListCards(ctx)
		if err != nil {
			return nil, fmt.Errorf("list cards: %w", err)
		}
		var owned bool
		for _, cd := range cards {
			if cd.ID != cardID {
				continue
			}
			if cd.ClientID != clientID {
				return nil, ErrNotCardOwner
			}
			owned = true
			break
		}
		if !owned {
			return nil, ErrCardNotFound
		}
	}

	ops, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	entries := ledger.RunningBalance(ops, cardID)
	out := make([]ledger.Entry, 0, len(entries))
	for _, e := range entries {
		if f.matches(e.Operation) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Create validates and persists a new journal entry. The amount is derived
// from quantity and price when the caller leaves it zero.
func (s *Service) Create(ctx context.Context, op ledger.Operation) (ledger.Operation, error) {
	if !ledger.KnownType(op.OperationType) {
		return ledger.Operation{}, fmt.Errorf("%w: %q", ErrUnknownType, op.OperationType)
	}
	if op.OperationDate == "" {
		op.OperationDate = ledger.Timestamp(nowFunc())
	}
	if op.Amount == 0 {
		op.Amount = ledger.Round2(op.Quantity * op.Price)
	}

	created, err := s.store.CreateOperation(ctx, op)
	if err != nil {
		return ledger.Operation{}, fmt.Errorf("create operation: %w", err)
	}

	s.invalidate(ctx)
	metrics.RecordOperationCreated(string(op.OperationType))
	return created, nil
}

func (s *Service) Update(ctx context.Context, op ledger.Operation) error {
	if !ledger.KnownType(op.OperationType) {
		return fmt.Errorf("%w: %q", ErrUnknownType, op.OperationType)
	}
	if err := s.store.UpdateOperation(ctx, op); err != nil {
		return fmt.Errorf("update operation: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.store.DeleteOperation(ctx, id); err != nil {
		return fmt.Errorf("delete operation: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Error("failed to invalidate operations snapshot", "error", err)
	}
}
