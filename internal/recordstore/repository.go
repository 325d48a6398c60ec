package recordstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"fuelcards/internal/ledger"
)

var (
	ErrCardNotFound       = errors.New("card not found")
	ErrCardBlocked        = errors.New("card is blocked")
	ErrWrongPin           = errors.New("wrong pin code")
	ErrInsufficientFuel   = errors.New("insufficient fuel on card")
	ErrDailyLimitExceeded = errors.New("daily limit exceeded")
	ErrUnknownType        = errors.New("unknown operation type")
	ErrStationRequired    = errors.New("station is required")
	ErrNotFound           = errors.New("record not found")
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// --- Clients ---

func (r *Repository) ListClients(ctx context.Context) ([]Client, error) {
	clients := []Client{}
	err := r.db.SelectContext(ctx, &clients,
		`SELECT id, inn, name, address, phone, email, login, password, admin
		 FROM clients
		 ORDER BY id`)
	return clients, err
}

func (r *Repository) CreateClient(ctx context.Context, cl Client) (Client, error) {
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO clients (inn, name, address, phone, email, login, password, admin)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		cl.INN, cl.Name, cl.Address, cl.Phone, cl.Email, cl.Login, cl.Password, cl.Admin,
	).Scan(&cl.ID)
	return cl, err
}

func (r *Repository) UpdateClient(ctx context.Context, cl Client) error {
	// Пустой пароль означает "не менять".
	res, err := r.db.ExecContext(ctx,
		`UPDATE clients
		 SET inn = $1, name = $2, address = $3, phone = $4, email = $5, login = $6,
		     password = CASE WHEN $7 = '' THEN password ELSE $7 END,
		     admin = $8
		 WHERE id = $9`,
		cl.INN, cl.Name, cl.Address, cl.Phone, cl.Email, cl.Login, cl.Password, cl.Admin, cl.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *Repository) DeleteClient(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// --- Stations ---

func (r *Repository) ListStations(ctx context.Context) ([]Station, error) {
	stations := []Station{}
	err := r.db.SelectContext(ctx, &stations,
		`SELECT id, name, code_1c, address FROM stations ORDER BY id`)
	return stations, err
}

func (r *Repository) CreateStation(ctx context.Context, s Station) (Station, error) {
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO stations (name, code_1c, address) VALUES ($1, $2, $3) RETURNING id`,
		s.Name, s.Code1C, s.Address,
	).Scan(&s.ID)
	return s, err
}

func (r *Repository) UpdateStation(ctx context.Context, s Station) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE stations SET name = $1, code_1c = $2, address = $3 WHERE id = $4`,
		s.Name, s.Code1C, s.Address, s.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *Repository) DeleteStation(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM stations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// --- Fuel types ---

func (r *Repository) ListFuelTypes(ctx context.Context) ([]FuelType, error) {
	types := []FuelType{}
	err := r.db.SelectContext(ctx, &types,
		`SELECT id, name, code_1c FROM fuel_types ORDER BY id`)
	return types, err
}

func (r *Repository) CreateFuelType(ctx context.Context, ft FuelType) (FuelType, error) {
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO fuel_types (name, code_1c) VALUES ($1, $2) RETURNING id`,
		ft.Name, ft.Code1C,
	).Scan(&ft.ID)
	return ft, err
}

func (r *Repository) UpdateFuelType(ctx context.Context, ft FuelType) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE fuel_types SET name = $1, code_1c = $2 WHERE id = $3`,
		ft.Name, ft.Code1C, ft.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *Repository) DeleteFuelType(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM fuel_types WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// --- Cards ---

const cardColumns = `
	fc.id, fc.card_code, fc.client_id, COALESCE(c.name, '') AS client_name,
	fc.fuel_type_id, COALESCE(ft.name, '') AS fuel_type,
	fc.balance_liters, fc.daily_limit, fc.status, fc.block_reason, fc.pin_code`

func (r *Repository) ListCards(ctx context.Context) ([]Card, error) {
	cards := []Card{}
	err := r.db.SelectContext(ctx, &cards, `
		SELECT `+cardColumns+`
		FROM fuel_cards fc
		LEFT JOIN clients c ON c.id = fc.client_id
		LEFT JOIN fuel_types ft ON ft.id = fc.fuel_type_id
		ORDER BY fc.id`)
	return cards, err
}

func (r *Repository) CreateCard(ctx context.Context, cd Card) (Card, error) {
	if cd.Status == "" {
		cd.Status = "active"
	}
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO fuel_cards (card_code, client_id, fuel_type_id, balance_liters, daily_limit, status, block_reason, pin_code)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		cd.CardCode, cd.ClientID, cd.FuelTypeID, cd.BalanceLiters, cd.DailyLimit, cd.Status, cd.BlockReason, cd.PinCode,
	).Scan(&cd.ID)
	return cd, err
}

func (r *Repository) UpdateCard(ctx context.Context, cd Card) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE fuel_cards
		 SET card_code = $1, client_id = $2, fuel_type_id = $3, balance_liters = $4,
		     daily_limit = $5, status = $6, block_reason = $7,
		     pin_code = CASE WHEN $8 = '' THEN pin_code ELSE $8 END
		 WHERE id = $9`,
		cd.CardCode, cd.ClientID, cd.FuelTypeID, cd.BalanceLiters,
		cd.DailyLimit, cd.Status, cd.BlockReason, cd.PinCode, cd.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *Repository) DeleteCard(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM fuel_cards WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// --- Operations ---

const operationColumns = `
	o.id, o.fuel_card_id, COALESCE(fc.card_code, '') AS card_code,
	COALESCE(s.name, '') AS station_name,
	to_char(o.operation_date, 'YYYY-MM-DD HH24:MI') AS operation_date,
	o.operation_type, o.quantity, o.price, o.amount, o.comment`

const operationJoins = `
	FROM card_operations o
	LEFT JOIN fuel_cards fc ON fc.id = o.fuel_card_id
	LEFT JOIN stations s ON s.id = o.station_id`

func (r *Repository) ListOperations(ctx context.Context) ([]Operation, error) {
	ops := []Operation{}
	err := r.db.SelectContext(ctx, &ops,
		`SELECT `+operationColumns+operationJoins+`
		 ORDER BY o.operation_date DESC, o.id DESC`)
	return ops, err
}

func (r *Repository) getOperation(ctx context.Context, id int) (Operation, error) {
	var op Operation
	err := r.db.GetContext(ctx, &op,
		`SELECT `+operationColumns+operationJoins+` WHERE o.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Operation{}, ErrNotFound
	}
	return op, err
}

// CreateOperation appends one journal entry. A repeated request_id returns the
// previously written entry instead of inserting a duplicate.
func (r *Repository) CreateOperation(ctx context.Context, op Operation, requestID string) (Operation, error) {
	if !ledger.KnownType(ledger.OperationType(op.OperationType)) {
		return Operation{}, fmt.Errorf("%w: %q", ErrUnknownType, op.OperationType)
	}

	if requestID != "" {
		var existingID int
		err := r.db.GetContext(ctx, &existingID,
			`SELECT id FROM card_operations WHERE request_id = $1`, requestID)
		if err == nil {
			return r.getOperation(ctx, existingID)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return Operation{}, err
		}
	}

	cardID, err := r.resolveCard(ctx, r.db, op.FuelCardID, op.CardCode)
	if err != nil {
		return Operation{}, err
	}
	stationID, err := r.resolveStation(ctx, r.db, op.StationName)
	if err != nil {
		return Operation{}, err
	}

	var opDate interface{}
	if op.OperationDate != "" {
		opDate = op.OperationDate
	}

	var reqID interface{}
	if requestID != "" {
		reqID = requestID
	}

	var id int
	err = r.db.QueryRowxContext(ctx,
		`INSERT INTO card_operations (fuel_card_id, station_id, operation_date, operation_type, quantity, price, amount, comment, request_id)
		 VALUES ($1, $2, COALESCE($3::timestamp, NOW()), $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		cardID, stationID, opDate, op.OperationType, op.Quantity, op.Price, op.Amount, op.Comment, reqID,
	).Scan(&id)
	if err != nil {
		return Operation{}, err
	}

	return r.getOperation(ctx, id)
}

func (r *Repository) UpdateOperation(ctx context.Context, op Operation) error {
	if !ledger.KnownType(ledger.OperationType(op.OperationType)) {
		return fmt.Errorf("%w: %q", ErrUnknownType, op.OperationType)
	}

	cardID, err := r.resolveCard(ctx, r.db, op.FuelCardID, op.CardCode)
	if err != nil {
		return err
	}
	stationID, err := r.resolveStation(ctx, r.db, op.StationName)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE card_operations
		 SET fuel_card_id = $1, station_id = $2, operation_date = COALESCE($3::timestamp, operation_date),
		     operation_type = $4, quantity = $5, price = $6, amount = $7, comment = $8
		 WHERE id = $9`,
		cardID, stationID, nullIfEmpty(op.OperationDate),
		op.OperationType, op.Quantity, op.Price, op.Amount, op.Comment, op.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *Repository) DeleteOperation(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM card_operations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// --- Terminal endpoints ---

// Refuel books a fill at a station: the card row is locked, the status, pin,
// balance and daily limit are checked, then the operation is written and the
// cached balance decremented in the same transaction.
func (r *Repository) Refuel(ctx context.Context, req RefuelRequest) (RefuelResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return RefuelResult{}, err
	}
	defer tx.Rollback()

	var cd Card
	err = tx.QueryRowxContext(ctx,
		`SELECT id, card_code, client_id, fuel_type_id, balance_liters, daily_limit, status, block_reason, pin_code
		 FROM fuel_cards
		 WHERE card_code = $1
		 FOR UPDATE`,
		req.CardCode,
	).StructScan(&cd)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RefuelResult{}, ErrCardNotFound
		}
		return RefuelResult{}, err
	}

	if cd.Status == "blocked" {
		return RefuelResult{}, ErrCardBlocked
	}
	if cd.PinCode != "" && cd.PinCode != req.PinCode {
		return RefuelResult{}, ErrWrongPin
	}
	if cd.BalanceLiters < req.Quantity {
		return RefuelResult{}, ErrInsufficientFuel
	}

	if cd.DailyLimit > 0 {
		var usedToday float64
		err = tx.GetContext(ctx, &usedToday,
			`SELECT COALESCE(SUM(quantity), 0)
			 FROM card_operations
			 WHERE fuel_card_id = $1
			   AND operation_type = 'fill'
			   AND operation_date::date = CURRENT_DATE`,
			cd.ID)
		if err != nil {
			return RefuelResult{}, err
		}
		if usedToday+req.Quantity > cd.DailyLimit {
			return RefuelResult{}, ErrDailyLimitExceeded
		}
	}

	stationID, err := r.resolveStation(ctx, tx, req.StationName)
	if err != nil {
		return RefuelResult{}, err
	}

	amount := ledger.Round2(req.Quantity * req.Price)
	var opID int
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO card_operations (fuel_card_id, station_id, operation_date, operation_type, quantity, price, amount, comment)
		 VALUES ($1, $2, NOW(), 'fill', $3, $4, $5, '')
		 RETURNING id`,
		cd.ID, stationID, req.Quantity, req.Price, amount,
	).Scan(&opID)
	if err != nil {
		return RefuelResult{}, err
	}

	newBalance := ledger.Round2(cd.BalanceLiters - req.Quantity)
	_, err = tx.ExecContext(ctx,
		`UPDATE fuel_cards SET balance_liters = $1 WHERE id = $2`,
		newBalance, cd.ID)
	if err != nil {
		return RefuelResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return RefuelResult{}, err
	}

	return RefuelResult{OperationID: opID, BalanceLiters: newBalance}, nil
}

// CardStatus answers the terminal's pre-fill check without exposing the pin.
func (r *Repository) CardStatus(ctx context.Context, cardCode string) (CardStatus, error) {
	var st CardStatus
	err := r.db.QueryRowxContext(ctx,
		`SELECT fc.card_code, fc.status, fc.balance_liters, fc.daily_limit, COALESCE(ft.name, '') AS fuel_type
		 FROM fuel_cards fc
		 LEFT JOIN fuel_types ft ON ft.id = fc.fuel_type_id
		 WHERE fc.card_code = $1`,
		cardCode,
	).Scan(&st.CardCode, &st.Status, &st.BalanceLiters, &st.DailyLimit, &st.FuelType)
	if errors.Is(err, sql.ErrNoRows) {
		return CardStatus{}, ErrCardNotFound
	}
	return st, err
}

// --- helpers ---

func (r *Repository) resolveCard(ctx context.Context, q sqlx.QueryerContext, cardID int, cardCode string) (int, error) {
	if cardID != 0 {
		return cardID, nil
	}
	if cardCode == "" {
		return 0, ErrCardNotFound
	}
	var id int
	err := sqlx.GetContext(ctx, q, &id, `SELECT id FROM fuel_cards WHERE card_code = $1`, cardCode)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrCardNotFound
	}
	return id, err
}

// resolveStation returns the id of the named station, registering unknown
// names on the fly: operations arrive from terminals before the station list
// is curated.
func (r *Repository) resolveStation(ctx context.Context, q sqlx.ExtContext, name string) (int, error) {
	if name == "" {
		return 0, ErrStationRequired
	}
	var id int
	err := sqlx.GetContext(ctx, q, &id, `SELECT id FROM stations WHERE name = $1`, name)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	err = sqlx.GetContext(ctx, q, &id,
		`INSERT INTO stations (name, code_1c, address) VALUES ($1, '', '') RETURNING id`, name)
	return id, err
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
