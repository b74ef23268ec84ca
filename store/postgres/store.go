package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/etnz/opcoes"
	"github.com/etnz/opcoes/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Store implements store.Store using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// Pool returns the underlying connection pool.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// Close shuts down the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Numbers and dates are read as text and parsed exactly; NULLs read as "".
const (
	positionSelectCols = `ops_id::text, id::text, COALESCE(ops_ticker, ''), COALESCE(ops_acao, ''),
		COALESCE(ops_tipo, ''), COALESCE(ops_operacao, ''),
		COALESCE(ops_strike::text, ''), COALESCE(acao_cotacao::text, ''), COALESCE(ops_quanti::text, ''),
		COALESCE(ops_premio::text, ''), COALESCE(ops_vencimento::text, ''), COALESCE(ops_criado_em, to_timestamp(0))`
	closingSelectCols = `c.completed_id::text, r.id::text, c.ops_id::text,
		COALESCE(c.completed_premio::text, ''), COALESCE(c.completed_quanti::text, ''),
		COALESCE(c.completed_data::text, ''), c.completed_criado_em`
	collateralSelectCols = `garantia_id::text, user_id::text, tipo, COALESCE(ticker, ''),
		COALESCE(quantidade::text, ''), COALESCE(tipo_renda_fixa, ''), COALESCE(valor_reais::text, ''), criado_em`
	goalSelectCols = `goal_id::text, id::text, COALESCE(goal_tipo, ''), COALESCE(goal_valor::text, ''),
		COALESCE(goal_ano, 0), created_at`
)

// nullDate maps the zero date to NULL.
func nullDate(d opcoes.Date) *string {
	if d.IsZero() {
		return nil
	}
	v := d.String()
	return &v
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func notFound(tag pgconn.CommandTag, what, id string) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", what, id, store.ErrNotFound)
	}
	return nil
}

func (s *Store) Snapshot(ctx context.Context, user string) (*opcoes.Snapshot, error) {
	var snap opcoes.Snapshot
	var err error
	if snap.Positions, err = s.positions(ctx, user); err != nil {
		return nil, err
	}
	if snap.Closings, err = s.closings(ctx, user); err != nil {
		return nil, err
	}
	if snap.Collaterals, err = s.collaterals(ctx, user); err != nil {
		return nil, err
	}
	if snap.Goals, err = s.goals(ctx, user); err != nil {
		return nil, err
	}
	s.log.Debug().Str("user", user).Int("positions", len(snap.Positions)).Int("closings", len(snap.Closings)).Msg("snapshot loaded")
	return &snap, nil
}

func scanPositionRows(rows pgx.Rows) ([]opcoes.Position, error) {
	var positions []opcoes.Position
	for rows.Next() {
		var p opcoes.Position
		var typ, op, strike, quote, qty, premium, expiration string
		if err := rows.Scan(&p.ID, &p.User, &p.Ticker, &p.Underlying, &typ, &op,
			&strike, &quote, &qty, &premium, &expiration, &p.Created); err != nil {
			return nil, err
		}
		var r store.Row
		p.Type = r.Type("ops_tipo", typ)
		p.Direction = r.Direction("ops_operacao", op)
		p.Strike = r.Money("ops_strike", strike)
		p.Quote = r.Money("acao_cotacao", quote)
		p.Quantity = r.Quantity("ops_quanti", qty)
		p.Premium = r.Money("ops_premio", premium)
		p.Expiration = r.Date("ops_vencimento", expiration)
		if err := r.Err(); err != nil {
			return nil, fmt.Errorf("position %s: %w", p.ID, err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

func (s *Store) positions(ctx context.Context, user string) ([]opcoes.Position, error) {
	query := `SELECT ` + positionSelectCols + ` FROM ops_registry WHERE id = $1 ORDER BY ops_criado_em, ops_id`
	rows, err := s.pool.Query(ctx, query, user)
	if err != nil {
		return nil, fmt.Errorf("postgres: list positions: %w", err)
	}
	defer rows.Close()
	res, err := scanPositionRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: list positions: %w", err)
	}
	return res, nil
}

func (s *Store) InsertPosition(ctx context.Context, p opcoes.Position) (opcoes.Position, error) {
	store.Stamp(&p.ID, &p.Created, time.Now())
	const query = `
		INSERT INTO ops_registry (
			ops_id, id, ops_ticker, ops_acao, ops_tipo, ops_operacao,
			ops_strike, acao_cotacao, ops_quanti, ops_premio, ops_vencimento, ops_criado_em
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7::text::numeric, $8::text::numeric, $9::text::numeric, $10::text::numeric, $11::text::date, $12
		)`
	_, err := s.pool.Exec(ctx, query,
		p.ID, p.User, p.Ticker, p.Underlying,
		store.TypeValue(p.Type), store.OperationValue(p.Direction),
		p.Strike.Decimal().String(), p.Quote.Decimal().String(),
		p.Quantity.Decimal().String(), p.Premium.Decimal().String(),
		nullDate(p.Expiration), p.Created,
	)
	if isUniqueViolation(err) {
		return p, fmt.Errorf("position %s: %w", p.ID, store.ErrExists)
	}
	if err != nil {
		return p, fmt.Errorf("postgres: create position %s: %w", p.ID, err)
	}
	return p, nil
}

// UpdatePosition replaces all mutable fields of a position.
func (s *Store) UpdatePosition(ctx context.Context, p opcoes.Position) error {
	const query = `
		UPDATE ops_registry SET
			ops_ticker     = $3,
			ops_acao       = $4,
			ops_tipo       = $5,
			ops_operacao   = $6,
			ops_strike     = $7::text::numeric,
			acao_cotacao   = $8::text::numeric,
			ops_quanti     = $9::text::numeric,
			ops_premio     = $10::text::numeric,
			ops_vencimento = $11::text::date
		WHERE ops_id = $1 AND id = $2`
	tag, err := s.pool.Exec(ctx, query,
		p.ID, p.User, p.Ticker, p.Underlying,
		store.TypeValue(p.Type), store.OperationValue(p.Direction),
		p.Strike.Decimal().String(), p.Quote.Decimal().String(),
		p.Quantity.Decimal().String(), p.Premium.Decimal().String(),
		nullDate(p.Expiration),
	)
	if err != nil {
		return fmt.Errorf("postgres: update position %s: %w", p.ID, err)
	}
	return notFound(tag, "position", p.ID)
}

// DeletePosition removes the position and, by cascade, its closing.
func (s *Store) DeletePosition(ctx context.Context, user, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM ops_registry WHERE ops_id = $1 AND id = $2`, id, user)
	if err != nil {
		return fmt.Errorf("postgres: delete position %s: %w", id, err)
	}
	return notFound(tag, "position", id)
}

func (s *Store) closings(ctx context.Context, user string) ([]opcoes.Closing, error) {
	query := `SELECT ` + closingSelectCols + `
		FROM ops_completed c JOIN ops_registry r ON r.ops_id = c.ops_id
		WHERE r.id = $1 ORDER BY c.completed_criado_em, c.completed_id`
	rows, err := s.pool.Query(ctx, query, user)
	if err != nil {
		return nil, fmt.Errorf("postgres: list closings: %w", err)
	}
	defer rows.Close()

	var res []opcoes.Closing
	for rows.Next() {
		var c opcoes.Closing
		var premium, qty, date string
		if err := rows.Scan(&c.ID, &c.User, &c.Position, &premium, &qty, &date, &c.Created); err != nil {
			return nil, fmt.Errorf("postgres: scan closing: %w", err)
		}
		var r store.Row
		c.Premium = r.Money("completed_premio", premium)
		c.Quantity = r.Quantity("completed_quanti", qty)
		c.Date = r.Date("completed_data", date)
		if err := r.Err(); err != nil {
			return nil, fmt.Errorf("postgres: closing %s: %w", c.ID, err)
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// ClosePosition locks the position row so two concurrent closings cannot
// both succeed.
func (s *Store) ClosePosition(ctx context.Context, c opcoes.Closing) (opcoes.Closing, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return c, fmt.Errorf("postgres: begin close %s: %w", c.Position, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var closed bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM ops_completed WHERE ops_id = r.ops_id)
		FROM ops_registry r WHERE r.ops_id = $1 AND r.id = $2
		FOR UPDATE`, c.Position, c.User).Scan(&closed)
	if errors.Is(err, pgx.ErrNoRows) {
		return c, fmt.Errorf("position %s: %w", c.Position, store.ErrNotFound)
	}
	if err != nil {
		return c, fmt.Errorf("postgres: check position %s: %w", c.Position, err)
	}
	if closed {
		return c, fmt.Errorf("position %s: %w", c.Position, store.ErrAlreadyClosed)
	}

	store.Stamp(&c.ID, &c.Created, time.Now())
	_, err = tx.Exec(ctx, `
		INSERT INTO ops_completed (completed_id, ops_id, completed_premio, completed_quanti, completed_data, completed_criado_em)
		VALUES ($1, $2, $3::text::numeric, $4::text::numeric, $5::text::date, $6)`,
		c.ID, c.Position, c.Premium.Decimal().String(), c.Quantity.Decimal().String(), nullDate(c.Date), c.Created)
	if isUniqueViolation(err) {
		return c, fmt.Errorf("position %s: %w", c.Position, store.ErrAlreadyClosed)
	}
	if err != nil {
		return c, fmt.Errorf("postgres: create closing %s: %w", c.ID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return c, fmt.Errorf("postgres: commit closing %s: %w", c.ID, err)
	}
	return c, nil
}

func (s *Store) UpdateClosing(ctx context.Context, c opcoes.Closing) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE ops_completed SET
			completed_premio = $3::text::numeric,
			completed_quanti = $4::text::numeric,
			completed_data   = $5::text::date
		WHERE completed_id = $1 AND ops_id IN (SELECT ops_id FROM ops_registry WHERE id = $2)`,
		c.ID, c.User, c.Premium.Decimal().String(), c.Quantity.Decimal().String(), nullDate(c.Date))
	if err != nil {
		return fmt.Errorf("postgres: update closing %s: %w", c.ID, err)
	}
	return notFound(tag, "closing", c.ID)
}

// DeleteClosing reopens the position.
func (s *Store) DeleteClosing(ctx context.Context, user, id string) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM ops_completed
		WHERE completed_id = $1 AND ops_id IN (SELECT ops_id FROM ops_registry WHERE id = $2)`, id, user)
	if err != nil {
		return fmt.Errorf("postgres: delete closing %s: %w", id, err)
	}
	return notFound(tag, "closing", id)
}

func (s *Store) collaterals(ctx context.Context, user string) ([]opcoes.Collateral, error) {
	query := `SELECT ` + collateralSelectCols + ` FROM garantias WHERE user_id = $1 ORDER BY criado_em, garantia_id`
	rows, err := s.pool.Query(ctx, query, user)
	if err != nil {
		return nil, fmt.Errorf("postgres: list collaterals: %w", err)
	}
	defer rows.Close()

	var res []opcoes.Collateral
	for rows.Next() {
		var c opcoes.Collateral
		var kind, qty, instrument, amount string
		if err := rows.Scan(&c.ID, &c.User, &kind, &c.Ticker, &qty, &instrument, &amount, &c.Created); err != nil {
			return nil, fmt.Errorf("postgres: scan collateral: %w", err)
		}
		var r store.Row
		c.Kind = r.CollateralKind("tipo", kind)
		if c.Kind == opcoes.FixedIncome {
			c.Instrument = r.Instrument("tipo_renda_fixa", instrument)
		}
		c.Quantity = r.Quantity("quantidade", qty)
		c.Amount = r.Money("valor_reais", amount)
		if err := r.Err(); err != nil {
			return nil, fmt.Errorf("postgres: collateral %s: %w", c.ID, err)
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// collateralArgs are the kind specific columns, NULL when they do not apply.
func collateralArgs(c opcoes.Collateral) (ticker, qty, instrument, amount *string) {
	str := func(s string) *string { return &s }
	if c.Kind == opcoes.FixedIncome {
		return nil, nil, str(c.Instrument.String()), str(c.Amount.Decimal().String())
	}
	return str(c.Ticker), str(c.Quantity.Decimal().String()), nil, nil
}

func (s *Store) InsertCollateral(ctx context.Context, c opcoes.Collateral) (opcoes.Collateral, error) {
	store.Stamp(&c.ID, &c.Created, time.Now())
	ticker, qty, instrument, amount := collateralArgs(c)
	_, err := s.pool.Exec(ctx, `
		INSERT INTO garantias (garantia_id, user_id, tipo, ticker, quantidade, tipo_renda_fixa, valor_reais, criado_em, atualizado_em)
		VALUES ($1, $2, $3, $4, $5::text::numeric, $6, $7::text::numeric, $8, NOW())`,
		c.ID, c.User, store.CollateralValue(c.Kind), ticker, qty, instrument, amount, c.Created)
	if isUniqueViolation(err) {
		return c, fmt.Errorf("collateral %s: %w", c.ID, store.ErrExists)
	}
	if err != nil {
		return c, fmt.Errorf("postgres: create collateral %s: %w", c.ID, err)
	}
	return c, nil
}

func (s *Store) UpdateCollateral(ctx context.Context, c opcoes.Collateral) error {
	ticker, qty, instrument, amount := collateralArgs(c)
	tag, err := s.pool.Exec(ctx, `
		UPDATE garantias SET
			tipo            = $3,
			ticker          = $4,
			quantidade      = $5::text::numeric,
			tipo_renda_fixa = $6,
			valor_reais     = $7::text::numeric,
			atualizado_em   = NOW()
		WHERE garantia_id = $1 AND user_id = $2`,
		c.ID, c.User, store.CollateralValue(c.Kind), ticker, qty, instrument, amount)
	if err != nil {
		return fmt.Errorf("postgres: update collateral %s: %w", c.ID, err)
	}
	return notFound(tag, "collateral", c.ID)
}

func (s *Store) DeleteCollateral(ctx context.Context, user, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM garantias WHERE garantia_id = $1 AND user_id = $2`, id, user)
	if err != nil {
		return fmt.Errorf("postgres: delete collateral %s: %w", id, err)
	}
	return notFound(tag, "collateral", id)
}

func (s *Store) goals(ctx context.Context, user string) ([]opcoes.Goal, error) {
	query := `SELECT ` + goalSelectCols + ` FROM goal WHERE id = $1 ORDER BY goal_ano DESC, created_at`
	rows, err := s.pool.Query(ctx, query, user)
	if err != nil {
		return nil, fmt.Errorf("postgres: list goals: %w", err)
	}
	defer rows.Close()

	var res []opcoes.Goal
	for rows.Next() {
		var g opcoes.Goal
		var kind, target string
		if err := rows.Scan(&g.ID, &g.User, &kind, &target, &g.Year, &g.Created); err != nil {
			return nil, fmt.Errorf("postgres: scan goal: %w", err)
		}
		var r store.Row
		g.Kind = r.GoalKind("goal_tipo", kind)
		g.Target = r.Money("goal_valor", target)
		if err := r.Err(); err != nil {
			return nil, fmt.Errorf("postgres: goal %s: %w", g.ID, err)
		}
		res = append(res, g)
	}
	return res, rows.Err()
}

func (s *Store) InsertGoal(ctx context.Context, g opcoes.Goal) (opcoes.Goal, error) {
	store.Stamp(&g.ID, &g.Created, time.Now())
	_, err := s.pool.Exec(ctx, `
		INSERT INTO goal (goal_id, id, goal_tipo, goal_valor, goal_ano, created_at)
		VALUES ($1, $2, $3, $4::text::numeric, $5, $6)`,
		g.ID, g.User, store.GoalValue(g.Kind), g.Target.Decimal().String(), g.Year, g.Created)
	if isUniqueViolation(err) {
		return g, fmt.Errorf("goal %s: %w", g.ID, store.ErrExists)
	}
	if err != nil {
		return g, fmt.Errorf("postgres: create goal %s: %w", g.ID, err)
	}
	return g, nil
}

func (s *Store) DeleteGoal(ctx context.Context, user, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM goal WHERE goal_id = $1 AND id = $2`, id, user)
	if err != nil {
		return fmt.Errorf("postgres: delete goal %s: %w", id, err)
	}
	return notFound(tag, "goal", id)
}

var _ store.Store = (*Store)(nil)
