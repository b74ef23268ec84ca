// Package sqlite stores the options book in a local SQLite database with
// the same tables as the hosted PostgreSQL schema.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/etnz/opcoes"
	"github.com/etnz/opcoes/store"
	"github.com/rs/zerolog"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

//go:embed schema.sql
var schema string

// Store is a store.Store on a SQLite database.
// Numbers are kept as decimal text so no precision is lost.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
	now func() time.Time
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string, log zerolog.Logger) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("sqlite: failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}
	// a single writer avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}
	log = log.With().Str("store", "sqlite").Str("path", path).Logger()
	log.Debug().Msg("database ready")
	return &Store{db: db, log: log, now: time.Now}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func timestamp(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

// affected turns an update or delete touching no row into store.ErrNotFound.
func affected(res sql.Result, err error, what, id string) error {
	if err != nil {
		return fmt.Errorf("sqlite: %s %s: %w", what, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: %s %s: %w", what, id, err)
	}
	if n == 0 {
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
	return &snap, nil
}

func (s *Store) positions(ctx context.Context, user string) ([]opcoes.Position, error) {
	const query = `SELECT ops_id, id, ops_ticker, ops_acao, ops_tipo, ops_operacao,
		ops_strike, acao_cotacao, ops_quanti, ops_premio, ops_vencimento, ops_criado_em
		FROM ops_registry WHERE id = ? ORDER BY ops_criado_em, ops_id`
	rows, err := s.db.QueryContext(ctx, query, user)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list positions: %w", err)
	}
	defer rows.Close()

	var res []opcoes.Position
	for rows.Next() {
		var p opcoes.Position
		var typ, op, strike, quote, qty, premium, expiration, created string
		if err := rows.Scan(&p.ID, &p.User, &p.Ticker, &p.Underlying, &typ, &op,
			&strike, &quote, &qty, &premium, &expiration, &created); err != nil {
			return nil, fmt.Errorf("sqlite: scan position: %w", err)
		}
		var r store.Row
		p.Type = r.Type("ops_tipo", typ)
		p.Direction = r.Direction("ops_operacao", op)
		p.Strike = r.Money("ops_strike", strike)
		p.Quote = r.Money("acao_cotacao", quote)
		p.Quantity = r.Quantity("ops_quanti", qty)
		p.Premium = r.Money("ops_premio", premium)
		p.Expiration = r.Date("ops_vencimento", expiration)
		p.Created = r.Time("ops_criado_em", created)
		if err := r.Err(); err != nil {
			return nil, fmt.Errorf("sqlite: position %s: %w", p.ID, err)
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (s *Store) InsertPosition(ctx context.Context, p opcoes.Position) (opcoes.Position, error) {
	store.Stamp(&p.ID, &p.Created, s.now())
	const query = `INSERT INTO ops_registry (ops_id, id, ops_ticker, ops_acao, ops_tipo, ops_operacao,
		ops_strike, acao_cotacao, ops_quanti, ops_premio, ops_vencimento, ops_criado_em)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, p.ID, p.User, p.Ticker, p.Underlying,
		store.TypeValue(p.Type), store.OperationValue(p.Direction),
		p.Strike.Decimal().String(), p.Quote.Decimal().String(), p.Quantity.Decimal().String(),
		p.Premium.Decimal().String(), store.DateValue(p.Expiration), timestamp(p.Created))
	if err != nil {
		return p, fmt.Errorf("sqlite: create position %s: %w", p.ID, err)
	}
	return p, nil
}

func (s *Store) UpdatePosition(ctx context.Context, p opcoes.Position) error {
	const query = `UPDATE ops_registry SET
			ops_ticker     = ?,
			ops_acao       = ?,
			ops_tipo       = ?,
			ops_operacao   = ?,
			ops_strike     = ?,
			acao_cotacao   = ?,
			ops_quanti     = ?,
			ops_premio     = ?,
			ops_vencimento = ?
		WHERE ops_id = ? AND id = ?`
	res, err := s.db.ExecContext(ctx, query, p.Ticker, p.Underlying,
		store.TypeValue(p.Type), store.OperationValue(p.Direction),
		p.Strike.Decimal().String(), p.Quote.Decimal().String(), p.Quantity.Decimal().String(),
		p.Premium.Decimal().String(), store.DateValue(p.Expiration), p.ID, p.User)
	return affected(res, err, "position", p.ID)
}

func (s *Store) DeletePosition(ctx context.Context, user, id string) error {
	// the closing goes with it (ON DELETE CASCADE)
	res, err := s.db.ExecContext(ctx, `DELETE FROM ops_registry WHERE ops_id = ? AND id = ?`, id, user)
	return affected(res, err, "position", id)
}

func (s *Store) closings(ctx context.Context, user string) ([]opcoes.Closing, error) {
	const query = `SELECT c.completed_id, r.id, c.ops_id, c.completed_premio, c.completed_quanti,
		c.completed_data, c.completed_criado_em
		FROM ops_completed c JOIN ops_registry r ON r.ops_id = c.ops_id
		WHERE r.id = ? ORDER BY c.completed_criado_em, c.completed_id`
	rows, err := s.db.QueryContext(ctx, query, user)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list closings: %w", err)
	}
	defer rows.Close()

	var res []opcoes.Closing
	for rows.Next() {
		var c opcoes.Closing
		var premium, qty, date, created string
		if err := rows.Scan(&c.ID, &c.User, &c.Position, &premium, &qty, &date, &created); err != nil {
			return nil, fmt.Errorf("sqlite: scan closing: %w", err)
		}
		var r store.Row
		c.Premium = r.Money("completed_premio", premium)
		c.Quantity = r.Quantity("completed_quanti", qty)
		c.Date = r.Date("completed_data", date)
		c.Created = r.Time("completed_criado_em", created)
		if err := r.Err(); err != nil {
			return nil, fmt.Errorf("sqlite: closing %s: %w", c.ID, err)
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (s *Store) ClosePosition(ctx context.Context, c opcoes.Closing) (opcoes.Closing, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return c, fmt.Errorf("sqlite: begin close %s: %w", c.Position, err)
	}
	defer tx.Rollback()

	var closed int
	err = tx.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM ops_completed WHERE ops_id = r.ops_id) FROM ops_registry r WHERE r.ops_id = ? AND r.id = ?`,
		c.Position, c.User).Scan(&closed)
	if errors.Is(err, sql.ErrNoRows) {
		return c, fmt.Errorf("position %s: %w", c.Position, store.ErrNotFound)
	}
	if err != nil {
		return c, fmt.Errorf("sqlite: check position %s: %w", c.Position, err)
	}
	if closed > 0 {
		return c, fmt.Errorf("position %s: %w", c.Position, store.ErrAlreadyClosed)
	}

	store.Stamp(&c.ID, &c.Created, s.now())
	_, err = tx.ExecContext(ctx, `INSERT INTO ops_completed (completed_id, ops_id, completed_premio,
		completed_quanti, completed_data, completed_criado_em) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Position, c.Premium.Decimal().String(), c.Quantity.Decimal().String(),
		store.DateValue(c.Date), timestamp(c.Created))
	if err != nil {
		return c, fmt.Errorf("sqlite: create closing %s: %w", c.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return c, fmt.Errorf("sqlite: commit closing %s: %w", c.ID, err)
	}
	return c, nil
}

func (s *Store) UpdateClosing(ctx context.Context, c opcoes.Closing) error {
	const query = `UPDATE ops_completed SET completed_premio = ?, completed_quanti = ?, completed_data = ?
		WHERE completed_id = ? AND ops_id IN (SELECT ops_id FROM ops_registry WHERE id = ?)`
	res, err := s.db.ExecContext(ctx, query, c.Premium.Decimal().String(), c.Quantity.Decimal().String(),
		store.DateValue(c.Date), c.ID, c.User)
	return affected(res, err, "closing", c.ID)
}

func (s *Store) DeleteClosing(ctx context.Context, user, id string) error {
	const query = `DELETE FROM ops_completed
		WHERE completed_id = ? AND ops_id IN (SELECT ops_id FROM ops_registry WHERE id = ?)`
	res, err := s.db.ExecContext(ctx, query, id, user)
	return affected(res, err, "closing", id)
}

func (s *Store) collaterals(ctx context.Context, user string) ([]opcoes.Collateral, error) {
	const query = `SELECT garantia_id, user_id, tipo, ticker, quantidade, tipo_renda_fixa, valor_reais, criado_em
		FROM garantias WHERE user_id = ? ORDER BY criado_em, garantia_id`
	rows, err := s.db.QueryContext(ctx, query, user)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list collaterals: %w", err)
	}
	defer rows.Close()

	var res []opcoes.Collateral
	for rows.Next() {
		var c opcoes.Collateral
		var kind, qty, instrument, amount, created string
		if err := rows.Scan(&c.ID, &c.User, &kind, &c.Ticker, &qty, &instrument, &amount, &created); err != nil {
			return nil, fmt.Errorf("sqlite: scan collateral: %w", err)
		}
		var r store.Row
		c.Kind = r.CollateralKind("tipo", kind)
		if c.Kind == opcoes.FixedIncome {
			c.Instrument = r.Instrument("tipo_renda_fixa", instrument)
		}
		c.Quantity = r.Quantity("quantidade", qty)
		c.Amount = r.Money("valor_reais", amount)
		c.Created = r.Time("criado_em", created)
		if err := r.Err(); err != nil {
			return nil, fmt.Errorf("sqlite: collateral %s: %w", c.ID, err)
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// instrumentValue is empty for equities.
func instrumentValue(c opcoes.Collateral) string {
	if c.Kind != opcoes.FixedIncome {
		return ""
	}
	return c.Instrument.String()
}

func (s *Store) InsertCollateral(ctx context.Context, c opcoes.Collateral) (opcoes.Collateral, error) {
	store.Stamp(&c.ID, &c.Created, s.now())
	const query = `INSERT INTO garantias (garantia_id, user_id, tipo, ticker, quantidade, tipo_renda_fixa,
		valor_reais, criado_em, atualizado_em) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, c.ID, c.User, store.CollateralValue(c.Kind), c.Ticker,
		c.Quantity.Decimal().String(), instrumentValue(c), c.Amount.Decimal().String(),
		timestamp(c.Created), timestamp(s.now()))
	if err != nil {
		return c, fmt.Errorf("sqlite: create collateral %s: %w", c.ID, err)
	}
	return c, nil
}

func (s *Store) UpdateCollateral(ctx context.Context, c opcoes.Collateral) error {
	const query = `UPDATE garantias SET tipo = ?, ticker = ?, quantidade = ?, tipo_renda_fixa = ?,
		valor_reais = ?, atualizado_em = ? WHERE garantia_id = ? AND user_id = ?`
	res, err := s.db.ExecContext(ctx, query, store.CollateralValue(c.Kind), c.Ticker,
		c.Quantity.Decimal().String(), instrumentValue(c), c.Amount.Decimal().String(),
		timestamp(s.now()), c.ID, c.User)
	return affected(res, err, "collateral", c.ID)
}

func (s *Store) DeleteCollateral(ctx context.Context, user, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM garantias WHERE garantia_id = ? AND user_id = ?`, id, user)
	return affected(res, err, "collateral", id)
}

func (s *Store) goals(ctx context.Context, user string) ([]opcoes.Goal, error) {
	const query = `SELECT goal_id, id, goal_tipo, goal_valor, goal_ano, created_at
		FROM goal WHERE id = ? ORDER BY goal_ano DESC, created_at`
	rows, err := s.db.QueryContext(ctx, query, user)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list goals: %w", err)
	}
	defer rows.Close()

	var res []opcoes.Goal
	for rows.Next() {
		var g opcoes.Goal
		var kind, target, created string
		if err := rows.Scan(&g.ID, &g.User, &kind, &target, &g.Year, &created); err != nil {
			return nil, fmt.Errorf("sqlite: scan goal: %w", err)
		}
		var r store.Row
		g.Kind = r.GoalKind("goal_tipo", kind)
		g.Target = r.Money("goal_valor", target)
		g.Created = r.Time("created_at", created)
		if err := r.Err(); err != nil {
			return nil, fmt.Errorf("sqlite: goal %s: %w", g.ID, err)
		}
		res = append(res, g)
	}
	return res, rows.Err()
}

func (s *Store) InsertGoal(ctx context.Context, g opcoes.Goal) (opcoes.Goal, error) {
	store.Stamp(&g.ID, &g.Created, s.now())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO goal (goal_id, id, goal_tipo, goal_valor, goal_ano, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		g.ID, g.User, store.GoalValue(g.Kind), g.Target.Decimal().String(), g.Year, timestamp(g.Created))
	if err != nil {
		return g, fmt.Errorf("sqlite: create goal %s: %w", g.ID, err)
	}
	return g, nil
}

func (s *Store) DeleteGoal(ctx context.Context, user, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM goal WHERE goal_id = ? AND id = ?`, id, user)
	return affected(res, err, "goal", id)
}

var _ store.Store = (*Store)(nil)
