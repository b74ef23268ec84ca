package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/etnz/opcoes"
	"github.com/etnz/opcoes/store"
	"github.com/etnz/opcoes/store/storetest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "opcoes.db"), zerolog.Nop())
	require.NoError(t, err)
	return s
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return openTemp(t) })
}

func TestStore_LegacyColumnValues(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	defer s.Close()

	p, err := s.InsertPosition(ctx, storetest.SoldCall("ana"))
	require.NoError(t, err)
	_, err = s.InsertCollateral(ctx, opcoes.Collateral{User: "ana", Kind: opcoes.FixedIncome, Instrument: opcoes.TesouroSelic, Amount: opcoes.R(1000)})
	require.NoError(t, err)

	var op, typ string
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT ops_operacao, ops_tipo FROM ops_registry WHERE ops_id = ?`, p.ID).Scan(&op, &typ))
	assert.Equal(t, "venda", op)
	assert.Equal(t, "call", typ)

	var kind, instrument string
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT tipo, tipo_renda_fixa FROM garantias`).Scan(&kind, &instrument))
	assert.Equal(t, "renda_fixa", kind)
	assert.Equal(t, "tesouro_selic", instrument)
}

func TestStore_ReadsHostedRows(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	defer s.Close()

	// rows as the web application wrote them
	_, err := s.db.ExecContext(ctx, `INSERT INTO ops_registry (ops_id, id, ops_ticker, ops_acao, ops_tipo, ops_operacao,
		ops_strike, acao_cotacao, ops_quanti, ops_premio, ops_vencimento, ops_criado_em)
		VALUES ('p1', 'ana', 'VALEO620', 'vale3', 'PUT', 'Compra', '62', '64.1', '200', '1.1', '2024-03-15', '2024-02-01T10:00:00Z')`)
	require.NoError(t, err)
	_, err = s.db.ExecContext(ctx, `INSERT INTO ops_completed (completed_id, ops_id, completed_premio, completed_quanti,
		completed_data, completed_criado_em) VALUES ('c1', 'p1', '2.5', '200', '2024-03-01T02:00:00Z', '2024-03-01T02:00:00Z')`)
	require.NoError(t, err)

	snap, err := s.Snapshot(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, snap.Positions, 1)
	p := snap.Positions[0]
	assert.Equal(t, opcoes.Buy, p.Direction)
	assert.Equal(t, opcoes.Put, p.Type)
	assert.True(t, p.Quote.Equal(opcoes.R(64.1)))
	assert.True(t, p.Created.Equal(time.Date(2024, time.February, 1, 10, 0, 0, 0, time.UTC)), "created %v", p.Created)

	require.Len(t, snap.Closings, 1)
	want, err := opcoes.ParseClosingDate("2024-03-01T02:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, want, snap.Closings[0].Date)
}

func TestStore_CorruptRow(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	defer s.Close()

	_, err := s.db.ExecContext(ctx, `INSERT INTO goal (goal_id, id, goal_tipo, goal_valor, goal_ano, created_at)
		VALUES ('g1', 'ana', 'semanal', 'abc', 2024, '2024-01-01T00:00:00Z')`)
	require.NoError(t, err)

	_, err = s.Snapshot(ctx, "ana")
	require.Error(t, err)
	assert.ErrorContains(t, err, "goal_tipo")
	assert.ErrorContains(t, err, "goal_valor")
}
