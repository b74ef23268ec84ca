// Package storetest checks that a store.Store implementation honours the
// contract shared by every backend.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/etnz/opcoes"
	"github.com/etnz/opcoes/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store. It is called once per subtest.
type Factory func(t *testing.T) store.Store

// Run runs the conformance suite against the stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("positions", func(t *testing.T) { testPositions(t, newStore(t)) })
	t.Run("closings", func(t *testing.T) { testClosings(t, newStore(t)) })
	t.Run("collaterals", func(t *testing.T) { testCollaterals(t, newStore(t)) })
	t.Run("goals", func(t *testing.T) { testGoals(t, newStore(t)) })
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
}

// SoldCall is a sample position of user.
func SoldCall(user string) opcoes.Position {
	return opcoes.Position{
		User:       user,
		Ticker:     "PETRC380",
		Underlying: "PETR4",
		Type:       opcoes.Call,
		Direction:  opcoes.Sell,
		Strike:     opcoes.R(38.5),
		Quote:      opcoes.R(36.12),
		Quantity:   opcoes.Q(100),
		Premium:    opcoes.R(0.85),
		Expiration: opcoes.NewDate(2024, time.March, 15),
	}
}

func testPositions(t *testing.T, s store.Store) {
	ctx := context.Background()
	defer s.Close()

	p, err := s.InsertPosition(ctx, SoldCall("ana"))
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	assert.False(t, p.Created.IsZero())

	snap, err := s.Snapshot(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, snap.Positions, 1)
	got := snap.Positions[0]
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "PETRC380", got.Ticker)
	assert.Equal(t, "PETR4", got.Underlying)
	assert.Equal(t, opcoes.Call, got.Type)
	assert.Equal(t, opcoes.Sell, got.Direction)
	assert.True(t, got.Strike.Equal(opcoes.R(38.5)), "strike %v", got.Strike)
	assert.True(t, got.Quote.Equal(opcoes.R(36.12)), "quote %v", got.Quote)
	assert.True(t, got.Quantity.Equal(opcoes.Q(100)), "quantity %v", got.Quantity)
	assert.True(t, got.Premium.Equal(opcoes.R(0.85)), "premium %v", got.Premium)
	assert.Equal(t, opcoes.NewDate(2024, time.March, 15), got.Expiration)
	assert.Equal(t, opcoes.Open, snap.Status(got))

	got.Premium = opcoes.R(1.05)
	got.Type = opcoes.Put
	require.NoError(t, s.UpdatePosition(ctx, got))
	snap, err = s.Snapshot(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, snap.Positions, 1)
	assert.True(t, snap.Positions[0].Premium.Equal(opcoes.R(1.05)))
	assert.Equal(t, opcoes.Put, snap.Positions[0].Type)

	missing := got
	missing.ID = store.NewID()
	assert.ErrorIs(t, s.UpdatePosition(ctx, missing), store.ErrNotFound)

	require.NoError(t, s.DeletePosition(ctx, "ana", p.ID))
	assert.ErrorIs(t, s.DeletePosition(ctx, "ana", p.ID), store.ErrNotFound)
	snap, err = s.Snapshot(ctx, "ana")
	require.NoError(t, err)
	assert.Empty(t, snap.Positions)
}

func testClosings(t *testing.T, s store.Store) {
	ctx := context.Background()
	defer s.Close()

	p, err := s.InsertPosition(ctx, SoldCall("ana"))
	require.NoError(t, err)

	c, err := s.ClosePosition(ctx, opcoes.Closing{
		User:     "ana",
		Position: p.ID,
		Premium:  opcoes.R(0.2),
		Quantity: opcoes.Q(100),
		Date:     opcoes.NewDate(2024, time.March, 5),
	})
	require.NoError(t, err)
	require.NotEmpty(t, c.ID)

	_, err = s.ClosePosition(ctx, opcoes.Closing{User: "ana", Position: p.ID, Date: opcoes.NewDate(2024, time.March, 6)})
	assert.ErrorIs(t, err, store.ErrAlreadyClosed)
	_, err = s.ClosePosition(ctx, opcoes.Closing{User: "ana", Position: store.NewID(), Date: opcoes.NewDate(2024, time.March, 6)})
	assert.ErrorIs(t, err, store.ErrNotFound)

	snap, err := s.Snapshot(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, snap.Closings, 1)
	assert.Equal(t, opcoes.Closed, snap.Status(snap.Positions[0]))
	closed := snap.Closed()
	require.Len(t, closed, 1)
	assert.True(t, closed[0].Result().Equal(opcoes.R(65)), "result %v", closed[0].Result())
	assert.Equal(t, opcoes.NewDate(2024, time.March, 5), snap.Closings[0].Date)

	c.Premium = opcoes.R(0.35)
	c.Date = opcoes.NewDate(2024, time.March, 7)
	require.NoError(t, s.UpdateClosing(ctx, c))
	snap, err = s.Snapshot(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, snap.Closings, 1)
	assert.True(t, snap.Closings[0].Premium.Equal(opcoes.R(0.35)))
	assert.Equal(t, opcoes.NewDate(2024, time.March, 7), snap.Closings[0].Date)
	assert.Equal(t, p.ID, snap.Closings[0].Position)

	// reopen
	require.NoError(t, s.DeleteClosing(ctx, "ana", c.ID))
	assert.ErrorIs(t, s.DeleteClosing(ctx, "ana", c.ID), store.ErrNotFound)
	snap, err = s.Snapshot(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, opcoes.Open, snap.Status(snap.Positions[0]))

	// deleting a closed position deletes its closing
	_, err = s.ClosePosition(ctx, opcoes.Closing{User: "ana", Position: p.ID, Premium: opcoes.R(0.1), Quantity: opcoes.Q(100), Date: opcoes.NewDate(2024, time.March, 8)})
	require.NoError(t, err)
	require.NoError(t, s.DeletePosition(ctx, "ana", p.ID))
	snap, err = s.Snapshot(ctx, "ana")
	require.NoError(t, err)
	assert.Empty(t, snap.Positions)
	assert.Empty(t, snap.Closings)
}

func testCollaterals(t *testing.T, s store.Store) {
	ctx := context.Background()
	defer s.Close()

	stock, err := s.InsertCollateral(ctx, opcoes.Collateral{User: "ana", Kind: opcoes.Equity, Ticker: "PETR4", Quantity: opcoes.Q(300)})
	require.NoError(t, err)
	fixed, err := s.InsertCollateral(ctx, opcoes.Collateral{User: "ana", Kind: opcoes.FixedIncome, Instrument: opcoes.Caixa, Amount: opcoes.R(15000.5)})
	require.NoError(t, err)

	snap, err := s.Snapshot(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, snap.Collaterals, 2)
	gotStock, ok := snap.Collateral(stock.ID)
	require.True(t, ok)
	assert.Equal(t, opcoes.Equity, gotStock.Kind)
	assert.Equal(t, "PETR4", gotStock.Ticker)
	assert.True(t, gotStock.Quantity.Equal(opcoes.Q(300)))
	gotFixed, ok := snap.Collateral(fixed.ID)
	require.True(t, ok)
	assert.Equal(t, opcoes.FixedIncome, gotFixed.Kind)
	assert.Equal(t, opcoes.Caixa, gotFixed.Instrument)
	assert.True(t, gotFixed.Amount.Equal(opcoes.R(15000.5)), "amount %v", gotFixed.Amount)

	gotStock.Quantity = opcoes.Q(500)
	require.NoError(t, s.UpdateCollateral(ctx, gotStock))
	snap, err = s.Snapshot(ctx, "ana")
	require.NoError(t, err)
	gotStock, _ = snap.Collateral(stock.ID)
	assert.True(t, gotStock.Quantity.Equal(opcoes.Q(500)))

	require.NoError(t, s.DeleteCollateral(ctx, "ana", fixed.ID))
	assert.ErrorIs(t, s.DeleteCollateral(ctx, "ana", fixed.ID), store.ErrNotFound)
	gone := gotFixed
	assert.ErrorIs(t, s.UpdateCollateral(ctx, gone), store.ErrNotFound)
}

func testGoals(t *testing.T, s store.Store) {
	ctx := context.Background()
	defer s.Close()

	g, err := s.InsertGoal(ctx, opcoes.Goal{User: "ana", Kind: opcoes.AnnualGoal, Target: opcoes.R(12000), Year: 2024})
	require.NoError(t, err)

	snap, err := s.Snapshot(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, snap.Goals, 1)
	assert.Equal(t, opcoes.AnnualGoal, snap.Goals[0].Kind)
	assert.Equal(t, 2024, snap.Goals[0].Year)
	assert.True(t, snap.Goals[0].Target.Equal(opcoes.R(12000)))

	require.NoError(t, s.DeleteGoal(ctx, "ana", g.ID))
	assert.ErrorIs(t, s.DeleteGoal(ctx, "ana", g.ID), store.ErrNotFound)
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	defer s.Close()

	ana, err := s.InsertPosition(ctx, SoldCall("ana"))
	require.NoError(t, err)
	_, err = s.InsertPosition(ctx, SoldCall("bia"))
	require.NoError(t, err)

	snap, err := s.Snapshot(ctx, "bia")
	require.NoError(t, err)
	require.Len(t, snap.Positions, 1)
	assert.NotEqual(t, ana.ID, snap.Positions[0].ID)

	// records of another user are invisible to mutations
	assert.ErrorIs(t, s.DeletePosition(ctx, "bia", ana.ID), store.ErrNotFound)
	_, err = s.ClosePosition(ctx, opcoes.Closing{User: "bia", Position: ana.ID, Date: opcoes.NewDate(2024, time.March, 6)})
	assert.ErrorIs(t, err, store.ErrNotFound)

	empty, err := s.Snapshot(ctx, "carla")
	require.NoError(t, err)
	assert.Empty(t, empty.Positions)
}
