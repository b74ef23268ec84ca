package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/etnz/opcoes"
)

// Memory is a Store holding the book of every user in memory.
// It is the reference implementation the file store builds upon.
type Memory struct {
	mu   sync.Mutex
	book *opcoes.Snapshot
	now  func() time.Time
}

// NewMemory returns a Memory store over book, which may be nil.
func NewMemory(book *opcoes.Snapshot) *Memory {
	if book == nil {
		book = &opcoes.Snapshot{}
	}
	return &Memory{book: book, now: time.Now}
}

// Book returns the records of every user. The caller must not modify it
// while the store is in use.
func (m *Memory) Book() *opcoes.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.book
}

func owned[T any](records []T, user string, owner func(T) string) []T {
	res := make([]T, 0, len(records))
	for _, r := range records {
		if owner(r) == user {
			res = append(res, r)
		}
	}
	return res
}

func (m *Memory) Snapshot(_ context.Context, user string) (*opcoes.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &opcoes.Snapshot{
		Positions:   owned(m.book.Positions, user, func(p opcoes.Position) string { return p.User }),
		Closings:    owned(m.book.Closings, user, func(c opcoes.Closing) string { return c.User }),
		Collaterals: owned(m.book.Collaterals, user, func(c opcoes.Collateral) string { return c.User }),
		Goals:       owned(m.book.Goals, user, func(g opcoes.Goal) string { return g.User }),
	}, nil
}

// find returns the index of the record of user with id, or -1.
func find[T any](records []T, user, id string, key func(T) (string, string)) int {
	return slices.IndexFunc(records, func(r T) bool {
		u, i := key(r)
		return u == user && i == id
	})
}

func positionKey(p opcoes.Position) (string, string)     { return p.User, p.ID }
func closingKey(c opcoes.Closing) (string, string)       { return c.User, c.ID }
func collateralKey(c opcoes.Collateral) (string, string) { return c.User, c.ID }
func goalKey(g opcoes.Goal) (string, string)             { return g.User, g.ID }

func (m *Memory) InsertPosition(_ context.Context, p opcoes.Position) (opcoes.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	Stamp(&p.ID, &p.Created, m.now())
	if slices.ContainsFunc(m.book.Positions, func(x opcoes.Position) bool { return x.ID == p.ID }) {
		return p, fmt.Errorf("position %s: %w", p.ID, ErrExists)
	}
	m.book.Positions = append(m.book.Positions, p)
	return p, nil
}

func (m *Memory) UpdatePosition(_ context.Context, p opcoes.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := find(m.book.Positions, p.User, p.ID, positionKey)
	if i < 0 {
		return fmt.Errorf("position %s: %w", p.ID, ErrNotFound)
	}
	if p.Created.IsZero() {
		p.Created = m.book.Positions[i].Created
	}
	m.book.Positions[i] = p
	return nil
}

func (m *Memory) DeletePosition(_ context.Context, user, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := find(m.book.Positions, user, id, positionKey)
	if i < 0 {
		return fmt.Errorf("position %s: %w", id, ErrNotFound)
	}
	m.book.Positions = slices.Delete(m.book.Positions, i, i+1)
	m.book.Closings = slices.DeleteFunc(m.book.Closings, func(c opcoes.Closing) bool {
		return c.User == user && c.Position == id
	})
	return nil
}

func (m *Memory) ClosePosition(_ context.Context, c opcoes.Closing) (opcoes.Closing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if find(m.book.Positions, c.User, c.Position, positionKey) < 0 {
		return c, fmt.Errorf("position %s: %w", c.Position, ErrNotFound)
	}
	if slices.ContainsFunc(m.book.Closings, func(x opcoes.Closing) bool { return x.Position == c.Position }) {
		return c, fmt.Errorf("position %s: %w", c.Position, ErrAlreadyClosed)
	}
	Stamp(&c.ID, &c.Created, m.now())
	m.book.Closings = append(m.book.Closings, c)
	return c, nil
}

func (m *Memory) UpdateClosing(_ context.Context, c opcoes.Closing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := find(m.book.Closings, c.User, c.ID, closingKey)
	if i < 0 {
		return fmt.Errorf("closing %s: %w", c.ID, ErrNotFound)
	}
	old := m.book.Closings[i]
	// a closing never moves to another position
	c.Position = old.Position
	if c.Created.IsZero() {
		c.Created = old.Created
	}
	m.book.Closings[i] = c
	return nil
}

func (m *Memory) DeleteClosing(_ context.Context, user, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := find(m.book.Closings, user, id, closingKey)
	if i < 0 {
		return fmt.Errorf("closing %s: %w", id, ErrNotFound)
	}
	m.book.Closings = slices.Delete(m.book.Closings, i, i+1)
	return nil
}

func (m *Memory) InsertCollateral(_ context.Context, c opcoes.Collateral) (opcoes.Collateral, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	Stamp(&c.ID, &c.Created, m.now())
	if slices.ContainsFunc(m.book.Collaterals, func(x opcoes.Collateral) bool { return x.ID == c.ID }) {
		return c, fmt.Errorf("collateral %s: %w", c.ID, ErrExists)
	}
	m.book.Collaterals = append(m.book.Collaterals, c)
	return c, nil
}

func (m *Memory) UpdateCollateral(_ context.Context, c opcoes.Collateral) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := find(m.book.Collaterals, c.User, c.ID, collateralKey)
	if i < 0 {
		return fmt.Errorf("collateral %s: %w", c.ID, ErrNotFound)
	}
	if c.Created.IsZero() {
		c.Created = m.book.Collaterals[i].Created
	}
	m.book.Collaterals[i] = c
	return nil
}

func (m *Memory) DeleteCollateral(_ context.Context, user, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := find(m.book.Collaterals, user, id, collateralKey)
	if i < 0 {
		return fmt.Errorf("collateral %s: %w", id, ErrNotFound)
	}
	m.book.Collaterals = slices.Delete(m.book.Collaterals, i, i+1)
	return nil
}

func (m *Memory) InsertGoal(_ context.Context, g opcoes.Goal) (opcoes.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	Stamp(&g.ID, &g.Created, m.now())
	if slices.ContainsFunc(m.book.Goals, func(x opcoes.Goal) bool { return x.ID == g.ID }) {
		return g, fmt.Errorf("goal %s: %w", g.ID, ErrExists)
	}
	m.book.Goals = append(m.book.Goals, g)
	return g, nil
}

func (m *Memory) DeleteGoal(_ context.Context, user, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := find(m.book.Goals, user, id, goalKey)
	if i < 0 {
		return fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	m.book.Goals = slices.Delete(m.book.Goals, i, i+1)
	return nil
}

func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
