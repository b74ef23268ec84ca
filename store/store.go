// Package store defines how the options book is persisted.
//
// A Store owns the records of every user; all reads and writes are scoped
// to one user. Position status is never stored: closing a position is
// inserting a Closing, reopening it is deleting that Closing.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/etnz/opcoes"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record does not exist for the user.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyClosed is returned when closing a position that already has a closing.
	ErrAlreadyClosed = errors.New("position already closed")
	// ErrExists is returned when inserting a record whose ID is taken.
	ErrExists = errors.New("already exists")
)

// Store is the persistence collaborator of the options book.
//
// Insert methods assign an ID and a creation time when they are missing and
// return the stored record. Updates replace the whole record (last write
// wins). Callers reload the Snapshot after every mutation.
type Store interface {
	Snapshot(ctx context.Context, user string) (*opcoes.Snapshot, error)

	InsertPosition(ctx context.Context, p opcoes.Position) (opcoes.Position, error)
	UpdatePosition(ctx context.Context, p opcoes.Position) error
	// DeletePosition also deletes the closing of the position, if any.
	DeletePosition(ctx context.Context, user, id string) error

	// ClosePosition inserts c. It fails with ErrNotFound if the position does
	// not exist and ErrAlreadyClosed if it already has a closing.
	ClosePosition(ctx context.Context, c opcoes.Closing) (opcoes.Closing, error)
	UpdateClosing(ctx context.Context, c opcoes.Closing) error
	// DeleteClosing reopens the position.
	DeleteClosing(ctx context.Context, user, id string) error

	InsertCollateral(ctx context.Context, c opcoes.Collateral) (opcoes.Collateral, error)
	UpdateCollateral(ctx context.Context, c opcoes.Collateral) error
	DeleteCollateral(ctx context.Context, user, id string) error

	InsertGoal(ctx context.Context, g opcoes.Goal) (opcoes.Goal, error)
	DeleteGoal(ctx context.Context, user, id string) error

	Close() error
}

// NewID returns a fresh record ID.
func NewID() string { return uuid.NewString() }

// Stamp fills the missing ID and creation time of a record.
func Stamp(id *string, created *time.Time, now time.Time) {
	if *id == "" {
		*id = NewID()
	}
	if created.IsZero() {
		*created = now.UTC()
	}
}
