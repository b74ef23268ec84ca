// Package jsonl stores the options book of every user in a single JSONL
// file, one record per line.
package jsonl

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/etnz/opcoes"
	"github.com/etnz/opcoes/store"
	"github.com/rs/zerolog"
)

// Store is a file backed store.Store. The file is read before, and
// rewritten after, every mutation.
type Store struct {
	path string
	log  zerolog.Logger
	mu   sync.Mutex
}

// Open returns a Store on path. The file is created on the first write.
func Open(path string, log zerolog.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("jsonl: empty path")
	}
	if _, err := load(path); err != nil {
		return nil, err
	}
	return &Store{path: path, log: log.With().Str("store", "jsonl").Str("path", path).Logger()}, nil
}

// load decodes the book at path. A missing file is an empty book.
func load(path string) (*opcoes.Snapshot, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &opcoes.Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("jsonl: open %q: %w", path, err)
	}
	defer f.Close()
	book, err := opcoes.DecodeBook(f)
	if err != nil {
		return nil, fmt.Errorf("jsonl: decode %q: %w", path, err)
	}
	return book, nil
}

// save writes book next to path then renames it over path.
func save(path string, book *opcoes.Snapshot) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("jsonl: could not create directory %q: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("jsonl: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := opcoes.EncodeBook(tmp, book); err != nil {
		tmp.Close()
		return fmt.Errorf("jsonl: encode %q: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("jsonl: write %q: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("jsonl: replace %q: %w", path, err)
	}
	return nil
}

// update loads the book, applies op and saves the book if op succeeded.
func (s *Store) update(ctx context.Context, op func(m *store.Memory) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	book, err := load(s.path)
	if err != nil {
		return err
	}
	m := store.NewMemory(book)
	if err := op(m); err != nil {
		return err
	}
	if err := save(s.path, m.Book()); err != nil {
		return err
	}
	s.log.Debug().Int("positions", len(book.Positions)).Int("closings", len(book.Closings)).Msg("book saved")
	return nil
}

func (s *Store) Snapshot(ctx context.Context, user string) (*opcoes.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	book, err := load(s.path)
	if err != nil {
		return nil, err
	}
	return store.NewMemory(book).Snapshot(ctx, user)
}

func (s *Store) InsertPosition(ctx context.Context, p opcoes.Position) (res opcoes.Position, err error) {
	err = s.update(ctx, func(m *store.Memory) (err error) {
		res, err = m.InsertPosition(ctx, p)
		return err
	})
	return res, err
}

func (s *Store) UpdatePosition(ctx context.Context, p opcoes.Position) error {
	return s.update(ctx, func(m *store.Memory) error { return m.UpdatePosition(ctx, p) })
}

func (s *Store) DeletePosition(ctx context.Context, user, id string) error {
	return s.update(ctx, func(m *store.Memory) error { return m.DeletePosition(ctx, user, id) })
}

func (s *Store) ClosePosition(ctx context.Context, c opcoes.Closing) (res opcoes.Closing, err error) {
	err = s.update(ctx, func(m *store.Memory) (err error) {
		res, err = m.ClosePosition(ctx, c)
		return err
	})
	return res, err
}

func (s *Store) UpdateClosing(ctx context.Context, c opcoes.Closing) error {
	return s.update(ctx, func(m *store.Memory) error { return m.UpdateClosing(ctx, c) })
}

func (s *Store) DeleteClosing(ctx context.Context, user, id string) error {
	return s.update(ctx, func(m *store.Memory) error { return m.DeleteClosing(ctx, user, id) })
}

func (s *Store) InsertCollateral(ctx context.Context, c opcoes.Collateral) (res opcoes.Collateral, err error) {
	err = s.update(ctx, func(m *store.Memory) (err error) {
		res, err = m.InsertCollateral(ctx, c)
		return err
	})
	return res, err
}

func (s *Store) UpdateCollateral(ctx context.Context, c opcoes.Collateral) error {
	return s.update(ctx, func(m *store.Memory) error { return m.UpdateCollateral(ctx, c) })
}

func (s *Store) DeleteCollateral(ctx context.Context, user, id string) error {
	return s.update(ctx, func(m *store.Memory) error { return m.DeleteCollateral(ctx, user, id) })
}

func (s *Store) InsertGoal(ctx context.Context, g opcoes.Goal) (res opcoes.Goal, err error) {
	err = s.update(ctx, func(m *store.Memory) (err error) {
		res, err = m.InsertGoal(ctx, g)
		return err
	})
	return res, err
}

func (s *Store) DeleteGoal(ctx context.Context, user, id string) error {
	return s.update(ctx, func(m *store.Memory) error { return m.DeleteGoal(ctx, user, id) })
}

func (s *Store) Close() error { return nil }

var _ store.Store = (*Store)(nil)
