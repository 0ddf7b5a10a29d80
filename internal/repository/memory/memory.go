// Package memory is an in-process repository.Store used by tests and by the
// "memory" database driver. A single mutex serializes every operation; a
// transaction holds it for its whole duration.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"rentalhub-backend/internal/repository"
)

type Store struct {
	mu   *sync.Mutex
	data *state
	inTx bool
	now  func() time.Time
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		mu:   &sync.Mutex{},
		data: newState(),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Users() repository.UserRepository       { return &userRepository{s: s} }
func (s *Store) Products() repository.ProductRepository { return &productRepository{s: s} }
func (s *Store) Inventory() repository.InventoryLedger  { return &inventoryLedger{s: s} }
func (s *Store) Rentals() repository.RentalRepository   { return &rentalRepository{s: s} }
func (s *Store) Ping(ctx context.Context) error         { return ctx.Err() }
func (s *Store) Close() error                           { return nil }

// RunInTx runs fn with exclusive access and restores the previous state if fn fails.
// Options are ignored: the store lock already serializes every unit of work.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error, _ ...repository.TxOption) error {
	if s.inTx {
		return fn(ctx, s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	tx := &Store{mu: s.mu, data: s.data, inTx: true, now: s.now}
	if err := fn(ctx, tx); err != nil {
		*s.data = *snapshot
		return err
	}
	return nil
}

// lock acquires the store mutex unless the caller already holds it through RunInTx.
func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type state struct {
	seq      uint64
	users    map[string]userRecord
	products map[string]productRecord
	rentals  map[string]rentalRecord
}

func newState() *state {
	return &state{
		users:    make(map[string]userRecord),
		products: make(map[string]productRecord),
		rentals:  make(map[string]rentalRecord),
	}
}

func (st *state) next() uint64 {
	st.seq++
	return st.seq
}

func (st *state) clone() *state {
	c := &state{
		seq:      st.seq,
		users:    make(map[string]userRecord, len(st.users)),
		products: make(map[string]productRecord, len(st.products)),
		rentals:  make(map[string]rentalRecord, len(st.rentals)),
	}
	for k, v := range st.users {
		c.users[k] = v
	}
	for k, v := range st.products {
		c.products[k] = v
	}
	for k, v := range st.rentals {
		c.rentals[k] = v
	}
	return c
}

// newestFirst orders records by creation time, most recent first, with the
// insertion sequence as tie-breaker.
func newestFirst[T any](items []T, created func(T) time.Time, seq func(T) uint64) {
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return seq(items[i]) > seq(items[j])
	})
}

func paginate[T any](items []T, skip, limit int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
