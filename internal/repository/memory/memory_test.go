package memory_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/repository"
	"rentalhub-backend/internal/repository/memory"
)

func seed(t *testing.T, store *memory.Store, qty int) (*domain.User, *domain.Product) {
	ctx := context.Background()
	u := &domain.User{FirstName: "Ada", LastName: "Lovelace", Email: "Ada@Example.com", Role: domain.RoleUser, IsActive: true}
	require.NoError(t, store.Users().Create(ctx, u))
	p := &domain.Product{Name: "Tent", Category: "camping", Location: "Austin", PricePerDay: decimal.NewFromInt(10),
		QuantityTotal: qty, QuantityAvailable: qty, IsActive: true}
	require.NoError(t, store.Products().Create(ctx, p))
	return u, p
}

func newRental(u *domain.User, p *domain.Product, qty int) *domain.Rental {
	now := time.Now().UTC()
	return &domain.Rental{UserID: u.ID, ProductID: p.ID, Quantity: qty, StartDate: now, EndDate: now, TotalDays: 1,
		PricePerDay: p.PricePerDay, TotalPrice: p.PricePerDay.Mul(decimal.NewFromInt(int64(qty))),
		Status: domain.RentalStatusPending, PaymentStatus: domain.PaymentStatusUnpaid}
}

func TestUsers(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	u, _ := seed(t, store, 1)

	t.Run("Email lower-cased and unique", func(t *testing.T) {
		assert.Equal(t, "ada@example.com", u.Email)
		err := store.Users().Create(ctx, &domain.User{Email: "ADA@example.com", Role: domain.RoleUser})
		assert.True(t, domain.IsConflict(err))
	})

	t.Run("Lookup by upper-case id", func(t *testing.T) {
		got, err := store.Users().GetByID(ctx, strings.ToUpper(u.ID))
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
	})

	t.Run("Malformed id is not found", func(t *testing.T) {
		_, err := store.Users().GetByID(ctx, "42")
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("Deactivate and touch last login", func(t *testing.T) {
		require.NoError(t, store.Users().SetActive(ctx, u.ID, false))
		at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		require.NoError(t, store.Users().TouchLastLogin(ctx, u.ID, at))
		got, err := store.Users().GetByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.False(t, got.IsActive)
		require.NotNil(t, got.LastLogin)
		assert.True(t, at.Equal(*got.LastLogin))
	})
}

func TestProducts(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	_, p := seed(t, store, 5)

	t.Run("Quantity total shifts availability", func(t *testing.T) {
		_, err := store.Inventory().Reserve(ctx, p.ID, 3)
		require.NoError(t, err)

		got, err := store.Products().UpdateQuantityTotal(ctx, p.ID, 7)
		require.NoError(t, err)
		assert.Equal(t, 7, got.QuantityTotal)
		assert.Equal(t, 4, got.QuantityAvailable)

		_, err = store.Products().UpdateQuantityTotal(ctx, p.ID, 2)
		assert.True(t, domain.IsConflict(err))
	})

	t.Run("Locations skip inactive and empty", func(t *testing.T) {
		other := &domain.Product{Name: "Bike", Location: "Boston", PricePerDay: decimal.NewFromInt(5), IsActive: true}
		hidden := &domain.Product{Name: "Old", Location: "Chicago", PricePerDay: decimal.NewFromInt(5), IsActive: true}
		blank := &domain.Product{Name: "Blank", PricePerDay: decimal.NewFromInt(5), IsActive: true}
		for _, np := range []*domain.Product{other, hidden, blank} {
			require.NoError(t, store.Products().Create(ctx, np))
		}
		require.NoError(t, store.Products().SoftDelete(ctx, hidden.ID))

		locs, err := store.Products().Locations(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Austin", "Boston"}, locs)
	})

	t.Run("List newest first with filters", func(t *testing.T) {
		active := true
		products, total, err := store.Products().List(ctx, domain.ProductFilter{IsActive: &active}, 0, 2)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, products, 2)
		assert.Equal(t, "Blank", products[0].Name)
	})
}

func TestInventory(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	_, p := seed(t, store, 2)

	_, err := store.Inventory().Reserve(ctx, p.ID, 3)
	assert.ErrorIs(t, err, repository.ErrInsufficientInventory)

	left, err := store.Inventory().Reserve(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, left)

	back, err := store.Inventory().Release(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, back)

	require.NoError(t, store.Products().SoftDelete(ctx, p.ID))
	_, err = store.Inventory().Reserve(ctx, p.ID, 1)
	assert.ErrorIs(t, err, repository.ErrInsufficientInventory)

	_, err = store.Inventory().Adjust(ctx, repository.NewID(), 1)
	assert.True(t, domain.IsNotFound(err))
}

func TestRunInTx(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	u, p := seed(t, store, 3)

	t.Run("Rollback restores state", func(t *testing.T) {
		boom := errors.New("boom")
		err := store.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
			if _, err := tx.Inventory().Reserve(ctx, p.ID, 2); err != nil {
				return err
			}
			if err := tx.Rentals().Create(ctx, newRental(u, p, 2)); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := store.Products().GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, got.QuantityAvailable)
		rentals, err := store.Rentals().ListByUser(ctx, u.ID, "")
		require.NoError(t, err)
		assert.Empty(t, rentals)
	})

	t.Run("Concurrent reserves never oversell", func(t *testing.T) {
		var wg sync.WaitGroup
		var mu sync.Mutex
		ok := 0
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := store.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
					if _, err := tx.Inventory().Reserve(ctx, p.ID, 3); err != nil {
						return err
					}
					return tx.Rentals().Create(ctx, newRental(u, p, 3))
				})
				if err == nil {
					mu.Lock()
					ok++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, ok)

		outstanding, err := store.Rentals().OutstandingByProduct(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, outstanding[p.ID])
	})
}

func TestRentals(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	u, p := seed(t, store, 10)

	first := newRental(u, p, 1)
	second := newRental(u, p, 2)
	require.NoError(t, store.Rentals().Create(ctx, first))
	require.NoError(t, store.Rentals().Create(ctx, second))

	t.Run("Conditional status write", func(t *testing.T) {
		rt, err := store.Rentals().UpdateStatus(ctx, first.ID, domain.RentalStatusPending, domain.RentalStatusApproved, u.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RentalStatusApproved, rt.Status)
		require.NotNil(t, rt.UpdatedBy)

		_, err = store.Rentals().UpdateStatus(ctx, first.ID, domain.RentalStatusPending, domain.RentalStatusCancelled, u.ID)
		assert.True(t, domain.IsConflict(err))
	})

	t.Run("List newest first with status filter", func(t *testing.T) {
		all, total, err := store.Rentals().List(ctx, domain.RentalFilter{}, 0, 50)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Equal(t, second.ID, all[0].ID)

		pending, total, err := store.Rentals().List(ctx, domain.RentalFilter{Status: domain.RentalStatusPending}, 0, 50)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, second.ID, pending[0].ID)

		skipped, _, err := store.Rentals().List(ctx, domain.RentalFilter{}, 5, 50)
		require.NoError(t, err)
		assert.Empty(t, skipped)
	})

	t.Run("Payment update", func(t *testing.T) {
		rt, err := store.Rentals().UpdatePayment(ctx, second.ID, domain.PaymentStatusPaid)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusPaid, rt.PaymentStatus)
	})

	t.Run("Unknown user violates reference", func(t *testing.T) {
		ghost := &domain.User{ID: repository.NewID()}
		err := store.Rentals().Create(ctx, newRental(ghost, p, 1))
		assert.True(t, domain.IsNotFound(err))
	})
}
