//go:build integration
// +build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/repository"
	"rentalhub-backend/internal/repository/postgres"
)

// setupStore starts a PostgreSQL container, applies the schema and returns a store.
func setupStore(t *testing.T) *postgres.Store {
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:alpine",
		tcpostgres.WithDatabase("rentalhub"),
		tcpostgres.WithUsername("rentalhub"),
		tcpostgres.WithPassword("rentalhub"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := postgres.Open(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, postgres.Migrate(ctx, db))
	return postgres.NewStore(db)
}

func seed(t *testing.T, store *postgres.Store, quantity int) (*domain.User, *domain.Product) {
	ctx := context.Background()
	u := &domain.User{FirstName: "Ada", LastName: "Lovelace", Email: repository.NewID() + "@example.com", PasswordHash: "x", Role: domain.RoleUser, IsActive: true}
	require.NoError(t, store.Users().Create(ctx, u))

	p := &domain.Product{Name: "Kayak", Category: domain.DefaultProductCategory, PricePerDay: decimal.NewFromInt(10),
		QuantityTotal: quantity, QuantityAvailable: quantity, IsActive: true}
	require.NoError(t, store.Products().Create(ctx, p))
	return u, p
}

func book(ctx context.Context, store *postgres.Store, u *domain.User, p *domain.Product, qty int) error {
	return store.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if _, err := tx.Inventory().Reserve(ctx, p.ID, qty); err != nil {
			return err
		}
		now := time.Now().UTC()
		return tx.Rentals().Create(ctx, &domain.Rental{
			UserID: u.ID, ProductID: p.ID, Quantity: qty, StartDate: now, EndDate: now, TotalDays: 1,
			PricePerDay: p.PricePerDay, TotalPrice: p.PricePerDay.Mul(decimal.NewFromInt(int64(qty))),
			Status: domain.RentalStatusPending, PaymentStatus: domain.PaymentStatusUnpaid,
		})
	})
}

func TestIntegration_ConcurrentReserve(t *testing.T) {
	store := setupStore(t)
	u, p := seed(t, store, 2)
	ctx := context.Background()

	const attempts = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, rejected := 0, 0
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := book(ctx, store, u, p, 2)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, repository.ErrInsufficientInventory):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, rejected)

	got, err := store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.QuantityAvailable)

	rentals, err := store.Rentals().ListByUser(ctx, u.ID, "")
	require.NoError(t, err)
	assert.Len(t, rentals, 1)
}

func TestIntegration_RollbackRestoresInventory(t *testing.T) {
	store := setupStore(t)
	_, p := seed(t, store, 3)
	ctx := context.Background()

	// Unknown user violates the foreign key after the reserve succeeded.
	ghost := &domain.User{ID: repository.NewID()}
	err := book(ctx, store, ghost, p, 2)
	assert.True(t, domain.IsNotFound(err))

	got, err := store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.QuantityAvailable)
}

func TestIntegration_StatusRace(t *testing.T) {
	store := setupStore(t)
	u, p := seed(t, store, 4)
	ctx := context.Background()

	require.NoError(t, book(ctx, store, u, p, 4))
	rentals, err := store.Rentals().ListByUser(ctx, u.ID, domain.RentalStatusPending)
	require.NoError(t, err)
	require.Len(t, rentals, 1)
	id := rentals[0].ID

	cancel := func() error {
		return store.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
			if _, err := tx.Rentals().UpdateStatus(ctx, id, domain.RentalStatusPending, domain.RentalStatusCancelled, ""); err != nil {
				return err
			}
			_, err := tx.Inventory().Release(ctx, p.ID, 4)
			return err
		})
	}

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = cancel()
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			assert.True(t, domain.IsConflict(err), "unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)

	got, err := store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.QuantityAvailable)

	outstanding, err := store.Rentals().OutstandingByProduct(ctx)
	require.NoError(t, err)
	assert.Zero(t, outstanding[p.ID])
}
