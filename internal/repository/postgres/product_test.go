package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/repository/postgres"
)

var productCols = []string{"id", "name", "description", "category", "location", "price_per_day", "quantity_total",
	"quantity_available", "image_url", "is_active", "added_by", "created_at", "updated_at"}

func productRow(total, available int) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(productCols).AddRow(productID, "Tent", "", "camping", "Austin", "10.00", total, available, "", true, managerID, now, now)
}

func TestProductRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewProductRepository(db)
	p := &domain.Product{
		Name:              "Tent",
		Category:          domain.DefaultProductCategory,
		PricePerDay:       decimal.NewFromInt(10),
		QuantityTotal:     5,
		QuantityAvailable: 5,
		IsActive:          true,
		AddedBy:           managerID,
	}

	mock.ExpectExec("INSERT INTO products").
		WithArgs(sqlmock.AnyArg(), "Tent", "", "general", "", p.PricePerDay, 5, 5, "", true, managerID, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), p))
	assert.NotEmpty(t, p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_UpdateQuantityTotal(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewProductRepository(db)
	ctx := context.Background()

	t.Run("Shifts availability", func(t *testing.T) {
		mock.ExpectQuery(`quantity_available = quantity_available \+ \(\$1 - quantity_total\)`).
			WithArgs(8, sqlmock.AnyArg(), productID).
			WillReturnRows(productRow(8, 6))

		p, err := repo.UpdateQuantityTotal(ctx, productID, 8)
		require.NoError(t, err)
		assert.Equal(t, 8, p.QuantityTotal)
		assert.Equal(t, 6, p.QuantityAvailable)
	})

	t.Run("Below rented out is a conflict", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE products\s+SET quantity_total = \$1`).
			WithArgs(1, sqlmock.AnyArg(), productID).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery("SELECT (.+) FROM products WHERE id = \\$1").
			WithArgs(productID).
			WillReturnRows(productRow(5, 2))

		_, err := repo.UpdateQuantityTotal(ctx, productID, 1)
		assert.True(t, domain.IsConflict(err))
		assert.Contains(t, err.Error(), "3 units currently rented out")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewProductRepository(db)
	active := true

	mock.ExpectQuery(`SELECT count\(\*\) FROM products WHERE is_active = \$1 AND category = \$2`).
		WithArgs(true, "camping").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`FROM products WHERE is_active = \$1 AND category = \$2 ORDER BY created_at DESC LIMIT \$3`).
		WithArgs(true, "camping", 50).
		WillReturnRows(productRow(5, 5))

	products, total, err := repo.List(context.Background(), domain.ProductFilter{IsActive: &active, Category: "camping"}, 0, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, "Tent", products[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_SoftDeleteAndLocations(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewProductRepository(db)
	ctx := context.Background()

	t.Run("Soft delete", func(t *testing.T) {
		mock.ExpectExec(`UPDATE products SET is_active = FALSE`).
			WithArgs(sqlmock.AnyArg(), productID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.SoftDelete(ctx, productID))
	})

	t.Run("Soft delete missing", func(t *testing.T) {
		mock.ExpectExec(`UPDATE products SET is_active = FALSE`).
			WithArgs(sqlmock.AnyArg(), productID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		assert.True(t, domain.IsNotFound(repo.SoftDelete(ctx, productID)))
	})

	t.Run("Locations", func(t *testing.T) {
		mock.ExpectQuery(`SELECT DISTINCT location FROM products`).
			WillReturnRows(sqlmock.NewRows([]string{"location"}).AddRow("Austin").AddRow("Boston"))
		locs, err := repo.Locations(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Austin", "Boston"}, locs)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
