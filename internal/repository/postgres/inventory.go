package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/logger"
	"rentalhub-backend/internal/repository"
)

type inventoryLedger struct {
	db DBTX
}

func NewInventoryLedger(db DBTX) repository.InventoryLedger {
	return &inventoryLedger{db: db}
}

func (l *inventoryLedger) Adjust(ctx context.Context, productID string, delta int) (int, error) {
	logger.EnterMethod("inventoryLedger.Adjust", "productID", productID, "delta", delta)

	pid, ok := repository.NormalizeID(productID)
	if !ok {
		return 0, domain.NewNotFoundError("product not found")
	}

	query := `UPDATE products SET quantity_available = quantity_available + $1, updated_at = $2 WHERE id = $3 RETURNING quantity_available`
	logger.DatabaseCall("UPDATE", query, "productID", pid)

	var available int
	err := l.db.QueryRowContext(ctx, query, delta, time.Now().UTC(), pid).Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		logger.ExitMethod("inventoryLedger.Adjust", "productID", pid, "found", false)
		return 0, domain.NewNotFoundError("product not found")
	}
	if err != nil {
		logger.ExitMethodWithError("inventoryLedger.Adjust", err, "productID", pid)
		return 0, wrapError("adjust inventory", err)
	}

	logger.ExitMethod("inventoryLedger.Adjust", "productID", pid, "available", available)
	return available, nil
}

func (l *inventoryLedger) Reserve(ctx context.Context, productID string, qty int) (int, error) {
	logger.EnterMethod("inventoryLedger.Reserve", "productID", productID, "quantity", qty)

	pid, ok := repository.NormalizeID(productID)
	if !ok {
		return 0, repository.ErrInsufficientInventory
	}

	query := `UPDATE products SET quantity_available = quantity_available - $1, updated_at = $2
	          WHERE id = $3 AND is_active AND quantity_available >= $1
	          RETURNING quantity_available`
	logger.DatabaseCall("UPDATE", query, "productID", pid, "quantity", qty)

	var remaining int
	err := l.db.QueryRowContext(ctx, query, qty, time.Now().UTC(), pid).Scan(&remaining)
	if errors.Is(err, sql.ErrNoRows) {
		logger.ExitMethod("inventoryLedger.Reserve", "productID", pid, "reserved", false)
		return 0, repository.ErrInsufficientInventory
	}
	if err != nil {
		logger.ExitMethodWithError("inventoryLedger.Reserve", err, "productID", pid)
		return 0, wrapError("reserve inventory", err)
	}

	logger.ExitMethod("inventoryLedger.Reserve", "productID", pid, "remaining", remaining)
	return remaining, nil
}

func (l *inventoryLedger) Release(ctx context.Context, productID string, qty int) (int, error) {
	return l.Adjust(ctx, productID, qty)
}
