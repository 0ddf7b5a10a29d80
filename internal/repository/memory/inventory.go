package memory

import (
	"context"

	"rentalhub-backend/internal/repository"
)

type inventoryLedger struct {
	s *Store
}

func (l *inventoryLedger) Adjust(ctx context.Context, productID string, delta int) (int, error) {
	defer l.s.lock()()
	rec, err := l.s.data.product(productID)
	if err != nil {
		return 0, err
	}
	rec.product.QuantityAvailable += delta
	rec.product.UpdatedAt = l.s.now()
	l.s.data.products[rec.product.ID] = rec
	return rec.product.QuantityAvailable, nil
}

func (l *inventoryLedger) Reserve(ctx context.Context, productID string, qty int) (int, error) {
	defer l.s.lock()()
	rec, err := l.s.data.product(productID)
	if err != nil || !rec.product.IsActive || rec.product.QuantityAvailable < qty {
		return 0, repository.ErrInsufficientInventory
	}
	rec.product.QuantityAvailable -= qty
	rec.product.UpdatedAt = l.s.now()
	l.s.data.products[rec.product.ID] = rec
	return rec.product.QuantityAvailable, nil
}

func (l *inventoryLedger) Release(ctx context.Context, productID string, qty int) (int, error) {
	return l.Adjust(ctx, productID, qty)
}
