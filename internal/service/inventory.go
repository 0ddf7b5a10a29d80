package service

import (
	"context"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/logger"
	"rentalhub-backend/internal/repository"
)

type inventoryService struct {
	store repository.Store
}

func NewInventoryService(store repository.Store) InventoryService {
	return &inventoryService{store: store}
}

// Reconcile compares each product's availability with quantity_total minus
// the quantity held by outstanding rentals. It reports drift and never repairs it.
func (s *inventoryService) Reconcile(ctx context.Context) (*domain.InventoryReport, error) {
	logger.EnterMethod("inventoryService.Reconcile")

	var products []domain.Product
	var outstanding map[string]int
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		if products, err = tx.Products().ListAll(ctx); err != nil {
			return err
		}
		outstanding, err = tx.Rentals().OutstandingByProduct(ctx)
		return err
	}, repository.ReadOnlySnapshot())
	if err != nil {
		logger.ExitMethodWithError("inventoryService.Reconcile", err)
		return nil, err
	}

	report := &domain.InventoryReport{ProductsChecked: len(products), Discrepancies: []domain.InventoryDiscrepancy{}}
	for _, p := range products {
		held := outstanding[p.ID]
		expected := p.QuantityTotal - held
		if p.QuantityAvailable == expected {
			continue
		}
		d := domain.InventoryDiscrepancy{
			ProductID:         p.ID,
			ProductName:       p.Name,
			QuantityTotal:     p.QuantityTotal,
			QuantityAvailable: p.QuantityAvailable,
			Outstanding:       held,
			Expected:          expected,
		}
		logger.WarnContext(ctx, "Inventory drift detected",
			"productID", d.ProductID, "available", d.QuantityAvailable, "expected", d.Expected, "drift", d.Drift())
		report.Discrepancies = append(report.Discrepancies, d)
	}

	logger.ExitMethod("inventoryService.Reconcile", "checked", report.ProductsChecked, "discrepancies", len(report.Discrepancies))
	return report, nil
}
