package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/logger"
	"rentalhub-backend/internal/repository"
	"rentalhub-backend/internal/security"
)

type productService struct {
	store repository.Store
}

func NewProductService(store repository.Store) ProductService {
	return &productService{store: store}
}

func (s *productService) ListProducts(ctx context.Context, filter domain.ProductFilter, skip, limit int) (*domain.ProductPage, error) {
	skip, limit, err := normalizePage(skip, limit)
	if err != nil {
		return nil, err
	}
	products, total, err := s.store.Products().List(ctx, filter, skip, limit)
	if err != nil {
		return nil, err
	}
	return &domain.ProductPage{Products: products, Total: total, Skip: skip, Limit: limit}, nil
}

func (s *productService) Locations(ctx context.Context) ([]string, error) {
	return s.store.Products().Locations(ctx)
}

func (s *productService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.store.Products().GetByID(ctx, id)
}

func (s *productService) CreateProduct(ctx context.Context, principal domain.Principal, in domain.ProductInput) (*domain.Product, error) {
	if err := security.RequireManager(principal); err != nil {
		return nil, err
	}

	var missing []string
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		missing = append(missing, "name")
	}
	if in.PricePerDay == nil {
		missing = append(missing, "price_per_day")
	}
	if in.QuantityTotal == nil {
		missing = append(missing, "quantity_total")
	}
	if len(missing) > 0 {
		return nil, domain.NewValidationError("Missing required fields: %s", strings.Join(missing, ", "))
	}
	if err := validatePrice(*in.PricePerDay); err != nil {
		return nil, err
	}
	if *in.QuantityTotal < 0 {
		return nil, domain.NewValidationError("quantity_total must not be negative")
	}

	p := &domain.Product{
		Name:              strings.TrimSpace(*in.Name),
		Category:          domain.DefaultProductCategory,
		PricePerDay:       *in.PricePerDay,
		QuantityTotal:     *in.QuantityTotal,
		QuantityAvailable: *in.QuantityTotal,
		IsActive:          true,
		AddedBy:           principal.ID,
	}
	applyDescriptive(p, in)

	if err := s.store.Products().Create(ctx, p); err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Product created", "productID", p.ID, "managerID", principal.ID, "quantity", p.QuantityTotal)
	return p, nil
}

func (s *productService) UpdateProduct(ctx context.Context, principal domain.Principal, id string, in domain.ProductInput) (*domain.Product, error) {
	if err := security.RequireManager(principal); err != nil {
		return nil, err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, domain.NewValidationError("name must not be empty")
	}
	if in.PricePerDay != nil {
		if err := validatePrice(*in.PricePerDay); err != nil {
			return nil, err
		}
	}
	if in.QuantityTotal != nil && *in.QuantityTotal < 0 {
		return nil, domain.NewValidationError("quantity_total must not be negative")
	}

	var updated *domain.Product
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		p, err := tx.Products().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if in.Name != nil {
			p.Name = strings.TrimSpace(*in.Name)
		}
		if in.PricePerDay != nil {
			p.PricePerDay = *in.PricePerDay
		}
		if in.IsActive != nil {
			p.IsActive = *in.IsActive
		}
		applyDescriptive(p, in)
		if err := tx.Products().Update(ctx, p); err != nil {
			return err
		}

		if in.QuantityTotal != nil && *in.QuantityTotal != p.QuantityTotal {
			p, err = tx.Products().UpdateQuantityTotal(ctx, p.ID, *in.QuantityTotal)
			if err != nil {
				return err
			}
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Product updated", "productID", updated.ID, "managerID", principal.ID)
	return updated, nil
}

func (s *productService) DeleteProduct(ctx context.Context, principal domain.Principal, id string) error {
	if err := security.RequireManager(principal); err != nil {
		return err
	}
	if err := s.store.Products().SoftDelete(ctx, id); err != nil {
		return err
	}
	logger.InfoContext(ctx, "Product deactivated", "productID", id, "managerID", principal.ID)
	return nil
}

func applyDescriptive(p *domain.Product, in domain.ProductInput) {
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil && strings.TrimSpace(*in.Category) != "" {
		p.Category = strings.TrimSpace(*in.Category)
	}
	if in.Location != nil {
		p.Location = strings.TrimSpace(*in.Location)
	}
	if in.ImageURL != nil {
		p.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
}

// validatePrice keeps prices within what a price_per_day column stores exactly.
func validatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return domain.NewValidationError("price_per_day must be greater than 0")
	}
	if !price.Equal(price.Truncate(2)) {
		return domain.NewValidationError("price_per_day must have at most 2 decimal places")
	}
	return nil
}
