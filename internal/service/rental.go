package service

import (
	"context"
	"errors"
	"strings"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/logger"
	"rentalhub-backend/internal/repository"
	"rentalhub-backend/internal/security"
	"rentalhub-backend/internal/utils"
)

type rentalService struct {
	store repository.Store
}

func NewRentalService(store repository.Store) RentalService {
	return &rentalService{store: store}
}

func (s *rentalService) CreateBooking(ctx context.Context, principal domain.Principal, req domain.BookingRequest) (*domain.Rental, error) {
	logger.EnterMethod("rentalService.CreateBooking", "userID", principal.ID, "productID", req.ProductID)

	if err := security.RequireActive(principal); err != nil {
		return nil, err
	}

	var missing []string
	if strings.TrimSpace(req.ProductID) == "" {
		missing = append(missing, "product_id")
	}
	if req.Quantity == nil {
		missing = append(missing, "quantity")
	}
	if strings.TrimSpace(req.StartDate) == "" {
		missing = append(missing, "start_date")
	}
	if strings.TrimSpace(req.EndDate) == "" {
		missing = append(missing, "end_date")
	}
	if len(missing) > 0 {
		return nil, domain.NewValidationError("Missing required fields: %s", strings.Join(missing, ", "))
	}
	qty := *req.Quantity
	if qty < 1 {
		return nil, domain.NewValidationError("quantity must be at least 1")
	}

	product, err := s.store.Products().GetByID(ctx, req.ProductID)
	if err != nil {
		logger.ExitMethodWithError("rentalService.CreateBooking", err, "productID", req.ProductID)
		return nil, err
	}
	if !product.IsActive {
		return nil, domain.NewValidationError("Product is not available")
	}
	if qty > product.QuantityAvailable {
		return nil, domain.NewConflictError("Only %d units available", product.QuantityAvailable)
	}

	start, end, days, err := utils.ParseBookingWindow(req.StartDate, req.EndDate)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidDateRange) {
			return nil, domain.NewValidationError("End date must be after start date")
		}
		return nil, domain.NewValidationError("%s", err.Error())
	}

	rental := &domain.Rental{
		UserID:        principal.ID,
		ProductID:     product.ID,
		Quantity:      qty,
		StartDate:     start,
		EndDate:       end,
		TotalDays:     days,
		PricePerDay:   product.PricePerDay,
		TotalPrice:    utils.CalculateRentalCost(product.PricePerDay, days, qty),
		Status:        domain.RentalStatusPending,
		PaymentStatus: domain.PaymentStatusUnpaid,
	}
	if req.Notes != nil {
		rental.Notes = strings.TrimSpace(*req.Notes)
	}

	err = s.store.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if _, err := tx.Inventory().Reserve(ctx, product.ID, qty); err != nil {
			if errors.Is(err, repository.ErrInsufficientInventory) {
				return insufficientInventory(ctx, tx, product.ID)
			}
			return err
		}
		return tx.Rentals().Create(ctx, rental)
	})
	if err != nil {
		logger.ExitMethodWithError("rentalService.CreateBooking", err, "productID", product.ID)
		return nil, err
	}

	logger.InfoContext(ctx, "Rental booked",
		"rentalID", rental.ID, "userID", rental.UserID, "productID", rental.ProductID,
		"quantity", qty, "totalDays", days, "totalPrice", rental.TotalPrice.String())
	logger.ExitMethod("rentalService.CreateBooking", "rentalID", rental.ID)
	return rental, nil
}

// insufficientInventory explains a failed reserve using the product's current state.
func insufficientInventory(ctx context.Context, tx repository.Tx, productID string) error {
	product, err := tx.Products().GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if !product.IsActive {
		return domain.NewValidationError("Product is not available")
	}
	return domain.NewConflictError("Only %d units available", product.QuantityAvailable)
}

func (s *rentalService) ListRentals(ctx context.Context, principal domain.Principal, query RentalQuery) (*domain.RentalPage, error) {
	if err := security.RequireActive(principal); err != nil {
		return nil, err
	}
	status := domain.RentalStatus(query.Status)
	if status != "" && !status.IsValid() {
		return nil, domain.NewValidationError("Invalid status")
	}

	e := newEnricher(s.store)

	if principal.IsManager() {
		skip, limit, err := normalizePage(query.Skip, query.Limit)
		if err != nil {
			return nil, err
		}
		rentals, total, err := s.store.Rentals().List(ctx, domain.RentalFilter{Status: status}, skip, limit)
		if err != nil {
			return nil, err
		}
		for i := range rentals {
			if err := e.withProduct(ctx, &rentals[i]); err != nil {
				return nil, err
			}
			if err := e.withUser(ctx, &rentals[i]); err != nil {
				return nil, err
			}
		}
		return &domain.RentalPage{Rentals: rentals, Total: total, Skip: skip, Limit: limit}, nil
	}

	rentals, err := s.store.Rentals().ListByUser(ctx, principal.ID, status)
	if err != nil {
		return nil, err
	}
	for i := range rentals {
		if err := e.withProduct(ctx, &rentals[i]); err != nil {
			return nil, err
		}
	}
	return &domain.RentalPage{Rentals: rentals, Total: len(rentals), Limit: len(rentals)}, nil
}

func (s *rentalService) GetRental(ctx context.Context, principal domain.Principal, id string) (*domain.Rental, error) {
	if err := security.RequireActive(principal); err != nil {
		return nil, err
	}
	rental, err := s.store.Rentals().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := security.RequireSelfOrManager(principal, rental.UserID); err != nil {
		return nil, err
	}

	e := newEnricher(s.store)
	if err := e.withProduct(ctx, rental); err != nil {
		return nil, err
	}
	if principal.IsManager() {
		if err := e.withUser(ctx, rental); err != nil {
			return nil, err
		}
	}
	return rental, nil
}

func (s *rentalService) UpdateStatus(ctx context.Context, principal domain.Principal, id, status string) (*domain.Rental, error) {
	logger.EnterMethod("rentalService.UpdateStatus", "rentalID", id, "status", status, "managerID", principal.ID)

	if err := security.RequireManager(principal); err != nil {
		return nil, err
	}
	if strings.TrimSpace(status) == "" {
		return nil, domain.NewValidationError("Status is required")
	}
	to := domain.RentalStatus(status)
	if !to.IsValid() {
		return nil, domain.NewValidationError("Invalid status")
	}

	var updated *domain.Rental
	var credited bool
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		current, err := tx.Rentals().GetByID(ctx, id)
		if err != nil {
			return err
		}
		transition, ok := domain.LookupTransition(current.Status, to)
		if !ok {
			return domain.NewValidationError("Invalid status transition from %s to %s", current.Status, to)
		}
		if current.Status == to {
			updated = current
			return nil
		}

		updated, err = tx.Rentals().UpdateStatus(ctx, current.ID, current.Status, to, principal.ID)
		if err != nil {
			return err
		}
		if transition.CreditInventory {
			if _, err := tx.Inventory().Release(ctx, current.ProductID, current.Quantity); err != nil {
				return err
			}
			credited = true
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("rentalService.UpdateStatus", err, "rentalID", id)
		return nil, err
	}

	logger.InfoContext(ctx, "Rental status updated",
		"rentalID", updated.ID, "status", updated.Status, "inventoryCredited", credited, "managerID", principal.ID)

	if err := newEnricher(s.store).withProduct(ctx, updated); err != nil {
		return nil, err
	}
	logger.ExitMethod("rentalService.UpdateStatus", "rentalID", updated.ID)
	return updated, nil
}

func (s *rentalService) UpdatePayment(ctx context.Context, principal domain.Principal, id, paymentStatus string) (*domain.Rental, error) {
	if err := security.RequireManager(principal); err != nil {
		return nil, err
	}
	if strings.TrimSpace(paymentStatus) == "" {
		return nil, domain.NewValidationError("Payment status is required")
	}
	ps := domain.PaymentStatus(paymentStatus)
	if !ps.IsValid() {
		return nil, domain.NewValidationError("Invalid payment status")
	}

	rental, err := s.store.Rentals().UpdatePayment(ctx, id, ps)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Rental payment status updated", "rentalID", rental.ID, "paymentStatus", ps, "managerID", principal.ID)
	return rental, nil
}

// enricher attaches products and users to rentals, fetching each id once.
type enricher struct {
	store    repository.Store
	products map[string]*domain.Product
	users    map[string]*domain.User
}

func newEnricher(store repository.Store) *enricher {
	return &enricher{
		store:    store,
		products: make(map[string]*domain.Product),
		users:    make(map[string]*domain.User),
	}
}

func (e *enricher) withProduct(ctx context.Context, rental *domain.Rental) error {
	p, ok := e.products[rental.ProductID]
	if !ok {
		var err error
		p, err = e.store.Products().GetByID(ctx, rental.ProductID)
		if err != nil && !domain.IsNotFound(err) {
			return err
		}
		e.products[rental.ProductID] = p
	}
	rental.Product = p
	return nil
}

func (e *enricher) withUser(ctx context.Context, rental *domain.Rental) error {
	u, ok := e.users[rental.UserID]
	if !ok {
		var err error
		u, err = e.store.Users().GetByID(ctx, rental.UserID)
		if err != nil && !domain.IsNotFound(err) {
			return err
		}
		e.users[rental.UserID] = u
	}
	rental.User = u
	return nil
}
