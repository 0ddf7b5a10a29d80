package service

import (
	"context"

	"rentalhub-backend/internal/domain"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

// RentalQuery carries the list filters accepted by ListRentals.
type RentalQuery struct {
	Status string
	Skip   int
	Limit  int
}

type RentalService interface {
	CreateBooking(ctx context.Context, principal domain.Principal, req domain.BookingRequest) (*domain.Rental, error)
	ListRentals(ctx context.Context, principal domain.Principal, query RentalQuery) (*domain.RentalPage, error)
	GetRental(ctx context.Context, principal domain.Principal, id string) (*domain.Rental, error)
	UpdateStatus(ctx context.Context, principal domain.Principal, id, status string) (*domain.Rental, error)
	UpdatePayment(ctx context.Context, principal domain.Principal, id, paymentStatus string) (*domain.Rental, error)
}

type ProductService interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter, skip, limit int) (*domain.ProductPage, error)
	Locations(ctx context.Context) ([]string, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, principal domain.Principal, in domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, principal domain.Principal, id string, in domain.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, principal domain.Principal, id string) error
}

type AuthService interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	VerifyToken(ctx context.Context, token string) (*domain.User, error)
}

type UserService interface {
	GetProfile(ctx context.Context, principal domain.Principal) (*domain.User, error)
	UpdateProfile(ctx context.Context, principal domain.Principal, update domain.ProfileUpdate) (*domain.User, error)
	ListUsers(ctx context.Context, principal domain.Principal, role string, skip, limit int) (*domain.UserPage, error)
	GetUser(ctx context.Context, principal domain.Principal, id string) (*domain.User, error)
	DeleteUser(ctx context.Context, principal domain.Principal, id string) error
}

type InventoryService interface {
	Reconcile(ctx context.Context) (*domain.InventoryReport, error)
}

// normalizePage applies the default and maximum page size.
func normalizePage(skip, limit int) (int, int, error) {
	if skip < 0 {
		return 0, 0, domain.NewValidationError("skip must not be negative")
	}
	if limit < 0 {
		return 0, 0, domain.NewValidationError("limit must not be negative")
	}
	if limit == 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return skip, limit, nil
}
