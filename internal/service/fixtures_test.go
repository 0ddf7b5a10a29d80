package service_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/repository/memory"
	"rentalhub-backend/internal/service"
)

type fixture struct {
	ctx       context.Context
	store     *memory.Store
	rentals   service.RentalService
	products  service.ProductService
	inventory service.InventoryService
	manager   domain.Principal
	renter    domain.Principal
	other     domain.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		ctx:       context.Background(),
		store:     store,
		rentals:   service.NewRentalService(store),
		products:  service.NewProductService(store),
		inventory: service.NewInventoryService(store),
	}
	f.manager = f.addUser(t, "boss@example.com", domain.RoleManager)
	f.renter = f.addUser(t, "renter@example.com", domain.RoleUser)
	f.other = f.addUser(t, "other@example.com", domain.RoleUser)
	return f
}

func (f *fixture) addUser(t *testing.T, email string, role domain.Role) domain.Principal {
	t.Helper()
	u := &domain.User{FirstName: "Test", LastName: "User", Email: email, Role: role, IsActive: true}
	require.NoError(t, f.store.Users().Create(f.ctx, u))
	return u.Principal()
}

func (f *fixture) addProduct(t *testing.T, qty int, price int64) *domain.Product {
	t.Helper()
	p := &domain.Product{Name: "Camera", Category: "electronics", Location: "Denver",
		PricePerDay: decimal.NewFromInt(price), QuantityTotal: qty, QuantityAvailable: qty, IsActive: true}
	require.NoError(t, f.store.Products().Create(f.ctx, p))
	return p
}

func (f *fixture) available(t *testing.T, productID string) int {
	t.Helper()
	p, err := f.store.Products().GetByID(f.ctx, productID)
	require.NoError(t, err)
	return p.QuantityAvailable
}

func (f *fixture) rentalCount(t *testing.T) int {
	t.Helper()
	_, total, err := f.store.Rentals().List(f.ctx, domain.RentalFilter{}, 0, 1)
	require.NoError(t, err)
	return total
}

func (f *fixture) rentalStatus(t *testing.T, id string) domain.RentalStatus {
	t.Helper()
	r, err := f.store.Rentals().GetByID(f.ctx, id)
	require.NoError(t, err)
	return r.Status
}

func booking(productID string, qty int, start, end string) domain.BookingRequest {
	return domain.BookingRequest{ProductID: productID, Quantity: &qty, StartDate: start, EndDate: end}
}

func ptr[T any](v T) *T { return &v }
