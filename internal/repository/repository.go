package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"rentalhub-backend/internal/domain"
)

// ErrInsufficientInventory is returned by Reserve when no row matched the
// conditional decrement: the product is missing, inactive or short.
var ErrInsufficientInventory = errors.New("insufficient inventory")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	List(ctx context.Context, role domain.Role, skip, limit int) ([]domain.User, int, error)
	SetActive(ctx context.Context, id string, active bool) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter, skip, limit int) ([]domain.Product, int, error)
	ListAll(ctx context.Context) ([]domain.Product, error)
	// Update writes descriptive fields only. Quantities go through
	// UpdateQuantityTotal and the InventoryLedger.
	Update(ctx context.Context, product *domain.Product) error
	// UpdateQuantityTotal sets quantity_total and shifts quantity_available by
	// the same delta. It fails with a conflict when availability would go negative.
	UpdateQuantityTotal(ctx context.Context, id string, total int) (*domain.Product, error)
	SoftDelete(ctx context.Context, id string) error
	Locations(ctx context.Context) ([]string, error)
}

// InventoryLedger owns every mutation of quantity_available.
type InventoryLedger interface {
	// Adjust adds delta and returns the new availability. Bounds are the caller's concern.
	Adjust(ctx context.Context, productID string, delta int) (int, error)
	// Reserve decrements by qty only if the product is active and has at least
	// qty available. It returns ErrInsufficientInventory otherwise.
	Reserve(ctx context.Context, productID string, qty int) (int, error)
	Release(ctx context.Context, productID string, qty int) (int, error)
}

type RentalRepository interface {
	Create(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id string) (*domain.Rental, error)
	// UpdateStatus moves a rental from one status to another. A rental no
	// longer in status from yields a conflict.
	UpdateStatus(ctx context.Context, id string, from, to domain.RentalStatus, updatedBy string) (*domain.Rental, error)
	UpdatePayment(ctx context.Context, id string, status domain.PaymentStatus) (*domain.Rental, error)
	List(ctx context.Context, filter domain.RentalFilter, skip, limit int) ([]domain.Rental, int, error)
	ListByUser(ctx context.Context, userID string, status domain.RentalStatus) ([]domain.Rental, error)
	// OutstandingByProduct sums reserved quantity per product over rentals
	// that still hold inventory.
	OutstandingByProduct(ctx context.Context) (map[string]int, error)
}

// Tx is the set of repositories bound to one unit of work.
type Tx interface {
	Users() UserRepository
	Products() ProductRepository
	Inventory() InventoryLedger
	Rentals() RentalRepository
}

// TxOptions tunes a unit of work. The zero value is a read-write transaction
// at the store's default isolation.
type TxOptions struct {
	// Snapshot makes every read in the unit of work observe one committed state.
	Snapshot bool
	ReadOnly bool
}

type TxOption func(*TxOptions)

// ReadOnlySnapshot requests a read-only unit of work over a single snapshot.
func ReadOnlySnapshot() TxOption {
	return func(o *TxOptions) {
		o.Snapshot = true
		o.ReadOnly = true
	}
}

// ApplyTxOptions folds opts into a TxOptions value.
func ApplyTxOptions(opts ...TxOption) TxOptions {
	var o TxOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Store is the injected persistence boundary. Work passed to RunInTx commits
// when fn returns nil and rolls back otherwise.
type Store interface {
	Tx
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error, opts ...TxOption) error
	Ping(ctx context.Context) error
	Close() error
}

// NewID returns a fresh entity id.
func NewID() string {
	return uuid.NewString()
}

// NormalizeID returns the canonical lower-case form of id, or false when id
// is not a UUID.
func NormalizeID(id string) (string, bool) {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", false
	}
	return u.String(), true
}
