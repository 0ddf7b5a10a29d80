package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RentalStatus string

const (
	RentalStatusPending   RentalStatus = "pending"
	RentalStatusApproved  RentalStatus = "approved"
	RentalStatusActive    RentalStatus = "active"
	RentalStatusCompleted RentalStatus = "completed"
	RentalStatusCancelled RentalStatus = "cancelled"
)

// RentalStatuses lists every status in lifecycle order.
var RentalStatuses = []RentalStatus{
	RentalStatusPending,
	RentalStatusApproved,
	RentalStatusActive,
	RentalStatusCompleted,
	RentalStatusCancelled,
}

func (s RentalStatus) IsValid() bool {
	for _, v := range RentalStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition can leave this status.
func (s RentalStatus) IsTerminal() bool {
	return s == RentalStatusCompleted || s == RentalStatusCancelled
}

// IsOutstanding reports whether a rental in this status still holds inventory.
func (s RentalStatus) IsOutstanding() bool {
	return s == RentalStatusPending || s == RentalStatusApproved || s == RentalStatusActive
}

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPaid, PaymentStatusRefunded:
		return true
	}
	return false
}

// Transition describes a permitted status change and whether it returns the
// reserved quantity to the product.
type Transition struct {
	From            RentalStatus
	To              RentalStatus
	CreditInventory bool
}

var transitions = []Transition{
	{From: RentalStatusPending, To: RentalStatusApproved},
	{From: RentalStatusApproved, To: RentalStatusActive},
	{From: RentalStatusPending, To: RentalStatusCancelled, CreditInventory: true},
	{From: RentalStatusApproved, To: RentalStatusCancelled, CreditInventory: true},
	{From: RentalStatusActive, To: RentalStatusCompleted, CreditInventory: true},
}

// LookupTransition returns the transition from -> to. Staying in the same
// status is always allowed and never credits inventory.
func LookupTransition(from, to RentalStatus) (Transition, bool) {
	if from == to {
		return Transition{From: from, To: to}, true
	}
	for _, t := range transitions {
		if t.From == from && t.To == to {
			return t, true
		}
	}
	return Transition{}, false
}

type Rental struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	TotalDays int       `json:"total_days"`
	// Price snapshot captured from the product at booking time.
	PricePerDay   decimal.Decimal `json:"price_per_day"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Status        RentalStatus    `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	Notes         string          `json:"notes"`
	UpdatedBy     *string         `json:"updated_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// Read-only joins populated for responses.
	Product *Product `json:"product,omitempty"`
	User    *User    `json:"user,omitempty"`
}

// RentalFilter narrows rental listings by exact match.
type RentalFilter struct {
	Status RentalStatus
	UserID string
}

// BookingRequest is the caller's input for a new rental.
type BookingRequest struct {
	ProductID string  `json:"product_id"`
	Quantity  *int    `json:"quantity"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Notes     *string `json:"notes,omitempty"`
}

// RentalPage is a window over a rental listing.
type RentalPage struct {
	Rentals []Rental `json:"rentals"`
	Total   int      `json:"total"`
	Skip    int      `json:"skip"`
	Limit   int      `json:"limit"`
}
