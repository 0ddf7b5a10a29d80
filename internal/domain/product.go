package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultProductCategory = "general"

type Product struct {
	ID                string          `json:"_id"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Category          string          `json:"category"`
	Location          string          `json:"location"`
	PricePerDay       decimal.Decimal `json:"price_per_day"`
	QuantityTotal     int             `json:"quantity_total"`
	QuantityAvailable int             `json:"quantity_available"`
	ImageURL          string          `json:"image_url"`
	IsActive          bool            `json:"is_active"`
	AddedBy           string          `json:"added_by"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ProductFilter narrows catalog listings. Nil / empty fields are ignored.
type ProductFilter struct {
	IsActive *bool
	Category string
	Location string
}

// ProductInput carries manager-supplied catalog fields. Pointer fields are
// optional on update.
type ProductInput struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Category      *string          `json:"category"`
	Location      *string          `json:"location"`
	PricePerDay   *decimal.Decimal `json:"price_per_day"`
	QuantityTotal *int             `json:"quantity_total"`
	ImageURL      *string          `json:"image_url"`
	IsActive      *bool            `json:"is_active"`
}

type ProductPage struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Skip     int       `json:"skip"`
	Limit    int       `json:"limit"`
}
