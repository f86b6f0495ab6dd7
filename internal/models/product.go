package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Rental price periods
const (
	RentalUnitHour  = "hour"
	RentalUnitDay   = "day"
	RentalUnitWeek  = "week"
	RentalUnitMonth = "month"
)

// Product is a rentable catalog item. Order lines reference it by id; the
// product never points back at the lines that use it.
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description *string         `json:"description" db:"description"`
	RentalUnit  string          `json:"rental_unit" db:"rental_unit"`
	RentalPrice decimal.Decimal `json:"rental_price" db:"rental_price"`
	Tax         decimal.Decimal `json:"tax" db:"tax"` // per unit, absolute
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// ValidRentalUnit reports whether unit is a supported rental period
func ValidRentalUnit(unit string) bool {
	switch unit {
	case RentalUnitHour, RentalUnitDay, RentalUnitWeek, RentalUnitMonth:
		return true
	}
	return false
}
