package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusSummary aggregates rentals sharing one status
type StatusSummary struct {
	Status RentalStatus    `json:"status"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

// RentalReport is the dashboard summary of all rentals
type RentalReport struct {
	Statuses         []StatusSummary `json:"statuses"`
	TotalRentals     int             `json:"total_rentals"`
	ConfirmedRevenue decimal.Decimal `json:"confirmed_revenue"`
	PipelineValue    decimal.Decimal `json:"pipeline_value"` // draft + quotation_sent
	GeneratedAt      time.Time       `json:"generated_at"`
}
