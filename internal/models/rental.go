package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RentalStatus is the lifecycle status of a rental order
type RentalStatus string

const (
	RentalStatusDraft         RentalStatus = "draft"
	RentalStatusQuotationSent RentalStatus = "quotation_sent"
	RentalStatusConfirmed     RentalStatus = "confirmed"
	RentalStatusCancelled     RentalStatus = "cancelled"
)

// RentalStatuses lists every status in lifecycle order
var RentalStatuses = []RentalStatus{
	RentalStatusDraft,
	RentalStatusQuotationSent,
	RentalStatusConfirmed,
	RentalStatusCancelled,
}

// Valid reports whether s is a known status
func (s RentalStatus) Valid() bool {
	switch s {
	case RentalStatusDraft, RentalStatusQuotationSent, RentalStatusConfirmed, RentalStatusCancelled:
		return true
	}
	return false
}

// LinesEditable reports whether order lines may be added, edited or removed
func (s RentalStatus) LinesEditable() bool {
	return s == RentalStatusDraft || s == RentalStatusQuotationSent
}

// RentalAction is a user action requested against a rental order
type RentalAction string

const (
	RentalActionSend    RentalAction = "send"
	RentalActionPrint   RentalAction = "print"
	RentalActionConfirm RentalAction = "confirm"
	RentalActionCancel  RentalAction = "cancel"
)

// RentalActions lists every recognised action
var RentalActions = []RentalAction{
	RentalActionSend,
	RentalActionPrint,
	RentalActionConfirm,
	RentalActionCancel,
}

// Editable free-text header fields, keyed by their API name
const (
	FieldCustomer        = "customer"
	FieldInvoiceAddress  = "invoice_address"
	FieldDeliveryAddress = "delivery_address"
	FieldScheduleDate    = "schedule_date"
	FieldResponsible     = "responsible"
)

// RentalOrder is the aggregate root: header fields, owned order lines and
// the derived totals stored alongside them.
type RentalOrder struct {
	ID              string          `json:"id" db:"id"`
	Status          RentalStatus    `json:"status" db:"status"`
	Customer        string          `json:"customer" db:"customer"`
	InvoiceAddress  string          `json:"invoice_address" db:"invoice_address"`
	DeliveryAddress string          `json:"delivery_address" db:"delivery_address"`
	ScheduleDate    string          `json:"schedule_date" db:"schedule_date"`
	Responsible     string          `json:"responsible" db:"responsible"`
	OrderLines      []OrderLine     `json:"order_lines"`
	UntaxedTotal    decimal.Decimal `json:"untaxed_total" db:"untaxed_total"`
	Tax             decimal.Decimal `json:"tax" db:"tax"`
	Total           decimal.Decimal `json:"total" db:"total"`
	Version         int             `json:"version" db:"version"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// OrderLine is one product entry of a rental order. SubTotal is always
// Quantity * UnitPrice; Tax is an absolute amount added on top of it.
type OrderLine struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	RentalID  string          `json:"rental_id" db:"rental_id"`
	Position  int             `json:"position" db:"position"`
	ProductID *uuid.UUID      `json:"product_id,omitempty" db:"product_id"`
	Product   string          `json:"product" db:"product"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`
	Tax       decimal.Decimal `json:"tax" db:"tax"`
	SubTotal  decimal.Decimal `json:"sub_total" db:"sub_total"`
}

// OrderLineInput carries a client-supplied line. UnitPrice and Tax fall back
// to the catalog product when omitted.
type OrderLineInput struct {
	ProductID *uuid.UUID       `json:"product_id,omitempty"`
	Product   string           `json:"product"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Tax       *decimal.Decimal `json:"tax,omitempty"`
}

// RentalInput is the payload for creating a rental. New rentals start as
// draft; status and totals are never taken from the client.
type RentalInput struct {
	Customer        string           `json:"customer"`
	InvoiceAddress  string           `json:"invoice_address"`
	DeliveryAddress string           `json:"delivery_address"`
	ScheduleDate    string           `json:"schedule_date"`
	Responsible     string           `json:"responsible"`
	OrderLines      []OrderLineInput `json:"order_lines"`
}

// RentalTotals holds the derived monetary fields of a rental order
type RentalTotals struct {
	UntaxedTotal decimal.Decimal `json:"untaxed_total"`
	TotalTax     decimal.Decimal `json:"total_tax"`
	Total        decimal.Decimal `json:"total"`
}

// Totals returns the stored derived fields
func (o *RentalOrder) Totals() RentalTotals {
	return RentalTotals{
		UntaxedTotal: o.UntaxedTotal,
		TotalTax:     o.Tax,
		Total:        o.Total,
	}
}

// ApplyTotals overwrites the stored derived fields
func (o *RentalOrder) ApplyTotals(t RentalTotals) {
	o.UntaxedTotal = t.UntaxedTotal
	o.Tax = t.TotalTax
	o.Total = t.Total
}

// SetField assigns one editable header field by API name. It returns false
// when the name is not an editable field.
func (o *RentalOrder) SetField(field, value string) bool {
	switch field {
	case FieldCustomer:
		o.Customer = value
	case FieldInvoiceAddress:
		o.InvoiceAddress = value
	case FieldDeliveryAddress:
		o.DeliveryAddress = value
	case FieldScheduleDate:
		o.ScheduleDate = value
	case FieldResponsible:
		o.Responsible = value
	default:
		return false
	}
	return true
}

// FindLine returns the index of the line with the given id, or -1
func (o *RentalOrder) FindLine(lineID uuid.UUID) int {
	for i := range o.OrderLines {
		if o.OrderLines[i].ID == lineID {
			return i
		}
	}
	return -1
}

// RenumberLines rewrites line positions to match slice order
func (o *RentalOrder) RenumberLines() {
	for i := range o.OrderLines {
		o.OrderLines[i].Position = i + 1
		o.OrderLines[i].RentalID = o.ID
	}
}

// RentalFilter holds list criteria for rental orders
type RentalFilter struct {
	Status   *RentalStatus `json:"status,omitempty"`
	Customer string        `json:"customer,omitempty"` // case-insensitive substring
	Limit    int           `json:"limit,omitempty"`
	Offset   int           `json:"offset,omitempty"`
}

// RentalEvent describes a completed lifecycle action, delivered to notifiers
type RentalEvent struct {
	RentalID   string       `json:"rental_id"`
	Action     RentalAction `json:"action"`
	From       RentalStatus `json:"from"`
	To         RentalStatus `json:"to"`
	Message    string       `json:"message"`
	Actor      string       `json:"actor,omitempty"` // JWT subject, empty for internal callers
	OccurredAt time.Time    `json:"occurred_at"`
}
