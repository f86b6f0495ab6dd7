package rental

import (
	"fmt"

	"rentalhub/internal/common"
	"rentalhub/internal/models"
)

// Messages returned with successful transitions and rejections
const (
	MsgQuotationSent    = "Quotation sent successfully"
	MsgQuotationResent  = "Quotation resent successfully"
	MsgQuotationPrinted = "Quotation printed successfully"
	MsgRentalConfirmed  = "Rental confirmed successfully"
	MsgRentalCancelled  = "Rental cancelled successfully"
	MsgCannotConfirm    = "Cannot confirm rental in current status"
	MsgCannotSend       = "Cannot send quotation in current status"
	MsgAlreadyCancelled = "Rental is already cancelled"
)

// SendPolicy selects how "send" behaves once a rental is confirmed or
// cancelled.
type SendPolicy string

const (
	// SendPolicyStrict rejects send from confirmed and cancelled.
	SendPolicyStrict SendPolicy = "strict"
	// SendPolicyLegacy moves confirmed and cancelled rentals back to
	// quotation_sent with the resend message, as older clients observed.
	SendPolicyLegacy SendPolicy = "legacy"
)

// ParseSendPolicy converts a configuration value into a SendPolicy
func ParseSendPolicy(s string) (SendPolicy, error) {
	switch SendPolicy(s) {
	case "", SendPolicyStrict:
		return SendPolicyStrict, nil
	case SendPolicyLegacy:
		return SendPolicyLegacy, nil
	}
	return "", fmt.Errorf("unknown send policy %q, expected %q or %q", s, SendPolicyStrict, SendPolicyLegacy)
}

// Transition is the accepted outcome of an action
type Transition struct {
	Action  models.RentalAction
	From    models.RentalStatus
	To      models.RentalStatus
	Message string
}

// Changed reports whether the transition moves the rental to a new status
func (t Transition) Changed() bool {
	return t.From != t.To
}

// outcome is one cell of the transition table. A non-empty reject means the
// action is refused with that message.
type outcome struct {
	to      models.RentalStatus
	message string
	reject  string
}

func move(to models.RentalStatus, message string) outcome {
	return outcome{to: to, message: message}
}

func refuse(message string) outcome {
	return outcome{reject: message}
}

// Engine decides status transitions from an explicit table
type Engine struct {
	table map[models.RentalStatus]map[models.RentalAction]outcome
}

// NewEngine builds the transition table for the given send policy
func NewEngine(policy SendPolicy) *Engine {
	sendAfterQuotation := refuse(MsgCannotSend)
	if policy == SendPolicyLegacy {
		sendAfterQuotation = move(models.RentalStatusQuotationSent, MsgQuotationResent)
	}

	table := map[models.RentalStatus]map[models.RentalAction]outcome{
		models.RentalStatusDraft: {
			models.RentalActionSend:    move(models.RentalStatusQuotationSent, MsgQuotationSent),
			models.RentalActionConfirm: move(models.RentalStatusConfirmed, MsgRentalConfirmed),
			models.RentalActionCancel:  move(models.RentalStatusCancelled, MsgRentalCancelled),
			models.RentalActionPrint:   move(models.RentalStatusDraft, MsgQuotationPrinted),
		},
		models.RentalStatusQuotationSent: {
			models.RentalActionSend:    move(models.RentalStatusQuotationSent, MsgQuotationResent),
			models.RentalActionConfirm: move(models.RentalStatusConfirmed, MsgRentalConfirmed),
			models.RentalActionCancel:  move(models.RentalStatusCancelled, MsgRentalCancelled),
			models.RentalActionPrint:   move(models.RentalStatusQuotationSent, MsgQuotationPrinted),
		},
		models.RentalStatusConfirmed: {
			models.RentalActionSend:    sendAfterQuotation,
			models.RentalActionConfirm: refuse(MsgCannotConfirm),
			models.RentalActionCancel:  move(models.RentalStatusCancelled, MsgRentalCancelled),
			models.RentalActionPrint:   move(models.RentalStatusConfirmed, MsgQuotationPrinted),
		},
		models.RentalStatusCancelled: {
			models.RentalActionSend:    sendAfterQuotation,
			models.RentalActionConfirm: refuse(MsgCannotConfirm),
			models.RentalActionCancel:  refuse(MsgAlreadyCancelled),
			models.RentalActionPrint:   move(models.RentalStatusCancelled, MsgQuotationPrinted),
		},
	}

	return &Engine{table: table}
}

// ParseAction validates an action token
func ParseAction(token string) (models.RentalAction, error) {
	for _, a := range models.RentalActions {
		if string(a) == token {
			return a, nil
		}
	}
	return "", common.ValidationError("invalid action: %q", token)
}

// Decide returns the transition for action applied to current, a
// BusinessRuleError when the table refuses it, or a ValidationError for an
// unknown status or action.
func (e *Engine) Decide(current models.RentalStatus, action models.RentalAction) (Transition, error) {
	row, ok := e.table[current]
	if !ok {
		return Transition{}, common.ValidationError("unknown rental status: %q", current)
	}
	cell, ok := row[action]
	if !ok {
		return Transition{}, common.ValidationError("invalid action: %q", action)
	}
	if cell.reject != "" {
		return Transition{}, common.BusinessRuleError(cell.reject)
	}
	return Transition{
		Action:  action,
		From:    current,
		To:      cell.to,
		Message: cell.message,
	}, nil
}
