package rental

import (
	"rentalhub/internal/common"
	"rentalhub/internal/models"
)

const (
	MsgRentalLocked = "Cannot edit a cancelled rental"
	MsgLinesLocked  = "Order lines can only be changed while the rental is a draft or quotation"
)

// CheckFieldsEditable rejects header edits on cancelled rentals
func CheckFieldsEditable(status models.RentalStatus) error {
	if status == models.RentalStatusCancelled {
		return common.BusinessRuleError(MsgRentalLocked)
	}
	return nil
}

// CheckLinesEditable rejects line mutations outside draft and quotation_sent
func CheckLinesEditable(status models.RentalStatus) error {
	if !status.LinesEditable() {
		return common.BusinessRuleError(MsgLinesLocked)
	}
	return nil
}

// ValidField reports whether field names an editable header field
func ValidField(field string) bool {
	switch field {
	case models.FieldCustomer, models.FieldInvoiceAddress, models.FieldDeliveryAddress, models.FieldScheduleDate, models.FieldResponsible:
		return true
	}
	return false
}
