package common

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 50
	maxPageSize     = 1000
	maxOffset       = 1000000
)

// MoneyScale is the number of decimal places stored for money amounts
const MoneyScale = 2

type contextKey string

// UserIDKey holds the authenticated JWT subject
const UserIDKey contextKey = "user_id"

// GetUserIDFromContext returns the authenticated subject, if any
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

// The validators below return ValidationError kinds so callers can pass
// them straight through.

func ValidateUUID(idStr string, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, ValidationError("%s is required", fieldName)
	}
	if len(idStr) != 36 {
		return uuid.Nil, ValidationError("%s must be a 36 character UUID", fieldName)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, ValidationError("%s is not a valid UUID", fieldName)
	}
	return id, nil
}

// ValidatePositiveInteger checks 0 < value <= maxValue
func ValidatePositiveInteger(value int, fieldName string, maxValue int) error {
	if value <= 0 {
		return ValidationError("%s must be positive", fieldName)
	}
	if value > maxValue {
		return ValidationError("%s cannot exceed %d", fieldName, maxValue)
	}
	return nil
}

// ValidateMoneyAmount rejects negative amounts and amounts finer than
// MoneyScale, the scale of every money column
func ValidateMoneyAmount(value decimal.Decimal, fieldName string) error {
	if value.IsNegative() {
		return ValidationError("%s cannot be negative", fieldName)
	}
	if !value.Equal(value.Round(MoneyScale)) {
		return ValidationError("%s cannot have more than %d decimal places", fieldName, MoneyScale)
	}
	return nil
}

// ValidateOptionalString trims *value in place and enforces maxLength
func ValidateOptionalString(value *string, fieldName string, maxLength int) error {
	if value == nil {
		return nil
	}
	*value = strings.TrimSpace(*value)
	if len(*value) > maxLength {
		return ValidationError("%s cannot exceed %d characters", fieldName, maxLength)
	}
	return nil
}

// ValidatePaginationParams applies the default page size and clamps limit
// and offset into range
func ValidatePaginationParams(limit, offset int) (int, int, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	if offset > maxOffset {
		return 0, 0, ValidationError("offset cannot exceed %d", maxOffset)
	}
	return limit, offset, nil
}
