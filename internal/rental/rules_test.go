package rental

import (
	"testing"

	"rentalhub/internal/common"
	"rentalhub/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCheckFieldsEditable(t *testing.T) {
	for _, s := range models.RentalStatuses {
		err := CheckFieldsEditable(s)
		if s == models.RentalStatusCancelled {
			assert.ErrorIs(t, err, common.ErrBusinessRule)
			assert.Equal(t, MsgRentalLocked, common.PublicMessage(err))
			continue
		}
		assert.NoError(t, err, s)
	}
}

func TestCheckLinesEditable(t *testing.T) {
	assert.NoError(t, CheckLinesEditable(models.RentalStatusDraft))
	assert.NoError(t, CheckLinesEditable(models.RentalStatusQuotationSent))
	assert.ErrorIs(t, CheckLinesEditable(models.RentalStatusConfirmed), common.ErrBusinessRule)
	assert.ErrorIs(t, CheckLinesEditable(models.RentalStatusCancelled), common.ErrBusinessRule)
}

func TestValidField(t *testing.T) {
	assert.True(t, ValidField("customer"))
	assert.True(t, ValidField("schedule_date"))
	assert.False(t, ValidField("status"))
	assert.False(t, ValidField("total"))
}
