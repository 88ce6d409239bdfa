package leads

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "9876543210", NormalizePhone("98765 43210"))
	assert.Equal(t, "9876543210", NormalizePhone(" 98 76 54 32 10 "))
	assert.Equal(t, "987-654-3210", NormalizePhone("987-654-3210"), "only whitespace is stripped")
}

func TestValidPhone(t *testing.T) {
	valid := []string{"9876543210", "6000000000", "7123456789", "8999999999"}
	for _, phone := range valid {
		assert.True(t, ValidPhone(phone), phone)
	}

	invalid := []string{
		"5876543210",
		"987654321",
		"98765432100",
		"987-6543210",
		"+919876543210",
		"abcdefghij",
		"",
	}
	for _, phone := range invalid {
		assert.False(t, ValidPhone(phone), phone)
	}
}

func TestCreateLeadRequestValidate(t *testing.T) {
	base := CreateLeadRequest{
		SpaID: "serenity-spa",
		Name:  "Asha",
		Phone: "98765 43210",
	}
	assert.NoError(t, base.Validate())

	req := base
	req.SpaID = "  "
	assert.ErrorIs(t, req.Validate(), ErrMissingSpaID)

	req = base
	req.Name = ""
	assert.ErrorIs(t, req.Validate(), ErrMissingName)

	req = base
	req.Phone = "   "
	assert.ErrorIs(t, req.Validate(), ErrMissingPhone)

	req = base
	req.Phone = "987-654-3210"
	assert.ErrorIs(t, req.Validate(), ErrInvalidPhone)

	req = base
	req.Phone = "1234567890"
	assert.ErrorIs(t, req.Validate(), ErrInvalidPhone)
}

func TestToLeadDefaultsAndNormalization(t *testing.T) {
	req := CreateLeadRequest{
		SpaID:   " serenity-spa ",
		Name:    " Asha ",
		Phone:   "98765 43210",
		Message: " evening slot please ",
	}
	lead := req.ToLead()

	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, "serenity-spa", lead.SpaID)
	assert.Equal(t, "Asha", lead.Name)
	assert.Equal(t, "9876543210", lead.Phone)
	assert.Equal(t, []string{DefaultService}, lead.Services, "empty selection falls back to the default service")
	assert.Equal(t, "evening slot please", lead.Message)
}

func TestToLeadKeepsSelectedServices(t *testing.T) {
	req := CreateLeadRequest{
		SpaID:    "serenity-spa",
		Name:     "Asha",
		Phone:    "9876543210",
		Services: []string{"HydraFacial", " ", "Laser Hair Removal"},
	}
	lead := req.ToLead()

	assert.Equal(t, []string{"HydraFacial", "Laser Hair Removal"}, lead.Services)

	other := req.ToLead()
	assert.NotEqual(t, lead.ID, other.ID)
}
