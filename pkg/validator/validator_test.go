package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type reportPayload struct {
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=1"`
	Phone    string `json:"contact_phone" validate:"required,min=7"`
}

func TestValidateStructSuccess(t *testing.T) {
	payload := reportPayload{Name: "Old Laptop", Quantity: 1, Phone: "5551234567"}
	require.NoError(t, ValidateStruct(payload))
}

func TestValidateStructFailuresUseJSONNames(t *testing.T) {
	err := ValidateStruct(reportPayload{Quantity: 0, Phone: "123"})
	require.Error(t, err)

	ve, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, ve, 3)

	fields := make(map[string]string, len(ve))
	for _, failure := range ve {
		fields[failure.Field] = failure.Tag
	}
	require.Equal(t, "required", fields["name"])
	require.Equal(t, "gte", fields["quantity"])
	require.Equal(t, "min", fields["contact_phone"])
}
