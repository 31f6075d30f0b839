package validator

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkout struct {
	Name   string    `validate:"required"`
	Phone  string    `validate:"required,max=5"`
	UserID uuid.UUID `validate:"uuid_required"`
}

func TestValidateFirstError(t *testing.T) {
	err := Validate(&checkout{Phone: "123", UserID: uuid.New()})
	require.Error(t, err)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "checkout.Name", verr.Field)
	assert.Equal(t, "required", verr.Tag)
	assert.Equal(t, "Validation failed: Field 'checkout.Name' failed on tag 'required'", err.Error())
}

func TestValidateUUIDRequired(t *testing.T) {
	errs := ValidateStruct(&checkout{Name: "Ana", Phone: "1"})
	require.Len(t, errs, 1)
	assert.Equal(t, "uuid_required", errs[0].Tag)

	assert.NoError(t, Validate(&checkout{Name: "Ana", Phone: "1", UserID: uuid.New()}))
}
