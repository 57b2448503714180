package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=USER ADMIN"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("passes a valid struct", func(t *testing.T) {
		err := ValidateStruct(sampleRequest{Email: "jane@example.com", Password: "s3cret"})
		assert.NoError(t, err)
	})

	t.Run("reports JSON field names, not Go names", func(t *testing.T) {
		err := ValidateStruct(sampleRequest{})
		require.Error(t, err)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields(), "email")
		assert.Contains(t, verr.Fields(), "password")
		assert.NotContains(t, verr.Fields(), "Email")
	})

	t.Run("maps tags to readable messages", func(t *testing.T) {
		err := ValidateStruct(sampleRequest{Email: "not-an-email", Password: "abc", Role: "ROOT"})
		require.Error(t, err)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, []string{"must be a valid email"}, verr.Fields()["email"])
		assert.Equal(t, []string{"must be at least 6 characters"}, verr.Fields()["password"])
		assert.Equal(t, []string{"must be one of: USER ADMIN"}, verr.Fields()["role"])
	})

	t.Run("summary counts the remaining errors", func(t *testing.T) {
		err := ValidateStruct(sampleRequest{})
		require.Error(t, err)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Error(), "1 other error")
	})

	t.Run("summary is stable across runs", func(t *testing.T) {
		// The first error follows struct field order, not map iteration order.
		for range 25 {
			err := ValidateStruct(sampleRequest{})
			require.Error(t, err)
			assert.Equal(t, "email is required, and 1 other error", err.Error())
		}
	})
}
