package customerrors_test

import (
	"errors"
	"fmt"
	"testing"

	"arenda/internal/customerrors"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected customerrors.Kind
	}{
		{"sentinel", customerrors.ErrUsernameTaken, customerrors.Duplicate},
		{"wrapped", fmt.Errorf("register: %w", customerrors.ErrInvalidCredentials), customerrors.Auth},
		{"formatted", customerrors.Validationf("price %q is not a whole number", "abc"), customerrors.Validation},
		{"plain error", errors.New("disk full"), customerrors.Internal},
		{"nil", nil, customerrors.Internal},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, customerrors.KindOf(tc.err))
		})
	}
}

func TestMessageHidesInternalErrors(t *testing.T) {
	assert.Equal(t, "listing not found", customerrors.Message(fmt.Errorf("get: %w", customerrors.ErrListingNotFound)))
	assert.NotContains(t, customerrors.Message(errors.New("pq: connection refused")), "pq")
}

func TestIs(t *testing.T) {
	assert.True(t, customerrors.Is(customerrors.ErrNotOwner, customerrors.Permission))
	assert.False(t, customerrors.Is(nil, customerrors.Internal))
	assert.False(t, customerrors.Is(customerrors.ErrNotOwner, customerrors.NotFound))
}
