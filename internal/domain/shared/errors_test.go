package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError(t *testing.T) {
	t.Run("detailed errors match their kind", func(t *testing.T) {
		err := fmt.Errorf("record sale: %w", Errorf(ErrInsufficientStock, "only %d left", 3))
		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.NotErrorIs(t, err, ErrNotFound)
		assert.Equal(t, "record sale: only 3 left", err.Error())
	})

	t.Run("ErrorCode finds the code in the chain", func(t *testing.T) {
		assert.Equal(t, "NOT_FOUND", ErrorCode(fmt.Errorf("load: %w", ErrNotFound)))
		assert.Equal(t, "INTERNAL", ErrorCode(errors.New("disk full")))
	})
}
