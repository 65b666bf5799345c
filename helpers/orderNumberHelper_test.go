package helpers_test

import (
	"testing"
	"time"

	"go-hookah-management/helpers"

	"github.com/stretchr/testify/assert"
)

func TestFormatOrderNumber(t *testing.T) {
	t.Run("first order of the day", func(t *testing.T) {
		date := time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)
		assert.Equal(t, "05/03/2024-1", helpers.FormatOrderNumber(date, 1))
	})

	t.Run("sequence grows within the day", func(t *testing.T) {
		date := time.Date(2024, 3, 5, 23, 59, 0, 0, time.UTC)
		assert.Equal(t, "05/03/2024-2", helpers.FormatOrderNumber(date, 2))
		assert.Equal(t, "05/03/2024-137", helpers.FormatOrderNumber(date, 137))
	})

	t.Run("day and month are zero padded", func(t *testing.T) {
		date := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, "31/12/2025-4", helpers.FormatOrderNumber(date, 4))
	})
}
