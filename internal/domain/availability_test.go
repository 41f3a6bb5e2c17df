package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

func TestAdmissionPolicy_MaxBookableSlots(t *testing.T) {
	policy := domain.AdmissionPolicy{MaxBookablePercent: 30, MaxOccupancyPercent: 60}

	// 30% of 26 slots rounds down to 7
	assert.Equal(t, 7, policy.MaxBookableSlots(26))
	assert.Equal(t, 3, policy.MaxBookableSlots(10))
	assert.Equal(t, 0, policy.MaxBookableSlots(0))
}

func TestAdmissionPolicy_Evaluate(t *testing.T) {
	policy := domain.AdmissionPolicy{MaxBookablePercent: 30, MaxOccupancyPercent: 60}
	asOf := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	t.Run("booking enabled below caps", func(t *testing.T) {
		metrics := domain.SlotMetrics{
			TotalSlots:       26,
			OccupiedSlots:    5,
			ReservedSlots:    2,
			AvailableSlots:   19,
			OccupancyPercent: float64(5) / 26 * 100,
			UpdatedAt:        asOf,
		}

		availability := policy.Evaluate(metrics)

		assert.True(t, availability.Enabled)
		assert.Nil(t, availability.Reason)
		assert.Equal(t, 5, availability.RemainingBookable)
		assert.Equal(t, asOf, availability.AsOf)
	})

	t.Run("booking disabled at occupancy cap", func(t *testing.T) {
		metrics := domain.SlotMetrics{
			TotalSlots:       10,
			OccupiedSlots:    6,
			ReservedSlots:    0,
			AvailableSlots:   4,
			OccupancyPercent: 60,
			UpdatedAt:        asOf,
		}

		availability := policy.Evaluate(metrics)

		assert.False(t, availability.Enabled)
		require.NotNil(t, availability.Reason)
		assert.NotEmpty(t, *availability.Reason)
	})

	t.Run("remaining bookable never negative", func(t *testing.T) {
		metrics := domain.SlotMetrics{
			TotalSlots:    10,
			ReservedSlots: 5,
			UpdatedAt:     asOf,
		}

		availability := policy.Evaluate(metrics)

		assert.Equal(t, 0, availability.RemainingBookable)
	})
}
