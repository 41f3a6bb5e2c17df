package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

func TestTariff_Fee(t *testing.T) {
	tariff := domain.Tariff{BaseFee: 2.00, HourlyFee: 1.00}

	tests := []struct {
		name     string
		duration time.Duration
		expected float64
	}{
		{
			name:     "ten minutes covered by base fee",
			duration: 10 * time.Minute,
			expected: 2.00,
		},
		{
			name:     "exactly one hour",
			duration: time.Hour,
			expected: 2.00,
		},
		{
			name:     "ninety minutes bills half an extra hour",
			duration: 90 * time.Minute,
			expected: 2.50,
		},
		{
			name:     "two and a half hours",
			duration: 150 * time.Minute,
			expected: 3.50,
		},
		{
			name:     "zero duration still bills base fee",
			duration: 0,
			expected: 2.00,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tariff.Fee(tt.duration))
		})
	}
}

func TestTicket_Close(t *testing.T) {
	tariff := domain.Tariff{BaseFee: 2.00, HourlyFee: 1.00}
	entry := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	t.Run("open ticket is closed with duration and fee", func(t *testing.T) {
		ticket := domain.Ticket{ID: 1, VehicleNumber: "AB123", EntryTime: entry}
		exit := entry.Add(90 * time.Minute)

		err := ticket.Close(exit, tariff)

		require.NoError(t, err)
		assert.False(t, ticket.IsOpen())
		require.NotNil(t, ticket.DurationMinutes)
		assert.Equal(t, 90, *ticket.DurationMinutes)
		assert.Equal(t, 2.50, ticket.FeeAmount)
	})

	t.Run("closing twice fails", func(t *testing.T) {
		ticket := domain.Ticket{ID: 1, EntryTime: entry}
		require.NoError(t, ticket.Close(entry.Add(time.Hour), tariff))

		err := ticket.Close(entry.Add(2*time.Hour), tariff)

		assert.Error(t, err)
	})

	t.Run("exit before entry fails", func(t *testing.T) {
		ticket := domain.Ticket{ID: 1, EntryTime: entry}

		err := ticket.Close(entry.Add(-time.Minute), tariff)

		assert.Error(t, err)
		assert.True(t, ticket.IsOpen())
	})
}
