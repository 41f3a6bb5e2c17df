package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

func TestSlot_Status(t *testing.T) {
	tests := []struct {
		name     string
		slot     domain.Slot
		expected domain.SlotStatusLabel
	}{
		{
			name:     "free slot",
			slot:     domain.Slot{SlotNumber: "1"},
			expected: domain.SlotStatusAvailable,
		},
		{
			name:     "reserved slot",
			slot:     domain.Slot{SlotNumber: "2", IsReserved: true},
			expected: domain.SlotStatusReserved,
		},
		{
			name:     "occupied slot",
			slot:     domain.Slot{SlotNumber: "3", IsOccupied: true},
			expected: domain.SlotStatusOccupied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.slot.Status())
		})
	}
}

func TestSlot_Reserve(t *testing.T) {
	t.Run("free slot becomes reserved", func(t *testing.T) {
		slot := domain.Slot{SlotNumber: "1"}

		ok := slot.Reserve()

		assert.True(t, ok)
		assert.True(t, slot.IsReserved)
		assert.False(t, slot.IsOccupied)
		assert.NoError(t, slot.Validate())
	})

	t.Run("occupied slot cannot be reserved", func(t *testing.T) {
		slot := domain.Slot{SlotNumber: "1", IsOccupied: true}

		ok := slot.Reserve()

		assert.False(t, ok)
		assert.False(t, slot.IsReserved)
		assert.True(t, slot.IsOccupied)
	})
}

func TestSlot_Occupy(t *testing.T) {
	// Occupation clears the reservation so the invariant holds
	slot := domain.Slot{SlotNumber: "1", IsReserved: true}

	slot.Occupy()

	assert.True(t, slot.IsOccupied)
	assert.False(t, slot.IsReserved)
	assert.NoError(t, slot.Validate())
}

func TestSlot_Release(t *testing.T) {
	slot := domain.Slot{SlotNumber: "1", IsOccupied: true}

	slot.Release()

	assert.True(t, slot.IsAvailable())

	// Releasing a released slot is a no-op
	slot.Release()
	assert.True(t, slot.IsAvailable())
}

func TestSlot_Validate(t *testing.T) {
	slot := domain.Slot{SlotNumber: "7", IsOccupied: true, IsReserved: true}

	err := slot.Validate()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "7")
}
