package domain

import "fmt"

// Slot represents a physical parking slot
type Slot struct {
	ID         int64
	SlotNumber string
	IsOccupied bool
	IsReserved bool
}

// StateCounts holds aggregate slot counters.
// Reserved counts slots that are reserved but not occupied.
type StateCounts struct {
	Total    int
	Occupied int
	Reserved int
}

// SlotStatusLabel human-readable slot state
type SlotStatusLabel string

const (
	SlotStatusAvailable SlotStatusLabel = "available"
	SlotStatusReserved  SlotStatusLabel = "reserved"
	SlotStatusOccupied  SlotStatusLabel = "occupied"
)

// IsAvailable returns true if the slot is neither occupied nor reserved
func (s *Slot) IsAvailable() bool {
	return !s.IsOccupied && !s.IsReserved
}

// Status returns the display status of the slot.
// Occupation takes precedence over reservation.
func (s *Slot) Status() SlotStatusLabel {
	switch {
	case s.IsOccupied:
		return SlotStatusOccupied
	case s.IsReserved:
		return SlotStatusReserved
	default:
		return SlotStatusAvailable
	}
}

// Release marks the slot as fully available.
// Idempotent: releasing a released slot is a no-op.
func (s *Slot) Release() {
	s.IsOccupied = false
	s.IsReserved = false
}

// Reserve marks the slot as reserved for a booking.
// Returns false without mutating anything if the slot is occupied.
func (s *Slot) Reserve() bool {
	if s.IsOccupied {
		return false
	}
	s.IsReserved = true
	return true
}

// Occupy marks the slot as physically occupied.
// Occupation always wins over reservation, so the reserved flag is dropped.
func (s *Slot) Occupy() {
	s.IsOccupied = true
	s.IsReserved = false
}

// Validate checks the slot state invariant: a slot is never both
// occupied and reserved at the same time.
func (s *Slot) Validate() error {
	if s.IsOccupied && s.IsReserved {
		return fmt.Errorf("slot %s cannot be both occupied and reserved", s.SlotNumber)
	}
	return nil
}
