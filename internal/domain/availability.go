package domain

import "time"

// SlotStatusEntry per-slot status line for dashboards
type SlotStatusEntry struct {
	SlotNumber string
	Status     SlotStatusLabel
}

// SlotMetrics aggregate snapshot of the slot fleet
type SlotMetrics struct {
	TotalSlots       int
	OccupiedSlots    int
	ReservedSlots    int // Reserved and not occupied
	AvailableSlots   int
	OccupancyPercent float64
	Slots            []SlotStatusEntry
	UpdatedAt        time.Time
}

// Availability is the admission decision snapshot exposed to callers
type Availability struct {
	Enabled           bool
	Reason            *string // Set when booking is disabled
	RemainingBookable int
	TotalSlots        int
	OccupiedSlots     int
	ReservedSlots     int
	AvailableSlots    int
	OccupancyPercent  float64
	AsOf              time.Time
}

// AdmissionPolicy percentage-based capacity caps for new bookings
type AdmissionPolicy struct {
	MaxBookablePercent  int // Share of the fleet that may be reserved for bookings
	MaxOccupancyPercent int // Occupancy at or above which booking is disabled
}

// MaxBookableSlots absolute bookable cap for the given fleet size
func (p AdmissionPolicy) MaxBookableSlots(totalSlots int) int {
	return totalSlots * p.MaxBookablePercent / 100
}

// Evaluate computes the admission decision from an aggregate snapshot
func (p AdmissionPolicy) Evaluate(m SlotMetrics) Availability {
	availability := Availability{
		Enabled:          true,
		TotalSlots:       m.TotalSlots,
		OccupiedSlots:    m.OccupiedSlots,
		ReservedSlots:    m.ReservedSlots,
		AvailableSlots:   m.AvailableSlots,
		OccupancyPercent: m.OccupancyPercent,
		AsOf:             m.UpdatedAt,
	}

	if m.OccupancyPercent >= float64(p.MaxOccupancyPercent) {
		availability.Enabled = false
		reason := "parking occupancy is too high for new bookings"
		availability.Reason = &reason
	}

	remaining := p.MaxBookableSlots(m.TotalSlots) - m.ReservedSlots
	if remaining < 0 {
		remaining = 0
	}
	availability.RemainingBookable = remaining

	return availability
}
