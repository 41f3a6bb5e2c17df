package domain

import (
	"fmt"
	"math"
	"time"
)

// Ticket represents actual physical occupancy of a slot from entry to exit
type Ticket struct {
	ID            int64
	BookingID     *int64
	SlotID        *int64
	VehicleNumber string

	EntryTime       time.Time
	ExitTime        *time.Time
	DurationMinutes *int

	FeeAmount float64
	FeePaid   bool
}

// IsOpen returns true if the vehicle has not exited yet
func (t *Ticket) IsOpen() bool {
	return t.ExitTime == nil
}

// Close sets the exit time and computes duration and fee.
// A ticket is closed exactly once; closing a closed ticket is an error.
func (t *Ticket) Close(exitTime time.Time, tariff Tariff) error {
	if !t.IsOpen() {
		return fmt.Errorf("ticket %d is already closed", t.ID)
	}
	if exitTime.Before(t.EntryTime) {
		return fmt.Errorf("ticket %d exit time %s is before entry time %s", t.ID, exitTime, t.EntryTime)
	}

	duration := exitTime.Sub(t.EntryTime)
	minutes := int(duration.Minutes())

	t.ExitTime = &exitTime
	t.DurationMinutes = &minutes
	t.FeeAmount = tariff.Fee(duration)
	return nil
}

// Tariff is the tiered parking fee schedule: a flat base fee covers the
// first hour, every additional hour is billed linearly (fractional hours
// billed proportionally).
type Tariff struct {
	BaseFee   float64 // Fee for the first hour (or any part of it)
	HourlyFee float64 // Fee per additional hour beyond the first
}

// Fee computes the parking fee for the given duration,
// rounded to 2 decimal places.
func (tr Tariff) Fee(duration time.Duration) float64 {
	hours := duration.Hours()
	additionalHours := math.Max(0, hours-1)
	return math.Round((tr.BaseFee+additionalHours*tr.HourlyFee)*100) / 100
}
