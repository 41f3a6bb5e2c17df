package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusConfirmed BookingStatus = "confirmed"
	StatusActive    BookingStatus = "active"
	StatusExpired   BookingStatus = "expired"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

// Booking represents a time-boxed reservation of a parking slot for a vehicle
type Booking struct {
	ID   int64
	Code string // Stable public reference, e.g. "BOOK-2026-0042"

	// Owner: either a registered user or a guest with contact details
	UserID     *int64
	GuestID    *string
	GuestEmail *string
	GuestPhone *string

	SlotID         *int64 // Nullable: slot deletion detaches the booking
	VehicleNumber  string // Normalized: uppercase alphanumeric
	VehicleArrived bool

	StartTime time.Time
	EndTime   time.Time // StartTime + grace window

	Status      BookingStatus
	CancelledAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsGuest returns true if the booking was made without a registered user
func (b *Booking) IsGuest() bool {
	return b.UserID == nil
}

// IsTerminal returns true if the booking reached a final state
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusExpired || b.Status == StatusCancelled || b.Status == StatusCompleted
}

// HoldsSlot returns true if the booking currently holds its slot
// (confirmed or active)
func (b *Booking) HoldsSlot() bool {
	return b.Status == StatusConfirmed || b.Status == StatusActive
}

// CanBeCancelled returns true if the booking can still be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.HoldsSlot()
}

// ShouldExpireAt returns true if the booking missed its grace window at now:
// still confirmed, vehicle never arrived, window elapsed.
func (b *Booking) ShouldExpireAt(now time.Time) bool {
	return b.Status == StatusConfirmed && !b.VehicleArrived && now.After(b.EndTime)
}

// MarkArrived transitions confirmed -> active when the vehicle shows up
func (b *Booking) MarkArrived() error {
	if !b.HoldsSlot() {
		return fmt.Errorf("booking %d cannot transition to active from %s", b.ID, b.Status)
	}
	b.VehicleArrived = true
	b.Status = StatusActive
	return nil
}

// MarkExpired transitions to the terminal expired state
func (b *Booking) MarkExpired() error {
	if b.IsTerminal() {
		return fmt.Errorf("booking %d is already in terminal state %s", b.ID, b.Status)
	}
	b.Status = StatusExpired
	return nil
}

// MarkCancelled transitions to the terminal cancelled state
func (b *Booking) MarkCancelled(now time.Time) error {
	if b.IsTerminal() {
		return fmt.Errorf("booking %d is already in terminal state %s", b.ID, b.Status)
	}
	b.Status = StatusCancelled
	b.CancelledAt = &now
	return nil
}

// MarkCompleted transitions to the terminal completed state
func (b *Booking) MarkCompleted() error {
	if b.IsTerminal() {
		return fmt.Errorf("booking %d is already in terminal state %s", b.ID, b.Status)
	}
	b.Status = StatusCompleted
	return nil
}

var (
	vehicleHasLetter = regexp.MustCompile(`[A-Z]`)
	vehicleHasDigit  = regexp.MustCompile(`[0-9]`)
	vehicleValid     = regexp.MustCompile(`^[A-Z0-9]+$`)
	vehicleSpaces    = regexp.MustCompile(`\s+`)
)

// NormalizeVehicleNumber strips whitespace, upper-cases and validates a
// vehicle identifier. Rules: at most MaxVehicleNumberLength characters,
// alphanumeric only, at least one letter and one digit.
func NormalizeVehicleNumber(raw string) (string, error) {
	cleaned := vehicleSpaces.ReplaceAllString(strings.ToUpper(raw), "")

	if cleaned == "" {
		return "", fmt.Errorf("vehicle number is required")
	}
	if len(cleaned) > MaxVehicleNumberLength {
		return "", fmt.Errorf("vehicle number cannot exceed %d characters", MaxVehicleNumberLength)
	}
	if !vehicleValid.MatchString(cleaned) {
		return "", fmt.Errorf("vehicle number can only contain letters and numbers")
	}
	if !vehicleHasLetter.MatchString(cleaned) || !vehicleHasDigit.MatchString(cleaned) {
		return "", fmt.Errorf("vehicle number must contain at least one letter and one number")
	}

	return cleaned, nil
}
