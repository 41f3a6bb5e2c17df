package domain

import "time"

// HistoryAction kind of audited parking event
type HistoryAction string

const (
	ActionEntered   HistoryAction = "entered"
	ActionExited    HistoryAction = "exited"
	ActionBooked    HistoryAction = "booked"
	ActionCancelled HistoryAction = "cancelled"
)

// HistoryRecord is an append-only audit entry.
// Records are never mutated; linkage references are weak (nullable).
type HistoryRecord struct {
	ID            int64
	VehicleNumber string
	Action        HistoryAction
	OccurredAt    time.Time
	IsPrebooked   bool
	UserID        *int64
	OperatorID    *int64 // Staff member who recorded a gate event, nil for automated actions
	TicketID      *int64
	BookingID     *int64
}

// HistoryFilter filters history listings
type HistoryFilter struct {
	VehicleNumber *string
	Action        *HistoryAction
	From          *time.Time
	To            *time.Time
	Limit         int
}
