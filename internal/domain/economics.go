package domain

import "time"

// EconomicRecordType kind of financial transaction
type EconomicRecordType string

const (
	RecordEntryFee  EconomicRecordType = "entry_fee"
	RecordExitFee   EconomicRecordType = "exit_fee"
	RecordFreeEntry EconomicRecordType = "free_entry"
)

// PaymentMethod how a transaction was settled
type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "cash"
	PaymentDigital PaymentMethod = "digital"
	PaymentCard    PaymentMethod = "card"
	PaymentFree    PaymentMethod = "free"
)

// EconomicRecord is a financial tracking entry created on gate events
type EconomicRecord struct {
	ID            int64
	VehicleNumber string
	Amount        float64
	RecordType    EconomicRecordType
	PaymentMethod PaymentMethod
	IsPaid        bool

	TicketID  *int64
	BookingID *int64
	UserID    *int64

	CreatedAt time.Time
}
