package domain

// Default configuration values
const (
	DefaultTotalSlots          = 26
	DefaultGraceMinutes        = 15 // Non-arrival window before a booking expires
	DefaultMaxBookablePercent  = 30
	DefaultMaxOccupancyPercent = 60
	DefaultBaseFee             = 2.00
	DefaultHourlyFee           = 1.00
	DefaultEntryFee            = 30.00 // Flat gate charge recorded on entry
	DefaultMetricsCacheSeconds = 5
)

// Business validation constants
const (
	MaxVehicleNumberLength = 10
	MaxFreeEntriesPerDay   = 1
)

// Time format constants
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// HoldingStatuses booking statuses that keep a slot held
// Used when checking for overlapping bookings on a slot
var HoldingStatuses = []BookingStatus{
	StatusConfirmed,
	StatusActive,
}

// TerminalStatuses final booking statuses
var TerminalStatuses = []BookingStatus{
	StatusExpired,
	StatusCancelled,
	StatusCompleted,
}
