package sweep_bookings

import (
	"context"

	sweepBookings "github.com/m04kA/SMC-ParkingService/internal/usecase/sweep_bookings"
)

type SweepBookingsUseCase interface {
	Execute(ctx context.Context) (*sweepBookings.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
