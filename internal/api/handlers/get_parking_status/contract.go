package get_parking_status

import (
	"context"

	"github.com/m04kA/SMC-ParkingService/internal/service/availability/models"
)

type AvailabilityService interface {
	GetMetrics(ctx context.Context) (*models.MetricsResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
