package get_vehicle_tickets

import (
	"context"

	"github.com/m04kA/SMC-ParkingService/internal/service/tickets/models"
)

type TicketService interface {
	GetVehicleTickets(ctx context.Context, vehicleNumber string, limit int) (*models.TicketListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
