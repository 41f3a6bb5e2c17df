package get_ticket

import (
	"context"

	"github.com/m04kA/SMC-ParkingService/internal/service/tickets/models"
)

type TicketService interface {
	GetByID(ctx context.Context, id int64) (*models.TicketResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
