package tickets

import (
	"context"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// TicketRepository интерфейс репозитория парковочных талонов
type TicketRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	ListByVehicle(ctx context.Context, vehicleNumber string, limit uint64) ([]*domain.Ticket, error)
}

// HistoryRepository интерфейс журнала событий парковки
type HistoryRepository interface {
	List(ctx context.Context, filter domain.HistoryFilter) ([]*domain.HistoryRecord, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
