package record_exit

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
}

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Slot, error)
	UpdateFlags(ctx context.Context, id int64, isOccupied, isReserved bool) error
}

// TicketRepository интерфейс репозитория парковочных талонов
type TicketRepository interface {
	GetOpenByVehicle(ctx context.Context, vehicleNumber string) (*domain.Ticket, error)
	Close(ctx context.Context, id int64, exitTime time.Time, durationMinutes int, feeAmount float64) error
}

// EconomicsRepository интерфейс репозитория финансовых записей
type EconomicsRepository interface {
	Create(ctx context.Context, record *domain.EconomicRecord) (*domain.EconomicRecord, error)
}

// HistoryRepository интерфейс журнала событий парковки
type HistoryRepository interface {
	Append(ctx context.Context, record *domain.HistoryRecord) (*domain.HistoryRecord, error)
}

// AvailabilityRefresher интерфейс для сброса кэша агрегатов после записи
type AvailabilityRefresher interface {
	ForceRefresh(ctx context.Context) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
