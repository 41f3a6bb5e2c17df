package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	FindHoldingByVehicle(ctx context.Context, vehicleNumber string) (*domain.Booking, error)
	ListOverlapping(ctx context.Context, start, end time.Time) ([]*domain.Booking, error)
}

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	ListUnoccupied(ctx context.Context) ([]*domain.Slot, error)
	UpdateFlags(ctx context.Context, id int64, isOccupied, isReserved bool) error
	CountByState(ctx context.Context) (*domain.StateCounts, error)
}

// HistoryRepository интерфейс журнала событий парковки
type HistoryRepository interface {
	Append(ctx context.Context, record *domain.HistoryRecord) (*domain.HistoryRecord, error)
}

// ArtifactGenerator интерфейс генератора PDF-квитанций с QR-кодом
type ArtifactGenerator interface {
	GenerateBookingSlip(booking *domain.Booking) error
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
