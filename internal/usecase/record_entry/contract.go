package record_entry

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	FindHoldingByVehicle(ctx context.Context, vehicleNumber string) (*domain.Booking, error)
	SetArrived(ctx context.Context, id int64) error
}

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Slot, error)
	FindFirstFree(ctx context.Context) (*domain.Slot, error)
	UpdateFlags(ctx context.Context, id int64, isOccupied, isReserved bool) error
}

// TicketRepository интерфейс репозитория парковочных талонов
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error)
	GetOpenByVehicle(ctx context.Context, vehicleNumber string) (*domain.Ticket, error)
}

// MembershipRepository интерфейс репозитория членств
type MembershipRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*domain.Membership, error)
	UpdateFreeEntryCounters(ctx context.Context, userID int64, usedToday int, lastDate time.Time) error
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
