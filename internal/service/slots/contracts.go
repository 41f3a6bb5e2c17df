package slots

import (
	"context"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	InitPool(ctx context.Context, totalSlots int) (int, error)
	GetByID(ctx context.Context, id int64) (*domain.Slot, error)
	GetByNumber(ctx context.Context, slotNumber string) (*domain.Slot, error)
	List(ctx context.Context) ([]*domain.Slot, error)
	ListUnoccupied(ctx context.Context) ([]*domain.Slot, error)
	CountByState(ctx context.Context) (*domain.StateCounts, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
