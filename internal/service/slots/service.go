package slots

import (
	"context"
	"errors"
	"fmt"

	slotRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-ParkingService/internal/service/slots/models"
)

// Service сервис для работы с парковочными слотами
type Service struct {
	slotRepo SlotRepository
	logger   Logger
}

// NewService создает новый экземпляр сервиса слотов
func NewService(slotRepo SlotRepository, logger Logger) *Service {
	return &Service{
		slotRepo: slotRepo,
		logger:   logger,
	}
}

// EnsurePool создает пул слотов, если он ещё не создан
// Вызывается один раз при старте сервиса
func (s *Service) EnsurePool(ctx context.Context, totalSlots int) error {
	created, err := s.slotRepo.InitPool(ctx, totalSlots)
	if err != nil {
		s.logger.Error("EnsurePool: failed to init slot pool: %v", err)
		return fmt.Errorf("%w: EnsurePool - repository error: %v", ErrInternal, err)
	}

	if created > 0 {
		s.logger.Info("EnsurePool: created pool of %d slots", created)
	}

	return nil
}

// List возвращает все слоты с их статусами
func (s *Service) List(ctx context.Context) (*models.SlotListResponse, error) {
	slots, err := s.slotRepo.List(ctx)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainSlotList(slots), nil
}

// GetByNumber возвращает слот по его номеру
func (s *Service) GetByNumber(ctx context.Context, slotNumber string) (*models.SlotResponse, error) {
	slot, err := s.slotRepo.GetByNumber(ctx, slotNumber)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			s.logger.Warn("GetByNumber: slot number=%s not found", slotNumber)
			return nil, ErrSlotNotFound
		}
		s.logger.Error("GetByNumber: repository error for slot number=%s: %v", slotNumber, err)
		return nil, fmt.Errorf("%w: GetByNumber - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainSlot(slot), nil
}
