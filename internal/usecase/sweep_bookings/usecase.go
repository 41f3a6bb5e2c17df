package sweep_bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	slotRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/slot"
)

// UseCase use case истечения просроченных бронирований
//
// Бронирование истекает, если транспорт не приехал до конца грейс-окна.
// Кандидаты набираются одним запросом без блокировок, затем каждое
// бронирование обрабатывается в отдельной короткой транзакции с повторной
// проверкой: между выборкой и обработкой транспорт мог успеть въехать
type UseCase struct {
	bookingRepo  BookingRepository
	slotRepo     SlotRepository
	historyRepo  HistoryRepository
	refresher    AvailabilityRefresher
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	slotRepo SlotRepository,
	historyRepo HistoryRepository,
	refresher AvailabilityRefresher,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		slotRepo:     slotRepo,
		historyRepo:  historyRepo,
		refresher:    refresher,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет проход по просроченным бронированиям
// Ошибка на одном бронировании не прерывает обработку остальных
func (uc *UseCase) Execute(ctx context.Context) (*Response, error) {
	now := uc.timeProvider.Now()

	// 1. Набираем кандидатов без блокировок
	ids, err := uc.bookingRepo.ListExpiredCandidateIDs(ctx, now)
	if err != nil {
		uc.logger.Error("SweepBookings: failed to list expired candidates: %v", err)
		return nil, fmt.Errorf("%w: failed to list expired candidates: %v", ErrInternal, err)
	}

	if len(ids) == 0 {
		return &Response{ExpiredCount: 0}, nil
	}

	uc.logger.Info("SweepBookings: found %d expired candidates", len(ids))

	// 2. Обрабатываем каждое бронирование в отдельной транзакции
	expired := 0
	for _, id := range ids {
		done, err := uc.expireBooking(ctx, id, now)
		if err != nil {
			uc.logger.Warn("SweepBookings: failed to expire booking id=%d: %v", id, err)
			continue
		}
		if done {
			expired++
		}
	}

	uc.logger.Info("SweepBookings: expired %d of %d candidates", expired, len(ids))

	// 3. Сбрасываем кэш агрегатов, если что-то освободили
	if expired > 0 && uc.refresher != nil {
		if err := uc.refresher.ForceRefresh(ctx); err != nil {
			uc.logger.Warn("SweepBookings: failed to refresh availability cache: %v", err)
		}
	}

	return &Response{ExpiredCount: expired}, nil
}

// expireBooking истекает одно бронирование в сериализуемой транзакции
// Возвращает false, если кандидат перестал подходить под условие истечения
func (uc *UseCase) expireBooking(ctx context.Context, id int64, now time.Time) (bool, error) {
	expired := false
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		expired = false

		// Перечитываем бронирование с блокировкой и перепроверяем условие:
		// кандидат мог успеть въехать или отмениться
		booking, err := uc.bookingRepo.GetByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("%w: get booking: %v", ErrInternal, err)
		}

		if !booking.ShouldExpireAt(now) {
			return nil
		}

		if err := uc.bookingRepo.UpdateStatus(txCtx, id, domain.StatusExpired); err != nil {
			return fmt.Errorf("%w: update status: %v", ErrInternal, err)
		}

		// Снимаем только резерв: флаг занятости принадлежит талонам
		if booking.SlotID != nil {
			slot, err := uc.slotRepo.GetByID(txCtx, *booking.SlotID)
			if err != nil && !errors.Is(err, slotRepo.ErrSlotNotFound) {
				return fmt.Errorf("%w: get slot: %v", ErrInternal, err)
			}
			if slot != nil && slot.IsReserved {
				if err := uc.slotRepo.UpdateFlags(txCtx, slot.ID, slot.IsOccupied, false); err != nil {
					return fmt.Errorf("%w: release slot: %v", ErrInternal, err)
				}
			}
		}

		record := &domain.HistoryRecord{
			VehicleNumber: booking.VehicleNumber,
			Action:        domain.ActionCancelled,
			OccurredAt:    now,
			IsPrebooked:   true,
			UserID:        booking.UserID,
			BookingID:     &booking.ID,
		}
		if _, err := uc.historyRepo.Append(txCtx, record); err != nil {
			return fmt.Errorf("%w: append history: %v", ErrInternal, err)
		}

		expired = true
		return nil
	})
	return expired, err
}
