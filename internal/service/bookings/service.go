package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/booking"
	slotRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-ParkingService/internal/service/bookings/models"
)

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo  BookingRepository
	slotRepo     SlotRepository
	historyRepo  HistoryRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	slotRepo SlotRepository,
	historyRepo HistoryRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		slotRepo:     slotRepo,
		historyRepo:  historyRepo,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// GetByID получает бронирование по ID
// Проверяет права доступа - пользователь может видеть только своё бронирование
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, userID)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if err := s.checkUserAccess(booking, userID); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, err
	}

	return models.FromDomainBooking(booking), nil
}

// GetUserBookings получает историю бронирований пользователя
// Опционально фильтрует по статусу
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%d, status=%v", req.UserID, req.Status)

	// Конвертируем статус из строки в domain.BookingStatus
	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserBookings: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	bookings, err := s.bookingRepo.GetByUserID(ctx, req.UserID, domainStatus)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserBookings: successfully fetched %d bookings for user=%d", len(bookings), req.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// Cancel отменяет бронирование и освобождает зарезервированный слот
// Пользователь может отменить только своё бронирование
// Выполняется в serializable транзакции, чтобы отмена и освобождение слота
// были атомарны относительно параллельных въездов и создания бронирований
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) error {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", bookingID, req.UserID)

	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		// 1. Получаем бронирование с блокировкой строки
		booking, err := s.bookingRepo.GetByID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: Cancel - get booking: %v", ErrInternal, err)
		}

		// 2. Проверяем права доступа
		if err := s.checkUserAccess(booking, req.UserID); err != nil {
			return err
		}

		// 3. Проверяем, можно ли отменить бронирование
		if !booking.CanBeCancelled() {
			return ErrCannotCancel
		}

		now := s.timeProvider.Now()

		// 4. Отменяем бронирование
		if err := s.bookingRepo.Cancel(ctx, bookingID, now); err != nil {
			return fmt.Errorf("%w: Cancel - cancel booking: %v", ErrInternal, err)
		}

		// 5. Безусловно освобождаем слот бронирования: снимаются оба флага,
		// включая занятость активного бронирования с уже въехавшим транспортом
		if booking.SlotID != nil {
			slot, err := s.slotRepo.GetByID(ctx, *booking.SlotID)
			if err != nil && !errors.Is(err, slotRepo.ErrSlotNotFound) {
				return fmt.Errorf("%w: Cancel - get slot: %v", ErrInternal, err)
			}
			if slot != nil && (slot.IsReserved || slot.IsOccupied) {
				if err := s.slotRepo.UpdateFlags(ctx, slot.ID, false, false); err != nil {
					return fmt.Errorf("%w: Cancel - release slot: %v", ErrInternal, err)
				}
			}
		}

		// 6. Записываем событие в журнал
		record := &domain.HistoryRecord{
			VehicleNumber: booking.VehicleNumber,
			Action:        domain.ActionCancelled,
			OccurredAt:    now,
			IsPrebooked:   true,
			UserID:        booking.UserID,
			BookingID:     &booking.ID,
		}
		if _, err := s.historyRepo.Append(ctx, record); err != nil {
			return fmt.Errorf("%w: Cancel - append history: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, ErrBookingNotFound) || errors.Is(err, ErrAccessDenied) || errors.Is(err, ErrCannotCancel) {
			s.logger.Warn("Cancel: booking id=%d not cancelled: %v", bookingID, err)
			return err
		}
		s.logger.Error("Cancel: transaction failed for booking id=%d: %v", bookingID, err)
		return err
	}

	s.logger.Info("Cancel: successfully cancelled booking id=%d", bookingID)
	return nil
}

// checkUserAccess проверяет, что пользователь имеет доступ к бронированию
// Гостевые бронирования доступны по идентификатору без проверки владельца
func (s *Service) checkUserAccess(booking *domain.Booking, userID int64) error {
	if booking.IsGuest() {
		return nil
	}

	if booking.UserID != nil && *booking.UserID == userID {
		return nil
	}

	return ErrAccessDenied
}
