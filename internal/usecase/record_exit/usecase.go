package record_exit

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	slotRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/slot"
	ticketRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/ticket"
)

// UseCase use case регистрации выезда с парковки
type UseCase struct {
	bookingRepo   BookingRepository
	slotRepo      SlotRepository
	ticketRepo    TicketRepository
	economicsRepo EconomicsRepository
	historyRepo   HistoryRepository
	refresher     AvailabilityRefresher
	txManager     TransactionManager
	timeProvider  TimeProvider
	tariff        domain.Tariff
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	slotRepo SlotRepository,
	ticketRepo TicketRepository,
	economicsRepo EconomicsRepository,
	historyRepo HistoryRepository,
	refresher AvailabilityRefresher,
	txManager TransactionManager,
	tariff domain.Tariff,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		slotRepo:      slotRepo,
		ticketRepo:    ticketRepo,
		economicsRepo: economicsRepo,
		historyRepo:   historyRepo,
		refresher:     refresher,
		txManager:     txManager,
		timeProvider:  &RealTimeProvider{},
		tariff:        tariff,
		logger:        logger,
	}
}

// Execute выполняет use case регистрации выезда
// Закрытие талона, освобождение слота и завершение бронирования выполняются
// в одной сериализуемой транзакции
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RecordExit: vehicle=%q", req.VehicleNumber)

	// 1. Валидация и нормализация номера транспорта
	vehicleNumber, err := domain.NormalizeVehicleNumber(req.VehicleNumber)
	if err != nil {
		uc.logger.Warn("RecordExit: invalid vehicle number %q: %v", req.VehicleNumber, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidVehicleNumber, err)
	}

	now := uc.timeProvider.Now()
	var result *Response

	// 2. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2.1. Находим открытый талон с блокировкой строки
		ticket, err := uc.ticketRepo.GetOpenByVehicle(txCtx, vehicleNumber)
		if err != nil {
			if errors.Is(err, ticketRepo.ErrTicketNotFound) {
				uc.logger.Warn("RecordExit: vehicle=%s has no open ticket", vehicleNumber)
				return ErrNoActiveEntry
			}
			uc.logger.Error("RecordExit: failed to get open ticket: %v", err)
			return fmt.Errorf("%w: failed to get open ticket: %v", ErrInternal, err)
		}

		// 2.2. Закрываем талон: считаем длительность и плату по тарифу
		if err := ticket.Close(now, uc.tariff); err != nil {
			uc.logger.Error("RecordExit: failed to close ticket id=%d: %v", ticket.ID, err)
			return fmt.Errorf("%w: failed to close ticket: %v", ErrInternal, err)
		}
		if err := uc.ticketRepo.Close(txCtx, ticket.ID, *ticket.ExitTime, *ticket.DurationMinutes, ticket.FeeAmount); err != nil {
			uc.logger.Error("RecordExit: failed to persist closed ticket id=%d: %v", ticket.ID, err)
			return fmt.Errorf("%w: failed to persist closed ticket: %v", ErrInternal, err)
		}

		// 2.3. Освобождаем слот от занятости
		// Флаг резерва не трогаем: он принадлежит другому бронированию,
		// если успело появиться
		var slotNumber string
		if ticket.SlotID != nil {
			slot, err := uc.slotRepo.GetByID(txCtx, *ticket.SlotID)
			if err != nil && !errors.Is(err, slotRepo.ErrSlotNotFound) {
				uc.logger.Error("RecordExit: failed to get slot id=%d: %v", *ticket.SlotID, err)
				return fmt.Errorf("%w: failed to get slot: %v", ErrInternal, err)
			}
			if slot != nil {
				if err := uc.slotRepo.UpdateFlags(txCtx, slot.ID, false, slot.IsReserved); err != nil {
					uc.logger.Error("RecordExit: failed to release slot id=%d: %v", slot.ID, err)
					return fmt.Errorf("%w: failed to release slot: %v", ErrInternal, err)
				}
				slotNumber = slot.SlotNumber
			}
		}

		// 2.4. Завершаем связанное бронирование
		var userID *int64
		if ticket.BookingID != nil {
			booking, err := uc.bookingRepo.GetByID(txCtx, *ticket.BookingID)
			if err != nil {
				uc.logger.Error("RecordExit: failed to get booking id=%d: %v", *ticket.BookingID, err)
				return fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
			}
			userID = booking.UserID
			if !booking.IsTerminal() {
				if err := uc.bookingRepo.UpdateStatus(txCtx, booking.ID, domain.StatusCompleted); err != nil {
					uc.logger.Error("RecordExit: failed to complete booking id=%d: %v", booking.ID, err)
					return fmt.Errorf("%w: failed to complete booking: %v", ErrInternal, err)
				}
			}
		}

		// 2.5. Создаем финансовую запись об оплате стоянки
		method := domain.PaymentCash
		if req.PaymentMethod != nil {
			method = domain.PaymentMethod(*req.PaymentMethod)
		}
		economicRecord := &domain.EconomicRecord{
			VehicleNumber: vehicleNumber,
			Amount:        ticket.FeeAmount,
			RecordType:    domain.RecordExitFee,
			PaymentMethod: method,
			IsPaid:        true,
			TicketID:      &ticket.ID,
			BookingID:     ticket.BookingID,
			UserID:        userID,
		}
		if _, err := uc.economicsRepo.Create(txCtx, economicRecord); err != nil {
			uc.logger.Error("RecordExit: failed to create exit fee record: %v", err)
			return fmt.Errorf("%w: failed to create exit fee record: %v", ErrInternal, err)
		}

		// 2.6. Записываем событие в журнал
		historyRecord := &domain.HistoryRecord{
			VehicleNumber: vehicleNumber,
			Action:        domain.ActionExited,
			OccurredAt:    now,
			IsPrebooked:   ticket.BookingID != nil,
			UserID:        userID,
			OperatorID:    req.OperatorID,
			TicketID:      &ticket.ID,
			BookingID:     ticket.BookingID,
		}
		if _, err := uc.historyRepo.Append(txCtx, historyRecord); err != nil {
			uc.logger.Error("RecordExit: failed to append history: %v", err)
			return fmt.Errorf("%w: failed to append history: %v", ErrInternal, err)
		}

		result = &Response{
			TicketID:        ticket.ID,
			BookingID:       ticket.BookingID,
			SlotNumber:      slotNumber,
			VehicleNumber:   vehicleNumber,
			EntryTime:       ticket.EntryTime,
			ExitTime:        *ticket.ExitTime,
			DurationMinutes: *ticket.DurationMinutes,
			FeeAmount:       ticket.FeeAmount,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("RecordExit: vehicle=%s exited, ticket=%d, duration=%dmin, fee=%.2f",
		vehicleNumber, result.TicketID, result.DurationMinutes, result.FeeAmount)

	// 3. Сбрасываем кэш агрегатов, чтобы табло сразу показало свободный слот
	if uc.refresher != nil {
		if err := uc.refresher.ForceRefresh(ctx); err != nil {
			uc.logger.Warn("RecordExit: failed to refresh availability cache: %v", err)
		}
	}

	return result, nil
}
