package record_entry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/booking"
	membershipRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/membership"
	slotRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/slot"
	ticketRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/ticket"
)

// UseCase use case регистрации въезда на парковку
type UseCase struct {
	bookingRepo    BookingRepository
	slotRepo       SlotRepository
	ticketRepo     TicketRepository
	membershipRepo MembershipRepository
	economicsRepo  EconomicsRepository
	historyRepo    HistoryRepository
	refresher      AvailabilityRefresher
	txManager      TransactionManager
	timeProvider   TimeProvider
	entryFee       float64
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	slotRepo SlotRepository,
	ticketRepo TicketRepository,
	membershipRepo MembershipRepository,
	economicsRepo EconomicsRepository,
	historyRepo HistoryRepository,
	refresher AvailabilityRefresher,
	txManager TransactionManager,
	entryFee float64,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:    bookingRepo,
		slotRepo:       slotRepo,
		ticketRepo:     ticketRepo,
		membershipRepo: membershipRepo,
		economicsRepo:  economicsRepo,
		historyRepo:    historyRepo,
		refresher:      refresher,
		txManager:      txManager,
		timeProvider:   &RealTimeProvider{},
		entryFee:       entryFee,
		logger:         logger,
	}
}

// Execute выполняет use case регистрации въезда
//
// Порядок выбора слота:
//  1. активное бронирование на этот номер транспорта
//  2. явно указанное бронирование
//  3. первый свободный слот
//
// Все проверки и записи выполняются в одной сериализуемой транзакции,
// поэтому два шлагбаума не могут посадить два транспорта на один слот
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RecordEntry: vehicle=%q, user=%v, booking=%v", req.VehicleNumber, req.UserID, req.BookingID)

	// 1. Валидация и нормализация номера транспорта
	vehicleNumber, err := domain.NormalizeVehicleNumber(req.VehicleNumber)
	if err != nil {
		uc.logger.Warn("RecordEntry: invalid vehicle number %q: %v", req.VehicleNumber, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidVehicleNumber, err)
	}

	now := uc.timeProvider.Now()
	var result *Response

	// 2. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2.1. Запрещаем повторный въезд: на один номер - один открытый талон
		openTicket, err := uc.ticketRepo.GetOpenByVehicle(txCtx, vehicleNumber)
		if err != nil && !errors.Is(err, ticketRepo.ErrTicketNotFound) {
			uc.logger.Error("RecordEntry: failed to check open ticket: %v", err)
			return fmt.Errorf("%w: failed to check open ticket: %v", ErrInternal, err)
		}
		if openTicket != nil {
			uc.logger.Warn("RecordEntry: vehicle=%s already holds open ticket id=%d", vehicleNumber, openTicket.ID)
			return ErrAlreadyParked
		}

		// 2.2. Находим бронирование для въезда
		booking, err := uc.resolveBooking(txCtx, vehicleNumber, req.BookingID)
		if err != nil {
			return err
		}

		// 2.3. Выбираем слот: слот бронирования или первый свободный
		slot, err := uc.resolveSlot(txCtx, booking)
		if err != nil {
			return err
		}

		// 2.4. Занимаем слот
		slot.Occupy()
		if err := uc.slotRepo.UpdateFlags(txCtx, slot.ID, slot.IsOccupied, slot.IsReserved); err != nil {
			uc.logger.Error("RecordEntry: failed to occupy slot id=%d: %v", slot.ID, err)
			return fmt.Errorf("%w: failed to occupy slot: %v", ErrInternal, err)
		}

		// 2.5. Активируем бронирование
		var bookingID *int64
		if booking != nil {
			if err := uc.bookingRepo.SetArrived(txCtx, booking.ID); err != nil {
				uc.logger.Error("RecordEntry: failed to mark booking id=%d arrived: %v", booking.ID, err)
				return fmt.Errorf("%w: failed to mark booking arrived: %v", ErrInternal, err)
			}
			bookingID = &booking.ID
		}

		// 2.6. Открываем талон
		ticket := &domain.Ticket{
			BookingID:     bookingID,
			SlotID:        &slot.ID,
			VehicleNumber: vehicleNumber,
			EntryTime:     now,
		}
		created, err := uc.ticketRepo.Create(txCtx, ticket)
		if err != nil {
			uc.logger.Error("RecordEntry: failed to create ticket: %v", err)
			return fmt.Errorf("%w: failed to create ticket: %v", ErrInternal, err)
		}

		// 2.7. Списываем въездной сбор или льготу по членству
		userID := req.UserID
		if userID == nil && booking != nil {
			userID = booking.UserID
		}

		entryFee, freeEntry, err := uc.chargeEntry(txCtx, vehicleNumber, userID, bookingID, &created.ID, req.PaymentMethod, now)
		if err != nil {
			return err
		}

		// 2.8. Записываем событие в журнал
		record := &domain.HistoryRecord{
			VehicleNumber: vehicleNumber,
			Action:        domain.ActionEntered,
			OccurredAt:    now,
			IsPrebooked:   booking != nil,
			UserID:        userID,
			OperatorID:    req.OperatorID,
			TicketID:      &created.ID,
			BookingID:     bookingID,
		}
		if _, err := uc.historyRepo.Append(txCtx, record); err != nil {
			uc.logger.Error("RecordEntry: failed to append history: %v", err)
			return fmt.Errorf("%w: failed to append history: %v", ErrInternal, err)
		}

		result = &Response{
			TicketID:      created.ID,
			SlotID:        slot.ID,
			SlotNumber:    slot.SlotNumber,
			BookingID:     bookingID,
			VehicleNumber: vehicleNumber,
			EntryTime:     now,
			EntryFee:      entryFee,
			FreeEntry:     freeEntry,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("RecordEntry: vehicle=%s entered slot=%s ticket=%d (freeEntry=%t)",
		vehicleNumber, result.SlotNumber, result.TicketID, result.FreeEntry)

	// 3. Сбрасываем кэш агрегатов, чтобы табло сразу показало занятость
	if uc.refresher != nil {
		if err := uc.refresher.ForceRefresh(ctx); err != nil {
			uc.logger.Warn("RecordEntry: failed to refresh availability cache: %v", err)
		}
	}

	return result, nil
}

// resolveBooking находит бронирование для въезда: сначала по номеру транспорта,
// затем по явно указанному ID
func (uc *UseCase) resolveBooking(ctx context.Context, vehicleNumber string, explicitID *int64) (*domain.Booking, error) {
	booking, err := uc.bookingRepo.FindHoldingByVehicle(ctx, vehicleNumber)
	if err != nil && !errors.Is(err, bookingRepo.ErrBookingNotFound) {
		uc.logger.Error("RecordEntry: failed to find booking by vehicle: %v", err)
		return nil, fmt.Errorf("%w: failed to find booking by vehicle: %v", ErrInternal, err)
	}
	if booking != nil {
		uc.logger.Info("RecordEntry: vehicle=%s matched booking id=%d", vehicleNumber, booking.ID)
		return booking, nil
	}

	if explicitID == nil {
		return nil, nil
	}

	booking, err = uc.bookingRepo.GetByID(ctx, *explicitID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("RecordEntry: booking id=%d not found", *explicitID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("RecordEntry: failed to get booking id=%d: %v", *explicitID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	if !booking.HoldsSlot() || booking.VehicleArrived {
		uc.logger.Warn("RecordEntry: booking id=%d not usable, status=%s", booking.ID, booking.Status)
		return nil, ErrBookingNotUsable
	}

	return booking, nil
}

// resolveSlot выбирает слот: закреплённый за бронированием или первый свободный
// Занятый слот бронирования - ошибка оператору, а не тихая пересадка:
// бронирование гарантирует конкретное место
// На свободный слот откатываемся, только если слот бронирования удалён
func (uc *UseCase) resolveSlot(ctx context.Context, booking *domain.Booking) (*domain.Slot, error) {
	if booking != nil && booking.SlotID != nil {
		slot, err := uc.slotRepo.GetByID(ctx, *booking.SlotID)
		if err != nil && !errors.Is(err, slotRepo.ErrSlotNotFound) {
			uc.logger.Error("RecordEntry: failed to get booked slot id=%d: %v", *booking.SlotID, err)
			return nil, fmt.Errorf("%w: failed to get booked slot: %v", ErrInternal, err)
		}
		if slot != nil {
			if slot.IsOccupied {
				uc.logger.Warn("RecordEntry: booked slot id=%d for booking id=%d is occupied", slot.ID, booking.ID)
				return nil, ErrSlotUnavailable
			}
			return slot, nil
		}
	}

	slot, err := uc.slotRepo.FindFirstFree(ctx)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			return nil, ErrNoSlotAvailable
		}
		uc.logger.Error("RecordEntry: failed to find free slot: %v", err)
		return nil, fmt.Errorf("%w: failed to find free slot: %v", ErrInternal, err)
	}

	return slot, nil
}

// chargeEntry списывает въездной сбор или льготу членства
// Активное членство даёт один бесплатный въезд в календарный день,
// счётчик сбрасывается при смене даты
func (uc *UseCase) chargeEntry(
	ctx context.Context,
	vehicleNumber string,
	userID *int64,
	bookingID *int64,
	ticketID *int64,
	paymentMethod *string,
	now time.Time,
) (float64, bool, error) {
	if userID != nil {
		member, err := uc.membershipRepo.GetByUserID(ctx, *userID)
		if err != nil && !errors.Is(err, membershipRepo.ErrMembershipNotFound) {
			uc.logger.Error("RecordEntry: failed to get membership for user=%d: %v", *userID, err)
			return 0, false, fmt.Errorf("%w: failed to get membership: %v", ErrInternal, err)
		}

		if member != nil && member.ConsumeFreeEntry(now) {
			if err := uc.membershipRepo.UpdateFreeEntryCounters(ctx, *userID, member.FreeEntriesUsedToday, *member.LastFreeEntryDate); err != nil {
				uc.logger.Error("RecordEntry: failed to update free entry counters for user=%d: %v", *userID, err)
				return 0, false, fmt.Errorf("%w: failed to update free entry counters: %v", ErrInternal, err)
			}

			record := &domain.EconomicRecord{
				VehicleNumber: vehicleNumber,
				Amount:        0,
				RecordType:    domain.RecordFreeEntry,
				PaymentMethod: domain.PaymentFree,
				IsPaid:        true,
				TicketID:      ticketID,
				BookingID:     bookingID,
				UserID:        userID,
			}
			if _, err := uc.economicsRepo.Create(ctx, record); err != nil {
				uc.logger.Error("RecordEntry: failed to create free entry record: %v", err)
				return 0, false, fmt.Errorf("%w: failed to create free entry record: %v", ErrInternal, err)
			}

			return 0, true, nil
		}
	}

	method := domain.PaymentCash
	if paymentMethod != nil {
		method = domain.PaymentMethod(*paymentMethod)
	}

	record := &domain.EconomicRecord{
		VehicleNumber: vehicleNumber,
		Amount:        uc.entryFee,
		RecordType:    domain.RecordEntryFee,
		PaymentMethod: method,
		IsPaid:        true,
		TicketID:      ticketID,
		BookingID:     bookingID,
		UserID:        userID,
	}
	if _, err := uc.economicsRepo.Create(ctx, record); err != nil {
		uc.logger.Error("RecordEntry: failed to create entry fee record: %v", err)
		return 0, false, fmt.Errorf("%w: failed to create entry fee record: %v", ErrInternal, err)
	}

	return uc.entryFee, false, nil
}
