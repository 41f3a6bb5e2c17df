package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/booking"
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	slotRepo     SlotRepository
	historyRepo  HistoryRepository
	artifactGen  ArtifactGenerator
	refresher    AvailabilityRefresher
	txManager    TransactionManager
	timeProvider TimeProvider
	policy       domain.AdmissionPolicy
	graceWindow  time.Duration
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
// artifactGen и refresher могут быть nil, если квитанции или кэш отключены
func NewUseCase(
	bookingRepo BookingRepository,
	slotRepo SlotRepository,
	historyRepo HistoryRepository,
	artifactGen ArtifactGenerator,
	refresher AvailabilityRefresher,
	txManager TransactionManager,
	policy domain.AdmissionPolicy,
	graceMinutes int,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		slotRepo:     slotRepo,
		historyRepo:  historyRepo,
		artifactGen:  artifactGen,
		refresher:    refresher,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		policy:       policy,
		graceWindow:  time.Duration(graceMinutes) * time.Minute,
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования
// Использует сериализуемую транзакцию: проверка допуска, выбор слота и
// создание бронирования выполняются атомарно, поэтому параллельные запросы
// не могут превысить лимиты или зарезервировать один слот дважды
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: vehicle=%q, user=%v", req.VehicleNumber, req.UserID)

	// 1. Валидация входных данных и нормализация номера транспорта
	vehicleNumber, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Вычисляем окно бронирования
	now := uc.timeProvider.Now()
	startTime := now
	if req.StartTime != nil {
		startTime = *req.StartTime
	}
	if err := validateStartTime(startTime, now); err != nil {
		uc.logger.Warn("CreateBooking: start time validation failed: %v", err)
		return nil, err
	}
	endTime := startTime.Add(uc.graceWindow)

	// Гостю без идентификатора выдаём его сами, чтобы гость мог
	// обращаться к своему бронированию по стабильному ID
	guestID := req.GuestID
	if req.UserID == nil && guestID == nil {
		generated := uuid.NewString()
		guestID = &generated
	}

	var result *domain.Booking
	var slotNumber string

	// 3. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 3.1. Перепроверяем допуск по актуальным счётчикам слотов
		counts, err := uc.slotRepo.CountByState(txCtx)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to count slots: %v", err)
			return fmt.Errorf("%w: failed to count slots: %v", ErrInternal, err)
		}
		if err := evaluateAdmission(counts, uc.policy); err != nil {
			uc.logger.Warn("CreateBooking: admission denied: %v", err)
			return err
		}

		// 3.2. Запрещаем второе активное бронирование на тот же транспорт
		existing, err := uc.bookingRepo.FindHoldingByVehicle(txCtx, vehicleNumber)
		if err != nil && !errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Error("CreateBooking: failed to check existing booking: %v", err)
			return fmt.Errorf("%w: failed to check existing booking: %v", ErrInternal, err)
		}
		if existing != nil {
			uc.logger.Warn("CreateBooking: vehicle=%s already holds booking id=%d", vehicleNumber, existing.ID)
			return ErrVehicleAlreadyBooked
		}

		// 3.3. Получаем незанятые слоты и пересекающиеся бронирования с блокировкой
		slots, err := uc.slotRepo.ListUnoccupied(txCtx)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to list slots: %v", err)
			return fmt.Errorf("%w: failed to list slots: %v", ErrInternal, err)
		}

		overlapping, err := uc.bookingRepo.ListOverlapping(txCtx, startTime, endTime)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to list overlapping bookings: %v", err)
			return fmt.Errorf("%w: failed to list overlapping bookings: %v", ErrInternal, err)
		}

		// 3.4. Выбираем первый свободный слот
		slot := pickFreeSlot(slots, overlapping)
		if slot == nil {
			uc.logger.Warn("CreateBooking: no free slot for vehicle=%s", vehicleNumber)
			return ErrNoSlotAvailable
		}

		// 3.5. Резервируем слот
		if !slot.Reserve() {
			return ErrNoSlotAvailable
		}
		if err := uc.slotRepo.UpdateFlags(txCtx, slot.ID, slot.IsOccupied, slot.IsReserved); err != nil {
			uc.logger.Error("CreateBooking: failed to reserve slot id=%d: %v", slot.ID, err)
			return fmt.Errorf("%w: failed to reserve slot: %v", ErrInternal, err)
		}

		// 3.6. Создаем бронирование
		booking := &domain.Booking{
			UserID:        req.UserID,
			GuestID:       guestID,
			GuestEmail:    req.GuestEmail,
			GuestPhone:    req.GuestPhone,
			SlotID:        &slot.ID,
			VehicleNumber: vehicleNumber,
			StartTime:     startTime,
			EndTime:       endTime,
			Status:        domain.StatusConfirmed,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		// 3.7. Записываем событие в журнал
		record := &domain.HistoryRecord{
			VehicleNumber: vehicleNumber,
			Action:        domain.ActionBooked,
			OccurredAt:    now,
			IsPrebooked:   true,
			UserID:        req.UserID,
			BookingID:     &created.ID,
		}
		if _, err := uc.historyRepo.Append(txCtx, record); err != nil {
			uc.logger.Error("CreateBooking: failed to append history: %v", err)
			return fmt.Errorf("%w: failed to append history: %v", ErrInternal, err)
		}

		result = created
		slotNumber = slot.SlotNumber
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d code=%s slot=%s",
		result.ID, result.Code, slotNumber)

	// 4. Сбрасываем кэш агрегатов, чтобы табло сразу показало резерв
	if uc.refresher != nil {
		if err := uc.refresher.ForceRefresh(ctx); err != nil {
			uc.logger.Warn("CreateBooking: failed to refresh availability cache: %v", err)
		}
	}

	// 5. Генерируем квитанцию с QR-кодом в фоне: ошибка генерации не
	// отменяет уже созданное бронирование
	if uc.artifactGen != nil {
		bookingCopy := *result
		go func() {
			if err := uc.artifactGen.GenerateBookingSlip(&bookingCopy); err != nil {
				uc.logger.Warn("CreateBooking: failed to generate booking slip for id=%d: %v", bookingCopy.ID, err)
			}
		}()
	}

	return &Response{
		ID:             result.ID,
		Code:           result.Code,
		UserID:         result.UserID,
		GuestID:        result.GuestID,
		SlotID:         result.SlotID,
		SlotNumber:     slotNumber,
		VehicleNumber:  result.VehicleNumber,
		VehicleArrived: result.VehicleArrived,
		StartTime:      result.StartTime,
		EndTime:        result.EndTime,
		Status:         string(result.Status),
		CreatedAt:      result.CreatedAt,
		UpdatedAt:      result.UpdatedAt,
	}, nil
}
