package create_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	createBooking "github.com/m04kA/SMC-ParkingService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-ParkingService/pkg/txmanager"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidStartTime     = "некорректный формат времени начала, ожидается RFC3339"
	msgInvalidVehicleNumber = "некорректный номер транспортного средства"
	msgGuestContactRequired = "для гостевого бронирования укажите email или телефон"
	msgVehicleAlreadyBooked = "на этот номер уже есть активное бронирование"
	msgCapacityExceeded     = "бронирование недоступно: парковка переполнена"
	msgNoSlotAvailable      = "нет свободных слотов"
	msgContention           = "слишком много одновременных запросов, повторите попытку"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
// Доступен и гостям: заголовок X-User-ID опционален
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Извлекаем опциональный ID пользователя из заголовка
	var userID *int64
	if userIDStr := r.Header.Get("X-User-ID"); userIDStr != "" {
		parsed, err := strconv.ParseInt(userIDStr, 10, 64)
		if err != nil || parsed <= 0 {
			h.logger.Warn("POST /bookings - Invalid X-User-ID header: %q", userIDStr)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)
			return
		}
		userID = &parsed
	}

	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse start time: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStartTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrInvalidVehicleNumber):
			h.logger.Warn("POST /bookings - Invalid vehicle number: %q", req.VehicleNumber)
			handlers.RespondBadRequest(w, msgInvalidVehicleNumber)

		case errors.Is(err, createBooking.ErrGuestContactRequired):
			h.logger.Warn("POST /bookings - Guest contact missing")
			handlers.RespondBadRequest(w, msgGuestContactRequired)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		case errors.Is(err, createBooking.ErrVehicleAlreadyBooked):
			h.logger.Warn("POST /bookings - Vehicle already booked: %q", req.VehicleNumber)
			handlers.RespondConflict(w, msgVehicleAlreadyBooked)

		case errors.Is(err, createBooking.ErrCapacityExceeded):
			h.logger.Warn("POST /bookings - Capacity exceeded")
			handlers.RespondConflict(w, msgCapacityExceeded)

		case errors.Is(err, createBooking.ErrNoSlotAvailable):
			h.logger.Warn("POST /bookings - No slot available")
			handlers.RespondConflict(w, msgNoSlotAvailable)

		case errors.Is(err, txmanager.ErrContention):
			h.logger.Warn("POST /bookings - Transaction contention: %v", err)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgContention)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: vehicle=%q, error=%v", req.VehicleNumber, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, code=%s", result.ID, result.Code)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
