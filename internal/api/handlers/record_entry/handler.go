package record_entry

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	recordEntry "github.com/m04kA/SMC-ParkingService/internal/usecase/record_entry"
	"github.com/m04kA/SMC-ParkingService/pkg/txmanager"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidVehicleNumber = "некорректный номер транспортного средства"
	msgAlreadyParked        = "транспорт уже находится на парковке"
	msgBookingNotFound      = "бронирование не найдено"
	msgBookingNotUsable     = "бронирование нельзя использовать для въезда"
	msgSlotUnavailable      = "забронированный слот уже занят"
	msgNoSlotAvailable      = "нет свободных слотов"
	msgMissingOperator      = "отсутствует ID оператора"
	msgContention           = "слишком много одновременных запросов, повторите попытку"
)

type Handler struct {
	useCase RecordEntryUseCase
	logger  Logger
}

func NewHandler(useCase RecordEntryUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/gate/entry
// Оператор шлагбаума берется из аутентифицированного X-User-ID
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req RecordEntryRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /gate/entry - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	operatorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /gate/entry - Missing operator ID")
		handlers.RespondUnauthorized(w, msgMissingOperator)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(operatorID))
	if err != nil {
		switch {
		case errors.Is(err, recordEntry.ErrInvalidVehicleNumber):
			h.logger.Warn("POST /gate/entry - Invalid vehicle number: %q", req.VehicleNumber)
			handlers.RespondBadRequest(w, msgInvalidVehicleNumber)

		case errors.Is(err, recordEntry.ErrAlreadyParked):
			h.logger.Warn("POST /gate/entry - Already parked: vehicle=%q", req.VehicleNumber)
			handlers.RespondConflict(w, msgAlreadyParked)

		case errors.Is(err, recordEntry.ErrBookingNotFound):
			h.logger.Warn("POST /gate/entry - Booking not found: booking_id=%v", req.BookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, recordEntry.ErrBookingNotUsable):
			h.logger.Warn("POST /gate/entry - Booking not usable: booking_id=%v", req.BookingID)
			handlers.RespondConflict(w, msgBookingNotUsable)

		case errors.Is(err, recordEntry.ErrSlotUnavailable):
			h.logger.Warn("POST /gate/entry - Booked slot occupied: vehicle=%q, booking_id=%v", req.VehicleNumber, req.BookingID)
			handlers.RespondConflict(w, msgSlotUnavailable)

		case errors.Is(err, recordEntry.ErrNoSlotAvailable):
			h.logger.Warn("POST /gate/entry - No slot available: vehicle=%q", req.VehicleNumber)
			handlers.RespondConflict(w, msgNoSlotAvailable)

		case errors.Is(err, txmanager.ErrContention):
			h.logger.Warn("POST /gate/entry - Transaction contention: %v", err)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgContention)

		default:
			h.logger.Error("POST /gate/entry - Failed to record entry: vehicle=%q, error=%v", req.VehicleNumber, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /gate/entry - Entry recorded: vehicle=%s, slot=%s, ticket_id=%d",
		result.VehicleNumber, result.SlotNumber, result.TicketID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
