package record_exit

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	recordExit "github.com/m04kA/SMC-ParkingService/internal/usecase/record_exit"
	"github.com/m04kA/SMC-ParkingService/pkg/txmanager"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidVehicleNumber = "некорректный номер транспортного средства"
	msgNoActiveEntry        = "транспорт не находится на парковке"
	msgMissingOperator      = "отсутствует ID оператора"
	msgContention           = "слишком много одновременных запросов, повторите попытку"
)

type Handler struct {
	useCase RecordExitUseCase
	logger  Logger
}

func NewHandler(useCase RecordExitUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/gate/exit
// Оператор шлагбаума берется из аутентифицированного X-User-ID
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req RecordExitRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /gate/exit - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	operatorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /gate/exit - Missing operator ID")
		handlers.RespondUnauthorized(w, msgMissingOperator)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(operatorID))
	if err != nil {
		switch {
		case errors.Is(err, recordExit.ErrInvalidVehicleNumber):
			h.logger.Warn("POST /gate/exit - Invalid vehicle number: %q", req.VehicleNumber)
			handlers.RespondBadRequest(w, msgInvalidVehicleNumber)

		case errors.Is(err, recordExit.ErrNoActiveEntry):
			h.logger.Warn("POST /gate/exit - No active entry: vehicle=%q", req.VehicleNumber)
			handlers.RespondNotFound(w, msgNoActiveEntry)

		case errors.Is(err, txmanager.ErrContention):
			h.logger.Warn("POST /gate/exit - Transaction contention: %v", err)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgContention)

		default:
			h.logger.Error("POST /gate/exit - Failed to record exit: vehicle=%q, error=%v", req.VehicleNumber, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /gate/exit - Exit recorded: vehicle=%s, ticket_id=%d, fee=%.2f",
		result.VehicleNumber, result.TicketID, result.FeeAmount)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
