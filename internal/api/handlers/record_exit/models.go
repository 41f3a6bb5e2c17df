package record_exit

import (
	"time"

	recordExit "github.com/m04kA/SMC-ParkingService/internal/usecase/record_exit"
)

// RecordExitRequest HTTP request model
type RecordExitRequest struct {
	VehicleNumber string  `json:"vehicleNumber"`
	PaymentMethod *string `json:"paymentMethod,omitempty"`
}

// ExitResponse HTTP response model
type ExitResponse struct {
	TicketID        int64   `json:"ticketId"`
	BookingID       *int64  `json:"bookingId,omitempty"`
	SlotNumber      string  `json:"slotNumber"`
	VehicleNumber   string  `json:"vehicleNumber"`
	EntryTime       string  `json:"entryTime"`
	ExitTime        string  `json:"exitTime"`
	DurationMinutes int     `json:"durationMinutes"`
	FeeAmount       float64 `json:"feeAmount"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
// operatorID - аутентифицированный сотрудник, зафиксировавший выезд
func (r *RecordExitRequest) ToUseCaseRequest(operatorID int64) *recordExit.Request {
	return &recordExit.Request{
		VehicleNumber: r.VehicleNumber,
		OperatorID:    &operatorID,
		PaymentMethod: r.PaymentMethod,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *recordExit.Response) *ExitResponse {
	return &ExitResponse{
		TicketID:        resp.TicketID,
		BookingID:       resp.BookingID,
		SlotNumber:      resp.SlotNumber,
		VehicleNumber:   resp.VehicleNumber,
		EntryTime:       resp.EntryTime.Format(time.RFC3339),
		ExitTime:        resp.ExitTime.Format(time.RFC3339),
		DurationMinutes: resp.DurationMinutes,
		FeeAmount:       resp.FeeAmount,
	}
}
