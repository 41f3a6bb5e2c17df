package record_entry

import (
	"time"

	recordEntry "github.com/m04kA/SMC-ParkingService/internal/usecase/record_entry"
)

// RecordEntryRequest HTTP request model
type RecordEntryRequest struct {
	VehicleNumber string  `json:"vehicleNumber"`
	UserID        *int64  `json:"userId,omitempty"`
	BookingID     *int64  `json:"bookingId,omitempty"`
	PaymentMethod *string `json:"paymentMethod,omitempty"`
}

// EntryResponse HTTP response model
type EntryResponse struct {
	TicketID      int64   `json:"ticketId"`
	SlotID        int64   `json:"slotId"`
	SlotNumber    string  `json:"slotNumber"`
	BookingID     *int64  `json:"bookingId,omitempty"`
	VehicleNumber string  `json:"vehicleNumber"`
	EntryTime     string  `json:"entryTime"`
	EntryFee      float64 `json:"entryFee"`
	FreeEntry     bool    `json:"freeEntry"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
// operatorID - аутентифицированный сотрудник, зафиксировавший въезд
func (r *RecordEntryRequest) ToUseCaseRequest(operatorID int64) *recordEntry.Request {
	return &recordEntry.Request{
		VehicleNumber: r.VehicleNumber,
		UserID:        r.UserID,
		BookingID:     r.BookingID,
		OperatorID:    &operatorID,
		PaymentMethod: r.PaymentMethod,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *recordEntry.Response) *EntryResponse {
	return &EntryResponse{
		TicketID:      resp.TicketID,
		SlotID:        resp.SlotID,
		SlotNumber:    resp.SlotNumber,
		BookingID:     resp.BookingID,
		VehicleNumber: resp.VehicleNumber,
		EntryTime:     resp.EntryTime.Format(time.RFC3339),
		EntryFee:      resp.EntryFee,
		FreeEntry:     resp.FreeEntry,
	}
}
