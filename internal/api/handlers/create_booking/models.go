package create_booking

import (
	"time"

	createBooking "github.com/m04kA/SMC-ParkingService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	GuestID       *string `json:"guestId,omitempty"`
	GuestEmail    *string `json:"guestEmail,omitempty"`
	GuestPhone    *string `json:"guestPhone,omitempty"`
	VehicleNumber string  `json:"vehicleNumber"`
	StartTime     *string `json:"startTime,omitempty"` // ISO 8601, по умолчанию - сейчас
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID             int64   `json:"id"`
	Code           string  `json:"code"`
	UserID         *int64  `json:"userId,omitempty"`
	GuestID        *string `json:"guestId,omitempty"`
	SlotID         *int64  `json:"slotId,omitempty"`
	SlotNumber     string  `json:"slotNumber"`
	VehicleNumber  string  `json:"vehicleNumber"`
	VehicleArrived bool    `json:"vehicleArrived"`
	StartTime      string  `json:"startTime"`
	EndTime        string  `json:"endTime"`
	Status         string  `json:"status"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
// userID передается из заголовка X-User-ID (nil для гостя)
func (r *CreateBookingRequest) ToUseCaseRequest(userID *int64) (*createBooking.Request, error) {
	var startTime *time.Time
	if r.StartTime != nil && *r.StartTime != "" {
		parsed, err := time.Parse(time.RFC3339, *r.StartTime)
		if err != nil {
			return nil, err
		}
		startTime = &parsed
	}

	return &createBooking.Request{
		UserID:        userID,
		GuestID:       r.GuestID,
		GuestEmail:    r.GuestEmail,
		GuestPhone:    r.GuestPhone,
		VehicleNumber: r.VehicleNumber,
		StartTime:     startTime,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:             resp.ID,
		Code:           resp.Code,
		UserID:         resp.UserID,
		GuestID:        resp.GuestID,
		SlotID:         resp.SlotID,
		SlotNumber:     resp.SlotNumber,
		VehicleNumber:  resp.VehicleNumber,
		VehicleArrived: resp.VehicleArrived,
		StartTime:      resp.StartTime.Format(time.RFC3339),
		EndTime:        resp.EndTime.Format(time.RFC3339),
		Status:         resp.Status,
		CreatedAt:      resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      resp.UpdatedAt.Format(time.RFC3339),
	}
}
