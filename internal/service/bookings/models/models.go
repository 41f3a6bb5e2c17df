package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// GetUserBookingsRequest запрос на получение бронирований пользователя
type GetUserBookingsRequest struct {
	UserID int64   `json:"userId"`
	Status *string `json:"status,omitempty"`
}

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	UserID int64 `json:"userId"`
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID             int64   `json:"id"`
	Code           string  `json:"code"`
	UserID         *int64  `json:"userId,omitempty"`
	GuestID        *string `json:"guestId,omitempty"`
	GuestEmail     *string `json:"guestEmail,omitempty"`
	GuestPhone     *string `json:"guestPhone,omitempty"`
	SlotID         *int64  `json:"slotId,omitempty"`
	VehicleNumber  string  `json:"vehicleNumber"`
	VehicleArrived bool    `json:"vehicleArrived"`
	StartTime      string  `json:"startTime"` // ISO 8601
	EndTime        string  `json:"endTime"`   // ISO 8601
	Status         string  `json:"status"`
	CancelledAt    *string `json:"cancelledAt,omitempty"` // ISO 8601

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// ToDomainBookingStatus конвертирует строку в domain статус
func ToDomainBookingStatus(s string) (domain.BookingStatus, error) {
	status := domain.BookingStatus(s)
	switch status {
	case domain.StatusConfirmed,
		domain.StatusActive,
		domain.StatusExpired,
		domain.StatusCancelled,
		domain.StatusCompleted:
		return status, nil
	}
	return "", ErrInvalidStatus
}

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:             b.ID,
		Code:           b.Code,
		UserID:         b.UserID,
		GuestID:        b.GuestID,
		GuestEmail:     b.GuestEmail,
		GuestPhone:     b.GuestPhone,
		SlotID:         b.SlotID,
		VehicleNumber:  b.VehicleNumber,
		VehicleArrived: b.VehicleArrived,
		StartTime:      b.StartTime.Format(time.RFC3339),
		EndTime:        b.EndTime.Format(time.RFC3339),
		Status:         string(b.Status),
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}

	if b.CancelledAt != nil {
		cancelledAt := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledAt
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, b := range bookings {
		resp.Bookings = append(resp.Bookings, *FromDomainBooking(b))
	}

	return resp
}
