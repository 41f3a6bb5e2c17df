package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

var (
	// ErrInvalidAction возвращается при некорректном типе события
	ErrInvalidAction = errors.New("invalid history action")
)

// Request модели

// GetHistoryRequest запрос на получение журнала событий
type GetHistoryRequest struct {
	VehicleNumber *string    `json:"vehicleNumber,omitempty"`
	Action        *string    `json:"action,omitempty"`
	From          *time.Time `json:"from,omitempty"`
	To            *time.Time `json:"to,omitempty"`
	Limit         int        `json:"limit,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetHistoryRequest) ToDomainFilter() (domain.HistoryFilter, error) {
	filter := domain.HistoryFilter{
		VehicleNumber: r.VehicleNumber,
		From:          r.From,
		To:            r.To,
		Limit:         r.Limit,
	}

	if r.Action != nil {
		action, err := ToDomainHistoryAction(*r.Action)
		if err != nil {
			return filter, err
		}
		filter.Action = &action
	}

	return filter, nil
}

// Response модели

// TicketResponse ответ с данными талона
type TicketResponse struct {
	ID              int64   `json:"id"`
	BookingID       *int64  `json:"bookingId,omitempty"`
	SlotID          *int64  `json:"slotId,omitempty"`
	VehicleNumber   string  `json:"vehicleNumber"`
	EntryTime       string  `json:"entryTime"` // ISO 8601
	ExitTime        *string `json:"exitTime,omitempty"`
	DurationMinutes *int    `json:"durationMinutes,omitempty"`
	FeeAmount       float64 `json:"feeAmount"`
	FeePaid         bool    `json:"feePaid"`
}

// TicketListResponse ответ со списком талонов
type TicketListResponse struct {
	Tickets []TicketResponse `json:"tickets"`
}

// HistoryRecordResponse ответ с записью журнала
type HistoryRecordResponse struct {
	ID            int64  `json:"id"`
	VehicleNumber string `json:"vehicleNumber"`
	Action        string `json:"action"`
	IsPrebooked   bool   `json:"isPrebooked"`
	UserID        *int64 `json:"userId,omitempty"`
	OperatorID    *int64 `json:"operatorId,omitempty"`
	BookingID     *int64 `json:"bookingId,omitempty"`
	TicketID      *int64 `json:"ticketId,omitempty"`
	OccurredAt    string `json:"occurredAt"` // ISO 8601
}

// HistoryListResponse ответ со списком записей журнала
type HistoryListResponse struct {
	Records []HistoryRecordResponse `json:"records"`
}

// Методы конвертации

// ToDomainHistoryAction конвертирует строку в domain тип события
func ToDomainHistoryAction(s string) (domain.HistoryAction, error) {
	action := domain.HistoryAction(s)
	switch action {
	case domain.ActionEntered,
		domain.ActionExited,
		domain.ActionBooked,
		domain.ActionCancelled:
		return action, nil
	}
	return "", ErrInvalidAction
}

// FromDomainTicket конвертирует domain модель в DTO
func FromDomainTicket(t *domain.Ticket) *TicketResponse {
	if t == nil {
		return nil
	}

	resp := &TicketResponse{
		ID:              t.ID,
		BookingID:       t.BookingID,
		SlotID:          t.SlotID,
		VehicleNumber:   t.VehicleNumber,
		EntryTime:       t.EntryTime.Format(time.RFC3339),
		DurationMinutes: t.DurationMinutes,
		FeeAmount:       t.FeeAmount,
		FeePaid:         t.FeePaid,
	}

	if t.ExitTime != nil {
		exitTime := t.ExitTime.Format(time.RFC3339)
		resp.ExitTime = &exitTime
	}

	return resp
}

// FromDomainTicketList конвертирует список domain моделей в DTO
func FromDomainTicketList(tickets []*domain.Ticket) *TicketListResponse {
	resp := &TicketListResponse{
		Tickets: make([]TicketResponse, 0, len(tickets)),
	}

	for _, t := range tickets {
		resp.Tickets = append(resp.Tickets, *FromDomainTicket(t))
	}

	return resp
}

// FromDomainHistoryRecord конвертирует запись журнала в DTO
func FromDomainHistoryRecord(r *domain.HistoryRecord) *HistoryRecordResponse {
	if r == nil {
		return nil
	}

	return &HistoryRecordResponse{
		ID:            r.ID,
		VehicleNumber: r.VehicleNumber,
		Action:        string(r.Action),
		IsPrebooked:   r.IsPrebooked,
		UserID:        r.UserID,
		OperatorID:    r.OperatorID,
		BookingID:     r.BookingID,
		TicketID:      r.TicketID,
		OccurredAt:    r.OccurredAt.Format(time.RFC3339),
	}
}

// FromDomainHistoryList конвертирует список записей журнала в DTO
func FromDomainHistoryList(records []*domain.HistoryRecord) *HistoryListResponse {
	resp := &HistoryListResponse{
		Records: make([]HistoryRecordResponse, 0, len(records)),
	}

	for _, r := range records {
		resp.Records = append(resp.Records, *FromDomainHistoryRecord(r))
	}

	return resp
}
