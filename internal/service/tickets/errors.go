package tickets

import "errors"

var (
	// ErrTicketNotFound возвращается, когда талон не найден
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
