package create_booking

import (
	"time"
)

// Request модель запроса на создание бронирования
type Request struct {
	UserID        *int64     // ID пользователя (nil для гостевого бронирования)
	GuestID       *string    // Идентификатор гостя (опционально)
	GuestEmail    *string    // Email гостя (обязателен email или телефон для гостя)
	GuestPhone    *string    // Телефон гостя
	VehicleNumber string     // Номер транспортного средства
	StartTime     *time.Time // Начало брони (по умолчанию - текущее время)
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID             int64   // ID созданного бронирования
	Code           string  // Публичный код бронирования
	UserID         *int64  // ID пользователя
	GuestID        *string // Идентификатор гостя
	SlotID         *int64  // ID зарезервированного слота
	SlotNumber     string  // Номер зарезервированного слота
	VehicleNumber  string  // Нормализованный номер транспорта
	VehicleArrived bool    // Прибыл ли транспорт
	StartTime      time.Time
	EndTime        time.Time // Конец грейс-окна неявки
	Status         string

	CreatedAt time.Time
	UpdatedAt time.Time
}
