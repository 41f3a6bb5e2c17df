package record_exit

import (
	"time"
)

// Request модель запроса на регистрацию выезда
type Request struct {
	VehicleNumber string  // Номер транспортного средства
	OperatorID    *int64  // Сотрудник, зафиксировавший выезд
	PaymentMethod *string // Способ оплаты парковки (по умолчанию cash)
}

// Response модель ответа с закрытым талоном
type Response struct {
	TicketID        int64     // ID закрытого талона
	BookingID       *int64    // Завершённое бронирование (если было)
	SlotNumber      string    // Освобождённый слот
	VehicleNumber   string    // Нормализованный номер транспорта
	EntryTime       time.Time // Время въезда
	ExitTime        time.Time // Время выезда
	DurationMinutes int       // Длительность стоянки в минутах
	FeeAmount       float64   // Плата за стоянку по тарифу
}
