package record_entry

import (
	"time"
)

// Request модель запроса на регистрацию въезда
type Request struct {
	VehicleNumber string  // Номер транспортного средства
	UserID        *int64  // ID пользователя (опционально, нужен для льготного въезда)
	BookingID     *int64  // Явно указанное бронирование (опционально)
	OperatorID    *int64  // Сотрудник, зафиксировавший въезд
	PaymentMethod *string // Способ оплаты въездного сбора (по умолчанию cash)
}

// Response модель ответа с открытым талоном
type Response struct {
	TicketID      int64     // ID открытого талона
	SlotID        int64     // ID занятого слота
	SlotNumber    string    // Номер занятого слота
	BookingID     *int64    // Бронирование, по которому произошёл въезд
	VehicleNumber string    // Нормализованный номер транспорта
	EntryTime     time.Time // Время въезда
	EntryFee      float64   // Списанный въездной сбор (0 при льготном въезде)
	FreeEntry     bool      // Был ли въезд бесплатным по членству
}
