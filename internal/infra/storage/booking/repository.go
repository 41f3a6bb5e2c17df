package booking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/psqlbuilder"
)

const bookingColumns = `id, code, user_id, guest_id, guest_email, guest_phone, slot_id,
vehicle_number, vehicle_arrived, start_time, end_time, status, cancelled_at, created_at, updated_at`

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование и присваивает ему публичный код
// Вызывается внутри сериализуемой транзакции usecase'а создания бронирования
func (r *Repository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"user_id",
			"guest_id",
			"guest_email",
			"guest_phone",
			"slot_id",
			"vehicle_number",
			"vehicle_arrived",
			"start_time",
			"end_time",
			"status",
		).
		Values(
			b.UserID,
			b.GuestID,
			b.GuestEmail,
			b.GuestPhone,
			b.SlotID,
			b.VehicleNumber,
			b.VehicleArrived,
			b.StartTime,
			b.EndTime,
			b.Status,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	// Публичный код выводится из ID, поэтому проставляется вторым запросом
	b.Code = fmt.Sprintf("BOOK-%d-%04d", b.CreatedAt.Year(), b.ID)

	query, args, err = psqlbuilder.Update("bookings").
		Set("code", b.Code).
		Where(squirrel.Eq{"id": b.ID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build code update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("%w: Create - update booking code: %v", ErrExecQuery, err)
	}

	return b, nil
}

// GetByID получает бронирование по ID
// Внутри транзакции блокирует строку через FOR UPDATE
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, "GetByID")
}

// FindHoldingByVehicle ищет бронирование в статусе confirmed/active по номеру
// транспортного средства (сравнение без учета регистра). Возвращает самое
// свежее, если их несколько.
func (r *Repository) FindHoldingByVehicle(ctx context.Context, vehicleNumber string) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns).
		From("bookings").
		Where(squirrel.Expr("UPPER(vehicle_number) = UPPER(?)", vehicleNumber)).
		Where(squirrel.Eq{"status": holdingStatusStrings()}).
		OrderBy("created_at DESC").
		Limit(1)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindHoldingByVehicle - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanOne(executor.QueryRowContext(ctx, query, args...), "FindHoldingByVehicle")
}

// ListOverlapping получает бронирования в статусе confirmed/active,
// чья валидность пересекается с окном [start, end)
// Внутри транзакции блокирует строки через FOR UPDATE
func (r *Repository) ListOverlapping(ctx context.Context, start, end time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns).
		From("bookings").
		Where(squirrel.Eq{"status": holdingStatusStrings()}).
		Where(squirrel.Lt{"start_time": end}).
		Where(squirrel.Gt{"end_time": start}).
		OrderBy("id ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListOverlapping - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListOverlapping - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// ListExpiredCandidateIDs получает ID подтвержденных бронирований,
// чье окно ожидания истекло и транспорт так и не прибыл.
// Каждое из них затем обрабатывается отдельной транзакцией sweep'а.
func (r *Repository) ListExpiredCandidateIDs(ctx context.Context, now time.Time) ([]int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id").
		From("bookings").
		Where(squirrel.Eq{"status": string(domain.StatusConfirmed)}).
		Where(squirrel.Eq{"vehicle_arrived": false}).
		Where(squirrel.LtOrEq{"end_time": now}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListExpiredCandidateIDs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListExpiredCandidateIDs - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: ListExpiredCandidateIDs - scan id: %v", ErrScanRow, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListExpiredCandidateIDs - rows error: %v", ErrScanRow, err)
	}

	return ids, nil
}

// GetByUserID получает список бронирований пользователя
// Опционально фильтрует по статусу
func (r *Repository) GetByUserID(ctx context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns).
		From("bookings").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// UpdateStatus обновляет статус бронирования
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	return r.update(ctx, id, map[string]interface{}{"status": status}, "UpdateStatus")
}

// SetArrived отмечает прибытие транспорта: vehicle_arrived=true, статус active
func (r *Repository) SetArrived(ctx context.Context, id int64) error {
	return r.update(ctx, id, map[string]interface{}{
		"vehicle_arrived": true,
		"status":          domain.StatusActive,
	}, "SetArrived")
}

// Cancel переводит бронирование в статус cancelled с отметкой времени
func (r *Repository) Cancel(ctx context.Context, id int64, cancelledAt time.Time) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":       domain.StatusCancelled,
		"cancelled_at": cancelledAt,
	}, "Cancel")
}

func (r *Repository) update(ctx context.Context, id int64, sets map[string]interface{}, method string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("bookings").
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})
	for column, value := range sets {
		updateBuilder = updateBuilder.Set(column, value)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, method, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, method, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, method, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

func (r *Repository) getOne(ctx context.Context, pred interface{}, method string) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns).
		From("bookings").
		Where(pred)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, method, err)
	}

	return r.scanOne(executor.QueryRowContext(ctx, query, args...), method)
}

func (r *Repository) scanOne(row *sql.Row, method string) (*domain.Booking, error) {
	var b domain.Booking
	var code sql.NullString
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&b.ID,
		&code,
		&b.UserID,
		&b.GuestID,
		&b.GuestEmail,
		&b.GuestPhone,
		&b.SlotID,
		&b.VehicleNumber,
		&b.VehicleArrived,
		&b.StartTime,
		&b.EndTime,
		&b.Status,
		&b.CancelledAt,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan booking: %v", ErrScanRow, method, err)
	}

	b.Code = code.String
	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return &b, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func (r *Repository) scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		var b domain.Booking
		var code sql.NullString
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&b.ID,
			&code,
			&b.UserID,
			&b.GuestID,
			&b.GuestEmail,
			&b.GuestPhone,
			&b.SlotID,
			&b.VehicleNumber,
			&b.VehicleArrived,
			&b.StartTime,
			&b.EndTime,
			&b.Status,
			&b.CancelledAt,
			&createdAt,
			&updatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}

		b.Code = code.String
		b.CreatedAt = createdAt.Time
		b.UpdatedAt = updatedAt.Time

		bookings = append(bookings, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

func holdingStatusStrings() []string {
	statuses := make([]string, len(domain.HoldingStatuses))
	for i, s := range domain.HoldingStatuses {
		statuses[i] = string(s)
	}
	return statuses
}
