package ticket

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

const ticketColumns = `id, booking_id, slot_id, vehicle_number, entry_time, exit_time,
duration_minutes, fee_amount, fee_paid`

// Repository репозиторий для работы с тикетами (фактическими парковками)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория тикетов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новый тикет при въезде транспорта
func (r *Repository) Create(ctx context.Context, t *domain.Ticket) (*domain.Ticket, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("tickets").
		Columns(
			"booking_id",
			"slot_id",
			"vehicle_number",
			"entry_time",
			"fee_amount",
			"fee_paid",
		).
		Values(
			t.BookingID,
			t.SlotID,
			t.VehicleNumber,
			t.EntryTime,
			t.FeeAmount,
			t.FeePaid,
		).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&t.ID); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return t, nil
}

// GetByID получает тикет по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, "GetByID")
}

// GetOpenByVehicle ищет открытый тикет (без exit_time) по номеру транспорта.
// Инвариант хранилища: не больше одного открытого тикета на номер.
// Внутри транзакции блокирует строку через FOR UPDATE.
func (r *Repository) GetOpenByVehicle(ctx context.Context, vehicleNumber string) (*domain.Ticket, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(ticketColumns).
		From("tickets").
		Where(squirrel.Expr("UPPER(vehicle_number) = UPPER(?)", vehicleNumber)).
		Where(squirrel.Eq{"exit_time": nil}).
		Limit(1)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetOpenByVehicle - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanOne(executor.QueryRowContext(ctx, query, args...), "GetOpenByVehicle")
}

// Close закрывает тикет: фиксирует выезд, длительность и сумму
// Тикет закрывается ровно один раз, закрытые строки не изменяются
func (r *Repository) Close(ctx context.Context, id int64, exitTime time.Time, durationMinutes int, feeAmount float64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("tickets").
		Set("exit_time", exitTime).
		Set("duration_minutes", durationMinutes).
		Set("fee_amount", feeAmount).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"exit_time": nil}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Close - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Close - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Close - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrTicketNotFound
	}

	return nil
}

// ListByVehicle получает историю тикетов по номеру транспорта
func (r *Repository) ListByVehicle(ctx context.Context, vehicleNumber string, limit uint64) ([]*domain.Ticket, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(ticketColumns).
		From("tickets").
		Where(squirrel.Expr("UPPER(vehicle_number) = UPPER(?)", vehicleNumber)).
		OrderBy("entry_time DESC")

	if limit > 0 {
		selectBuilder = selectBuilder.Limit(limit)
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByVehicle - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByVehicle - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	tickets := make([]*domain.Ticket, 0)
	for rows.Next() {
		t, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByVehicle - rows error: %v", ErrScanRow, err)
	}

	return tickets, nil
}

func (r *Repository) getOne(ctx context.Context, pred interface{}, method string) (*domain.Ticket, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(ticketColumns).
		From("tickets").
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

func (r *Repository) scanOne(row *sql.Row, method string) (*domain.Ticket, error) {
	var t domain.Ticket

	err := row.Scan(
		&t.ID,
		&t.BookingID,
		&t.SlotID,
		&t.VehicleNumber,
		&t.EntryTime,
		&t.ExitTime,
		&t.DurationMinutes,
		&t.FeeAmount,
		&t.FeePaid,
	)

	if err == sql.ErrNoRows {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan ticket: %v", ErrScanRow, method, err)
	}

	return &t, nil
}

func (r *Repository) scanRow(rows *sql.Rows) (*domain.Ticket, error) {
	var t domain.Ticket

	err := rows.Scan(
		&t.ID,
		&t.BookingID,
		&t.SlotID,
		&t.VehicleNumber,
		&t.EntryTime,
		&t.ExitTime,
		&t.DurationMinutes,
		&t.FeeAmount,
		&t.FeePaid,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: scanRow - scan ticket: %v", ErrScanRow, err)
	}

	return &t, nil
}
