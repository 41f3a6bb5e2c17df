package history

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/psqlbuilder"
)

const defaultListLimit = 100

// Repository репозиторий журнала парковочных событий
// Журнал append-only: записи создаются и никогда не изменяются
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория журнала
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Append добавляет запись в журнал
func (r *Repository) Append(ctx context.Context, record *domain.HistoryRecord) (*domain.HistoryRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("history").
		Columns(
			"vehicle_number",
			"action",
			"occurred_at",
			"is_prebooked",
			"user_id",
			"operator_id",
			"ticket_id",
			"booking_id",
		).
		Values(
			record.VehicleNumber,
			record.Action,
			record.OccurredAt,
			record.IsPrebooked,
			record.UserID,
			record.OperatorID,
			record.TicketID,
			record.BookingID,
		).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Append - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&record.ID); err != nil {
		return nil, fmt.Errorf("%w: Append - execute insert: %v", ErrExecQuery, err)
	}

	return record, nil
}

// List получает записи журнала с фильтрацией по номеру, действию и периоду
func (r *Repository) List(ctx context.Context, filter domain.HistoryFilter) ([]*domain.HistoryRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"vehicle_number",
		"action",
		"occurred_at",
		"is_prebooked",
		"user_id",
		"operator_id",
		"ticket_id",
		"booking_id",
	).
		From("history").
		OrderBy("occurred_at DESC")

	if filter.VehicleNumber != nil {
		selectBuilder = selectBuilder.Where(squirrel.Expr("UPPER(vehicle_number) = UPPER(?)", *filter.VehicleNumber))
	}
	if filter.Action != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"action": *filter.Action})
	}
	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"occurred_at": *filter.From})
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"occurred_at": *filter.To})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	selectBuilder = selectBuilder.Limit(uint64(limit))

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	records := make([]*domain.HistoryRecord, 0)
	for rows.Next() {
		var record domain.HistoryRecord
		err := rows.Scan(
			&record.ID,
			&record.VehicleNumber,
			&record.Action,
			&record.OccurredAt,
			&record.IsPrebooked,
			&record.UserID,
			&record.OperatorID,
			&record.TicketID,
			&record.BookingID,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}

	return records, nil
}
