package economics

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/psqlbuilder"
)

// Repository репозиторий финансовых записей
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория финансовых записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает финансовую запись
func (r *Repository) Create(ctx context.Context, record *domain.EconomicRecord) (*domain.EconomicRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("economic_records").
		Columns(
			"vehicle_number",
			"amount",
			"record_type",
			"payment_method",
			"is_paid",
			"ticket_id",
			"booking_id",
			"user_id",
		).
		Values(
			record.VehicleNumber,
			record.Amount,
			record.RecordType,
			record.PaymentMethod,
			record.IsPaid,
			record.TicketID,
			record.BookingID,
			record.UserID,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&record.ID, &createdAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	record.CreatedAt = createdAt.Time

	return record, nil
}
