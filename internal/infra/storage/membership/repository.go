package membership

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

// Repository репозиторий членств пользователей
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория членств
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByUserID получает членство пользователя
// Внутри транзакции блокирует строку через FOR UPDATE, чтобы проверка и
// списание бесплатного въезда были атомарны относительно параллельных въездов
func (r *Repository) GetByUserID(ctx context.Context, userID int64) (*domain.Membership, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"user_id",
		"status",
		"current_period_end",
		"free_entries_used_today",
		"last_free_entry_date",
		"created_at",
		"updated_at",
	).
		From("memberships").
		Where(squirrel.Eq{"user_id": userID})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - build select query: %v", ErrBuildQuery, err)
	}

	var m domain.Membership
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&m.UserID,
		&m.Status,
		&m.CurrentPeriodEnd,
		&m.FreeEntriesUsedToday,
		&m.LastFreeEntryDate,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrMembershipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - scan membership: %v", ErrScanRow, err)
	}

	m.CreatedAt = createdAt.Time
	m.UpdatedAt = updatedAt.Time

	return &m, nil
}

// UpdateFreeEntryCounters сохраняет счётчики дневного бесплатного въезда
func (r *Repository) UpdateFreeEntryCounters(ctx context.Context, userID int64, usedToday int, lastDate time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("memberships").
		Set("free_entries_used_today", usedToday).
		Set("last_free_entry_date", lastDate).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateFreeEntryCounters - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateFreeEntryCounters - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateFreeEntryCounters - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrMembershipNotFound
	}

	return nil
}
