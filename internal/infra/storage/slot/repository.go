package slot

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/psqlbuilder"
)

// Repository репозиторий для работы со слотами парковки
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// InitPool создает фиксированный пул слотов с номерами 1..totalSlots,
// если таблица пуста. Вызывается один раз при старте сервиса.
func (r *Repository) InitPool(ctx context.Context, totalSlots int) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").From("slots").ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: InitPool - build count query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: InitPool - count slots: %v", ErrExecQuery, err)
	}

	if count > 0 {
		return 0, nil
	}

	insert := psqlbuilder.Insert("slots").Columns("slot_number")
	for i := 1; i <= totalSlots; i++ {
		insert = insert.Values(strconv.Itoa(i))
	}

	query, args, err = insert.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: InitPool - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("%w: InitPool - insert slots: %v", ErrExecQuery, err)
	}

	return totalSlots, nil
}

// GetByID получает слот по ID
// Внутри транзакции блокирует строку через FOR UPDATE
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Slot, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, "GetByID")
}

// GetByNumber получает слот по его номеру
func (r *Repository) GetByNumber(ctx context.Context, slotNumber string) (*domain.Slot, error) {
	return r.getOne(ctx, squirrel.Eq{"slot_number": slotNumber}, "GetByNumber")
}

func (r *Repository) getOne(ctx context.Context, pred interface{}, method string) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("id", "slot_number", "is_occupied", "is_reserved").
		From("slots").
		Where(pred)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, method, err)
	}

	var slot domain.Slot
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&slot.ID,
		&slot.SlotNumber,
		&slot.IsOccupied,
		&slot.IsReserved,
	)

	if err == sql.ErrNoRows {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan slot: %v", ErrScanRow, method, err)
	}

	return &slot, nil
}

// List получает все слоты в порядке их создания (scan order)
func (r *Repository) List(ctx context.Context) ([]*domain.Slot, error) {
	return r.list(ctx, nil, "List")
}

// ListUnoccupied получает незанятые слоты в scan order
// Внутри транзакции блокирует строки через FOR UPDATE
func (r *Repository) ListUnoccupied(ctx context.Context) ([]*domain.Slot, error) {
	return r.list(ctx, squirrel.Eq{"is_occupied": false}, "ListUnoccupied")
}

// FindFirstFree получает первый полностью свободный слот (ни занят, ни зарезервирован)
// Внутри транзакции блокирует строку через FOR UPDATE
func (r *Repository) FindFirstFree(ctx context.Context) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("id", "slot_number", "is_occupied", "is_reserved").
		From("slots").
		Where(squirrel.Eq{"is_occupied": false, "is_reserved": false}).
		OrderBy("id ASC").
		Limit(1)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindFirstFree - build select query: %v", ErrBuildQuery, err)
	}

	var slot domain.Slot
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&slot.ID,
		&slot.SlotNumber,
		&slot.IsOccupied,
		&slot.IsReserved,
	)

	if err == sql.ErrNoRows {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: FindFirstFree - scan slot: %v", ErrScanRow, err)
	}

	return &slot, nil
}

func (r *Repository) list(ctx context.Context, pred interface{}, method string) ([]*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("id", "slot_number", "is_occupied", "is_reserved").
		From("slots").
		OrderBy("id ASC")

	if pred != nil {
		selectBuilder = selectBuilder.Where(pred)
	}

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, method, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, method, err)
	}
	defer rows.Close()

	slots := make([]*domain.Slot, 0)
	for rows.Next() {
		var slot domain.Slot
		if err := rows.Scan(&slot.ID, &slot.SlotNumber, &slot.IsOccupied, &slot.IsReserved); err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, method, err)
		}
		slots = append(slots, &slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, method, err)
	}

	return slots, nil
}

// UpdateFlags сохраняет флаги занятости/резервирования слота
// Переходы вычисляются в domain.Slot, репозиторий только фиксирует результат
func (r *Repository) UpdateFlags(ctx context.Context, id int64, occupied, reserved bool) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("slots").
		Set("is_occupied", occupied).
		Set("is_reserved", reserved).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateFlags - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateFlags - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateFlags - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrSlotNotFound
	}

	return nil
}

// CountByState считает агрегаты по слотам одним запросом
// Используется admission-проверкой в момент коммита, поэтому внутри
// сериализуемой транзакции читает актуальное состояние, а не кеш
func (r *Repository) CountByState(ctx context.Context) (*domain.StateCounts, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"COUNT(*)",
		"COUNT(*) FILTER (WHERE is_occupied)",
		"COUNT(*) FILTER (WHERE is_reserved AND NOT is_occupied)",
	).
		From("slots").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CountByState - build select query: %v", ErrBuildQuery, err)
	}

	var counts domain.StateCounts
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&counts.Total,
		&counts.Occupied,
		&counts.Reserved,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: CountByState - scan counts: %v", ErrScanRow, err)
	}

	return &counts, nil
}
