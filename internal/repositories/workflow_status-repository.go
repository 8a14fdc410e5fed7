package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"repair-system/internal/dto"
	"repair-system/internal/entities"
	"repair-system/internal/infrastructure/bd"
	"repair-system/pkg/constants"
	apperrors "repair-system/pkg/errors"
	"repair-system/pkg/types"
)

const (
	workflowStatusTable  = "workflow_statuses"
	workflowStatusFields = "id, branch_id, name_uz, name_ru, name_en, sort, is_active, record_status, created_by, created_at, updated_at"
)

// Карта полей для фильтрации и сортировки списков
var workflowStatusMap = map[string]string{
	"id":        "id",
	"branch_id": "branch_id",
	"name_uz":   "name_uz",
	"name_ru":   "name_ru",
	"name_en":   "name_en",
	"sort":      "sort",
	"is_active": "is_active",
}

type WorkflowStatusRepositoryInterface interface {
	GetStatuses(ctx context.Context, branchID uint64) ([]entities.WorkflowStatus, error)
	GetStatusesFiltered(ctx context.Context, filter types.Filter) ([]entities.WorkflowStatus, uint64, error)
	FindStatus(ctx context.Context, id uint64) (*entities.WorkflowStatus, error)
	GetOpenStatusIDs(ctx context.Context, branchID uint64) ([]uint64, error)
	GetMaxSort(ctx context.Context, tx pgx.Tx, branchID uint64) (int, error)
	CreateStatus(ctx context.Context, tx pgx.Tx, status entities.WorkflowStatus) (*entities.WorkflowStatus, error)
	UpdateStatus(ctx context.Context, id uint64, in dto.UpdateWorkflowStatusDTO) (*entities.WorkflowStatus, error)
	ShiftSortRange(ctx context.Context, tx pgx.Tx, branchID uint64, lo, hi, delta int) error
	SetSort(ctx context.Context, tx pgx.Tx, id uint64, sort int) error
	SoftDeleteStatus(ctx context.Context, tx pgx.Tx, id uint64) error
}

type workflowStatusRepository struct {
	storage *pgxpool.Pool
}

func NewWorkflowStatusRepository(storage *pgxpool.Pool) WorkflowStatusRepositoryInterface {
	return &workflowStatusRepository{storage: storage}
}

func scanWorkflowStatus(row pgx.Row) (*entities.WorkflowStatus, error) {
	var st entities.WorkflowStatus
	err := row.Scan(
		&st.ID, &st.BranchID, &st.NameUz, &st.NameRu, &st.NameEn,
		&st.Sort, &st.IsActive, &st.RecordStatus, &st.CreatedBy,
		&st.CreatedAt, &st.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования workflow_status: %w", err)
	}
	return &st, nil
}

func (r *workflowStatusRepository) GetStatuses(ctx context.Context, branchID uint64) ([]entities.WorkflowStatus, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE branch_id = $1 AND record_status = $2 ORDER BY sort ASC",
		workflowStatusFields, workflowStatusTable,
	)
	rows, err := r.storage.Query(ctx, query, branchID, constants.RecordStatusOpen)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса статусов: %w", err)
	}
	defer rows.Close()

	statuses := make([]entities.WorkflowStatus, 0)
	for rows.Next() {
		st, err := scanWorkflowStatus(rows)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, *st)
	}
	return statuses, rows.Err()
}

func (r *workflowStatusRepository) GetStatusesFiltered(ctx context.Context, filter types.Filter) ([]entities.WorkflowStatus, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countBuilder := bd.ApplyFilterOnly(
		psql.Select("COUNT(*)").From(workflowStatusTable).Where(sq.Eq{"record_status": constants.RecordStatusOpen}),
		filter, workflowStatusMap,
	)
	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка построения count-запроса: %w", err)
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта статусов: %w", err)
	}
	if total == 0 {
		return []entities.WorkflowStatus{}, 0, nil
	}

	listBuilder := bd.ApplyListParams(
		psql.Select(workflowStatusFields).From(workflowStatusTable).Where(sq.Eq{"record_status": constants.RecordStatusOpen}),
		filter, workflowStatusMap,
	)
	if len(filter.Sort) == 0 {
		listBuilder = listBuilder.OrderBy("sort ASC")
	}
	query, args, err := listBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка построения запроса статусов: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка запроса статусов: %w", err)
	}
	defer rows.Close()

	statuses := make([]entities.WorkflowStatus, 0)
	for rows.Next() {
		st, err := scanWorkflowStatus(rows)
		if err != nil {
			return nil, 0, err
		}
		statuses = append(statuses, *st)
	}
	return statuses, total, rows.Err()
}

func (r *workflowStatusRepository) FindStatus(ctx context.Context, id uint64) (*entities.WorkflowStatus, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE id = $1 AND record_status = $2",
		workflowStatusFields, workflowStatusTable,
	)
	return scanWorkflowStatus(r.storage.QueryRow(ctx, query, id, constants.RecordStatusOpen))
}

func (r *workflowStatusRepository) GetOpenStatusIDs(ctx context.Context, branchID uint64) ([]uint64, error) {
	query := fmt.Sprintf(
		"SELECT id FROM %s WHERE branch_id = $1 AND record_status = $2",
		workflowStatusTable,
	)
	rows, err := r.storage.Query(ctx, query, branchID, constants.RecordStatusOpen)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса id статусов: %w", err)
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ошибка сканирования id статуса: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *workflowStatusRepository) GetMaxSort(ctx context.Context, tx pgx.Tx, branchID uint64) (int, error) {
	query := fmt.Sprintf(
		"SELECT COALESCE(MAX(sort), 0) FROM %s WHERE branch_id = $1 AND record_status = $2",
		workflowStatusTable,
	)
	var maxSort int
	if err := tx.QueryRow(ctx, query, branchID, constants.RecordStatusOpen).Scan(&maxSort); err != nil {
		return 0, fmt.Errorf("ошибка запроса max(sort): %w", err)
	}
	return maxSort, nil
}

func (r *workflowStatusRepository) CreateStatus(ctx context.Context, tx pgx.Tx, status entities.WorkflowStatus) (*entities.WorkflowStatus, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (branch_id, name_uz, name_ru, name_en, sort, is_active, record_status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s
	`, workflowStatusTable, workflowStatusFields)

	row := tx.QueryRow(ctx, query,
		status.BranchID, status.NameUz, status.NameRu, status.NameEn,
		status.Sort, status.IsActive, constants.RecordStatusOpen, status.CreatedBy,
	)
	created, err := scanWorkflowStatus(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.ErrConflict
		}
		return nil, err
	}
	return created, nil
}

func (r *workflowStatusRepository) UpdateStatus(ctx context.Context, id uint64, in dto.UpdateWorkflowStatusDTO) (*entities.WorkflowStatus, error) {
	var setClauses []string
	var args []interface{}
	argID := 1

	if in.NameUz.Valid {
		setClauses = append(setClauses, fmt.Sprintf("name_uz = $%d", argID))
		args = append(args, in.NameUz.String)
		argID++
	}
	if in.NameRu.Valid {
		setClauses = append(setClauses, fmt.Sprintf("name_ru = $%d", argID))
		args = append(args, in.NameRu.String)
		argID++
	}
	if in.NameEn.Valid {
		setClauses = append(setClauses, fmt.Sprintf("name_en = $%d", argID))
		args = append(args, in.NameEn.String)
		argID++
	}
	if in.IsActive.Valid {
		setClauses = append(setClauses, fmt.Sprintf("is_active = $%d", argID))
		args = append(args, in.IsActive.Bool)
		argID++
	}
	if len(setClauses) == 0 {
		return r.FindStatus(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = $%d AND record_status = '%s' RETURNING %s",
		workflowStatusTable, strings.Join(setClauses, ", "), argID, constants.RecordStatusOpen, workflowStatusFields,
	)
	args = append(args, id)

	return scanWorkflowStatus(r.storage.QueryRow(ctx, query, args...))
}

// ShiftSortRange сдвигает sort всех Open-статусов филиала в диапазоне [lo, hi] на delta.
func (r *workflowStatusRepository) ShiftSortRange(ctx context.Context, tx pgx.Tx, branchID uint64, lo, hi, delta int) error {
	query := fmt.Sprintf(`
		UPDATE %s SET sort = sort + $1, updated_at = NOW()
		WHERE branch_id = $2 AND record_status = $3 AND sort >= $4 AND sort <= $5
	`, workflowStatusTable)

	if _, err := tx.Exec(ctx, query, delta, branchID, constants.RecordStatusOpen, lo, hi); err != nil {
		return fmt.Errorf("ошибка сдвига sort: %w", err)
	}
	return nil
}

func (r *workflowStatusRepository) SetSort(ctx context.Context, tx pgx.Tx, id uint64, sort int) error {
	query := fmt.Sprintf("UPDATE %s SET sort = $1, updated_at = NOW() WHERE id = $2", workflowStatusTable)
	result, err := tx.Exec(ctx, query, sort, id)
	if err != nil {
		return fmt.Errorf("ошибка установки sort: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *workflowStatusRepository) SoftDeleteStatus(ctx context.Context, tx pgx.Tx, id uint64) error {
	query := fmt.Sprintf(
		"UPDATE %s SET record_status = $1, updated_at = NOW() WHERE id = $2 AND record_status = $3",
		workflowStatusTable,
	)
	result, err := tx.Exec(ctx, query, constants.RecordStatusDeleted, id, constants.RecordStatusOpen)
	if err != nil {
		return fmt.Errorf("ошибка удаления статуса: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
