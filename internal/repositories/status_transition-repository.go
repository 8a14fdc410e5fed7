package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"repair-system/internal/entities"
)

const (
	transitionTable  = "workflow_status_transitions"
	transitionFields = "from_status_id, to_status_id, created_at"
)

type StatusTransitionRepositoryInterface interface {
	ListOutgoing(ctx context.Context, fromStatusID uint64) ([]uint64, error)
	ListAll(ctx context.Context) ([]entities.StatusTransition, error)
	DeleteOutgoing(ctx context.Context, tx pgx.Tx, fromStatusID uint64) error
	BulkInsert(ctx context.Context, tx pgx.Tx, fromStatusID uint64, toStatusIDs []uint64) ([]entities.StatusTransition, error)
}

type statusTransitionRepository struct {
	storage *pgxpool.Pool
}

func NewStatusTransitionRepository(storage *pgxpool.Pool) StatusTransitionRepositoryInterface {
	return &statusTransitionRepository{storage: storage}
}

func (r *statusTransitionRepository) ListOutgoing(ctx context.Context, fromStatusID uint64) ([]uint64, error) {
	query := fmt.Sprintf(
		"SELECT to_status_id FROM %s WHERE from_status_id = $1 ORDER BY to_status_id",
		transitionTable,
	)
	rows, err := r.storage.Query(ctx, query, fromStatusID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса переходов: %w", err)
	}
	defer rows.Close()

	toIDs := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ошибка сканирования перехода: %w", err)
		}
		toIDs = append(toIDs, id)
	}
	return toIDs, rows.Err()
}

func (r *statusTransitionRepository) ListAll(ctx context.Context) ([]entities.StatusTransition, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY from_status_id, to_status_id",
		transitionFields, transitionTable,
	)
	rows, err := r.storage.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса всех переходов: %w", err)
	}
	defer rows.Close()

	transitions := make([]entities.StatusTransition, 0)
	for rows.Next() {
		var t entities.StatusTransition
		if err := rows.Scan(&t.FromStatusID, &t.ToStatusID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования перехода: %w", err)
		}
		transitions = append(transitions, t)
	}
	return transitions, rows.Err()
}

func (r *statusTransitionRepository) DeleteOutgoing(ctx context.Context, tx pgx.Tx, fromStatusID uint64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE from_status_id = $1", transitionTable)
	if _, err := tx.Exec(ctx, query, fromStatusID); err != nil {
		return fmt.Errorf("ошибка удаления переходов: %w", err)
	}
	return nil
}

// BulkInsert вставляет новый набор исходящих переходов одним батчем.
func (r *statusTransitionRepository) BulkInsert(ctx context.Context, tx pgx.Tx, fromStatusID uint64, toStatusIDs []uint64) ([]entities.StatusTransition, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (from_status_id, to_status_id)
		SELECT $1, unnest($2::bigint[])
		RETURNING %s
	`, transitionTable, transitionFields)

	rows, err := tx.Query(ctx, query, fromStatusID, toStatusIDs)
	if err != nil {
		return nil, fmt.Errorf("ошибка вставки переходов: %w", err)
	}
	defer rows.Close()

	inserted := make([]entities.StatusTransition, 0, len(toStatusIDs))
	for rows.Next() {
		var t entities.StatusTransition
		if err := rows.Scan(&t.FromStatusID, &t.ToStatusID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования вставленного перехода: %w", err)
		}
		inserted = append(inserted, t)
	}
	return inserted, rows.Err()
}
