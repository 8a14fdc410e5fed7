package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

func seedWorkflowStatuses(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблицы 'workflow_statuses'...")

	var branchID uint64
	err := db.QueryRow(ctx, "SELECT id FROM branches WHERE is_protected = TRUE LIMIT 1").Scan(&branchID)
	if err != nil {
		return fmt.Errorf("не найден защищённый филиал, сначала запустите -core: %w", err)
	}

	var count int
	if err := db.QueryRow(ctx,
		"SELECT COUNT(*) FROM workflow_statuses WHERE branch_id = $1 AND record_status = 'Open'", branchID,
	).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		log.Println("    - Статусы филиала уже существуют. Пропускаем.")
		return nil
	}

	query := `INSERT INTO workflow_statuses (branch_id, name_uz, name_ru, name_en, sort, is_active, record_status)
			  VALUES ($1, $2, $3, $4, $5, TRUE, 'Open');`

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i, s := range workflowStatusesData {
		if _, err := tx.Exec(ctx, query, branchID, s.NameUz, s.NameRu, s.NameEn, i+1); err != nil {
			log.Printf("Ошибка при вставке статуса '%s': %v", s.NameRu, err)
			return err
		}
	}
	return tx.Commit(ctx)
}
