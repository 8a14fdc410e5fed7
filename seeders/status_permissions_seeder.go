package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// seedStatusPermissions открывает управляющим ролям полный доступ ко всем
// статусам защищённого филиала, остальным ролям - только просмотр.
func seedStatusPermissions(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблицы 'workflow_status_permissions'...")

	var branchID uint64
	err := db.QueryRow(ctx, "SELECT id FROM branches WHERE is_protected = TRUE LIMIT 1").Scan(&branchID)
	if err != nil {
		return fmt.Errorf("не найден защищённый филиал: %w", err)
	}

	fullAccess := `
		INSERT INTO workflow_status_permissions (
			role_id, status_id, branch_id,
			can_view, can_add, can_update, can_delete,
			can_payment_add, can_payment_cancel, can_assign_admin,
			can_notify, can_notify_bot, can_change_active, can_change_status,
			can_view_initial_problems, can_change_initial_problems,
			can_view_final_problems, can_change_final_problems,
			can_comment, can_pickup_manage, can_delivery_manage,
			can_view_payments, can_view_history
		)
		SELECT r.id, s.id, $1,
			TRUE, TRUE, TRUE, TRUE,
			TRUE, TRUE, TRUE,
			TRUE, TRUE, TRUE, TRUE,
			TRUE, TRUE,
			TRUE, TRUE,
			TRUE, TRUE, TRUE,
			TRUE, TRUE
		FROM roles r
		CROSS JOIN workflow_statuses s
		WHERE r.can_manage_workflow = TRUE
		  AND s.branch_id = $1 AND s.record_status = 'Open'
		ON CONFLICT (role_id, status_id) DO NOTHING;`

	viewOnly := `
		INSERT INTO workflow_status_permissions (role_id, status_id, branch_id, can_view)
		SELECT r.id, s.id, $1, TRUE
		FROM roles r
		CROSS JOIN workflow_statuses s
		WHERE r.can_manage_workflow = FALSE
		  AND s.branch_id = $1 AND s.record_status = 'Open'
		ON CONFLICT (role_id, status_id) DO NOTHING;`

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fullAccess, branchID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, viewOnly, branchID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
