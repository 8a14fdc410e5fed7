package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"repair-system/internal/entities"
	apperrors "repair-system/pkg/errors"
)

const (
	statusPermissionTable  = "workflow_status_permissions"
	statusPermissionFields = `role_id, status_id, branch_id,
		can_view, can_add, can_update, can_delete,
		can_payment_add, can_payment_cancel, can_assign_admin,
		can_notify, can_notify_bot, can_change_active, can_change_status,
		can_view_initial_problems, can_change_initial_problems,
		can_view_final_problems, can_change_final_problems,
		can_comment, can_pickup_manage, can_delivery_manage,
		can_view_payments, can_view_history,
		created_at, updated_at`
)

type StatusPermissionRepositoryInterface interface {
	FindByRoleAndStatus(ctx context.Context, roleID, statusID uint64) (*entities.StatusPermission, error)
	FindByRolesAndBranch(ctx context.Context, roleIDs []uint64, branchID uint64) ([]entities.StatusPermission, error)
	DeleteForAssignment(ctx context.Context, tx pgx.Tx, branchID uint64, roleIDs, statusIDs []uint64) error
	BulkInsert(ctx context.Context, tx pgx.Tx, branchID uint64, roleIDs, statusIDs []uint64, caps entities.CapabilitySet) ([]entities.StatusPermission, error)
}

type statusPermissionRepository struct {
	storage *pgxpool.Pool
}

func NewStatusPermissionRepository(storage *pgxpool.Pool) StatusPermissionRepositoryInterface {
	return &statusPermissionRepository{storage: storage}
}

func scanStatusPermission(row pgx.Row) (*entities.StatusPermission, error) {
	var p entities.StatusPermission
	err := row.Scan(
		&p.RoleID, &p.StatusID, &p.BranchID,
		&p.CanView, &p.CanAdd, &p.CanUpdate, &p.CanDelete,
		&p.CanPaymentAdd, &p.CanPaymentCancel, &p.CanAssignAdmin,
		&p.CanNotify, &p.CanNotifyBot, &p.CanChangeActive, &p.CanChangeStatus,
		&p.CanViewInitialProblems, &p.CanChangeInitialProblems,
		&p.CanViewFinalProblems, &p.CanChangeFinalProblems,
		&p.CanComment, &p.CanPickupManage, &p.CanDeliveryManage,
		&p.CanViewPayments, &p.CanViewHistory,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования status_permission: %w", err)
	}
	return &p, nil
}

func (r *statusPermissionRepository) FindByRoleAndStatus(ctx context.Context, roleID, statusID uint64) (*entities.StatusPermission, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE role_id = $1 AND status_id = $2",
		statusPermissionFields, statusPermissionTable,
	)
	return scanStatusPermission(r.storage.QueryRow(ctx, query, roleID, statusID))
}

func (r *statusPermissionRepository) FindByRolesAndBranch(ctx context.Context, roleIDs []uint64, branchID uint64) ([]entities.StatusPermission, error) {
	if len(roleIDs) == 0 {
		return []entities.StatusPermission{}, nil
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE role_id = ANY($1) AND branch_id = $2 ORDER BY role_id, status_id",
		statusPermissionFields, statusPermissionTable,
	)
	rows, err := r.storage.Query(ctx, query, roleIDs, branchID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса привилегий: %w", err)
	}
	defer rows.Close()

	permissions := make([]entities.StatusPermission, 0)
	for rows.Next() {
		p, err := scanStatusPermission(rows)
		if err != nil {
			return nil, err
		}
		permissions = append(permissions, *p)
	}
	return permissions, rows.Err()
}

func (r *statusPermissionRepository) DeleteForAssignment(ctx context.Context, tx pgx.Tx, branchID uint64, roleIDs, statusIDs []uint64) error {
	query := fmt.Sprintf(
		"DELETE FROM %s WHERE branch_id = $1 AND role_id = ANY($2) AND status_id = ANY($3)",
		statusPermissionTable,
	)
	if _, err := tx.Exec(ctx, query, branchID, roleIDs, statusIDs); err != nil {
		return fmt.Errorf("ошибка удаления привилегий перед назначением: %w", err)
	}
	return nil
}

// BulkInsert вставляет кросс-произведение roleIDs × statusIDs с единым набором
// флагов одним запросом.
func (r *statusPermissionRepository) BulkInsert(ctx context.Context, tx pgx.Tx, branchID uint64, roleIDs, statusIDs []uint64, caps entities.CapabilitySet) ([]entities.StatusPermission, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (role_id, status_id, branch_id,
			can_view, can_add, can_update, can_delete,
			can_payment_add, can_payment_cancel, can_assign_admin,
			can_notify, can_notify_bot, can_change_active, can_change_status,
			can_view_initial_problems, can_change_initial_problems,
			can_view_final_problems, can_change_final_problems,
			can_comment, can_pickup_manage, can_delivery_manage,
			can_view_payments, can_view_history)
		SELECT r, s, $3,
			$4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23
		FROM unnest($1::bigint[]) AS r CROSS JOIN unnest($2::bigint[]) AS s
		RETURNING %s
	`, statusPermissionTable, statusPermissionFields)

	rows, err := tx.Query(ctx, query, roleIDs, statusIDs, branchID,
		caps.CanView, caps.CanAdd, caps.CanUpdate, caps.CanDelete,
		caps.CanPaymentAdd, caps.CanPaymentCancel, caps.CanAssignAdmin,
		caps.CanNotify, caps.CanNotifyBot, caps.CanChangeActive, caps.CanChangeStatus,
		caps.CanViewInitialProblems, caps.CanChangeInitialProblems,
		caps.CanViewFinalProblems, caps.CanChangeFinalProblems,
		caps.CanComment, caps.CanPickupManage, caps.CanDeliveryManage,
		caps.CanViewPayments, caps.CanViewHistory,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка массовой вставки привилегий: %w", err)
	}
	defer rows.Close()

	inserted := make([]entities.StatusPermission, 0, len(roleIDs)*len(statusIDs))
	for rows.Next() {
		p, err := scanStatusPermission(rows)
		if err != nil {
			return nil, err
		}
		inserted = append(inserted, *p)
	}
	return inserted, rows.Err()
}
