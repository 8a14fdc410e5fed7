package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const userTable = "users"

type UserRepositoryInterface interface {
	// GetAdminRoleIDsByBranch возвращает уникальные роли администраторов,
	// привязанных к филиалу. Нужен при создании статуса: каждой такой роли
	// сеется дефолтная (полностью false) запись привилегий.
	GetAdminRoleIDsByBranch(ctx context.Context, branchID uint64) ([]uint64, error)
}

type UserRepository struct {
	storage *pgxpool.Pool
}

func NewUserRepository(storage *pgxpool.Pool) UserRepositoryInterface {
	return &UserRepository{storage: storage}
}

func (r *UserRepository) GetAdminRoleIDsByBranch(ctx context.Context, branchID uint64) ([]uint64, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT ur.role_id
		FROM %s u
		JOIN user_roles ur ON ur.user_id = u.id
		WHERE u.branch_id = $1 AND u.is_admin = TRUE
		ORDER BY ur.role_id
	`, userTable)

	rows, err := r.storage.Query(ctx, query, branchID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса ролей администраторов филиала: %w", err)
	}
	defer rows.Close()

	var roleIDs []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ошибка сканирования role_id: %w", err)
		}
		roleIDs = append(roleIDs, id)
	}
	return roleIDs, rows.Err()
}
