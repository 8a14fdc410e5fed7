package repositories

import (
	"context"
	"fmt"

	"repair-system/internal/entities"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	roleTable  = "roles"
	roleFields = "id, name, can_manage_workflow, created_at, updated_at"
)

type RoleRepositoryInterface interface {
	FindRolesByIDs(ctx context.Context, ids []uint64) ([]entities.Role, error)
	GetRoles(ctx context.Context) ([]entities.Role, error)
}

type RoleRepository struct {
	storage *pgxpool.Pool
}

func NewRoleRepository(storage *pgxpool.Pool) RoleRepositoryInterface {
	return &RoleRepository{storage: storage}
}

func (r *RoleRepository) FindRolesByIDs(ctx context.Context, ids []uint64) ([]entities.Role, error) {
	if len(ids) == 0 {
		return []entities.Role{}, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ANY($1) ORDER BY id", roleFields, roleTable)
	rows, err := r.storage.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса ролей: %w", err)
	}
	defer rows.Close()

	var roles []entities.Role
	for rows.Next() {
		var role entities.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CanManageWorkflow, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования роли: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *RoleRepository) GetRoles(ctx context.Context) ([]entities.Role, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", roleFields, roleTable)
	rows, err := r.storage.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса ролей: %w", err)
	}
	defer rows.Close()

	var roles []entities.Role
	for rows.Next() {
		var role entities.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CanManageWorkflow, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования роли: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
