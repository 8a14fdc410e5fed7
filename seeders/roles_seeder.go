package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

func seedRoles(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблицы 'roles'...")

	query := `INSERT INTO roles (name, can_manage_workflow) VALUES ($1, $2)
			  ON CONFLICT (name) DO UPDATE SET can_manage_workflow = EXCLUDED.can_manage_workflow;`

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, r := range rolesData {
		if _, err := tx.Exec(ctx, query, r.Name, r.CanManageWorkflow); err != nil {
			log.Printf("Ошибка при вставке роли '%s': %v", r.Name, err)
			return err
		}
	}
	return tx.Commit(ctx)
}
