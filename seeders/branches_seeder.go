package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

func seedBranches(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблицы 'branches'...")

	query := `INSERT INTO branches (name, short_name, is_protected, is_active)
			  SELECT $1, $2, $3, TRUE
			  WHERE NOT EXISTS (SELECT 1 FROM branches WHERE name = $1);`

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, b := range branchesData {
		if _, err := tx.Exec(ctx, query, b.Name, b.ShortName, b.IsProtected); err != nil {
			log.Printf("Ошибка при вставке филиала '%s': %v", b.Name, err)
			return err
		}
	}
	return tx.Commit(ctx)
}
