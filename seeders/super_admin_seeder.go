package seeders

import (
	"context"
	"fmt"
	"log"

	"repair-system/pkg/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

func seedSuperAdmin(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Создание пользователя 'Super Admin'...")
	email := "super.admin@repair.local"

	var exists bool
	if err := db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", email).Scan(&exists); err != nil {
		return err
	}
	if exists {
		log.Println("    - Пользователь Super Admin уже существует. Пропускаем.")
		return nil
	}

	var roleID uint64
	if err := db.QueryRow(ctx, "SELECT id FROM roles WHERE name = 'Super Admin' LIMIT 1").Scan(&roleID); err != nil {
		return fmt.Errorf("не найдена роль 'Super Admin', сначала запустите -core: %w", err)
	}
	var branchID uint64
	if err := db.QueryRow(ctx, "SELECT id FROM branches WHERE is_protected = TRUE LIMIT 1").Scan(&branchID); err != nil {
		return fmt.Errorf("не найден защищённый филиал: %w", err)
	}

	hashedPassword, err := utils.HashPassword("Password123!")
	if err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var userID uint64
	err = tx.QueryRow(ctx, `
		INSERT INTO users (fio, email, password_hash, branch_id, is_admin)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id
	`, "Супер Администратор", email, hashedPassword, branchID).Scan(&userID)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		"INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		userID, roleID,
	); err != nil {
		return err
	}

	log.Printf("    - Создан Super Admin (%s / Password123!)", email)
	return tx.Commit(ctx)
}
