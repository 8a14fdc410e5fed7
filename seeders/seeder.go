package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedCoreDictionaries наполняет базовые справочники: филиалы и роли.
func SeedCoreDictionaries(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск наполнения базовых справочников...")

	if err := seedBranches(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения Филиалов (Branches): %v", err)
	}
	if err := seedRoles(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения Ролей (Roles): %v", err)
	}
	log.Println("✅ Наполнение базовых справочников завершено!")
}

// SeedWorkflow создаёт стартовую цепочку статусов защищённого филиала
// и открывает к ней доступ ролям.
func SeedWorkflow(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск наполнения рабочего процесса...")

	if err := seedWorkflowStatuses(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения Статусов (WorkflowStatuses): %v", err)
	}
	if err := seedStatusPermissions(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения Привилегий (StatusPermissions): %v", err)
	}
	log.Println("✅ Наполнение рабочего процесса завершено!")
}

// SeedAdmin создаёт суперпользователя защищённого филиала.
func SeedAdmin(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск создания администратора...")

	if err := seedSuperAdmin(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка создания SuperAdmin: %v", err)
	}
	log.Println("✅ Создание администратора завершено!")
}
