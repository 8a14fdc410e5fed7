package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"repair-system/internal/controllers"
	"repair-system/internal/repositories"
	"repair-system/internal/services"
	"repair-system/pkg/config"
	"repair-system/pkg/middleware"
	"repair-system/pkg/service"
)

type Loggers struct {
	Main       *zap.Logger
	Auth       *zap.Logger
	Status     *zap.Logger
	Permission *zap.Logger
}

func InitRouter(e *echo.Echo, dbConn *pgxpool.Pool, redisClient *redis.Client, jwtSvc service.JWTService, loggers *Loggers, cfg *config.Config) {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")

	// --- 0. ОБЩИЕ КОМПОНЕНТЫ ---
	api := e.Group("/api")
	txManager := repositories.NewTxManager(dbConn)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	// --- 1. РЕПОЗИТОРИИ ---
	branchRepo := repositories.NewBranchRepository(dbConn)
	roleRepo := repositories.NewRoleRepository(dbConn)
	userRepo := repositories.NewUserRepository(dbConn)
	statusRepo := repositories.NewWorkflowStatusRepository(dbConn)
	transitionRepo := repositories.NewStatusTransitionRepository(dbConn)
	permissionRepo := repositories.NewStatusPermissionRepository(dbConn)

	// --- 2. СЕРВИСЫ ---
	roleService := services.NewRoleService(roleRepo, loggers.Main)
	permissionService := services.NewStatusPermissionService(
		permissionRepo, statusRepo, branchRepo, txManager, cacheRepo, cfg.Cache, loggers.Permission,
	)
	transitionService := services.NewStatusTransitionService(
		transitionRepo, statusRepo, txManager, cacheRepo, cfg.Cache, loggers.Status,
	)
	statusService := services.NewWorkflowStatusService(
		statusRepo, branchRepo, userRepo, permissionService, transitionService, txManager, cacheRepo, cfg.Cache, loggers.Status,
	)
	reportService := services.NewStatusReportService(statusRepo, roleRepo, permissionRepo, loggers.Main)

	// --- 3. КОНТРОЛЛЕРЫ ---
	statusController := controllers.NewWorkflowStatusController(statusService, loggers.Status)
	transitionController := controllers.NewStatusTransitionController(transitionService, loggers.Status)
	permissionController := controllers.NewStatusPermissionController(permissionService, reportService, loggers.Permission)

	// --- 4. РОУТЕРЫ ---
	authMW := middleware.NewAuthMiddleware(jwtSvc, roleService, loggers.Auth)
	secureGroup := api.Group("", authMW.Auth)

	runWorkflowStatusRouter(secureGroup, statusController, authMW)
	runStatusTransitionRouter(secureGroup, transitionController, authMW)
	runStatusPermissionRouter(secureGroup, permissionController, authMW)

	loggers.Main.Info("INIT_ROUTER: Создание маршрутов завершено")
}
