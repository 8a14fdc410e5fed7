package middleware

import (
	"context"
	"net/http"
	"strings"

	"repair-system/pkg/contextkeys"
	apperrors "repair-system/pkg/errors"
	"repair-system/pkg/service"
	"repair-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// WorkflowAccessChecker отвечает на вопрос, может ли набор ролей
// администрировать движок статусов (мета-привилегия can_manage_workflow).
type WorkflowAccessChecker interface {
	CanManageWorkflow(ctx context.Context, roleIDs []uint64) (bool, error)
}

type AuthMiddleware struct {
	jwtService    service.JWTService
	accessChecker WorkflowAccessChecker
	logger        *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, accessChecker WorkflowAccessChecker, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:    jwtSvc,
		accessChecker: accessChecker,
		logger:        logger,
	}
}

// Auth - основная функция middleware: извлекает и валидирует JWT,
// кладёт UserID, BranchID и RoleIDs в контекст запроса.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			m.logger.Warn("AuthMiddleware: Пустой заголовок Authorization")
			return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader, m.logger)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.logger.Warn("AuthMiddleware: Неверный формат заголовка Authorization")
			return utils.ErrorResponse(c, apperrors.ErrInvalidAuthHeader, m.logger)
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			m.logger.Warn("AuthMiddleware: Ошибка валидации токена", zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}

		if claims.IsRefreshToken {
			m.logger.Warn("AuthMiddleware: Попытка доступа с refresh токеном")
			return utils.ErrorResponse(c, apperrors.ErrTokenIsNotAccess, m.logger)
		}

		ctx := c.Request().Context()
		ctx = context.WithValue(ctx, contextkeys.UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, contextkeys.BranchIDKey, claims.BranchID)
		ctx = context.WithValue(ctx, contextkeys.RoleIDsKey, claims.RoleIDs)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

// RequireWorkflowManage пускает дальше только роли с can_manage_workflow.
// Вешается на административные маршруты движка поверх Auth.
func (m *AuthMiddleware) RequireWorkflowManage(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		roleIDs, ok := c.Request().Context().Value(contextkeys.RoleIDsKey).([]uint64)
		if !ok || len(roleIDs) == 0 {
			m.logger.Warn("AuthMiddleware: RoleIDs не найдены в контексте запроса")
			return utils.ErrorResponse(c, apperrors.ErrForbidden, m.logger)
		}

		allowed, err := m.accessChecker.CanManageWorkflow(c.Request().Context(), roleIDs)
		if err != nil {
			m.logger.Error("AuthMiddleware: Ошибка проверки can_manage_workflow", zap.Error(err))
			return utils.ErrorResponse(c, apperrors.ErrInternalServer, m.logger)
		}
		if !allowed {
			m.logger.Warn("AuthMiddleware: Нет мета-привилегии can_manage_workflow", zap.Any("roleIDs", roleIDs))
			return utils.ErrorResponse(c,
				apperrors.NewHttpError(http.StatusForbidden, "Нет прав на управление статусами", apperrors.ErrForbidden, nil),
				m.logger)
		}

		return next(c)
	}
}
