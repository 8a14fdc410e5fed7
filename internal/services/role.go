package services

import (
	"context"

	"repair-system/internal/repositories"

	"go.uber.org/zap"
)

type RoleServiceInterface interface {
	CanManageWorkflow(ctx context.Context, roleIDs []uint64) (bool, error)
}

type RoleService struct {
	roleRepository repositories.RoleRepositoryInterface
	logger         *zap.Logger
}

func NewRoleService(roleRepository repositories.RoleRepositoryInterface, logger *zap.Logger) *RoleService {
	return &RoleService{
		roleRepository: roleRepository,
		logger:         logger,
	}
}

// CanManageWorkflow - мета-привилегия на администрирование движка статусов.
// Достаточно одной роли с установленным флагом.
func (s *RoleService) CanManageWorkflow(ctx context.Context, roleIDs []uint64) (bool, error) {
	roles, err := s.roleRepository.FindRolesByIDs(ctx, roleIDs)
	if err != nil {
		s.logger.Error("RoleService: Ошибка загрузки ролей", zap.Error(err))
		return false, err
	}
	for _, role := range roles {
		if role.CanManageWorkflow {
			return true, nil
		}
	}
	return false, nil
}
