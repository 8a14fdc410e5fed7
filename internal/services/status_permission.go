package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"repair-system/internal/dto"
	"repair-system/internal/entities"
	"repair-system/internal/repositories"
	"repair-system/pkg/config"
	"repair-system/pkg/constants"
	apperrors "repair-system/pkg/errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type StatusPermissionServiceInterface interface {
	BulkAssign(ctx context.Context, in dto.BulkAssignPermissionsDTO) (*dto.BulkAssignResultDTO, error)
	LookupByRoleAndStatus(ctx context.Context, roleID, statusID uint64) (*entities.StatusPermission, error)
	LookupByRolesAndBranch(ctx context.Context, roleIDs []uint64, branchID uint64) ([]entities.StatusPermission, error)
	CheckPermissions(ctx context.Context, roleIDs []uint64, branchID, statusID uint64, required []string, location string, preloaded []entities.StatusPermission) error
	SeedForStatus(ctx context.Context, tx pgx.Tx, branchID, statusID uint64, roleIDs []uint64) error
	InvalidateAssignment(ctx context.Context, branchID uint64, roleIDs, statusIDs []uint64)
}

type StatusPermissionService struct {
	permissionRepo repositories.StatusPermissionRepositoryInterface
	statusRepo     repositories.WorkflowStatusRepositoryInterface
	branchRepo     repositories.BranchRepositoryInterface
	txManager      repositories.TxManagerInterface
	cacheRepo      repositories.CacheRepositoryInterface
	cacheCfg       config.CacheConfig
	logger         *zap.Logger
}

func NewStatusPermissionService(
	permissionRepo repositories.StatusPermissionRepositoryInterface,
	statusRepo repositories.WorkflowStatusRepositoryInterface,
	branchRepo repositories.BranchRepositoryInterface,
	txManager repositories.TxManagerInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	cacheCfg config.CacheConfig,
	logger *zap.Logger,
) StatusPermissionServiceInterface {
	return &StatusPermissionService{
		permissionRepo: permissionRepo,
		statusRepo:     statusRepo,
		branchRepo:     branchRepo,
		txManager:      txManager,
		cacheRepo:      cacheRepo,
		cacheCfg:       cacheCfg,
		logger:         logger,
	}
}

// BulkAssign - деструктивно-добавляющее назначение: существующие записи для
// (branch, roleIds, statusIds) удаляются, затем вставляется кросс-произведение
// с единым набором флагов. Непереданный флаг - false, а не "как было".
func (s *StatusPermissionService) BulkAssign(ctx context.Context, in dto.BulkAssignPermissionsDTO) (*dto.BulkAssignResultDTO, error) {
	if _, err := s.branchRepo.FindBranch(ctx, in.BranchID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewHttpError(http.StatusNotFound, "Филиал не найден", err,
				map[string]interface{}{"branch_id": in.BranchID})
		}
		return nil, err
	}

	// Все статусы должны принадлежать филиалу и быть действующими -
	// проверяем до открытия транзакции.
	validIDs, err := s.statusRepo.GetOpenStatusIDs(ctx, in.BranchID)
	if err != nil {
		return nil, err
	}
	validSet := make(map[uint64]bool, len(validIDs))
	for _, id := range validIDs {
		validSet[id] = true
	}
	for _, id := range in.StatusIDs {
		if !validSet[id] {
			return nil, apperrors.NewHttpError(http.StatusUnprocessableEntity,
				fmt.Sprintf("Статус %d не принадлежит филиалу %d", id, in.BranchID),
				apperrors.ErrInvalidReference,
				map[string]interface{}{"status_id": id, "branch_id": in.BranchID})
		}
	}

	var inserted []entities.StatusPermission
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.permissionRepo.DeleteForAssignment(ctx, tx, in.BranchID, in.RoleIDs, in.StatusIDs); err != nil {
			return err
		}
		inserted, err = s.permissionRepo.BulkInsert(ctx, tx, in.BranchID, in.RoleIDs, in.StatusIDs, in.Capabilities)
		return err
	})
	if err != nil {
		s.logger.Error("StatusPermissionService: Ошибка массового назначения привилегий", zap.Error(err))
		return nil, err
	}

	// Обновление кеша после коммита: точечные записи перезаписываем,
	// агрегаты по (role, branch) и видимость филиала сбрасываем.
	for i := range inserted {
		p := inserted[i]
		if payload, errM := json.Marshal(p); errM == nil {
			key := constants.CacheKeyPermRoleStatus(p.RoleID, p.StatusID)
			if errSet := s.cacheRepo.Set(ctx, key, string(payload), s.cacheCfg.PermissionTTL); errSet != nil {
				s.logger.Warn("StatusPermissionService: Не удалось обновить кеш привилегии", zap.String("key", key), zap.Error(errSet))
			}
		}
	}
	s.InvalidateAssignment(ctx, in.BranchID, in.RoleIDs, nil)

	s.logger.Info("StatusPermissionService: Привилегии назначены",
		zap.Uint64("branchID", in.BranchID), zap.Int("count", len(inserted)))
	return &dto.BulkAssignResultDTO{Count: len(inserted)}, nil
}

// LookupByRoleAndStatus - точечный поиск с отрицательным кешированием:
// отсутствие записи тоже кешируется, чтобы не ходить в БД на каждый запрос.
func (s *StatusPermissionService) LookupByRoleAndStatus(ctx context.Context, roleID, statusID uint64) (*entities.StatusPermission, error) {
	cacheKey := constants.CacheKeyPermRoleStatus(roleID, statusID)
	if cached, err := s.cacheRepo.Get(ctx, cacheKey); err == nil {
		if cached == constants.CacheNullMarker {
			return nil, nil
		}
		var p entities.StatusPermission
		if err := json.Unmarshal([]byte(cached), &p); err == nil {
			return &p, nil
		}
		s.logger.Warn("StatusPermissionService: Повреждённый кеш привилегии", zap.String("key", cacheKey))
	}

	p, err := s.permissionRepo.FindByRoleAndStatus(ctx, roleID, statusID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if errSet := s.cacheRepo.Set(ctx, cacheKey, constants.CacheNullMarker, s.cacheCfg.PermissionTTL); errSet != nil {
				s.logger.Warn("StatusPermissionService: Не удалось записать отрицательный кеш", zap.Error(errSet))
			}
			return nil, nil
		}
		return nil, err
	}

	if payload, errM := json.Marshal(p); errM == nil {
		if errSet := s.cacheRepo.Set(ctx, cacheKey, string(payload), s.cacheCfg.PermissionTTL); errSet != nil {
			s.logger.Warn("StatusPermissionService: Не удалось закешировать привилегию", zap.Error(errSet))
		}
	}
	return p, nil
}

// LookupByRolesAndBranch собирает записи привилегий по набору ролей.
// Кеш проверяется на каждую роль отдельно; промахи добираются одним
// батч-запросом, и каждая роль кешируется своим срезом (в том числе пустым).
// Результат всегда отсортирован по возрастанию role_id (внутри роли - по
// status_id), независимо от прогретости кеша и порядка ролей на входе.
func (s *StatusPermissionService) LookupByRolesAndBranch(ctx context.Context, roleIDs []uint64, branchID uint64) ([]entities.StatusPermission, error) {
	byRole := make(map[uint64][]entities.StatusPermission, len(roleIDs))
	var missed []uint64

	for _, roleID := range roleIDs {
		if _, seen := byRole[roleID]; seen {
			continue
		}
		cacheKey := constants.CacheKeyPermsRoleBranch(roleID, branchID)
		cached, err := s.cacheRepo.Get(ctx, cacheKey)
		if err != nil {
			missed = append(missed, roleID)
			continue
		}
		var slice []entities.StatusPermission
		if err := json.Unmarshal([]byte(cached), &slice); err != nil {
			s.logger.Warn("StatusPermissionService: Повреждённый кеш привилегий роли", zap.String("key", cacheKey))
			missed = append(missed, roleID)
			continue
		}
		byRole[roleID] = slice
	}

	if len(missed) > 0 {
		fetched, err := s.permissionRepo.FindByRolesAndBranch(ctx, missed, branchID)
		if err != nil {
			return nil, err
		}

		for _, roleID := range missed {
			byRole[roleID] = []entities.StatusPermission{}
		}
		for i := range fetched {
			byRole[fetched[i].RoleID] = append(byRole[fetched[i].RoleID], fetched[i])
		}

		for _, roleID := range missed {
			slice := byRole[roleID]
			if payload, errM := json.Marshal(slice); errM == nil {
				cacheKey := constants.CacheKeyPermsRoleBranch(roleID, branchID)
				if errSet := s.cacheRepo.Set(ctx, cacheKey, string(payload), s.cacheCfg.PermissionTTL); errSet != nil {
					s.logger.Warn("StatusPermissionService: Не удалось закешировать привилегии роли", zap.Error(errSet))
				}
			}
		}
	}

	sortedIDs := make([]uint64, 0, len(byRole))
	for roleID := range byRole {
		sortedIDs = append(sortedIDs, roleID)
	}
	sort.Slice(sortedIDs, func(i, j int) bool { return sortedIDs[i] < sortedIDs[j] })

	merged := make([]entities.StatusPermission, 0)
	for _, roleID := range sortedIDs {
		merged = append(merged, byRole[roleID]...)
	}
	return merged, nil
}

// CheckPermissions - единственные ворота авторизации для остальной системы.
// Семантика: ИЛИ между ролями на уровне статуса (есть ли хоть одна запись для
// этого статуса), затем И по всем требуемым флагам внутри одной найденной
// записи. Привилегии разных ролей НЕ объединяются; при нескольких записях
// для одного статуса берётся запись роли с наименьшим role_id.
func (s *StatusPermissionService) CheckPermissions(ctx context.Context, roleIDs []uint64, branchID, statusID uint64, required []string, location string, preloaded []entities.StatusPermission) error {
	records := preloaded
	if len(records) == 0 {
		var err error
		records, err = s.LookupByRolesAndBranch(ctx, roleIDs, branchID)
		if err != nil {
			return err
		}
	}

	var matched *entities.StatusPermission
	for i := range records {
		if records[i].StatusID == statusID {
			matched = &records[i]
			break
		}
	}
	if matched == nil {
		s.logger.Warn("StatusPermissionService: Нет записи привилегий",
			zap.Any("roleIDs", roleIDs), zap.Uint64("statusID", statusID), zap.String("location", location))
		return apperrors.NewHttpError(http.StatusForbidden, "Доступ запрещён: нет записи привилегий для статуса",
			apperrors.ErrForbidden,
			map[string]interface{}{"status_id": statusID, "location": location})
	}

	for _, name := range required {
		value, known := matched.Has(name)
		if !known {
			return apperrors.NewHttpError(http.StatusBadRequest,
				fmt.Sprintf("Неизвестная привилегия: %s", name), apperrors.ErrBadRequest,
				map[string]interface{}{"capability": name, "location": location})
		}
		if !value {
			s.logger.Warn("StatusPermissionService: Отсутствует привилегия",
				zap.String("capability", name), zap.Uint64("statusID", statusID), zap.String("location", location))
			return apperrors.NewHttpError(http.StatusForbidden,
				fmt.Sprintf("Доступ запрещён: отсутствует привилегия %s", name),
				apperrors.ErrForbidden,
				map[string]interface{}{"capability": name, "status_id": statusID, "location": location})
		}
	}
	return nil
}

// SeedForStatus сеет дефолтные (полностью false) записи привилегий для нового
// статуса. Вызывается реестром статусов внутри его транзакции создания.
func (s *StatusPermissionService) SeedForStatus(ctx context.Context, tx pgx.Tx, branchID, statusID uint64, roleIDs []uint64) error {
	_, err := s.permissionRepo.BulkInsert(ctx, tx, branchID, roleIDs, []uint64{statusID}, entities.CapabilitySet{})
	if err != nil {
		return fmt.Errorf("не удалось засеять привилегии статуса: %w", err)
	}
	return nil
}

// InvalidateAssignment сбрасывает кеши, затронутые назначением привилегий.
// statusIDs нужны только для точечных ключей; nil - не трогать точечные.
func (s *StatusPermissionService) InvalidateAssignment(ctx context.Context, branchID uint64, roleIDs, statusIDs []uint64) {
	for _, roleID := range roleIDs {
		if err := s.cacheRepo.Del(ctx, constants.CacheKeyPermsRoleBranch(roleID, branchID)); err != nil {
			s.logger.Warn("StatusPermissionService: Не удалось инвалидировать кеш привилегий роли",
				zap.Uint64("roleID", roleID), zap.Error(err))
		}
		for _, statusID := range statusIDs {
			if err := s.cacheRepo.Del(ctx, constants.CacheKeyPermRoleStatus(roleID, statusID)); err != nil {
				s.logger.Warn("StatusPermissionService: Не удалось инвалидировать кеш привилегии",
					zap.Uint64("roleID", roleID), zap.Uint64("statusID", statusID), zap.Error(err))
			}
		}
	}
	if err := s.cacheRepo.DelByPrefix(ctx, constants.CacheKeyViewablePrefix(branchID)); err != nil {
		s.logger.Warn("StatusPermissionService: Не удалось инвалидировать видимые статусы филиала", zap.Error(err))
	}
}
