package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"repair-system/internal/dto"
	"repair-system/internal/entities"
	"repair-system/internal/repositories"
	"repair-system/pkg/config"
	"repair-system/pkg/constants"
	apperrors "repair-system/pkg/errors"
	"repair-system/pkg/types"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type WorkflowStatusServiceInterface interface {
	GetStatuses(ctx context.Context, branchID uint64) ([]dto.WorkflowStatusDTO, error)
	GetStatusesFiltered(ctx context.Context, filter types.Filter) ([]dto.WorkflowStatusDTO, uint64, error)
	FindStatus(ctx context.Context, id uint64) (*dto.WorkflowStatusDTO, error)
	FindViewable(ctx context.Context, roleIDs []uint64, branchID uint64) ([]dto.WorkflowStatusDTO, error)
	CreateStatus(ctx context.Context, createdBy uint64, in dto.CreateWorkflowStatusDTO) (*dto.WorkflowStatusDTO, error)
	UpdateStatus(ctx context.Context, id uint64, in dto.UpdateWorkflowStatusDTO) (*dto.WorkflowStatusDTO, error)
	UpdateSort(ctx context.Context, id uint64, newSort int) error
	SoftDeleteStatus(ctx context.Context, id uint64) error
}

type WorkflowStatusService struct {
	statusRepository repositories.WorkflowStatusRepositoryInterface
	branchRepository repositories.BranchRepositoryInterface
	userRepository   repositories.UserRepositoryInterface
	permissionSvc    StatusPermissionServiceInterface
	transitionSvc    StatusTransitionServiceInterface
	txManager        repositories.TxManagerInterface
	cacheRepo        repositories.CacheRepositoryInterface
	cacheCfg         config.CacheConfig
	logger           *zap.Logger
}

func NewWorkflowStatusService(
	statusRepository repositories.WorkflowStatusRepositoryInterface,
	branchRepository repositories.BranchRepositoryInterface,
	userRepository repositories.UserRepositoryInterface,
	permissionSvc StatusPermissionServiceInterface,
	transitionSvc StatusTransitionServiceInterface,
	txManager repositories.TxManagerInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	cacheCfg config.CacheConfig,
	logger *zap.Logger,
) WorkflowStatusServiceInterface {
	return &WorkflowStatusService{
		statusRepository: statusRepository,
		branchRepository: branchRepository,
		userRepository:   userRepository,
		permissionSvc:    permissionSvc,
		transitionSvc:    transitionSvc,
		txManager:        txManager,
		cacheRepo:        cacheRepo,
		cacheCfg:         cacheCfg,
		logger:           logger,
	}
}

func statusToDTO(st *entities.WorkflowStatus) dto.WorkflowStatusDTO {
	out := dto.WorkflowStatusDTO{
		ID:           st.ID,
		BranchID:     st.BranchID,
		NameUz:       st.NameUz,
		NameRu:       st.NameRu,
		NameEn:       st.NameEn,
		Sort:         st.Sort,
		IsActive:     st.IsActive,
		RecordStatus: st.RecordStatus,
		CreatedBy:    st.CreatedBy,
	}
	if st.CreatedAt != nil {
		out.CreatedAt = st.CreatedAt.Local().Format("2006-01-02 15:04:05")
	}
	if st.UpdatedAt != nil {
		out.UpdatedAt = st.UpdatedAt.Local().Format("2006-01-02 15:04:05")
	}
	return out
}

// GetStatuses - Open-статусы филиала по sort, сквозное кеширование.
func (s *WorkflowStatusService) GetStatuses(ctx context.Context, branchID uint64) ([]dto.WorkflowStatusDTO, error) {
	cacheKey := constants.CacheKeyStatusesByBranch(branchID)
	if cached, err := s.cacheRepo.Get(ctx, cacheKey); err == nil {
		var list []dto.WorkflowStatusDTO
		if err := json.Unmarshal([]byte(cached), &list); err == nil {
			return list, nil
		}
		s.logger.Warn("WorkflowStatusService: Повреждённый кеш списка статусов", zap.String("key", cacheKey))
	}

	statuses, err := s.statusRepository.GetStatuses(ctx, branchID)
	if err != nil {
		return nil, err
	}

	list := make([]dto.WorkflowStatusDTO, 0, len(statuses))
	for i := range statuses {
		list = append(list, statusToDTO(&statuses[i]))
	}

	if payload, err := json.Marshal(list); err == nil {
		if errSet := s.cacheRepo.Set(ctx, cacheKey, string(payload), s.cacheCfg.ListTTL); errSet != nil {
			s.logger.Warn("WorkflowStatusService: Не удалось закешировать список статусов", zap.Error(errSet))
		}
	}
	return list, nil
}

func (s *WorkflowStatusService) GetStatusesFiltered(ctx context.Context, filter types.Filter) ([]dto.WorkflowStatusDTO, uint64, error) {
	statuses, total, err := s.statusRepository.GetStatusesFiltered(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	list := make([]dto.WorkflowStatusDTO, 0, len(statuses))
	for i := range statuses {
		list = append(list, statusToDTO(&statuses[i]))
	}
	return list, total, nil
}

func (s *WorkflowStatusService) FindStatus(ctx context.Context, id uint64) (*dto.WorkflowStatusDTO, error) {
	st, err := s.statusRepository.FindStatus(ctx, id)
	if err != nil {
		return nil, err
	}
	out := statusToDTO(st)
	return &out, nil
}

// FindViewable - подмножество статусов филиала, у которых хотя бы одна из ролей
// принципала имеет can_view. Композиция реестра и матрицы привилегий, не хранимое
// состояние.
func (s *WorkflowStatusService) FindViewable(ctx context.Context, roleIDs []uint64, branchID uint64) ([]dto.WorkflowStatusDTO, error) {
	cacheKey := constants.CacheKeyViewable(branchID, roleIDs)
	if cached, err := s.cacheRepo.Get(ctx, cacheKey); err == nil {
		var list []dto.WorkflowStatusDTO
		if err := json.Unmarshal([]byte(cached), &list); err == nil {
			return list, nil
		}
	}

	statuses, err := s.GetStatuses(ctx, branchID)
	if err != nil {
		return nil, err
	}
	permissions, err := s.permissionSvc.LookupByRolesAndBranch(ctx, roleIDs, branchID)
	if err != nil {
		return nil, err
	}

	viewable := make(map[uint64]bool, len(permissions))
	for i := range permissions {
		if permissions[i].CanView {
			viewable[permissions[i].StatusID] = true
		}
	}

	list := make([]dto.WorkflowStatusDTO, 0, len(statuses))
	for _, st := range statuses {
		if viewable[st.ID] {
			list = append(list, st)
		}
	}

	if payload, err := json.Marshal(list); err == nil {
		if errSet := s.cacheRepo.Set(ctx, cacheKey, string(payload), s.cacheCfg.ViewableTTL); errSet != nil {
			s.logger.Warn("WorkflowStatusService: Не удалось закешировать видимые статусы", zap.Error(errSet))
		}
	}
	return list, nil
}

// CreateStatus создаёт статус в указанном либо защищённом филиале и сеет
// дефолтные (полностью false) привилегии каждой роли администраторов филиала.
func (s *WorkflowStatusService) CreateStatus(ctx context.Context, createdBy uint64, in dto.CreateWorkflowStatusDTO) (*dto.WorkflowStatusDTO, error) {
	var branch *entities.Branch
	var err error

	if in.BranchID != nil {
		branch, err = s.branchRepository.FindBranch(ctx, *in.BranchID)
	} else {
		branch, err = s.branchRepository.FindProtectedBranch(ctx)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewHttpError(http.StatusNotFound, "Филиал не найден", err,
				map[string]interface{}{"branch_id": in.BranchID})
		}
		return nil, err
	}
	if !branch.IsActive {
		return nil, apperrors.NewHttpError(http.StatusBadRequest, "Филиал неактивен", apperrors.ErrBadRequest,
			map[string]interface{}{"branch_id": branch.ID})
	}

	adminRoleIDs, err := s.userRepository.GetAdminRoleIDsByBranch(ctx, branch.ID)
	if err != nil {
		s.logger.Error("WorkflowStatusService: Не удалось получить роли администраторов филиала", zap.Error(err))
		return nil, err
	}

	isActive := true
	if in.IsActive != nil {
		isActive = *in.IsActive
	}

	var created *entities.WorkflowStatus
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		maxSort, err := s.statusRepository.GetMaxSort(ctx, tx, branch.ID)
		if err != nil {
			return err
		}

		created, err = s.statusRepository.CreateStatus(ctx, tx, entities.WorkflowStatus{
			BranchID:  branch.ID,
			NameUz:    in.NameUz,
			NameRu:    in.NameRu,
			NameEn:    in.NameEn,
			Sort:      maxSort + 1,
			IsActive:  isActive,
			CreatedBy: createdBy,
		})
		if err != nil {
			return err
		}

		if len(adminRoleIDs) > 0 {
			return s.permissionSvc.SeedForStatus(ctx, tx, branch.ID, created.ID, adminRoleIDs)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("WorkflowStatusService: Ошибка при создании статуса", zap.Error(err))
		return nil, err
	}

	s.invalidateBranchCaches(ctx, branch.ID)
	s.permissionSvc.InvalidateAssignment(ctx, branch.ID, adminRoleIDs, []uint64{created.ID})
	s.logger.Info("WorkflowStatusService: Статус создан",
		zap.Uint64("statusID", created.ID), zap.Uint64("branchID", branch.ID), zap.Int("sort", created.Sort))

	out := statusToDTO(created)
	return &out, nil
}

func (s *WorkflowStatusService) UpdateStatus(ctx context.Context, id uint64, in dto.UpdateWorkflowStatusDTO) (*dto.WorkflowStatusDTO, error) {
	updated, err := s.statusRepository.UpdateStatus(ctx, id, in)
	if err != nil {
		return nil, err
	}

	if errDel := s.cacheRepo.Del(ctx, constants.CacheKeyStatus(id)); errDel != nil {
		s.logger.Warn("WorkflowStatusService: Не удалось инвалидировать кеш статуса", zap.Error(errDel))
	}
	s.invalidateBranchCaches(ctx, updated.BranchID)

	out := statusToDTO(updated)
	return &out, nil
}

// UpdateSort перенумеровывает плотный диапазон между старой и новой позицией
// в одной транзакции. Совпадающий sort - no-op без записи.
func (s *WorkflowStatusService) UpdateSort(ctx context.Context, id uint64, newSort int) error {
	st, err := s.statusRepository.FindStatus(ctx, id)
	if err != nil {
		return err
	}
	if newSort == st.Sort {
		return nil
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		maxSort, err := s.statusRepository.GetMaxSort(ctx, tx, st.BranchID)
		if err != nil {
			return err
		}
		if newSort > maxSort {
			return apperrors.NewHttpError(http.StatusBadRequest, "Позиция сортировки вне диапазона", apperrors.ErrBadRequest,
				map[string]interface{}{"sort": newSort, "max": maxSort})
		}

		if newSort < st.Sort {
			// Сдвигаем [newSort, cur) вверх
			if err := s.statusRepository.ShiftSortRange(ctx, tx, st.BranchID, newSort, st.Sort-1, 1); err != nil {
				return err
			}
		} else {
			// Сдвигаем (cur, newSort] вниз
			if err := s.statusRepository.ShiftSortRange(ctx, tx, st.BranchID, st.Sort+1, newSort, -1); err != nil {
				return err
			}
		}
		return s.statusRepository.SetSort(ctx, tx, id, newSort)
	})
	if err != nil {
		s.logger.Error("WorkflowStatusService: Ошибка перенумерации sort", zap.Uint64("statusID", id), zap.Error(err))
		return err
	}

	s.invalidateBranchCaches(ctx, st.BranchID)
	return nil
}

// SoftDeleteStatus помечает статус удалённым и сдвигает sort остальных вниз,
// чтобы последовательность осталась плотной. Переходы и привилегии,
// ссылающиеся на статус, не трогаем: он просто перестаёт отдаваться.
func (s *WorkflowStatusService) SoftDeleteStatus(ctx context.Context, id uint64) error {
	st, err := s.statusRepository.FindStatus(ctx, id)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		maxSort, err := s.statusRepository.GetMaxSort(ctx, tx, st.BranchID)
		if err != nil {
			return err
		}
		if err := s.statusRepository.SoftDeleteStatus(ctx, tx, id); err != nil {
			return err
		}
		if st.Sort < maxSort {
			return s.statusRepository.ShiftSortRange(ctx, tx, st.BranchID, st.Sort+1, maxSort, -1)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("WorkflowStatusService: Ошибка при удалении статуса", zap.Uint64("statusID", id), zap.Error(err))
		return err
	}

	if errDel := s.cacheRepo.Del(ctx, constants.CacheKeyStatus(id)); errDel != nil {
		s.logger.Warn("WorkflowStatusService: Не удалось инвалидировать кеш статуса", zap.Error(errDel))
	}
	// Ключ исходящих переходов принадлежит графу переходов
	s.transitionSvc.InvalidateOutgoing(ctx, id)
	s.invalidateBranchCaches(ctx, st.BranchID)
	s.logger.Info("WorkflowStatusService: Статус помечен удалённым", zap.Uint64("statusID", id))
	return nil
}

func (s *WorkflowStatusService) invalidateBranchCaches(ctx context.Context, branchID uint64) {
	if err := s.cacheRepo.Del(ctx, constants.CacheKeyStatusesByBranch(branchID)); err != nil {
		s.logger.Warn("WorkflowStatusService: Не удалось инвалидировать список статусов филиала", zap.Error(err))
	}
	if err := s.cacheRepo.DelByPrefix(ctx, constants.CacheKeyViewablePrefix(branchID)); err != nil {
		s.logger.Warn("WorkflowStatusService: Не удалось инвалидировать видимые статусы филиала", zap.Error(err))
	}
}
