package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"repair-system/internal/dto"
	"repair-system/internal/entities"
	"repair-system/internal/repositories"
	"repair-system/pkg/config"
	"repair-system/pkg/constants"
	apperrors "repair-system/pkg/errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type StatusTransitionServiceInterface interface {
	ReplaceOutgoing(ctx context.Context, fromStatusID uint64, in dto.ReplaceTransitionsDTO) ([]dto.StatusTransitionDTO, error)
	ListOutgoing(ctx context.Context, fromStatusID uint64) ([]uint64, error)
	ListAll(ctx context.Context) ([]dto.StatusTransitionDTO, error)
	InvalidateOutgoing(ctx context.Context, fromStatusID uint64)
}

type StatusTransitionService struct {
	transitionRepo repositories.StatusTransitionRepositoryInterface
	statusRepo     repositories.WorkflowStatusRepositoryInterface
	txManager      repositories.TxManagerInterface
	cacheRepo      repositories.CacheRepositoryInterface
	cacheCfg       config.CacheConfig
	logger         *zap.Logger
}

func NewStatusTransitionService(
	transitionRepo repositories.StatusTransitionRepositoryInterface,
	statusRepo repositories.WorkflowStatusRepositoryInterface,
	txManager repositories.TxManagerInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	cacheCfg config.CacheConfig,
	logger *zap.Logger,
) StatusTransitionServiceInterface {
	return &StatusTransitionService{
		transitionRepo: transitionRepo,
		statusRepo:     statusRepo,
		txManager:      txManager,
		cacheRepo:      cacheRepo,
		cacheCfg:       cacheCfg,
		logger:         logger,
	}
}

func transitionToDTO(t *entities.StatusTransition) dto.StatusTransitionDTO {
	out := dto.StatusTransitionDTO{
		FromStatusID: t.FromStatusID,
		ToStatusID:   t.ToStatusID,
	}
	if t.CreatedAt != nil {
		out.CreatedAt = t.CreatedAt.Local().Format("2006-01-02 15:04:05")
	}
	return out
}

// ReplaceOutgoing атомарно заменяет весь набор исходящих переходов статуса.
// Пустой набор - терминальный статус, это легальный результат, не ошибка.
// Петля from == to допускается: правило легальности - принадлежность филиалу.
func (s *StatusTransitionService) ReplaceOutgoing(ctx context.Context, fromStatusID uint64, in dto.ReplaceTransitionsDTO) ([]dto.StatusTransitionDTO, error) {
	fromStatus, err := s.statusRepo.FindStatus(ctx, fromStatusID)
	if err != nil {
		return nil, err
	}

	validIDs, err := s.statusRepo.GetOpenStatusIDs(ctx, fromStatus.BranchID)
	if err != nil {
		return nil, err
	}
	validSet := make(map[uint64]bool, len(validIDs))
	for _, id := range validIDs {
		validSet[id] = true
	}

	// Дедупликация: семантика набора, а не списка
	seen := make(map[uint64]bool, len(in.ToStatusIDs))
	toStatusIDs := make([]uint64, 0, len(in.ToStatusIDs))
	for _, toID := range in.ToStatusIDs {
		if !validSet[toID] {
			return nil, apperrors.NewHttpError(http.StatusUnprocessableEntity,
				fmt.Sprintf("Статус %d не принадлежит филиалу %d или удалён", toID, fromStatus.BranchID),
				apperrors.ErrInvalidReference,
				map[string]interface{}{"to_status_id": toID, "branch_id": fromStatus.BranchID})
		}
		if !seen[toID] {
			seen[toID] = true
			toStatusIDs = append(toStatusIDs, toID)
		}
	}

	var inserted []entities.StatusTransition
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.transitionRepo.DeleteOutgoing(ctx, tx, fromStatusID); err != nil {
			return err
		}
		if len(toStatusIDs) == 0 {
			inserted = []entities.StatusTransition{}
			return nil
		}
		inserted, err = s.transitionRepo.BulkInsert(ctx, tx, fromStatusID, toStatusIDs)
		return err
	})
	if err != nil {
		s.logger.Error("StatusTransitionService: Ошибка замены переходов",
			zap.Uint64("fromStatusID", fromStatusID), zap.Error(err))
		return nil, err
	}

	s.invalidate(ctx, fromStatusID, fromStatus.BranchID)
	s.logger.Info("StatusTransitionService: Переходы заменены",
		zap.Uint64("fromStatusID", fromStatusID), zap.Int("count", len(inserted)))

	list := make([]dto.StatusTransitionDTO, 0, len(inserted))
	for i := range inserted {
		list = append(list, transitionToDTO(&inserted[i]))
	}
	return list, nil
}

func (s *StatusTransitionService) ListOutgoing(ctx context.Context, fromStatusID uint64) ([]uint64, error) {
	cacheKey := constants.CacheKeyTransitions(fromStatusID)
	if cached, err := s.cacheRepo.Get(ctx, cacheKey); err == nil {
		var toIDs []uint64
		if err := json.Unmarshal([]byte(cached), &toIDs); err == nil {
			return toIDs, nil
		}
		s.logger.Warn("StatusTransitionService: Повреждённый кеш переходов", zap.String("key", cacheKey))
	}

	toIDs, err := s.transitionRepo.ListOutgoing(ctx, fromStatusID)
	if err != nil {
		return nil, err
	}

	if payload, errM := json.Marshal(toIDs); errM == nil {
		if errSet := s.cacheRepo.Set(ctx, cacheKey, string(payload), s.cacheCfg.ListTTL); errSet != nil {
			s.logger.Warn("StatusTransitionService: Не удалось закешировать переходы", zap.Error(errSet))
		}
	}
	return toIDs, nil
}

// ListAll - административный дамп всех рёбер, без кеша.
func (s *StatusTransitionService) ListAll(ctx context.Context) ([]dto.StatusTransitionDTO, error) {
	transitions, err := s.transitionRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]dto.StatusTransitionDTO, 0, len(transitions))
	for i := range transitions {
		list = append(list, transitionToDTO(&transitions[i]))
	}
	return list, nil
}

// InvalidateOutgoing сбрасывает кеш исходящих переходов статуса. Ключ
// принадлежит графу переходов, поэтому реестр статусов при мягком удалении
// идёт сюда, а не удаляет ключ напрямую.
func (s *StatusTransitionService) InvalidateOutgoing(ctx context.Context, fromStatusID uint64) {
	if err := s.cacheRepo.Del(ctx, constants.CacheKeyTransitions(fromStatusID)); err != nil {
		s.logger.Warn("StatusTransitionService: Не удалось инвалидировать кеш переходов", zap.Error(err))
	}
}

func (s *StatusTransitionService) invalidate(ctx context.Context, fromStatusID, branchID uint64) {
	s.InvalidateOutgoing(ctx, fromStatusID)
	// Состав переходов влияет на то, что предлагает UI
	if err := s.cacheRepo.DelByPrefix(ctx, constants.CacheKeyViewablePrefix(branchID)); err != nil {
		s.logger.Warn("StatusTransitionService: Не удалось инвалидировать видимые статусы филиала", zap.Error(err))
	}
}
