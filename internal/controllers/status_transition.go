package controllers

import (
	"net/http"

	"repair-system/internal/dto"
	"repair-system/internal/services"
	apperrors "repair-system/pkg/errors"
	"repair-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type StatusTransitionController struct {
	transitionService services.StatusTransitionServiceInterface
	logger            *zap.Logger
}

func NewStatusTransitionController(transitionService services.StatusTransitionServiceInterface, logger *zap.Logger) *StatusTransitionController {
	return &StatusTransitionController{transitionService: transitionService, logger: logger}
}

func (c *StatusTransitionController) GetTransitions(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	res, err := c.transitionService.ListAll(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Список переходов успешно получен", http.StatusOK, uint64(len(res)))
}

func (c *StatusTransitionController) GetOutgoing(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	fromID, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.transitionService.ListOutgoing(reqCtx, fromID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Переходы статуса успешно получены", http.StatusOK)
}

// ReplaceOutgoing полностью заменяет исходящие переходы статуса.
// Пустой список допустим: статус становится терминальным.
func (c *StatusTransitionController) ReplaceOutgoing(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	fromID, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.ReplaceTransitionsDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil),
			c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.transitionService.ReplaceOutgoing(reqCtx, fromID, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Переходы статуса успешно обновлены", http.StatusOK)
}
