package controllers

import (
	"net/http"
	"strconv"

	"repair-system/internal/dto"
	"repair-system/internal/services"
	apperrors "repair-system/pkg/errors"
	"repair-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type WorkflowStatusController struct {
	statusService services.WorkflowStatusServiceInterface
	logger        *zap.Logger
}

func NewWorkflowStatusController(statusService services.WorkflowStatusServiceInterface, logger *zap.Logger) *WorkflowStatusController {
	return &WorkflowStatusController{statusService: statusService, logger: logger}
}

func parseIDParam(ctx echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewHttpError(
			http.StatusBadRequest,
			"Неверный ID",
			err,
			map[string]interface{}{"param": ctx.Param(name)},
		)
	}
	return id, nil
}

func (c *WorkflowStatusController) GetStatuses(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	if branchStr := ctx.QueryParam("branch_id"); branchStr != "" {
		branchID, err := strconv.ParseUint(branchStr, 10, 64)
		if err != nil || branchID == 0 {
			return utils.ErrorResponse(ctx,
				apperrors.NewHttpError(http.StatusBadRequest, "Неверный branch_id", err, nil),
				c.logger)
		}
		res, err := c.statusService.GetStatuses(reqCtx, branchID)
		if err != nil {
			return utils.ErrorResponse(ctx, err, c.logger)
		}
		return utils.SuccessResponse(ctx, res, "Список статусов успешно получен", http.StatusOK, uint64(len(res)))
	}

	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	res, total, err := c.statusService.GetStatusesFiltered(reqCtx, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Список статусов успешно получен", http.StatusOK, total)
}

func (c *WorkflowStatusController) GetViewableStatuses(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	roleIDs, err := utils.GetRoleIDsFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	branchID, err := utils.GetBranchIDFromCtx(reqCtx)
	if branchStr := ctx.QueryParam("branch_id"); branchStr != "" {
		branchID, err = strconv.ParseUint(branchStr, 10, 64)
	}
	if err != nil || branchID == 0 {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный branch_id", err, nil),
			c.logger)
	}

	res, err := c.statusService.FindViewable(reqCtx, roleIDs, branchID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Видимые статусы успешно получены", http.StatusOK)
}

func (c *WorkflowStatusController) FindStatus(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.statusService.FindStatus(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Статус успешно найден", http.StatusOK)
}

func (c *WorkflowStatusController) CreateStatus(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.CreateWorkflowStatusDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil),
			c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	userID, err := utils.GetUserIDFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.statusService.CreateStatus(reqCtx, userID, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Статус успешно создан", http.StatusCreated)
}

func (c *WorkflowStatusController) UpdateStatus(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateWorkflowStatusDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil),
			c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.statusService.UpdateStatus(reqCtx, id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Статус успешно обновлён", http.StatusOK)
}

func (c *WorkflowStatusController) UpdateSort(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateStatusSortDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil),
			c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.statusService.UpdateSort(reqCtx, id, payload.Sort); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Порядок статусов успешно обновлён", http.StatusOK)
}

func (c *WorkflowStatusController) DeleteStatus(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.statusService.SoftDeleteStatus(reqCtx, id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Статус успешно удалён", http.StatusOK)
}
