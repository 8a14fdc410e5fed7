package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"repair-system/internal/dto"
	"repair-system/internal/services"
	apperrors "repair-system/pkg/errors"
	"repair-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type StatusPermissionController struct {
	permissionService services.StatusPermissionServiceInterface
	reportService     services.StatusReportServiceInterface
	logger            *zap.Logger
}

func NewStatusPermissionController(
	permissionService services.StatusPermissionServiceInterface,
	reportService services.StatusReportServiceInterface,
	logger *zap.Logger,
) *StatusPermissionController {
	return &StatusPermissionController{
		permissionService: permissionService,
		reportService:     reportService,
		logger:            logger,
	}
}

// BulkAssign перезаписывает привилегии для декартова произведения
// ролей и статусов. Старые записи удаляются, отсутствующие флаги
// считаются запрещёнными.
func (c *StatusPermissionController) BulkAssign(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.BulkAssignPermissionsDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil),
			c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.permissionService.BulkAssign(reqCtx, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Привилегии успешно назначены", http.StatusOK)
}

func (c *StatusPermissionController) GetByRoleAndStatus(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	roleID, err := strconv.ParseUint(ctx.QueryParam("role_id"), 10, 64)
	if err != nil || roleID == 0 {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный role_id", err, nil),
			c.logger)
	}
	statusID, err := strconv.ParseUint(ctx.QueryParam("status_id"), 10, 64)
	if err != nil || statusID == 0 {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный status_id", err, nil),
			c.logger)
	}

	perm, err := c.permissionService.LookupByRoleAndStatus(reqCtx, roleID, statusID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if perm == nil {
		return utils.ErrorResponse(ctx, apperrors.ErrNotFound, c.logger)
	}
	return utils.SuccessResponse(ctx, dto.NewStatusPermissionDTO(*perm), "Привилегии успешно получены", http.StatusOK)
}

func (c *StatusPermissionController) GetByBranch(ctx echo.Context) error {
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

	perms, err := c.permissionService.LookupByRolesAndBranch(reqCtx, roleIDs, branchID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res := make([]dto.StatusPermissionDTO, 0, len(perms))
	for _, p := range perms {
		res = append(res, dto.NewStatusPermissionDTO(p))
	}
	return utils.SuccessResponse(ctx, res, "Привилегии успешно получены", http.StatusOK, uint64(len(res)))
}

func (c *StatusPermissionController) CheckPermissions(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.CheckPermissionsDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil),
			c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	// Если роли не переданы явно, берём роли текущего пользователя.
	roleIDs := payload.RoleIDs
	if len(roleIDs) == 0 {
		var err error
		roleIDs, err = utils.GetRoleIDsFromCtx(reqCtx)
		if err != nil {
			return utils.ErrorResponse(ctx, err, c.logger)
		}
	}

	err := c.permissionService.CheckPermissions(reqCtx, roleIDs, payload.BranchID, payload.StatusID, payload.Required, payload.Location, nil)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, map[string]bool{"allowed": true}, "Доступ разрешён", http.StatusOK)
}

func (c *StatusPermissionController) ExportMatrix(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	branchID, err := strconv.ParseUint(ctx.QueryParam("branch_id"), 10, 64)
	if err != nil || branchID == 0 {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный branch_id", err, nil),
			c.logger)
	}

	file, err := c.reportService.ExportPermissionMatrix(reqCtx, branchID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	fileName := fmt.Sprintf("permission_matrix_%d_%s.xlsx", branchID, time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, fileName))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().WriteHeader(http.StatusOK)

	if err := file.Write(ctx.Response().Writer); err != nil {
		c.logger.Error("Ошибка записи XLSX в ответ", zap.Error(err))
		return err
	}
	return nil
}
