package routes

import (
	"repair-system/internal/controllers"
	"repair-system/pkg/middleware"

	"github.com/labstack/echo/v4"
)

func runStatusPermissionRouter(
	secureGroup *echo.Group,
	permissionCtrl *controllers.StatusPermissionController,
	authMW *middleware.AuthMiddleware,
) {
	permissions := secureGroup.Group("/status-permissions")

	permissions.GET("", permissionCtrl.GetByRoleAndStatus)
	permissions.GET("/my", permissionCtrl.GetByBranch)
	permissions.POST("/bulk", permissionCtrl.BulkAssign, authMW.RequireWorkflowManage)
	permissions.POST("/check", permissionCtrl.CheckPermissions)
	permissions.GET("/export", permissionCtrl.ExportMatrix, authMW.RequireWorkflowManage)
}
