package routes

import (
	"repair-system/internal/controllers"
	"repair-system/pkg/middleware"

	"github.com/labstack/echo/v4"
)

func runWorkflowStatusRouter(
	secureGroup *echo.Group,
	statusCtrl *controllers.WorkflowStatusController,
	authMW *middleware.AuthMiddleware,
) {
	statuses := secureGroup.Group("/workflow-statuses")

	statuses.GET("", statusCtrl.GetStatuses)
	statuses.GET("/viewable", statusCtrl.GetViewableStatuses)
	statuses.GET("/:id", statusCtrl.FindStatus)
	statuses.POST("", statusCtrl.CreateStatus, authMW.RequireWorkflowManage)
	statuses.PUT("/:id", statusCtrl.UpdateStatus, authMW.RequireWorkflowManage)
	statuses.PATCH("/:id/sort", statusCtrl.UpdateSort, authMW.RequireWorkflowManage)
	statuses.DELETE("/:id", statusCtrl.DeleteStatus, authMW.RequireWorkflowManage)
}
