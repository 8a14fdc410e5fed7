package routes

import (
	"repair-system/internal/controllers"
	"repair-system/pkg/middleware"

	"github.com/labstack/echo/v4"
)

func runStatusTransitionRouter(
	secureGroup *echo.Group,
	transitionCtrl *controllers.StatusTransitionController,
	authMW *middleware.AuthMiddleware,
) {
	transitions := secureGroup.Group("/status-transitions")

	transitions.GET("", transitionCtrl.GetTransitions)
	transitions.GET("/:id", transitionCtrl.GetOutgoing)
	transitions.PUT("/:id", transitionCtrl.ReplaceOutgoing, authMW.RequireWorkflowManage)
}
