package router

import (
	"makerLink/internal/middleware"
	"makerLink/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupUserRoutes(api *echo.Group, handler *rest.UserHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	users := api.Group("/users")

	users.POST("/register", handler.Register)
	users.POST("/login", handler.Login)

	users.PUT("/:id", handler.UpdateUser, authRequired, middleware.SelfOrAdmin())
	users.GET("", handler.GetAllUsers, authRequired, adminOnly)
	users.GET("/:id", handler.GetUserByID, authRequired, adminOnly)
	users.DELETE("/:id", handler.DeleteUser, authRequired, adminOnly)
}

func SetupManufacturerRoutes(api *echo.Group, handler *rest.ManufacturerHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	manufacturers := api.Group("/manufacturers")

	manufacturers.GET("", handler.GetAllManufacturers, authRequired)
	manufacturers.GET("/:id", handler.GetManufacturerByID, authRequired)
	manufacturers.GET("/:id/capability", handler.GetCapability, authRequired)
	manufacturers.POST("", handler.CreateManufacturer, authRequired, adminOnly)
	manufacturers.PUT("/:id", handler.UpdateManufacturer, authRequired, adminOnly)
	manufacturers.PUT("/:id/capability", handler.SetCapability, authRequired, adminOnly)
	manufacturers.DELETE("/:id", handler.DeleteManufacturer, authRequired, adminOnly)
}

func SetOrdersRoutes(api *echo.Group, ordersHandler *rest.OrdersHandler) {
	orders := api.Group("/orders", middleware.AuthMiddleware())
	orders.POST("", ordersHandler.CreateOrderItem)
	orders.GET("", ordersHandler.GetAllOrders)
	orders.GET("/:id", ordersHandler.GetOrder)
	orders.PUT("/:id", ordersHandler.UpdateOrder)
	orders.DELETE("/:id", ordersHandler.DeleteOrder)
	orders.PUT("/:id/requirement", ordersHandler.SetRequirement)
	orders.GET("/:id/requirement", ordersHandler.GetRequirement)
}

func SetMatchingRoutes(api *echo.Group, handler *rest.MatchingHandler) {
	matches := api.Group("/matches", middleware.AuthMiddleware())
	matches.GET("", handler.GetMatches)
	matches.POST("/outcome", handler.RecordOutcome)
}

func SetExperimentAdminRoutes(api *echo.Group, handler *rest.ExperimentAdminHandler) {
	admin := api.Group("/admin/experiments", middleware.AuthMiddleware(), middleware.AdminOnly())

	admin.POST("", handler.Create)
	admin.GET("", handler.List)
	admin.GET("/:id", handler.Get)
	admin.POST("/:id/start", handler.Start)
	admin.POST("/:id/stop", handler.Stop)
	admin.GET("/:id/results", handler.Results)
	admin.GET("/:id/stopping-check", handler.StoppingCheck)
}
