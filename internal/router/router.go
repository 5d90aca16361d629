// Package router defines how HTTP routes are registered for the API.  Route
// groups compose the middleware stack in a fixed order: rate limit, JWT,
// role gate, ownership chain, handler.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/qrfood/eatery-backend/internal/handler"
	"github.com/qrfood/eatery-backend/internal/middleware"
	"github.com/qrfood/eatery-backend/internal/model"
	"github.com/qrfood/eatery-backend/internal/repository"
)

// Repos bundles the repositories the ownership chains resolve through.
type Repos struct {
	Categories *repository.CategoryRepo
	Dishes     *repository.DishRepo
	Tables     *repository.TableRepo
	Orders     *repository.OrderRepo
	OrderItems *repository.OrderItemRepo
	Access     *repository.UserAccessRepo
}

// Handlers bundles every handler the server mounts.
type Handlers struct {
	Auth       *handler.AuthHandler
	Hybrid     *handler.HybridAuthHandler
	Categories *handler.CategoryHandler
	Dishes     *handler.DishHandler
	Tables     *handler.TableHandler
	Orders     *handler.OrderHandler
	OrderItems *handler.OrderItemHandler
	Staff      *handler.StaffHandler
	PublicMenu *handler.PublicMenuHandler
}

// RegisterRoutes registers routes that carry no middleware at all.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth mounts the session endpoints.  rateLimit guards the whole
// /v1/auth group against credential stuffing; the bearer-protected
// endpoints additionally run JWTAuth.
func RegisterAuth(e *echo.Echo, h Handlers, jwtSecret string, rateLimit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	if rateLimit != nil {
		g.Use(rateLimit)
	}
	g.POST("/login", h.Auth.Login)
	g.POST("/refresh-token", h.Auth.Refresh)
	g.POST("/magic-link", h.Hybrid.RequestMagicLink)
	g.GET("/verify-token", h.Hybrid.VerifyToken)
	g.POST("/password-reset/request", h.Hybrid.RequestPasswordReset)
	g.POST("/password-reset/complete", h.Hybrid.CompletePasswordReset)

	bearer := g.Group("", middleware.JWTAuth(jwtSecret))
	bearer.POST("/recreate-token-on-eatery-change", h.Auth.SwitchEatery)
	bearer.POST("/logout", h.Auth.Logout)

	e.GET("/v1/me", h.Auth.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterEatery mounts the tenant-scoped resource surface under
// /v1/eatery/:eateryId.  Every route in the group runs JWTAuth, a role gate
// and the ownership chain for the ids its path carries.
func RegisterEatery(e *echo.Echo, h Handlers, r Repos, jwtSecret string) {
	categoryOf := middleware.ParentResolver(r.Categories.EateryID)
	dishOf := middleware.ParentResolver(r.Dishes.CategoryID)
	tableOf := middleware.ParentResolver(r.Tables.EateryID)
	orderOf := middleware.ParentResolver(r.Orders.EateryID)
	orderItemOf := middleware.ParentResolver(r.OrderItems.EateryID)
	staffOf := middleware.MemberResolver(r.Access.HasAccess)

	chain := middleware.OwnershipChain(
		middleware.ChainLink{ChildParam: "categoryId", ParentParam: "eateryId", Resolve: categoryOf},
		middleware.ChainLink{ChildParam: "dishId", ParentParam: "categoryId", Resolve: dishOf},
		middleware.ChainLink{ChildParam: "tableId", ParentParam: "eateryId", Resolve: tableOf},
		middleware.ChainLink{ChildParam: "orderId", ParentParam: "eateryId", Resolve: orderOf},
		middleware.ChainLink{ChildParam: "orderItemId", ParentParam: "eateryId", Resolve: orderItemOf},
		middleware.ChainLink{ChildParam: "userId", ParentParam: "eateryId", Member: staffOf},
	)

	g := e.Group("/v1/eatery/:eateryId", middleware.JWTAuth(jwtSecret), chain)

	// menu management: admins only
	admin := g.Group("", middleware.RequireRole(model.RoleEateryAdmin))
	admin.POST("/categories", h.Categories.Create)
	admin.PUT("/category/:categoryId", h.Categories.Update)
	admin.DELETE("/category/:categoryId", h.Categories.Delete)
	admin.POST("/category/:categoryId/dishes", h.Dishes.Create)
	admin.PUT("/category/:categoryId/dish/:dishId", h.Dishes.Update)
	admin.DELETE("/category/:categoryId/dish/:dishId", h.Dishes.Delete)
	admin.POST("/tables", h.Tables.Create)
	admin.DELETE("/table/:tableId", h.Tables.Delete)

	// read surface: any staff member
	staff := g.Group("", middleware.RequireRole(
		model.RoleEateryAdmin, model.RoleKitchenAdmin, model.RoleCashier, model.RoleWaiter))
	staff.GET("/categories", h.Categories.List)
	staff.GET("/category/:categoryId", h.Categories.Get)
	staff.GET("/category/:categoryId/dishes", h.Dishes.List)
	staff.GET("/category/:categoryId/dish/:dishId", h.Dishes.Get)
	staff.GET("/tables", h.Tables.List)
	staff.GET("/table/:tableId", h.Tables.Get)
	staff.GET("/orders", h.Orders.List)
	staff.GET("/order/:orderId", h.Orders.Get)
	staff.GET("/order/:orderId/items", h.OrderItems.List)

	// order flow
	waiters := g.Group("", middleware.RequireRole(model.RoleEateryAdmin, model.RoleWaiter))
	waiters.POST("/orders", h.Orders.Create)
	waiters.POST("/order/:orderId/items", h.OrderItems.Create)
	waiters.PUT("/order-item/:orderItemId", h.OrderItems.Update)
	waiters.DELETE("/order-item/:orderItemId", h.OrderItems.Delete)

	// status transitions are role-gated per status inside the handler
	flow := g.Group("", middleware.RequireRole(
		model.RoleEateryAdmin, model.RoleKitchenAdmin, model.RoleCashier, model.RoleWaiter))
	flow.PUT("/order/:orderId/status", h.Orders.UpdateStatus)

	// staff management: admins only
	admin.GET("/staff", h.Staff.List)
	admin.POST("/staff", h.Staff.Grant)
	admin.DELETE("/staff/:userId", h.Staff.Revoke)
}

// RegisterPublic mounts the guest menu behind the redis response cache.
func RegisterPublic(e *echo.Echo, h Handlers, cache echo.MiddlewareFunc) {
	if cache != nil {
		e.GET("/v1/eatery/:eateryId/menu", h.PublicMenu.Menu, cache)
		return
	}
	e.GET("/v1/eatery/:eateryId/menu", h.PublicMenu.Menu)
}
