// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"userhub/internal/delivery/http/middleware"
	"userhub/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	UserHandler       *handler.UserHandler
	PageHandler       *handler.PageHandler
	SessionMiddleware *middleware.SessionMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	userHandler       *handler.UserHandler
	pageHandler       *handler.PageHandler
	sessionMiddleware *middleware.SessionMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		userHandler:       params.UserHandler,
		pageHandler:       params.PageHandler,
		sessionMiddleware: params.SessionMiddleware,
	}
}

// RegisterRoutes sets up the JSON API and the HTML pages.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	// JSON API
	usersGroup := e.Group("/users")
	{
		usersGroup.POST("", r.userHandler.CreateUser)
		usersGroup.GET("", r.userHandler.ListUsers)
		usersGroup.GET("/:id", r.userHandler.GetUser)
		usersGroup.PUT("/:id", r.userHandler.UpdateUser)
		usersGroup.DELETE("/:id", r.userHandler.DeleteUser)
	}

	// Public pages
	e.GET("/", r.pageHandler.Root)
	for _, page := range []string{"register", "signup"} {
		e.GET("/"+page, r.pageHandler.ShowRegisterForm(page+".html"))
		e.POST("/"+page, r.pageHandler.SubmitRegisterForm(page+".html"))
	}
	e.GET("/login", r.pageHandler.ShowLoginForm)
	e.POST("/login", r.pageHandler.SubmitLoginForm)
	e.GET("/logout", r.pageHandler.Logout)

	// Pages that require the session cookie
	e.GET("/dashboard", r.pageHandler.Dashboard, r.sessionMiddleware.RequireUser)
	e.GET("/profile", r.pageHandler.Profile, r.sessionMiddleware.RequireUser)

	userPages := e.Group("/user", r.sessionMiddleware.RequireUser)
	{
		userPages.GET("/update/:id", r.pageHandler.ShowUpdateForm)
		userPages.POST("/update/:id", r.pageHandler.SubmitUpdateForm)
		userPages.GET("/delete/:id", r.pageHandler.ShowDeleteConfirm)
		userPages.POST("/delete/:id", r.pageHandler.SubmitDelete)
	}
}
