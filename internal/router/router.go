// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/festival-program-office/internal/handler"
	"github.com/iliyamo/festival-program-office/internal/middleware"
	"github.com/iliyamo/festival-program-office/internal/model"
)

// RegisterRoutes registers the routes that require no authentication.
// Currently that is only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints.  Register, login and
// the refresh flows are open; logout, /me and the password change require a
// valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.PUT("/me/password", a.ChangePassword)
	auth.POST("/logout", a.Logout)
}

// RegisterPrograms registers the program workflow.  The group only checks
// that a token is present; which actions the user may take inside a program
// is decided by the services from relationship data.
func RegisterPrograms(e *echo.Echo, p *handler.ProgramHandler, s *handler.ScreeningHandler, jwtSecret string) {
	g := e.Group("/v1/programs")
	g.Use(middleware.JWTAuth(jwtSecret))

	g.POST("", p.Create)
	g.GET("", p.List)
	g.GET("/:id", p.Get)
	g.PUT("/:id", p.Update)
	g.DELETE("/:id", p.Delete)
	g.POST("/:id/advance", p.Advance)

	g.POST("/:id/programmers", p.AddProgrammer)
	g.DELETE("/:id/programmers/:userID", p.RemoveProgrammer)
	g.POST("/:id/staff", p.AddStaff)
	g.DELETE("/:id/staff/:userID", p.RemoveStaff)

	g.GET("/:id/screenings", s.ListByProgram)
}

// RegisterScreenings registers the screening workflow.
func RegisterScreenings(e *echo.Echo, s *handler.ScreeningHandler, jwtSecret string) {
	g := e.Group("/v1/screenings")
	g.Use(middleware.JWTAuth(jwtSecret))

	g.POST("", s.Create)
	g.GET("/mine", s.ListMine)
	g.GET("/:id", s.Get)
	g.PUT("/:id", s.Update)
	g.DELETE("/:id", s.Withdraw)

	g.POST("/:id/submit", s.Submit)
	g.POST("/:id/assign", s.Assign)
	g.POST("/:id/review", s.Review)
	g.POST("/:id/approve", s.Approve)
	g.POST("/:id/final-submit", s.FinalSubmit)
	g.POST("/:id/schedule", s.Schedule)
	g.POST("/:id/reject", s.Reject)
}

// RegisterAdmin registers the administration surface behind the ADMIN
// global role: account management and the audit trail.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(string(model.RoleAdmin)))

	g.GET("/users", a.ListUsers)
	g.POST("/users/:id/activate", a.Activate)
	g.POST("/users/:id/deactivate", a.Deactivate)
	g.GET("/audit", a.ListAudit)
}
