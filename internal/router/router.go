// Package router registers the HTTP surface. Everything under /api requires
// a valid access token except login and QR validation, which the front door
// device calls unauthenticated.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/gymadmin/backoffice/internal/handler"
	"github.com/gymadmin/backoffice/internal/middleware"
	"github.com/gymadmin/backoffice/internal/model"
)

// Handlers bundles every handler the router wires.
type Handlers struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Classes  *handler.ClassHandler
	Bookings *handler.BookingHandler
	Plans    *handler.PlanHandler
	Stock    *handler.StockHandler
	Cash     *handler.CashHandler
	Access   *handler.AccessHandler
	Routines *handler.RoutineHandler
}

// Register wires all routes. The limiter guards the unauthenticated surface;
// the cache middleware sits on hot read-only GETs. Either may be nil, in
// which case the route runs without it.
func Register(e *echo.Echo, h Handlers, jwtSecret string, limiter, cache echo.MiddlewareFunc) {
	if limiter == nil {
		limiter = passthrough
	}
	if cache == nil {
		cache = passthrough
	}

	e.GET("/healthz", handler.Health)

	// Open endpoints: login and the door scanner.
	e.POST("/api/login", h.Auth.Login, limiter)
	e.POST("/api/acceso/validar", h.Access.Validate, limiter)

	api := e.Group("/api")
	api.Use(middleware.JWTAuth(jwtSecret))

	admin := middleware.RequireRole(model.RoleAdmin)

	api.GET("/me", h.Auth.Me)
	api.PUT("/usuarios/reset-password", h.Auth.ResetPassword, admin)

	// Access control.
	api.GET("/acceso/historial", h.Access.History, cache)
	api.GET("/acceso/qr/:dni", h.Access.QRFor)

	// Members.
	api.GET("/alumnos", h.Users.ListMembers)
	api.POST("/alumnos", h.Users.CreateMember)
	api.GET("/alumnos/:id", h.Users.GetMember)
	api.PUT("/alumnos/:id", h.Users.UpdateMember)
	api.DELETE("/alumnos/:id", h.Users.DeleteMember)

	// Staff. Coaches and administrators share the roster table; the staff
	// surface lists both, the role-specific surfaces filter.
	api.GET("/staff", h.Users.ListStaff)
	api.POST("/staff", h.Users.CreateStaff, admin)
	api.PUT("/staff/:id", h.Users.UpdateStaff, admin)
	api.DELETE("/staff/:id", h.Users.DeleteStaff, admin)

	api.GET("/profesores", h.Users.ListCoaches)
	api.POST("/profesores", h.Users.CreateCoach, admin)
	api.PUT("/profesores/:id", h.Users.UpdateCoach, admin)
	api.DELETE("/profesores/:id", h.Users.DeleteCoach, admin)

	api.GET("/administrativos", h.Users.ListAdmins)
	api.POST("/administrativos", h.Users.CreateAdmin, admin)
	api.PUT("/administrativos/:id", h.Users.UpdateAdmin, admin)
	api.DELETE("/administrativos/:id", h.Users.DeleteAdmin, admin)

	// Classes and bookings.
	api.GET("/clases", h.Classes.List, cache)
	api.POST("/clases", h.Classes.Create)
	api.GET("/clases/:id", h.Classes.Get)
	api.PUT("/clases/:id", h.Classes.Update)
	api.DELETE("/clases/:id", h.Classes.Delete)
	api.PUT("/clases/:id/move", h.Classes.Move)

	api.GET("/reservas", h.Bookings.List)
	api.POST("/reservas", h.Bookings.Create)
	api.DELETE("/reservas/:id", h.Bookings.Delete)

	// Plans.
	api.GET("/planes", h.Plans.List)
	api.POST("/planes", h.Plans.Create, admin)
	api.GET("/planes/:id", h.Plans.Get)
	api.PUT("/planes/:id", h.Plans.Update, admin)
	api.DELETE("/planes/:id", h.Plans.Delete, admin)
	api.GET("/tipos-planes", h.Plans.ListTypes)

	// Inventory.
	api.GET("/stock", h.Stock.List)
	api.POST("/stock", h.Stock.Create)
	api.GET("/stock/:id", h.Stock.Get)
	api.PUT("/stock/:id", h.Stock.Update)
	api.DELETE("/stock/:id", h.Stock.Delete)

	// Register.
	api.GET("/caja/resumen", h.Cash.Summary, cache)
	api.GET("/caja/movimientos", h.Cash.ListMovements)
	api.POST("/caja/movimiento", h.Cash.CreateMovement)
	api.POST("/caja/movimientos", h.Cash.CreateMovement) // plural alias kept for older clients
	api.POST("/cobros/procesar", h.Cash.ProcessPayment)

	// Routines.
	api.GET("/rutinas/grupos-musculares", h.Routines.ListMuscleGroups, cache)
	api.POST("/rutinas/grupos-musculares", h.Routines.CreateMuscleGroup)
	api.GET("/rutinas/ejercicios", h.Routines.ListExercises, cache)
	api.POST("/rutinas/ejercicios", h.Routines.CreateExercise)
	api.POST("/rutinas/plan", h.Routines.CreatePlan)
	api.GET("/rutinas/usuario/:id", h.Routines.Active)
	api.GET("/rutinas/historial/:id", h.Routines.History)
}

func passthrough(next echo.HandlerFunc) echo.HandlerFunc { return next }
