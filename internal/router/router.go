package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-station-reservation/internal/handler"
	"github.com/iliyamo/train-station-reservation/internal/middleware"
)

// Handlers bundles every handler the API mounts.  The router owns no
// logic beyond wiring paths to handlers and middleware to groups.
type Handlers struct {
	Auth     *handler.AuthHandler
	Stations *handler.StationHandler
	Routes   *handler.RouteHandler
	Trains   *handler.TrainHandler
	Crew     *handler.CrewHandler
	Trips    *handler.TripHandler
	Orders   *handler.OrderHandler
}

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAPI registers the versioned API surface.  Unauthenticated
// auth operations live under /v1/auth; everything else requires a valid
// access token.  Catalog reads and booking accept any authenticated
// role while catalog writes are restricted to ADMIN, mirroring the
// station-master / passenger split.
func RegisterAPI(e *echo.Echo, h Handlers, jwtSecret string, extra ...echo.MiddlewareFunc) {
	// Session management; no existing token required.
	g := e.Group("/v1/auth")
	g.POST("/register", h.Auth.Register)
	g.POST("/login", h.Auth.Login)
	// /refresh rotates the refresh token; /refresh-access only reissues
	// the short-lived access token.
	g.POST("/refresh", h.Auth.Refresh)
	g.POST("/refresh-access", h.Auth.RefreshAccess)
	// Logout accepts either a bearer token or a refresh_token body and
	// therefore skips the JWT middleware.
	g.POST("/logout", h.Auth.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("ADMIN", "CUSTOMER"))
	// Optional middleware (response cache, rate limiter) applies to the
	// whole authenticated surface.
	for _, mw := range extra {
		auth.Use(mw)
	}

	auth.GET("/me", h.Auth.Me)

	admin := middleware.RequireRole("ADMIN")

	// Station catalog.
	auth.GET("/stations", h.Stations.List)
	auth.POST("/stations", h.Stations.Create, admin)

	// Routes between stations.
	auth.GET("/routes", h.Routes.List)
	auth.GET("/routes/:id", h.Routes.Get)
	auth.POST("/routes", h.Routes.Create, admin)

	// Train types and trains.
	auth.GET("/train-types", h.Trains.ListTypes)
	auth.POST("/train-types", h.Trains.CreateType, admin)
	auth.GET("/trains", h.Trains.List)
	auth.GET("/trains/:id", h.Trains.Get)
	auth.POST("/trains", h.Trains.Create, admin)
	auth.PUT("/trains/:id", h.Trains.Update, admin)

	// Crew roster.
	auth.GET("/crew", h.Crew.List)
	auth.POST("/crew", h.Crew.Create, admin)

	// Trip timetable with seat availability.
	auth.GET("/trips", h.Trips.List)
	auth.GET("/trips/:id", h.Trips.Get)
	auth.POST("/trips", h.Trips.Create, admin)
	auth.PUT("/trips/:id", h.Trips.Update, admin)
	auth.DELETE("/trips/:id", h.Trips.Delete, admin)

	// Booking and order history; any authenticated role.
	auth.POST("/orders", h.Orders.Create)
	auth.GET("/orders", h.Orders.List)
}
