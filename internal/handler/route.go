package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-station-reservation/internal/repository"
)

// RouteHandler exposes the route catalog.
type RouteHandler struct {
	Routes *repository.RouteRepo
}

func NewRouteHandler(r *repository.RouteRepo) *RouteHandler {
	if r == nil {
		panic("nil repository passed to NewRouteHandler")
	}
	return &RouteHandler{Routes: r}
}

type routeReq struct {
	Source      uint64 `json:"source"`
	Destination uint64 `json:"destination"`
	Distance    uint32 `json:"distance"`
}

// Create adds a route between two distinct stations.  The (source,
// destination) pair is unique; the reverse direction is a separate route.
func (h *RouteHandler) Create(c echo.Context) error {
	var req routeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Source == 0 {
		return fieldError(c, http.StatusBadRequest, "source", "source station is required")
	}
	if req.Destination == 0 {
		return fieldError(c, http.StatusBadRequest, "destination", "destination station is required")
	}
	if req.Source == req.Destination {
		return fieldError(c, http.StatusBadRequest, "destination", "source and destination must differ")
	}
	if req.Distance == 0 {
		return fieldError(c, http.StatusBadRequest, "distance", "distance must be positive")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Routes.Create(ctx, req.Source, req.Destination, req.Distance)
	if err != nil {
		if err == repository.ErrRouteExists {
			return fieldError(c, http.StatusConflict, "destination", "route between these stations already exists")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create route failed"})
	}
	det, err := h.Routes.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load route failed"})
	}
	return c.JSON(http.StatusCreated, det)
}

// Get returns one route with station names resolved.
func (h *RouteHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	det, err := h.Routes.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return notFound(c, "route not found")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load route failed"})
	}
	return c.JSON(http.StatusOK, det)
}

// List returns all routes.
func (h *RouteHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	routes, err := h.Routes.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list routes failed"})
	}
	return c.JSON(http.StatusOK, routes)
}
