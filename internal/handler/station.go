package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-station-reservation/internal/repository"
)

// StationHandler exposes the station catalog.  Reads are open to any
// authenticated user; creation is restricted to ADMIN by the router.
type StationHandler struct {
	Stations *repository.StationRepo
}

func NewStationHandler(s *repository.StationRepo) *StationHandler {
	if s == nil {
		panic("nil repository passed to NewStationHandler")
	}
	return &StationHandler{Stations: s}
}

type stationReq struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type stationResp struct {
	ID        uint64  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Create adds a station.  Names are unique; coordinates must be valid
// WGS84 degrees.
func (h *StationHandler) Create(c echo.Context) error {
	var req stationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return fieldError(c, http.StatusBadRequest, "name", "name is required")
	}
	if req.Latitude < -90 || req.Latitude > 90 {
		return fieldError(c, http.StatusBadRequest, "latitude", "latitude must be between -90 and 90")
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		return fieldError(c, http.StatusBadRequest, "longitude", "longitude must be between -180 and 180")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Stations.Create(ctx, req.Name, req.Latitude, req.Longitude)
	if err != nil {
		if err == repository.ErrStationExists {
			return fieldError(c, http.StatusConflict, "name", "station name already exists")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create station failed"})
	}
	return c.JSON(http.StatusCreated, stationResp{ID: id, Name: req.Name, Latitude: req.Latitude, Longitude: req.Longitude})
}

// List returns all stations ordered by name.
func (h *StationHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stations, err := h.Stations.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list stations failed"})
	}
	out := make([]stationResp, 0, len(stations))
	for _, s := range stations {
		out = append(out, stationResp{ID: s.ID, Name: s.Name, Latitude: s.Latitude, Longitude: s.Longitude})
	}
	return c.JSON(http.StatusOK, out)
}
