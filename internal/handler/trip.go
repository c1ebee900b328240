package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-station-reservation/internal/repository"
)

// TripHandler exposes the trip timetable.  Listings carry the derived
// tickets_available figure; the detail view adds every taken seat so
// clients can render the layout before booking.
type TripHandler struct {
	Trips  *repository.TripRepo
	Routes *repository.RouteRepo
	Trains *repository.TrainRepo
	Crew   *repository.CrewRepo
}

func NewTripHandler(tp *repository.TripRepo, rt *repository.RouteRepo, tr *repository.TrainRepo, cr *repository.CrewRepo) *TripHandler {
	if tp == nil || rt == nil || tr == nil || cr == nil {
		panic("nil repository passed to NewTripHandler")
	}
	return &TripHandler{Trips: tp, Routes: rt, Trains: tr, Crew: cr}
}

type tripReq struct {
	Route         uint64   `json:"route"`
	Train         uint64   `json:"train"`
	DepartureTime string   `json:"departure_time"`
	ArrivalTime   string   `json:"arrival_time"`
	Crew          []uint64 `json:"crew"`
}

// parseTripReq validates the payload and resolves its references.  On
// failure it writes the response itself and reports failed=true;
// c.JSON returns nil on success so its error cannot signal failure to
// the caller.
func (h *TripHandler) parseTripReq(ctx context.Context, c echo.Context, req *tripReq) (dep, arr time.Time, failed bool) {
	fail := func(status int, field, msg string) (time.Time, time.Time, bool) {
		_ = fieldError(c, status, field, msg)
		return dep, arr, true
	}
	internal := func(msg string) (time.Time, time.Time, bool) {
		_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
		return dep, arr, true
	}

	if req.Route == 0 {
		return fail(http.StatusBadRequest, "route", "route is required")
	}
	if req.Train == 0 {
		return fail(http.StatusBadRequest, "train", "train is required")
	}
	var err error
	dep, err = time.Parse(time.RFC3339, req.DepartureTime)
	if err != nil {
		return fail(http.StatusBadRequest, "departure_time", "departure_time must be RFC3339")
	}
	arr, err = time.Parse(time.RFC3339, req.ArrivalTime)
	if err != nil {
		return fail(http.StatusBadRequest, "arrival_time", "arrival_time must be RFC3339")
	}
	if !arr.After(dep) {
		return fail(http.StatusBadRequest, "arrival_time", "arrival_time must be after departure_time")
	}

	if _, err := h.Routes.GetByID(ctx, req.Route); err != nil {
		if err == sql.ErrNoRows {
			return fail(http.StatusBadRequest, "route", "route does not exist")
		}
		return internal("load route failed")
	}
	if _, err := h.Trains.GetByID(ctx, req.Train); err != nil {
		if err == sql.ErrNoRows {
			return fail(http.StatusBadRequest, "train", "train does not exist")
		}
		return internal("load train failed")
	}
	if len(req.Crew) > 0 {
		ok, err := h.Crew.Exist(ctx, req.Crew)
		if err != nil {
			return internal("load crew failed")
		}
		if !ok {
			return fail(http.StatusBadRequest, "crew", "one or more crew members do not exist")
		}
	}
	return dep, arr, false
}

// Create schedules a trip.
func (h *TripHandler) Create(c echo.Context) error {
	var req tripReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	dep, arr, failed := h.parseTripReq(ctx, c, &req)
	if failed {
		return nil
	}

	id, err := h.Trips.Create(ctx, req.Route, req.Train, dep, arr, req.Crew)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create trip failed"})
	}
	det, err := h.Trips.GetDetail(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load trip failed"})
	}
	return c.JSON(http.StatusCreated, det)
}

// Update rewrites a trip and its crew assignments.
func (h *TripHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req tripReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	dep, arr, failed := h.parseTripReq(ctx, c, &req)
	if failed {
		return nil
	}

	if err := h.Trips.Update(ctx, id, req.Route, req.Train, dep, arr, req.Crew); err != nil {
		if err == sql.ErrNoRows {
			return notFound(c, "trip not found")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update trip failed"})
	}
	det, err := h.Trips.GetDetail(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load trip failed"})
	}
	return c.JSON(http.StatusOK, det)
}

// Delete removes a trip; its tickets cascade away with it.
func (h *TripHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Trips.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return notFound(c, "trip not found")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete trip failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Get returns the full trip view including taken_places.
func (h *TripHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	det, err := h.Trips.GetDetail(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return notFound(c, "trip not found")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load trip failed"})
	}
	return c.JSON(http.StatusOK, det)
}

// List returns trips with availability, filtered by ?departure_date=
// (YYYY-MM-DD) and ?route= (station name substring).
func (h *TripHandler) List(c echo.Context) error {
	filter := repository.TripFilter{
		DepartureDate: strings.TrimSpace(c.QueryParam("departure_date")),
		Route:         strings.TrimSpace(c.QueryParam("route")),
	}
	if filter.DepartureDate != "" {
		if _, err := time.Parse("2006-01-02", filter.DepartureDate); err != nil {
			return fieldError(c, http.StatusBadRequest, "departure_date", "departure_date must be YYYY-MM-DD")
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	trips, err := h.Trips.List(ctx, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list trips failed"})
	}
	return c.JSON(http.StatusOK, trips)
}
