package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-station-reservation/internal/repository"
)

// TrainHandler exposes train types and trains.  A train's seat layout
// (cargo_num x places_in_cargo) fixes the valid coordinate space for
// every ticket booked on its trips, so layout fields must be positive.
type TrainHandler struct {
	Types  *repository.TrainTypeRepo
	Trains *repository.TrainRepo
}

func NewTrainHandler(tt *repository.TrainTypeRepo, tr *repository.TrainRepo) *TrainHandler {
	if tt == nil || tr == nil {
		panic("nil repository passed to NewTrainHandler")
	}
	return &TrainHandler{Types: tt, Trains: tr}
}

type trainTypeReq struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type trainTypeResp struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type trainReq struct {
	Name          string `json:"name"`
	CargoNum      uint32 `json:"cargo_num"`
	PlacesInCargo uint32 `json:"places_in_cargo"`
	TrainType     uint64 `json:"train_type"`
}

// CreateType adds a train type.
func (h *TrainHandler) CreateType(c echo.Context) error {
	var req trainTypeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return fieldError(c, http.StatusBadRequest, "name", "name is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Types.Create(ctx, req.Name, req.Description)
	if err != nil {
		if err == repository.ErrTrainTypeExists {
			return fieldError(c, http.StatusConflict, "name", "train type name already exists")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create train type failed"})
	}
	return c.JSON(http.StatusCreated, trainTypeResp{ID: id, Name: req.Name, Description: req.Description})
}

// ListTypes returns all train types.
func (h *TrainHandler) ListTypes(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	types, err := h.Types.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list train types failed"})
	}
	out := make([]trainTypeResp, 0, len(types))
	for _, t := range types {
		out = append(out, trainTypeResp{ID: t.ID, Name: t.Name, Description: t.Description})
	}
	return c.JSON(http.StatusOK, out)
}

// validateTrainReq writes the 400 response itself and reports whether
// it did; c.JSON returns nil on success so its error cannot signal
// failure here.
func validateTrainReq(c echo.Context, req *trainReq) (failed bool) {
	req.Name = strings.TrimSpace(req.Name)
	switch {
	case req.Name == "":
		_ = fieldError(c, http.StatusBadRequest, "name", "name is required")
	case req.CargoNum == 0:
		_ = fieldError(c, http.StatusBadRequest, "cargo_num", "cargo_num must be positive")
	case req.PlacesInCargo == 0:
		_ = fieldError(c, http.StatusBadRequest, "places_in_cargo", "places_in_cargo must be positive")
	case req.TrainType == 0:
		_ = fieldError(c, http.StatusBadRequest, "train_type", "train_type is required")
	default:
		return false
	}
	return true
}

// Create adds a train.
func (h *TrainHandler) Create(c echo.Context) error {
	var req trainReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if validateTrainReq(c, &req) {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Trains.Create(ctx, req.Name, req.CargoNum, req.PlacesInCargo, req.TrainType)
	if err != nil {
		if err == repository.ErrTrainExists {
			return fieldError(c, http.StatusConflict, "name", "train name already exists")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create train failed"})
	}
	det, err := h.Trains.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load train failed"})
	}
	return c.JSON(http.StatusCreated, det)
}

// Update rewrites a train.  Shrinking the layout does not touch
// existing tickets; they were valid against the layout at booking time.
func (h *TrainHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req trainReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if validateTrainReq(c, &req) {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Trains.Update(ctx, id, req.Name, req.CargoNum, req.PlacesInCargo, req.TrainType); err != nil {
		switch err {
		case sql.ErrNoRows:
			return notFound(c, "train not found")
		case repository.ErrTrainExists:
			return fieldError(c, http.StatusConflict, "name", "train name already exists")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update train failed"})
	}
	det, err := h.Trains.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load train failed"})
	}
	return c.JSON(http.StatusOK, det)
}

// Get returns one train with its derived capacity.
func (h *TrainHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	det, err := h.Trains.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return notFound(c, "train not found")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load train failed"})
	}
	return c.JSON(http.StatusOK, det)
}

// List returns trains, optionally filtered by ?name= substring and
// ?train_types=1,2 type IDs.
func (h *TrainHandler) List(c echo.Context) error {
	filter := repository.TrainFilter{Name: strings.TrimSpace(c.QueryParam("name"))}
	if raw := c.QueryParam("train_types"); raw != "" {
		for _, p := range strings.Split(raw, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			n, err := strconv.ParseUint(p, 10, 64)
			if err != nil {
				return fieldError(c, http.StatusBadRequest, "train_types", "train_types must be a comma-separated list of ids")
			}
			filter.TypeIDs = append(filter.TypeIDs, n)
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	trains, err := h.Trains.List(ctx, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list trains failed"})
	}
	return c.JSON(http.StatusOK, trains)
}
