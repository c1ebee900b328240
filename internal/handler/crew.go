package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-station-reservation/internal/repository"
)

// CrewHandler exposes the crew roster.
type CrewHandler struct {
	Crew *repository.CrewRepo
}

func NewCrewHandler(cr *repository.CrewRepo) *CrewHandler {
	if cr == nil {
		panic("nil repository passed to NewCrewHandler")
	}
	return &CrewHandler{Crew: cr}
}

type crewReq struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type crewResp struct {
	ID        uint64 `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
}

// Create adds a crew member.
func (h *CrewHandler) Create(c echo.Context) error {
	var req crewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if req.FirstName == "" {
		return fieldError(c, http.StatusBadRequest, "first_name", "first_name is required")
	}
	if req.LastName == "" {
		return fieldError(c, http.StatusBadRequest, "last_name", "last_name is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Crew.Create(ctx, req.FirstName, req.LastName)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create crew failed"})
	}
	return c.JSON(http.StatusCreated, crewResp{
		ID:        id,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		FullName:  req.FirstName + " " + req.LastName,
	})
}

// List returns all crew members.
func (h *CrewHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	members, err := h.Crew.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list crew failed"})
	}
	out := make([]crewResp, 0, len(members))
	for _, m := range members {
		out = append(out, crewResp{
			ID:        m.ID,
			FirstName: m.FirstName,
			LastName:  m.LastName,
			FullName:  m.FullName(),
		})
	}
	return c.JSON(http.StatusOK, out)
}
