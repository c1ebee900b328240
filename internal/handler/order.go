package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-station-reservation/internal/booking"
	"github.com/iliyamo/train-station-reservation/internal/queue"
	"github.com/iliyamo/train-station-reservation/internal/repository"
)

// OrderHandler exposes booking and order history.  Creation goes
// through the reservation engine so every ticket is validated against
// the train layout before the storage transaction runs; the handler's
// job is translating engine errors into field-keyed responses.
type OrderHandler struct {
	Engine *booking.Engine
	Orders *repository.OrderRepo

	// Publish emits the order.created event after a successful commit.
	// Nil disables publishing; failures are logged, never surfaced to
	// the client, because the order is already durable at that point.
	Publish func(ctx context.Context, ev queue.OrderCreatedEvent) error
}

func NewOrderHandler(engine *booking.Engine, orders *repository.OrderRepo) *OrderHandler {
	if engine == nil || orders == nil {
		panic("nil dependency passed to NewOrderHandler")
	}
	return &OrderHandler{
		Engine: engine,
		Orders: orders,
		Publish: func(ctx context.Context, ev queue.OrderCreatedEvent) error {
			return queue.PublishOrderCreated(ctx, ev)
		},
	}
}

type createOrderReq struct {
	Tickets []booking.SeatRequest `json:"tickets"`
}

type orderTicketResp struct {
	ID    uint64 `json:"id"`
	Trip  uint64 `json:"trip"`
	Cargo uint32 `json:"cargo"`
	Seat  uint32 `json:"seat"`
}

type orderResp struct {
	ID        uint64            `json:"id"`
	CreatedAt string            `json:"created_at"`
	Tickets   []orderTicketResp `json:"tickets"`
}

// Create books every requested seat atomically: either all tickets
// commit under one order or none do.
func (h *OrderHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	order, err := h.Engine.CreateOrder(ctx, uid, req.Tickets)
	if err != nil {
		var oor *booking.OutOfRangeError
		var taken *booking.SeatTakenError
		var missing *booking.TripNotFoundError
		switch {
		case errors.Is(err, booking.ErrEmptyOrder):
			return fieldError(c, http.StatusBadRequest, "tickets", "order must contain at least one ticket")
		case errors.As(err, &oor):
			return fieldError(c, http.StatusBadRequest, oor.Field, oor.Error())
		case errors.As(err, &taken):
			return fieldError(c, http.StatusBadRequest, "seat", taken.Error())
		case errors.As(err, &missing):
			return notFound(c, missing.Error())
		}
		c.Logger().Errorf("create order failed for user %d: %v", uid, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create order failed"})
	}

	resp := orderResp{
		ID:        order.ID,
		CreatedAt: order.CreatedAt.UTC().Format(time.RFC3339),
		Tickets:   make([]orderTicketResp, 0, len(order.Tickets)),
	}
	ev := queue.OrderCreatedEvent{
		OrderID:   order.ID,
		UserID:    uid,
		CreatedAt: resp.CreatedAt,
	}
	for _, t := range order.Tickets {
		resp.Tickets = append(resp.Tickets, orderTicketResp{ID: t.ID, Trip: t.TripID, Cargo: t.Cargo, Seat: t.Seat})
		ev.Tickets = append(ev.Tickets, queue.TicketRef{Trip: t.TripID, Cargo: t.Cargo, Seat: t.Seat})
	}

	if h.Publish != nil {
		if err := h.Publish(ctx, ev); err != nil {
			c.Logger().Warnf("order %d committed but event publish failed: %v", order.ID, err)
		}
	}
	return c.JSON(http.StatusCreated, resp)
}

// List returns one page of the caller's orders, newest first.
func (h *OrderHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	limit, offset, page := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	orders, total, err := h.Orders.ListByUser(ctx, uid, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list orders failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"count":     total,
		"page":      page,
		"page_size": limit,
		"results":   orders,
	})
}
