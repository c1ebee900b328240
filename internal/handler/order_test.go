package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/train-station-reservation/internal/booking"
	"github.com/iliyamo/train-station-reservation/internal/model"
	"github.com/iliyamo/train-station-reservation/internal/queue"
)

type fakeTripStore struct {
	trips map[uint64]*model.Trip
}

func (s *fakeTripStore) GetForBooking(_ context.Context, tripID uint64) (*model.Trip, error) {
	trip, ok := s.trips[tripID]
	if !ok {
		return nil, &booking.TripNotFoundError{TripID: tripID}
	}
	return trip, nil
}

type seatKey struct {
	trip        uint64
	cargo, seat uint32
}

type memOrderStore struct {
	mu     sync.Mutex
	taken  map[seatKey]bool
	nextID uint64
}

func (s *memOrderStore) Create(_ context.Context, userID uint64, reqs []booking.SeatRequest) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range reqs {
		if s.taken[seatKey{r.TripID, r.Cargo, r.Seat}] {
			return nil, &booking.SeatTakenError{TripID: r.TripID, Cargo: r.Cargo, Seat: r.Seat}
		}
	}
	s.nextID++
	order := &model.Order{ID: s.nextID, UserID: userID, CreatedAt: time.Now().UTC()}
	var tid uint64
	for _, r := range reqs {
		s.taken[seatKey{r.TripID, r.Cargo, r.Seat}] = true
		tid++
		order.Tickets = append(order.Tickets, model.Ticket{
			ID: tid, OrderID: order.ID, TripID: r.TripID, Cargo: r.Cargo, Seat: r.Seat,
		})
	}
	return order, nil
}

// newOrderTestHandler wires the engine over in-memory stores and
// captures published events instead of dialing a broker.
func newOrderTestHandler(train *model.Train) (*OrderHandler, *[]queue.OrderCreatedEvent) {
	trips := &fakeTripStore{trips: map[uint64]*model.Trip{
		1: {ID: 1, TrainID: 1, Train: train},
	}}
	engine := booking.NewEngine(trips, &memOrderStore{taken: map[seatKey]bool{}})

	var published []queue.OrderCreatedEvent
	h := &OrderHandler{
		Engine: engine,
		Publish: func(_ context.Context, ev queue.OrderCreatedEvent) error {
			published = append(published, ev)
			return nil
		},
	}
	return h, &published
}

func postOrder(t *testing.T, h *OrderHandler, userID interface{}, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/orders", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/orders")
	if userID != nil {
		c.Set("user_id", userID)
	}
	require.NoError(t, h.Create(c))
	return rec
}

func decodeErrors(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Errors
}

func TestOrderCreate_Success(t *testing.T) {
	h, published := newOrderTestHandler(&model.Train{CargoNum: 8, PlacesInCargo: 8})

	rec := postOrder(t, h, uint64(7), `{"tickets":[{"trip":1,"cargo":2,"seat":3}]}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp orderResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotZero(t, resp.ID)
	assert.NotEmpty(t, resp.CreatedAt)
	require.Len(t, resp.Tickets, 1)
	assert.Equal(t, uint64(1), resp.Tickets[0].Trip)
	assert.Equal(t, uint32(2), resp.Tickets[0].Cargo)
	assert.Equal(t, uint32(3), resp.Tickets[0].Seat)

	require.Len(t, *published, 1)
	ev := (*published)[0]
	assert.Equal(t, resp.ID, ev.OrderID)
	assert.Equal(t, uint64(7), ev.UserID)
	require.Len(t, ev.Tickets, 1)
	assert.Equal(t, queue.TicketRef{Trip: 1, Cargo: 2, Seat: 3}, ev.Tickets[0])
}

func TestOrderCreate_EmptyTickets(t *testing.T) {
	h, published := newOrderTestHandler(&model.Train{CargoNum: 8, PlacesInCargo: 8})

	rec := postOrder(t, h, uint64(7), `{"tickets":[]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeErrors(t, rec), "tickets")
	assert.Empty(t, *published)
}

func TestOrderCreate_CargoOutOfRange(t *testing.T) {
	h, _ := newOrderTestHandler(&model.Train{CargoNum: 8, PlacesInCargo: 8})

	rec := postOrder(t, h, uint64(7), `{"tickets":[{"trip":1,"cargo":9,"seat":6}]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errs := decodeErrors(t, rec)
	require.Contains(t, errs, "cargo")
	assert.Contains(t, errs["cargo"], "[1, 8]")
}

func TestOrderCreate_SeatOutOfRange(t *testing.T) {
	h, _ := newOrderTestHandler(&model.Train{CargoNum: 8, PlacesInCargo: 10})

	rec := postOrder(t, h, uint64(7), `{"tickets":[{"trip":1,"cargo":5,"seat":15}]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errs := decodeErrors(t, rec)
	require.Contains(t, errs, "seat")
	assert.Contains(t, errs["seat"], "[1, 10]")
}

func TestOrderCreate_SeatTaken(t *testing.T) {
	h, published := newOrderTestHandler(&model.Train{CargoNum: 5, PlacesInCargo: 5})

	first := postOrder(t, h, uint64(1), `{"tickets":[{"trip":1,"cargo":3,"seat":3}]}`)
	require.Equal(t, http.StatusCreated, first.Code)

	second := postOrder(t, h, uint64(2), `{"tickets":[{"trip":1,"cargo":3,"seat":3}]}`)

	assert.Equal(t, http.StatusBadRequest, second.Code)
	errs := decodeErrors(t, second)
	require.Contains(t, errs, "seat")
	assert.Contains(t, errs["seat"], "already taken")
	assert.Len(t, *published, 1, "only the committed order publishes an event")
}

func TestOrderCreate_UnknownTrip(t *testing.T) {
	h, _ := newOrderTestHandler(&model.Train{CargoNum: 5, PlacesInCargo: 5})

	rec := postOrder(t, h, uint64(1), `{"tickets":[{"trip":99,"cargo":1,"seat":1}]}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderCreate_MissingUser(t *testing.T) {
	h, _ := newOrderTestHandler(&model.Train{CargoNum: 5, PlacesInCargo: 5})

	rec := postOrder(t, h, nil, `{"tickets":[{"trip":1,"cargo":1,"seat":1}]}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOrderCreate_FloatUserIDFromJWT(t *testing.T) {
	// JWTAuth stores raw claims; numeric subjects arrive as float64.
	h, published := newOrderTestHandler(&model.Train{CargoNum: 5, PlacesInCargo: 5})

	rec := postOrder(t, h, float64(9), `{"tickets":[{"trip":1,"cargo":1,"seat":1}]}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, *published, 1)
	assert.Equal(t, uint64(9), (*published)[0].UserID)
}
