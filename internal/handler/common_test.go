package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queryContext(rawQuery string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/orders?"+rawQuery, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestPageParams_Defaults(t *testing.T) {
	limit, offset, page := pageParams(queryContext(""))
	assert.Equal(t, 20, limit)
	assert.Equal(t, 0, offset)
	assert.Equal(t, 1, page)
}

func TestPageParams_OffsetFollowsPage(t *testing.T) {
	limit, offset, page := pageParams(queryContext("page=3&page_size=10"))
	assert.Equal(t, 10, limit)
	assert.Equal(t, 20, offset)
	assert.Equal(t, 3, page)
}

func TestPageParams_CapsPageSize(t *testing.T) {
	limit, _, _ := pageParams(queryContext("page_size=5000"))
	assert.Equal(t, 100, limit)
}

func TestPageParams_IgnoresGarbage(t *testing.T) {
	limit, offset, page := pageParams(queryContext("page=zero&page_size=-4"))
	assert.Equal(t, 20, limit)
	assert.Equal(t, 0, offset)
	assert.Equal(t, 1, page)
}

func TestGetUserID_AcceptedTypes(t *testing.T) {
	e := echo.New()
	for _, tc := range []struct {
		name string
		val  interface{}
		want uint64
	}{
		{"uint64", uint64(5), 5},
		{"float64 from JWT claims", float64(6), 6},
		{"string", "7", 7},
		{"int", int(8), 8},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			c.Set("user_id", tc.val)
			got, err := getUserID(c)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetUserID_MissingOrInvalid(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, err := getUserID(c)
	assert.Error(t, err)

	c.Set("user_id", "not-a-number")
	_, err = getUserID(c)
	assert.Error(t, err)
}
