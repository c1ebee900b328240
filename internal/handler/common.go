package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// getUserID extracts the user_id from echo.Context and converts it to
// uint64.  JWTAuth stores the raw JWT claim, so JSON numbers arrive as
// float64; tests and internal callers may store uint64 directly.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses the named path parameter as a positive uint64.
func pathID(c echo.Context, name string) (uint64, error) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, errors.New("invalid id")
	}
	return n, nil
}

// fieldErrors writes a validation failure response keyed by field name,
// e.g. {"errors": {"seat": "seat must be within available range [1, 10], got 15"}}.
func fieldErrors(c echo.Context, status int, fields map[string]string) error {
	return c.JSON(status, echo.Map{"errors": fields})
}

// fieldError is the single-field shorthand for fieldErrors.
func fieldError(c echo.Context, status int, field, msg string) error {
	return fieldErrors(c, status, map[string]string{field: msg})
}

// pageParams parses page/page_size query parameters with sane bounds.
// Defaults to page 1 with 20 items; page_size is capped at 100.
func pageParams(c echo.Context) (limit, offset int, page int) {
	page = 1
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	size := 20
	if v, err := strconv.Atoi(c.QueryParam("page_size")); err == nil && v > 0 {
		size = v
	}
	if size > 100 {
		size = 100
	}
	return size, (page - 1) * size, page
}

// notFound writes the standard 404 payload.
func notFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, echo.Map{"error": msg})
}
