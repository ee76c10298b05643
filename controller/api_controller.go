package controller

import (
	"encoding/json"
	"errors"
	"io"
	"strconv"

	"github.com/labstack/echo/v4"
)

type APIError struct {
	Error string `json:"error"`
}

func apiError(msg string) *APIError { return &APIError{Error: msg} }

// errEmptyBody is returned by decodeJSON for a request without a body.
var errEmptyBody = errors.New("empty request body")

// decodeJSON reads the request body as JSON independent of the content type.
func decodeJSON(c echo.Context, v any) error {
	err := json.NewDecoder(c.Request().Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	return err
}

// queryPtr returns the query parameter name, or nil when the request does not
// carry it. An empty value is kept.
func queryPtr(c echo.Context, name string) *string {
	vals, ok := c.QueryParams()[name]
	if !ok || len(vals) == 0 {
		return nil
	}
	v := vals[0]
	return &v
}

// pathID returns the numeric :id path parameter, if any.
func pathID(c echo.Context) (int64, bool) {
	raw := c.Param("id")
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
