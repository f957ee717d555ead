// Package handler defines the HTTP handlers of the API.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/festival-program-office/internal/workflow"
)

// dbTimeout bounds every database-touching request.
const dbTimeout = 5 * time.Second

// getUserID extracts the user_id placed in the context by the JWT
// middleware and converts it to uint64.  JWT numeric claims decode as
// float64, so several representations are accepted.
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

// paramID parses a numeric path parameter.
func paramID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// writeError maps a workflow error kind onto an HTTP response.  Anything
// that is not a workflow error is an internal failure and deliberately
// unspecific towards the client.
func writeError(c echo.Context, err error) error {
	var wErr *workflow.Error
	if !errors.As(err, &wErr) {
		c.Logger().Errorf("internal error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	status := http.StatusInternalServerError
	switch wErr.Kind {
	case workflow.KindUnauthenticated:
		status = http.StatusUnauthorized
	case workflow.KindForbidden:
		status = http.StatusForbidden
	case workflow.KindInvalidTransition, workflow.KindConflict:
		status = http.StatusConflict
	case workflow.KindValidation:
		status = http.StatusUnprocessableEntity
	case workflow.KindNotFound:
		status = http.StatusNotFound
	}
	return c.JSON(status, echo.Map{"error": wErr.Message, "kind": string(wErr.Kind)})
}
