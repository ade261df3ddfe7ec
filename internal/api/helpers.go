package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/mlpbench/internal/arena"
	"github.com/samcharles93/mlpbench/internal/bench"
	"github.com/samcharles93/mlpbench/internal/tensor"
)

func writeBadRequest(c *echo.Context, param, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg, param)
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg, "")
}

func writeServerError(c *echo.Context, err error) error {
	return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "")
}

func writeError(c *echo.Context, status int, errType, msg, param string) error {
	return c.JSON(status, ErrorResponse{
		Error: ResponseError{
			Message: msg,
			Type:    errType,
			Param:   param,
		},
	})
}

// writeRunError maps benchmark failures onto HTTP statuses.
func writeRunError(c *echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, bench.ErrNoIterations):
		return writeBadRequest(c, "", err.Error())
	case errors.Is(err, tensor.ErrShape):
		return writeBadRequest(c, "input_shape", err.Error())
	case errors.Is(err, arena.ErrOutOfMemory):
		return writeError(c, http.StatusInsufficientStorage, "out_of_memory_error", err.Error(), "input_shape")
	default:
		return writeServerError(c, err)
	}
}

// decodeJSON decodes a single JSON value. An empty body decodes to the zero
// value so that POST with no body uses the defaults.
func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil && !errors.Is(err, io.EOF) {
		return out, err
	}
	return out, nil
}
