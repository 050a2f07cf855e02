package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"edrisobaric/internal/edrerr"
)

// errorDetail is one entry of a validation error body.
type errorDetail struct {
	Loc   []string `json:"loc"`
	Msg   string   `json:"msg"`
	Type  string   `json:"type"`
	Input any      `json:"input"`
}

type detailResponse struct {
	Detail []errorDetail `json:"detail"`
}

func respondWithError(c echo.Context, code int, msg string) error {
	if code > 499 {
		zap.L().Error("Responding with 5XX error", zap.String("msg", msg))
	}

	// Define the error response structure
	type errorResponse struct {
		Detail string `json:"detail"`
	}

	return c.JSON(code, errorResponse{
		Detail: msg,
	})
}

func respondWithDetail(c echo.Context, code int, details ...errorDetail) error {
	return c.JSON(code, detailResponse{Detail: details})
}

func respondWithJSON(c echo.Context, code int, payload interface{}) error {
	return c.JSON(code, payload)
}

// respondWithMediaType encodes payload as JSON under a specific content type.
func respondWithMediaType(c echo.Context, code int, mediaType string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return respondWithError(c, http.StatusInternalServerError, "failed to encode response")
	}
	return c.Blob(code, mediaType, body)
}

// respondWithQueryError maps the query error taxonomy onto status codes.
func respondWithQueryError(c echo.Context, err error) error {
	var valErr *edrerr.ValidationError
	var boundsErr *edrerr.BoundsError
	var instErr *edrerr.InstanceError

	switch {
	case errors.As(err, &valErr):
		return respondWithDetail(c, http.StatusUnprocessableEntity, errorDetail{
			Loc:   valErr.Loc,
			Msg:   valErr.Msg,
			Type:  valErr.Type,
			Input: valErr.Input,
		})
	case errors.As(err, &boundsErr):
		return respondWithDetail(c, http.StatusUnprocessableEntity, errorDetail{
			Loc:   []string{"query", "coords", boundsErr.Axis},
			Msg:   boundsErr.Error(),
			Type:  "value_error",
			Input: c.QueryParam("coords"),
		})
	case errors.As(err, &instErr):
		return respondWithDetail(c, http.StatusBadRequest, errorDetail{
			Loc:   []string{"path", "instanceId"},
			Msg:   instErr.Error(),
			Type:  "value_error",
			Input: instErr.Given,
		})
	default:
		zap.L().Error("Position query failed", zap.Error(err))
		return respondWithError(c, http.StatusInternalServerError, "failed to resolve position")
	}
}
