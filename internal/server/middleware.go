package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nguyentranbao-ct/price-extractor/internal/models"
	log "github.com/nguyentranbao-ct/price-extractor/pkg/logger/logctx"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

func errorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		// middlewares that already reported the error pass it on again
		if c.Response().Committed {
			return
		}

		he := toHTTPError(err)
		if he.Code >= http.StatusInternalServerError {
			log.Errorw(c.Request().Context(), "request failed", "error", err)
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(he.Code)
		} else {
			err = c.JSON(he.Code, errorResponse{Detail: fmt.Sprint(he.Message)})
		}
		if err != nil {
			log.Errorw(c.Request().Context(), "failed to write error response", "error", err)
		}
	}
}

func toHTTPError(err error) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}

	var de *models.DomainError
	switch {
	case errors.Is(err, models.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	case errors.As(err, &de) && de.Type == models.ErrorTypeConfig:
		return echo.NewHTTPError(http.StatusInternalServerError, de.Message)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}
