package prediction

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/predict", h.Predict)
}

func (h *Handler) Predict(c echo.Context) error {
	var raw map[string]interface{}
	if err := c.Bind(&raw); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := h.svc.Submit(c.Request().Context(), raw)
	if err != nil {
		var ve *ValidationError
		switch {
		case errors.Is(err, ErrUnauthenticated):
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		case errors.Is(err, ErrUserNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.As(err, &ve):
			return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
		case errors.Is(err, ErrGatewayUnavailable):
			return echo.NewHTTPError(http.StatusBadGateway, ErrGatewayUnavailable.Error())
		case errors.Is(err, ErrPersistenceFailed):
			return echo.NewHTTPError(http.StatusInternalServerError, ErrPersistenceFailed.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "prediction failed")
		}
	}
	return c.JSON(http.StatusOK, result)
}
