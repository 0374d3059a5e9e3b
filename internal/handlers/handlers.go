package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "holdagent/internal/errors"
	"holdagent/internal/models"
	"holdagent/internal/presenter"
	"holdagent/internal/service"
)

type Handlers struct {
	services  *service.Services
	presenter *presenter.Presenter
}

func NewHandlers(services *service.Services, p *presenter.Presenter) *Handlers {
	return &Handlers{
		services:  services,
		presenter: p,
	}
}

// Health - GET /health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"session_id":  h.services.Bridge.SessionID(),
		"hold_active": h.services.Store.IsActive(),
	})
}

// handleServiceError переводит ошибку домена в HTTP-ответ
func (h *Handlers) handleServiceError(c *gin.Context, err error, msg string) {
	status := statusFor(err)

	resp := models.ErrorResponse{
		Error:   msg,
		Message: presenter.ActionMessage(err),
	}
	var unavailable *apperrors.SeatsUnavailableError
	if errors.As(err, &unavailable) {
		resp.SeatIDs = unavailable.SeatIDs()
	}

	if status >= http.StatusInternalServerError {
		slog.Error(msg, "error", err, "status", status)
	} else {
		slog.Warn(msg, "error", err, "status", status)
	}
	c.JSON(status, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrEmptySelection), errors.Is(err, apperrors.ErrInvalidHold):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNoActiveHold):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrSeatUnavailable),
		errors.Is(err, apperrors.ErrSeatNotAvailable),
		errors.Is(err, apperrors.ErrSelectionLimitExceeded),
		errors.Is(err, apperrors.ErrStaleResponse):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrNetworkFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
