package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"holdagent/internal/models"
	"holdagent/internal/presenter"
)

const eventBuffer = 16

// WarningPayload - событие SSE о пороге оставшегося времени
type WarningPayload struct {
	Event   models.WarningEvent `json:"event"`
	Message string              `json:"message"`
}

func (h *Handlers) timerView() presenter.TimerView {
	return h.presenter.TimerView(h.services.Store.CurrentHold(), h.services.Store.Clock().Now())
}

// GetHold - GET /api/hold
// Состояние таймера текущей брони
func (h *Handlers) GetHold(c *gin.Context) {
	c.JSON(http.StatusOK, h.timerView())
}

// ReleaseHold - DELETE /api/hold
// Отменить бронь; локальное состояние очищается даже при ошибке сети
func (h *Handlers) ReleaseHold(c *gin.Context) {
	if err := h.services.Bridge.ReleaseHold(c.Request.Context()); err != nil {
		h.handleServiceError(c, err, "Failed to release hold")
		return
	}

	c.Status(http.StatusNoContent)
}

// ConfirmHold - POST /api/hold/confirm
// Подтвердить бронь после оплаты
func (h *Handlers) ConfirmHold(c *gin.Context) {
	var req models.ConfirmHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bookingID, err := h.services.Bridge.ConfirmHold(c.Request.Context(), req.PaymentReference, req.BuyerEmail)
	if err != nil {
		h.handleServiceError(c, err, "Failed to confirm hold")
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookingId": bookingID})
}

// RehydrateHold - POST /api/hold/rehydrate
// Восстановить бронь сессии после перезапуска
func (h *Handlers) RehydrateHold(c *gin.Context) {
	hold, err := h.services.Bridge.Rehydrate(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err, "Failed to restore hold")
		return
	}

	c.JSON(http.StatusOK, h.presenter.TimerView(hold, h.services.Store.Clock().Now()))
}

// HoldEvents - GET /api/hold/events
// Поток SSE: сначала текущий таймер, затем предупреждения по мере срабатывания
func (h *Handlers) HoldEvents(c *gin.Context) {
	events := make(chan models.WarningEvent, eventBuffer)
	unsubscribe := h.services.Engine.OnWarning(func(event models.WarningEvent) {
		select {
		case events <- event:
		default:
			slog.Warn("Dropping warning for slow SSE client", "level", event.Level)
		}
	})
	defer unsubscribe()

	ctx := c.Request.Context()
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.SSEvent("timer", h.timerView())
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case event := <-events:
			c.SSEvent("warning", WarningPayload{Event: event, Message: presenter.Message(event)})
			return true
		case <-ctx.Done():
			return false
		}
	})
}
