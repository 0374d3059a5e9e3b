package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"holdagent/internal/models"
)

// GetSelection - GET /api/selection
// Текущий набор выбранных мест
func (h *Handlers) GetSelection(c *gin.Context) {
	bridge := h.services.Bridge

	c.JSON(http.StatusOK, models.SelectionResponse{
		EventID:   bridge.EventID(),
		SessionID: bridge.SessionID(),
		MaxSeats:  bridge.Selection().MaxSeats(),
		Selection: bridge.Selection().Entries(),
	})
}

// ToggleSeat - POST /api/selection/toggle
// Выбрать место или снять выбор, без обращения к серверу
func (h *Handlers) ToggleSeat(c *gin.Context) {
	var req models.ToggleSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	selected, err := h.services.Bridge.ToggleSeat(req.Seat)
	if err != nil {
		h.handleServiceError(c, err, "Failed to toggle seat")
		return
	}

	c.JSON(http.StatusOK, models.ToggleSeatResponse{
		SeatID:    req.Seat.ID,
		Selected:  selected,
		Selection: h.services.Bridge.Selection().Entries(),
	})
}

// ClearSelection - DELETE /api/selection
// Очистить выбор
func (h *Handlers) ClearSelection(c *gin.Context) {
	h.services.Bridge.ClearSelection()
	c.Status(http.StatusNoContent)
}

// CheckAvailability - POST /api/selection/availability
// Проверить доступность выбранных мест, выбор не меняется
func (h *Handlers) CheckAvailability(c *gin.Context) {
	result, err := h.services.Bridge.CheckAvailability(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err, "Failed to check availability")
		return
	}

	c.JSON(http.StatusOK, result)
}

// CommitSelection - POST /api/selection/commit
// Забронировать выбранные места одним запросом
func (h *Handlers) CommitSelection(c *gin.Context) {
	hold, err := h.services.Bridge.CommitSelection(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err, "Failed to reserve seats")
		return
	}

	c.JSON(http.StatusCreated, h.presenter.TimerView(hold, h.services.Store.Clock().Now()))
}
