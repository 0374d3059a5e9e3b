package handlers

import "github.com/gin-gonic/gin"

// Register подключает роуты агента к группе /api
func (h *Handlers) Register(api *gin.RouterGroup) {
	selection := api.Group("/selection")
	{
		selection.GET("", h.GetSelection)
		selection.DELETE("", h.ClearSelection)
		selection.POST("/toggle", h.ToggleSeat)
		selection.POST("/availability", h.CheckAvailability)
		selection.POST("/commit", h.CommitSelection)
	}

	hold := api.Group("/hold")
	{
		hold.GET("", h.GetHold)
		hold.DELETE("", h.ReleaseHold)
		hold.POST("/confirm", h.ConfirmHold)
		hold.POST("/rehydrate", h.RehydrateHold)
		hold.GET("/events", h.HoldEvents)
	}
}
