package handlers

import (
	"net/http"

	"restaurant-pos/services"
	"restaurant-pos/ws"

	"github.com/gin-gonic/gin"
)

type TableHandler struct {
	Service *services.TableService
	Hub     *ws.Hub
}

func NewTableHandler(service *services.TableService, hub *ws.Hub) *TableHandler {
	return &TableHandler{Service: service, Hub: hub}
}

// GetTableCount returns the configured table count (defaults to 20)
func (h *TableHandler) GetTableCount(c *gin.Context) {
	count, err := h.Service.TableCount(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"value": count})
}

// SetTableCount persists a new count and tells every connected client to
// regenerate its table grid.
func (h *TableHandler) SetTableCount(c *gin.Context) {
	var req struct {
		Count int `json:"count"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Service.SetTableCount(c.Request.Context(), req.Count); err != nil {
		writeError(c, err)
		return
	}
	h.Hub.BroadcastTableCount(req.Count)
	c.JSON(http.StatusOK, gin.H{"value": req.Count})
}
