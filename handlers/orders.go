package handlers

import (
	"net/http"
	"strconv"

	"restaurant-pos/services"
	"restaurant-pos/statemachine"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	Service *services.OrderService
}

func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{Service: service}
}

// GetActiveOrders returns every live order, oldest first (FIFO service order)
func (h *OrderHandler) GetActiveOrders(c *gin.Context) {
	orders, err := h.Service.ActiveOrders(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(orders),
		"orders": orders,
	})
}

// GetTableOrders renders the bill for one table: orders newest first plus a
// running total.
func (h *OrderHandler) GetTableOrders(c *gin.Context) {
	tableNo, err := strconv.Atoi(c.Param("tableNo"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid table number"})
		return
	}
	bill, err := h.Service.Bill(c.Request.Context(), tableNo)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

// GetPendingSummary aggregates items across waiting/preparing orders so the
// kitchen sees its workload at a glance.
func (h *OrderHandler) GetPendingSummary(c *gin.Context) {
	summary, err := h.Service.PendingItemsSummary(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": summary})
}

// GetArchivedBills lists closed bills, newest first
func (h *OrderHandler) GetArchivedBills(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}
	archived, err := h.Service.ArchivedBills(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(archived),
		"orders": archived,
	})
}

// GetStateMachineInfo returns the order lifecycle for documentation
func (h *OrderHandler) GetStateMachineInfo(c *gin.Context) {
	var info []gin.H
	for _, t := range statemachine.GetAllTransitions() {
		info = append(info, gin.H{"from": t.From, "to": t.To, "actor": t.Actor})
	}
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   info,
		"terminal_states": []string{"completed"},
		"description":     "Restaurant Order Lifecycle State Machine",
	})
}
