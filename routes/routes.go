package routes

import (
	"restaurant-pos/handlers"
	"restaurant-pos/services"
	"restaurant-pos/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes wires services, handlers and the websocket hub onto the
// router. The returned hub must be started with Run() by the caller.
func SetupRoutes(r *gin.Engine, db *gorm.DB) *ws.Hub {
	menuService := services.NewMenuService(db)
	tableService := services.NewTableService(db)
	orderService := services.NewOrderService(db, tableService)

	hub := ws.NewHub(orderService, tableService)

	menu := handlers.NewMenuHandler(menuService)
	tables := handlers.NewTableHandler(tableService, hub)
	orders := handlers.NewOrderHandler(orderService)

	// ── Menu catalog ───────────────────────────────────────────────
	r.GET("/menu", menu.ListItems)
	r.POST("/menu", menu.CreateItem)
	r.PUT("/menu/:id", menu.UpdateItem)
	r.DELETE("/menu/:id", menu.DeleteItem)

	r.GET("/menu-categories", menu.ListCategories)
	r.POST("/menu-categories", menu.CreateCategory)
	r.PUT("/menu-categories/:id", menu.UpdateCategory)
	r.DELETE("/menu-categories/:id", menu.DeleteCategory)

	// ── Table registry ─────────────────────────────────────────────
	r.GET("/settings/table-count", tables.GetTableCount)
	r.POST("/settings/table-count", tables.SetTableCount)

	// ── Order projections ──────────────────────────────────────────
	r.GET("/orders/active", orders.GetActiveOrders)
	r.GET("/orders/summary", orders.GetPendingSummary)
	r.GET("/orders/archive", orders.GetArchivedBills)
	r.GET("/tables/:tableNo/orders", orders.GetTableOrders)

	// State machine info (great for docs/Postman)
	r.GET("/state-machine", orders.GetStateMachineInfo)

	// ── Real-time ──────────────────────────────────────────────────
	r.GET("/ws", hub.HandleWebSocket)

	return hub
}
