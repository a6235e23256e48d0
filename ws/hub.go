package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"restaurant-pos/models"
	"restaurant-pos/services"
	"restaurant-pos/statemachine"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait   = 10 * time.Second
	reloadLimit = 5 * time.Second
)

// Event is the wire envelope for both directions. Inbound payloads are kept
// raw and decoded per event; outbound payloads are marshalled as-is.
type Event struct {
	Name    string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type outbound struct {
	Name    string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// Hub fans the active-orders projection out to every connected client.
// Any successful ledger mutation triggers a full reload and re-broadcast.
type Hub struct {
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan outbound
	reload     chan struct{}
	mu         sync.Mutex

	orders *services.OrderService
	tables *services.TableService
}

func NewHub(orders *services.OrderService, tables *services.TableService) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan outbound),
		reload:     make(chan struct{}),
		orders:     orders,
		tables:     tables,
	}
}

// Run owns the client set. New connections get the current active-orders
// snapshot immediately so no client renders an empty board.
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			h.mu.Unlock()
			h.sendSnapshot(conn)

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()

		case <-h.reload:
			h.broadcastOrders()

		case msg := <-h.broadcast:
			h.fanOut(msg)
		}
	}
}

// BroadcastOrders signals the hub to reload the active-orders projection and
// push it to all clients. Called after every successful ledger mutation. The
// reload itself runs inside Run's loop, so snapshots are always sent in the
// order they were loaded.
func (h *Hub) BroadcastOrders() {
	h.reload <- struct{}{}
}

func (h *Hub) broadcastOrders() {
	ctx, cancel := context.WithTimeout(context.Background(), reloadLimit)
	defer cancel()

	orders, err := h.orders.ActiveOrders(ctx)
	if err != nil {
		log.Printf("ws: reload active orders: %v", err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	h.fanOut(outbound{Name: "orders-updated", Payload: gin.H{"orders": orders}})
}

func (h *Hub) fanOut(msg outbound) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("ws write error: %v", err)
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// BroadcastTableCount tells every client to regenerate its table grid. Only
// the count travels in the event; clients re-fetch details over HTTP.
func (h *Hub) BroadcastTableCount(count int) {
	h.broadcast <- outbound{Name: "table-count-changed", Payload: gin.H{"count": count}}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWebSocket upgrades the request and joins the connection to the hub.
func (h *Hub) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}
	h.register <- conn
	go h.listen(conn)
}

// listen reads events from one client until it disconnects. A failing
// handler answers only this connection; the hub keeps running for everyone
// else.
func (h *Hub) listen(conn *websocket.Conn) {
	defer func() { h.unregister <- conn }()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			h.sendError(conn, "", "invalid event payload")
			continue
		}

		if err := h.dispatch(event); err != nil {
			log.Printf("ws: %s failed: %v", event.Name, err)
			h.sendError(conn, event.Name, errorMessage(err))
		}
	}
}

func (h *Hub) dispatch(event Event) error {
	ctx := context.Background()

	switch event.Name {
	case "new-order":
		var req struct {
			TableNo int                       `json:"table_no"`
			Items   []services.PlaceOrderItem `json:"items"`
		}
		if err := json.Unmarshal(event.Payload, &req); err != nil {
			return &services.ValidationError{Msg: "invalid " + event.Name + " payload"}
		}
		if _, err := h.orders.Place(ctx, req.TableNo, req.Items); err != nil {
			return err
		}
		h.BroadcastOrders()

	case "update-order-status":
		var req struct {
			OrderID uint               `json:"order_id"`
			Status  models.OrderStatus `json:"status"`
		}
		if err := json.Unmarshal(event.Payload, &req); err != nil {
			return &services.ValidationError{Msg: "invalid " + event.Name + " payload"}
		}
		if _, err := h.orders.SetStatus(ctx, req.OrderID, req.Status); err != nil {
			return err
		}
		h.BroadcastOrders()

	case "deliver-order":
		var req struct {
			TableNo int `json:"table_no"`
		}
		if err := json.Unmarshal(event.Payload, &req); err != nil {
			return &services.ValidationError{Msg: "invalid " + event.Name + " payload"}
		}
		if _, err := h.orders.Deliver(ctx, req.TableNo); err != nil {
			return err
		}
		h.BroadcastOrders()

	case "complete-bill":
		var req struct {
			TableNo int `json:"table_no"`
		}
		if err := json.Unmarshal(event.Payload, &req); err != nil {
			return &services.ValidationError{Msg: "invalid " + event.Name + " payload"}
		}
		if _, err := h.orders.CompleteBill(ctx, req.TableNo); err != nil {
			return err
		}
		h.BroadcastOrders()

	case "table-count-updated":
		var req struct {
			Count int `json:"count"`
		}
		if err := json.Unmarshal(event.Payload, &req); err != nil {
			return &services.ValidationError{Msg: "invalid " + event.Name + " payload"}
		}
		if err := h.tables.SetTableCount(ctx, req.Count); err != nil {
			return err
		}
		h.BroadcastTableCount(req.Count)

	default:
		return &services.ValidationError{Msg: "unknown event " + event.Name}
	}
	return nil
}

// sendSnapshot pushes the current active orders to a single connection.
func (h *Hub) sendSnapshot(conn *websocket.Conn) {
	ctx, cancel := context.WithTimeout(context.Background(), reloadLimit)
	defer cancel()

	orders, err := h.orders.ActiveOrders(ctx)
	if err != nil {
		// Tell the client its board is not in sync instead of leaving it
		// empty until the next mutation.
		log.Printf("ws: snapshot load: %v", err)
		h.sendError(conn, "orders-updated", "failed to load orders, please reconnect")
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	h.sendTo(conn, outbound{Name: "orders-updated", Payload: gin.H{"orders": orders}})
}

func (h *Hub) sendError(conn *websocket.Conn, event, msg string) {
	if conn == nil {
		return
	}
	h.sendTo(conn, outbound{Name: "error", Payload: gin.H{"event": event, "message": msg}})
}

func (h *Hub) sendTo(conn *websocket.Conn, msg outbound) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("ws write error: %v", err)
	}
}

// errorMessage hides storage detail from clients; domain errors pass through.
func errorMessage(err error) string {
	var (
		ve *services.ValidationError
		nf *services.NotFoundError
		de *services.DuplicateError
		te *statemachine.TransitionError
	)
	if errors.As(err, &ve) || errors.As(err, &nf) || errors.As(err, &de) || errors.As(err, &te) {
		return err.Error()
	}
	return "internal error"
}
