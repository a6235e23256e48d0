package models

import "time"

// OrderStatus represents the lifecycle state of a table order
type OrderStatus string

const (
	StatusWaiting   OrderStatus = "waiting"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusWaiting, StatusPreparing, StatusReady, StatusCompleted:
		return true
	}
	return false
}

type Order struct {
	ID        uint        `json:"id" gorm:"primaryKey"`
	TableNo   int         `json:"table_no" gorm:"not null;index"`
	Status    OrderStatus `json:"status" gorm:"not null;default:'waiting'"`
	Items     []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt time.Time   `json:"created_at"`
}

// Total sums the snapshotted line prices.
func (o Order) Total() float64 {
	var total float64
	for _, it := range o.Items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

type OrderItem struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	OrderID    uint    `json:"order_id" gorm:"not null;index"`
	MenuItemID uint    `json:"menu_item_id" gorm:"not null"`
	Quantity   int     `json:"quantity" gorm:"not null"`
	Price      float64 `json:"price" gorm:"not null"` // snapshot price at time of order
	Name       string  `json:"name"`                  // snapshot name
}

// ArchivedOrder is the denormalized snapshot written when a table's bill is
// completed; it survives after the live Order/OrderItem rows are purged.
type ArchivedOrder struct {
	ID         uint                `json:"id" gorm:"primaryKey"`
	OrderID    uint                `json:"order_id" gorm:"not null"`
	TableNo    int                 `json:"table_no" gorm:"not null;index"`
	Status     OrderStatus         `json:"status" gorm:"not null"`
	Total      float64             `json:"total"`
	OrderedAt  time.Time           `json:"ordered_at"`
	Items      []ArchivedOrderItem `json:"items,omitempty" gorm:"foreignKey:ArchivedOrderID"`
	ArchivedAt time.Time           `json:"archived_at" gorm:"autoCreateTime"`
}

type ArchivedOrderItem struct {
	ID              uint    `json:"id" gorm:"primaryKey"`
	ArchivedOrderID uint    `json:"archived_order_id" gorm:"not null;index"`
	Name            string  `json:"name" gorm:"not null"`
	Quantity        int     `json:"quantity" gorm:"not null"`
	Price           float64 `json:"price" gorm:"not null"`
}
