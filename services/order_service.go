package services

import (
	"context"
	"errors"
	"time"

	"restaurant-pos/models"
	"restaurant-pos/statemachine"

	"gorm.io/gorm"
)

// storageTimeout bounds every ledger mutation so a stalled store surfaces as
// an error instead of hanging the broadcast path.
const storageTimeout = 5 * time.Second

// OrderService is the order ledger: placement, status transitions, delivery,
// bill completion and the read-side projections built on top of them.
type OrderService struct {
	DB     *gorm.DB
	Tables *TableService
}

func NewOrderService(db *gorm.DB, tables *TableService) *OrderService {
	return &OrderService{DB: db, Tables: tables}
}

// PlaceOrderItem is one requested line of a new order.
type PlaceOrderItem struct {
	MenuItemID uint `json:"menu_item_id"`
	Quantity   int  `json:"quantity"`
}

// Place creates a new order in the waiting state, snapshotting each item's
// current name and price. The order and its lines are inserted in one
// transaction.
func (s *OrderService) Place(ctx context.Context, tableNo int, items []PlaceOrderItem) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	if len(items) == 0 {
		return nil, validationf("order must contain at least one item")
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, validationf("item quantity must be positive")
		}
	}

	tableCount, err := s.Tables.TableCount(ctx)
	if err != nil {
		return nil, err
	}
	if tableNo < 1 || tableNo > tableCount {
		return nil, validationf("table number must be between 1 and %d", tableCount)
	}

	var lines []models.OrderItem
	for _, it := range items {
		var menuItem models.MenuItem
		if err := s.DB.WithContext(ctx).First(&menuItem, it.MenuItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &NotFoundError{Entity: "menu item", ID: it.MenuItemID}
			}
			return nil, err
		}
		lines = append(lines, models.OrderItem{
			MenuItemID: menuItem.ID,
			Quantity:   it.Quantity,
			Price:      menuItem.Price,
			Name:       menuItem.Name,
		})
	}

	order := models.Order{
		TableNo: tableNo,
		Status:  models.StatusWaiting,
		Items:   lines,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// SetStatus advances an order through the state machine. Skips and
// regressions are rejected with a TransitionError.
func (s *OrderService) SetStatus(ctx context.Context, orderID uint, status models.OrderStatus) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	if !status.Valid() {
		return nil, validationf("unknown order status %q", status)
	}

	var order models.Order
	if err := s.DB.WithContext(ctx).Preload("Items").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "order", ID: orderID}
		}
		return nil, err
	}

	if err := statemachine.CanTransition(order.Status, status); err != nil {
		return nil, err
	}

	affected, err := s.updateStatusGuard(ctx, orderID, order.Status, status)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// A concurrent writer advanced the order between our read and the
		// guarded write; report the transition against the current status.
		if err := s.DB.WithContext(ctx).First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &NotFoundError{Entity: "order", ID: orderID}
			}
			return nil, err
		}
		return nil, &statemachine.TransitionError{From: order.Status, To: status}
	}
	order.Status = status
	return &order, nil
}

// updateStatusGuard writes the new status only if the row still holds the
// status the transition was validated against, so a stale check can never
// regress a concurrently advanced order.
func (s *OrderService) updateStatusGuard(ctx context.Context, orderID uint, from, to models.OrderStatus) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

// Deliver moves every ready order at the table to completed. When the table
// has no ready orders this is a no-op, not an error.
func (s *OrderService) Deliver(ctx context.Context, tableNo int) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	res := s.DB.WithContext(ctx).Model(&models.Order{}).
		Where("table_no = ? AND status = ?", tableNo, models.StatusReady).
		Update("status", models.StatusCompleted)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

// CompleteBill archives every order at the table — whatever its status, the
// whole tab closes together — then purges the live rows, all in one
// transaction. Returns the archived orders for the closing receipt.
func (s *OrderService) CompleteBill(ctx context.Context, tableNo int) ([]models.ArchivedOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	var archived []models.ArchivedOrder
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var orders []models.Order
		if err := tx.Preload("Items").
			Where("table_no = ?", tableNo).
			Order("created_at asc, id asc").
			Find(&orders).Error; err != nil {
			return err
		}

		for _, o := range orders {
			snapshot := models.ArchivedOrder{
				OrderID:   o.ID,
				TableNo:   o.TableNo,
				Status:    o.Status,
				Total:     o.Total(),
				OrderedAt: o.CreatedAt,
			}
			for _, it := range o.Items {
				snapshot.Items = append(snapshot.Items, models.ArchivedOrderItem{
					Name:     it.Name,
					Quantity: it.Quantity,
					Price:    it.Price,
				})
			}
			if err := tx.Create(&snapshot).Error; err != nil {
				return err
			}
			archived = append(archived, snapshot)
		}

		if len(orders) == 0 {
			return nil
		}
		orderIDs := make([]uint, 0, len(orders))
		for _, o := range orders {
			orderIDs = append(orderIDs, o.ID)
		}
		if err := tx.Where("order_id IN ?", orderIDs).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", orderIDs).Delete(&models.Order{}).Error
	})
	if err != nil {
		return nil, err
	}
	return archived, nil
}

// ActiveOrders returns every live order with its items, oldest first.
// Completed orders stay visible until the bill closes so waiters still see
// what was just delivered.
func (s *OrderService) ActiveOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.WithContext(ctx).Preload("Items").
		Order("created_at asc, id asc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// TableOrders returns the live orders for one table, newest first.
func (s *OrderService) TableOrders(ctx context.Context, tableNo int) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.WithContext(ctx).Preload("Items").
		Where("table_no = ?", tableNo).
		Order("created_at desc, id desc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// TableBill is the per-table projection used to render the bill.
type TableBill struct {
	TableNo int            `json:"table_no"`
	Orders  []models.Order `json:"orders"`
	Total   float64        `json:"total"`
}

func (s *OrderService) Bill(ctx context.Context, tableNo int) (*TableBill, error) {
	orders, err := s.TableOrders(ctx, tableNo)
	if err != nil {
		return nil, err
	}
	bill := TableBill{TableNo: tableNo, Orders: orders}
	for _, o := range orders {
		bill.Total += o.Total()
	}
	return &bill, nil
}

// PendingItem is one line of the kitchen workload summary.
type PendingItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// PendingItemsSummary aggregates the items of all waiting and preparing
// orders by name. Pure projection over the active orders, never persisted.
func (s *OrderService) PendingItemsSummary(ctx context.Context) ([]PendingItem, error) {
	orders, err := s.ActiveOrders(ctx)
	if err != nil {
		return nil, err
	}

	totals := map[string]int{}
	var names []string
	for _, o := range orders {
		if o.Status != models.StatusWaiting && o.Status != models.StatusPreparing {
			continue
		}
		for _, it := range o.Items {
			if _, ok := totals[it.Name]; !ok {
				names = append(names, it.Name)
			}
			totals[it.Name] += it.Quantity
		}
	}

	summary := make([]PendingItem, 0, len(names))
	for _, name := range names {
		summary = append(summary, PendingItem{Name: name, Quantity: totals[name]})
	}
	return summary, nil
}

// ArchivedBills lists closed bills, newest first, optionally limited.
func (s *OrderService) ArchivedBills(ctx context.Context, limit int) ([]models.ArchivedOrder, error) {
	var archived []models.ArchivedOrder
	query := s.DB.WithContext(ctx).Preload("Items").
		Order("archived_at desc, id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&archived).Error; err != nil {
		return nil, err
	}
	return archived, nil
}
