package models

import "time"

// Category is a node in the menu category forest. ParentID is nil for root
// categories; children reference their parent, so the tree is reconstructed
// client-side from the flat list.
type Category struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Name       string    `json:"name" gorm:"not null"`
	ParentID   *uint     `json:"parent_id" gorm:"index"`
	OrderIndex int       `json:"order_index" gorm:"default:0"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type MenuItem struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Name       string    `json:"name" gorm:"uniqueIndex;not null"`
	Price      float64   `json:"price" gorm:"not null"`
	CategoryID uint      `json:"category_id" gorm:"not null;index"`
	OrderIndex int       `json:"order_index" gorm:"default:0"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MenuItemView is MenuItem joined with its category name, for listings.
type MenuItemView struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	CategoryID   uint    `json:"category_id"`
	CategoryName string  `json:"category_name"`
	OrderIndex   int     `json:"order_index"`
}
