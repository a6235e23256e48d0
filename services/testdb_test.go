package services

import (
	"testing"

	"restaurant-pos/config"
	"restaurant-pos/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens a fresh in-memory sqlite store per test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	// A pooled :memory: connection is its own database; pin to one.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("test db pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// seedMenu creates a category with a couple of items and returns them.
func seedMenu(t *testing.T, db *gorm.DB) (models.Category, []models.MenuItem) {
	t.Helper()
	category := models.Category{Name: "Drinks"}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	items := []models.MenuItem{
		{Name: "Tea", Price: 20, CategoryID: category.ID},
		{Name: "Coffee", Price: 35, CategoryID: category.ID},
	}
	if err := db.Create(&items).Error; err != nil {
		t.Fatalf("seed items: %v", err)
	}
	return category, items
}
