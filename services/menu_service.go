package services

import (
	"context"
	"errors"

	"restaurant-pos/models"

	"gorm.io/gorm"
)

// MenuService owns the category forest and the menu items.
type MenuService struct {
	DB *gorm.DB
}

func NewMenuService(db *gorm.DB) *MenuService {
	return &MenuService{DB: db}
}

// ListCategories returns the flat category list ordered by order_index;
// callers rebuild the parent/children tree from parent_id.
func (s *MenuService) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.DB.WithContext(ctx).Order("order_index asc, id asc").Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *MenuService) CreateCategory(ctx context.Context, name string, parentID *uint, orderIndex int) (*models.Category, error) {
	if name == "" {
		return nil, validationf("category name is required")
	}
	if parentID != nil {
		if err := s.categoryExists(ctx, *parentID); err != nil {
			return nil, err
		}
	}
	category := models.Category{Name: name, ParentID: parentID, OrderIndex: orderIndex}
	if err := s.DB.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *MenuService) UpdateCategory(ctx context.Context, id uint, name string, parentID *uint, orderIndex int) (*models.Category, error) {
	if name == "" {
		return nil, validationf("category name is required")
	}

	var category models.Category
	if err := s.DB.WithContext(ctx).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "category", ID: id}
		}
		return nil, err
	}

	if parentID != nil {
		if *parentID == id {
			return nil, validationf("category cannot be its own parent")
		}
		if err := s.categoryExists(ctx, *parentID); err != nil {
			return nil, err
		}
		cyclic, err := s.wouldCycle(ctx, id, *parentID)
		if err != nil {
			return nil, err
		}
		if cyclic {
			return nil, validationf("category cannot be moved under its own descendant")
		}
	}

	category.Name = name
	category.ParentID = parentID
	category.OrderIndex = orderIndex
	if err := s.DB.WithContext(ctx).Save(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteCategory removes the category, every descendant category, and every
// item owned by any of them, in one transaction.
func (s *MenuService) DeleteCategory(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var root models.Category
		if err := tx.First(&root, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "category", ID: id}
			}
			return err
		}

		ids, err := collectSubtree(tx, id)
		if err != nil {
			return err
		}

		if err := tx.Where("category_id IN ?", ids).Delete(&models.MenuItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.Category{}).Error
	})
}

// collectSubtree walks the adjacency list breadth-first and returns the id
// plus all descendant ids. The seen set keeps a mis-linked parent chain from
// looping forever.
func collectSubtree(tx *gorm.DB, id uint) ([]uint, error) {
	seen := map[uint]bool{id: true}
	ids := []uint{id}
	frontier := []uint{id}

	for len(frontier) > 0 {
		var children []uint
		if err := tx.Model(&models.Category{}).
			Where("parent_id IN ?", frontier).
			Pluck("id", &children).Error; err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, child := range children {
			if seen[child] {
				continue
			}
			seen[child] = true
			ids = append(ids, child)
			frontier = append(frontier, child)
		}
	}
	return ids, nil
}

// wouldCycle reports whether parenting id under newParent creates a loop,
// i.e. newParent is id itself or one of id's descendants.
func (s *MenuService) wouldCycle(ctx context.Context, id, newParent uint) (bool, error) {
	ids, err := collectSubtree(s.DB.WithContext(ctx), id)
	if err != nil {
		return false, err
	}
	for _, d := range ids {
		if d == newParent {
			return true, nil
		}
	}
	return false, nil
}

// ListItems returns all items joined with their category name, by order_index.
func (s *MenuService) ListItems(ctx context.Context) ([]models.MenuItemView, error) {
	var items []models.MenuItemView
	err := s.DB.WithContext(ctx).Model(&models.MenuItem{}).
		Select("menu_items.id, menu_items.name, menu_items.price, menu_items.category_id, categories.name as category_name, menu_items.order_index").
		Joins("LEFT JOIN categories ON categories.id = menu_items.category_id").
		Order("menu_items.order_index asc, menu_items.id asc").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *MenuService) CreateItem(ctx context.Context, name string, price float64, categoryID uint, orderIndex int) (*models.MenuItem, error) {
	if err := validateItem(name, price); err != nil {
		return nil, err
	}
	if err := s.categoryExists(ctx, categoryID); err != nil {
		return nil, err
	}
	taken, err := s.nameTaken(ctx, name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &DuplicateError{Entity: "menu item", Name: name}
	}

	item := models.MenuItem{Name: name, Price: price, CategoryID: categoryID, OrderIndex: orderIndex}
	if err := s.DB.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *MenuService) UpdateItem(ctx context.Context, id uint, name string, price float64, categoryID uint, orderIndex int) (*models.MenuItem, error) {
	if err := validateItem(name, price); err != nil {
		return nil, err
	}

	var item models.MenuItem
	if err := s.DB.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "menu item", ID: id}
		}
		return nil, err
	}
	if err := s.categoryExists(ctx, categoryID); err != nil {
		return nil, err
	}
	taken, err := s.nameTaken(ctx, name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &DuplicateError{Entity: "menu item", Name: name}
	}

	item.Name = name
	item.Price = price
	item.CategoryID = categoryID
	item.OrderIndex = orderIndex
	if err := s.DB.WithContext(ctx).Save(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItem removes the menu item. Historical order lines keep their
// snapshotted name and price, so no cascade is needed.
func (s *MenuService) DeleteItem(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.MenuItem{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: "menu item", ID: id}
	}
	return nil
}

func validateItem(name string, price float64) error {
	if name == "" {
		return validationf("item name is required")
	}
	if price <= 0 {
		return validationf("item price must be positive")
	}
	return nil
}

func (s *MenuService) categoryExists(ctx context.Context, id uint) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return validationf("category %d does not exist", id)
	}
	return nil
}

func (s *MenuService) nameTaken(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	query := s.DB.WithContext(ctx).Model(&models.MenuItem{}).Where("name = ?", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
