package services

import (
	"context"
	"errors"
	"strconv"

	"restaurant-pos/models"

	"gorm.io/gorm"
)

// TableService reads and writes the configurable table count.
type TableService struct {
	DB *gorm.DB
}

func NewTableService(db *gorm.DB) *TableService {
	return &TableService{DB: db}
}

// TableCount returns the configured table count. On first read, when no
// setting row exists yet, the default is persisted and returned.
func (s *TableService) TableCount(ctx context.Context) (int, error) {
	var setting models.Setting
	err := s.DB.WithContext(ctx).Where("name = ?", models.SettingTableCount).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		setting = models.Setting{
			Name:  models.SettingTableCount,
			Value: strconv.Itoa(models.DefaultTableCount),
		}
		if err := s.DB.WithContext(ctx).Create(&setting).Error; err != nil {
			return 0, err
		}
		return models.DefaultTableCount, nil
	}
	if err != nil {
		return 0, err
	}

	count, err := strconv.Atoi(setting.Value)
	if err != nil || count < 1 {
		return models.DefaultTableCount, nil
	}
	return count, nil
}

// SetTableCount persists a new table count. The caller is responsible for
// announcing the change to connected clients.
func (s *TableService) SetTableCount(ctx context.Context, count int) error {
	if count < 1 {
		return validationf("table count must be at least 1")
	}
	value := strconv.Itoa(count)
	var setting models.Setting
	err := s.DB.WithContext(ctx).Where("name = ?", models.SettingTableCount).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.DB.WithContext(ctx).Create(&models.Setting{
			Name:  models.SettingTableCount,
			Value: value,
		}).Error
	}
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Model(&setting).Update("value", value).Error
}
