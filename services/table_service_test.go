package services

import (
	"context"
	"testing"

	"restaurant-pos/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableCountDefaultsAndPersists(t *testing.T) {
	db := newTestDB(t)
	s := NewTableService(db)
	ctx := context.Background()

	count, err := s.TableCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, count)

	// The default is written on first read
	var setting models.Setting
	require.NoError(t, db.Where("name = ?", models.SettingTableCount).First(&setting).Error)
	assert.Equal(t, "20", setting.Value)
}

func TestSetTableCount(t *testing.T) {
	s := NewTableService(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, s.SetTableCount(ctx, 5))
	count, err := s.TableCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	// Updating an existing row, not inserting a second one
	require.NoError(t, s.SetTableCount(ctx, 12))
	count, err = s.TableCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, count)

	var rows int64
	require.NoError(t, s.DB.Model(&models.Setting{}).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestSetTableCountValidation(t *testing.T) {
	s := NewTableService(newTestDB(t))
	var ve *ValidationError
	assert.ErrorAs(t, s.SetTableCount(context.Background(), 0), &ve)
	assert.ErrorAs(t, s.SetTableCount(context.Background(), -3), &ve)
}
