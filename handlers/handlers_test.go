package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"restaurant-pos/config"
	"restaurant-pos/models"
	"restaurant-pos/routes"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	// A pooled :memory: connection is its own database; pin to one.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.Migrate(db))

	r := gin.New()
	hub := routes.SetupRoutes(r, db)
	go hub.Run()
	return r, db
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCategoryCRUD(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(r, "POST", "/menu-categories", gin.H{"name": "Drinks"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Drinks", created.Name)

	w = doJSON(r, "POST", "/menu-categories", gin.H{"name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, "GET", "/menu-categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var categories []models.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &categories))
	assert.Len(t, categories, 1)

	w = doJSON(r, "PUT", fmt.Sprintf("/menu-categories/%d", created.ID), gin.H{"name": "Beverages"})
	require.Equal(t, http.StatusOK, w.Code)

	// Self-parenting is rejected
	w = doJSON(r, "PUT", fmt.Sprintf("/menu-categories/%d", created.ID),
		gin.H{"name": "Beverages", "parent_id": created.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, "DELETE", fmt.Sprintf("/menu-categories/%d", created.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, "DELETE", fmt.Sprintf("/menu-categories/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMenuItemCRUD(t *testing.T) {
	r, db := setupRouter(t)

	category := models.Category{Name: "Drinks"}
	require.NoError(t, db.Create(&category).Error)

	w := doJSON(r, "POST", "/menu", gin.H{"name": "Tea", "price": 20, "category_id": category.ID})
	require.Equal(t, http.StatusCreated, w.Code)

	// Duplicate names conflict
	w = doJSON(r, "POST", "/menu", gin.H{"name": "Tea", "price": 25, "category_id": category.ID})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Non-positive price is invalid
	w = doJSON(r, "POST", "/menu", gin.H{"name": "Coffee", "price": 0, "category_id": category.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, "GET", "/menu", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listing struct {
		Items []models.MenuItemView `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	require.Len(t, listing.Items, 1)
	assert.Equal(t, "Drinks", listing.Items[0].CategoryName)
}

func TestTableCountEndpoints(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(r, "GET", "/settings/table-count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Value int `json:"value"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 20, resp.Value)

	w = doJSON(r, "POST", "/settings/table-count", gin.H{"count": 5})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, "GET", "/settings/table-count", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Value)

	w = doJSON(r, "POST", "/settings/table-count", gin.H{"count": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderProjections(t *testing.T) {
	r, db := setupRouter(t)

	category := models.Category{Name: "Drinks"}
	require.NoError(t, db.Create(&category).Error)
	item := models.MenuItem{Name: "Tea", Price: 20, CategoryID: category.ID}
	require.NoError(t, db.Create(&item).Error)
	order := models.Order{
		TableNo: 3,
		Status:  models.StatusWaiting,
		Items: []models.OrderItem{
			{MenuItemID: item.ID, Quantity: 2, Price: 20, Name: "Tea"},
		},
	}
	require.NoError(t, db.Create(&order).Error)

	w := doJSON(r, "GET", "/orders/active", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var active struct {
		Count  int            `json:"count"`
		Orders []models.Order `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &active))
	require.Equal(t, 1, active.Count)
	assert.Equal(t, 3, active.Orders[0].TableNo)

	w = doJSON(r, "GET", "/tables/3/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var bill struct {
		TableNo int            `json:"table_no"`
		Orders  []models.Order `json:"orders"`
		Total   float64        `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bill))
	assert.Equal(t, 40.0, bill.Total)

	w = doJSON(r, "GET", "/orders/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary struct {
		Pending []struct {
			Name     string `json:"name"`
			Quantity int    `json:"quantity"`
		} `json:"pending"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	require.Len(t, summary.Pending, 1)
	assert.Equal(t, "Tea", summary.Pending[0].Name)
	assert.Equal(t, 2, summary.Pending[0].Quantity)

	w = doJSON(r, "GET", "/tables/notanumber/orders", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
