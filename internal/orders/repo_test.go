package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/puntadaestudio/puntada-backend/pkg/db/models"
	"github.com/puntadaestudio/puntada-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'pendiente',
  buyer_id TEXT,
  buyer_name TEXT NOT NULL,
  buyer_email TEXT NOT NULL,
  buyer_phone TEXT NOT NULL,
  ship_address TEXT NOT NULL,
  ship_city TEXT NOT NULL,
  notes TEXT NOT NULL DEFAULT '',
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  title TEXT NOT NULL,
  size TEXT NOT NULL DEFAULT '',
  color TEXT NOT NULL DEFAULT '',
  fit TEXT NOT NULL DEFAULT '',
  quantity INTEGER NOT NULL,
  unit_price TEXT NOT NULL,
  image_ref TEXT NOT NULL DEFAULT '',
  customization TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, buyerID *uuid.UUID, number int64, created time.Time, itemCount int) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:          uuid.New(),
		Status:      enums.OrderStatusPending,
		BuyerID:     buyerID,
		BuyerName:   "Lucia Fernandez",
		BuyerEmail:  "lucia@example.com",
		BuyerPhone:  "+54 11 5555 0101",
		ShipAddress: "Av. Corrientes 1234",
		ShipCity:    "Buenos Aires",
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for i := 0; i < itemCount; i++ {
		order.Items = append(order.Items, models.OrderItem{
			ID:        uuid.New(),
			ProductID: uuid.New(),
			Title:     "Remera Clasica",
			Size:      "M",
			Color:     "negro",
			Quantity:  2,
			UnitPrice: decimal.RequireFromString("8500.00"),
			CreatedAt: created,
		})
	}
	require.NoError(t, db.Create(order).Error)
	// The order number column is database-assigned in production.
	require.NoError(t, db.Exec("UPDATE orders SET order_number = ? WHERE id = ?", number, order.ID).Error)
	return order
}

func TestRepositoryCreateAndFindByID(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	buyerID := uuid.New()
	created := seedOrder(t, db, &buyerID, 101, time.Now().UTC(), 2)

	found, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 2)
	assert.Equal(t, int64(101), found.OrderNumber)
	assert.Equal(t, enums.OrderStatusPending, found.Status)
	assert.Equal(t, "34000.00", found.Total().StringFixed(2))
}

func TestRepositoryFindByIDForBuyer_scopesByBuyer(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	owner := uuid.New()
	stranger := uuid.New()
	order := seedOrder(t, db, &owner, 102, time.Now().UTC(), 1)
	guestOrder := seedOrder(t, db, nil, 103, time.Now().UTC(), 1)

	found, err := repo.FindByIDForBuyer(context.Background(), order.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = repo.FindByIDForBuyer(context.Background(), order.ID, stranger)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.FindByIDForBuyer(context.Background(), guestOrder.ID, owner)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListByBuyer_newestFirst(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	buyerID := uuid.New()
	now := time.Now().UTC()
	seedOrder(t, db, &buyerID, 201, now.Add(-time.Hour), 1)
	seedOrder(t, db, &buyerID, 202, now, 1)
	other := uuid.New()
	seedOrder(t, db, &other, 203, now, 1)

	list, err := repo.ListByBuyer(context.Background(), buyerID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(202), list[0].OrderNumber)
	assert.Equal(t, int64(201), list[1].OrderNumber)
}

func TestRepositoryUpdateStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	buyerID := uuid.New()
	order := seedOrder(t, db, &buyerID, 301, time.Now().UTC(), 1)

	require.NoError(t, repo.UpdateStatus(context.Background(), order.ID, enums.OrderStatusPaid))

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPaid, found.Status)
}
