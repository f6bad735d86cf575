package customer

import (
	"context"
	"errors"
	"testing"

	ordermodel "bulut3d/apps/order/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Customer{}, &ordermodel.Order{}, &ordermodel.OrderItem{}))
	return db
}

func addOrder(t *testing.T, db *gorm.DB, customerID uint, total int64, status ordermodel.Status) {
	t.Helper()
	id := uuid.NewString()
	require.NoError(t, db.Create(&ordermodel.Order{
		ID: id, OrderNumber: "BLT-2025-" + id[:4], CustomerID: &customerID, Status: status,
		Subtotal: decimal.NewFromInt(total), Total: decimal.NewFromInt(total),
		// same display name as another customer on purpose
		CustomerName: "Ali Demir",
	}).Error)
}

func TestCRUD(t *testing.T) {
	s := NewService(setupTestDB(t))
	ctx := context.Background()

	_, err := s.Create(ctx, Customer{Phone: "555"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	c, err := s.Create(ctx, Customer{FullName: "Ali Demir", Location: "İzmir"})
	require.NoError(t, err)

	c.Phone = "5554443322"
	_, err = s.Update(ctx, c)
	require.NoError(t, err)
	got, err := s.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "5554443322", got.Phone)

	require.NoError(t, s.Delete(ctx, c.ID))
	assert.ErrorIs(t, s.Delete(ctx, c.ID), ErrNotFound)
	_, err = s.Update(ctx, c)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLinkUser(t *testing.T) {
	db := setupTestDB(t)

	first, err := LinkUser(db, 9, Profile{FullName: "Zeynep Ak", Email: "z@example.com"})
	require.NoError(t, err)
	second, err := LinkUser(db, 9, Profile{FullName: "Someone Else"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Zeynep Ak", second.FullName)
	require.NotNil(t, second.UserID)
	assert.Equal(t, uint(9), *second.UserID)
}

func TestLinkGuest(t *testing.T) {
	db := setupTestDB(t)

	_, err := LinkGuest(db, Profile{FullName: "No Mail"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	first, err := LinkGuest(db, Profile{FullName: "Can Öz", Email: "Can@Example.com"})
	require.NoError(t, err)
	second, err := LinkGuest(db, Profile{FullName: "Can Öz", Email: "can@example.com"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Nil(t, second.UserID)
}

func TestSummaryUsesForeignKey(t *testing.T) {
	db := setupTestDB(t)
	s := NewService(db)
	ctx := context.Background()

	ali, err := s.Create(ctx, Customer{FullName: "Ali Demir"})
	require.NoError(t, err)
	namesake, err := s.Create(ctx, Customer{FullName: "Ali Demir"})
	require.NoError(t, err)

	addOrder(t, db, ali.ID, 450, ordermodel.StatusDelivered)
	addOrder(t, db, ali.ID, 230, ordermodel.StatusPreparing)
	addOrder(t, db, ali.ID, 1000, ordermodel.StatusCancelled)
	addOrder(t, db, namesake.ID, 99, ordermodel.StatusShipped)

	sum, err := s.Summary(ctx, ali.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, sum.TotalOrders)
	assert.Equal(t, "680", sum.TotalSpent.String())

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	byID := map[uint]Summary{all[0].ID: all[0], all[1].ID: all[1]}
	assert.EqualValues(t, 1, byID[namesake.ID].TotalOrders)
	assert.Equal(t, "99", byID[namesake.ID].TotalSpent.String())

	orders, err := s.Orders(ctx, ali.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 3)

	require.NoError(t, s.Delete(ctx, ali.ID))
	var orphaned int64
	require.NoError(t, db.Model(&ordermodel.Order{}).Where("customer_id IS NULL").Count(&orphaned).Error)
	assert.EqualValues(t, 3, orphaned)
}

func TestLinkRollsBackWithTransaction(t *testing.T) {
	db := setupTestDB(t)
	boom := errors.New("order insert failed")

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := LinkGuest(tx, Profile{FullName: "Can Öz", Email: "can@example.com"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var n int64
	require.NoError(t, db.Model(&Customer{}).Count(&n).Error)
	assert.Zero(t, n)
}
