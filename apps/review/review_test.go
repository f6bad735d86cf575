package review

import (
	"context"
	"testing"

	ordermodel "bulut3d/apps/order/model"
	productmodel "bulut3d/apps/product/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&productmodel.Product{}, &ordermodel.Order{}, &ordermodel.OrderItem{}, &Review{}))
	return db
}

func seed(t *testing.T, db *gorm.DB, id string, userID uint, status ordermodel.Status, productID uint) {
	o := ordermodel.Order{
		ID:          id,
		OrderNumber: "BLT-2025-" + id,
		UserID:      &userID,
		Status:      status,
		Subtotal:    decimal.NewFromInt(100),
		Total:       decimal.NewFromInt(100),
		Items:       []ordermodel.OrderItem{{ProductID: productID, ProductName: "Vazo", Quantity: 1}},
	}
	require.NoError(t, db.Create(&o).Error)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Mert Y.", DisplayName("Mert Yıldız"))
	assert.Equal(t, "Ali Can Ö.", DisplayName("  Ali Can  Özdemir "))
	assert.Equal(t, "Selin", DisplayName("Selin"))
	assert.Equal(t, "Müşteri", DisplayName(""))
}

func TestCreateUpdatesProductRating(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	p := productmodel.Product{Name: "Vazo", BasePrice: decimal.NewFromInt(100), Rating: 5}
	require.NoError(t, db.Create(&p).Error)
	seed(t, db, "o1", 1, ordermodel.StatusDelivered, p.ID)
	seed(t, db, "o2", 2, ordermodel.StatusDelivered, p.ID)
	s := NewService(db)

	r, err := s.Create(ctx, Input{UserID: 1, FullName: "Mert Yıldız", OrderID: "o1", ProductID: p.ID, Rating: 5, Comment: " Harika "})
	require.NoError(t, err)
	assert.Equal(t, "Mert Y.", r.UserName)
	assert.Equal(t, "Harika", r.Comment)

	_, err = s.Create(ctx, Input{UserID: 2, FullName: "Selin Kaya", OrderID: "o2", ProductID: p.ID, Rating: 4})
	require.NoError(t, err)

	var got productmodel.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, 4.5, got.Rating)
	assert.Equal(t, 2, got.ReviewCount)

	page, err := s.List(ctx, p.ID, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 4.5, page.Average)
	require.Len(t, page.Reviews, 1)
	assert.Equal(t, "Selin K.", page.Reviews[0].UserName)

	done, err := s.HasReviewed(ctx, 1, "o1", p.ID)
	require.NoError(t, err)
	assert.True(t, done)
}

func TestCreateRejects(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seed(t, db, "shipped", 1, ordermodel.StatusShipped, 7)
	seed(t, db, "done", 1, ordermodel.StatusDelivered, 7)
	s := NewService(db)

	_, err := s.Create(ctx, Input{UserID: 1, OrderID: "done", ProductID: 7, Rating: 6})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.Create(ctx, Input{UserID: 1, OrderID: "shipped", ProductID: 7, Rating: 5})
	assert.ErrorIs(t, err, ErrNotEligible, "not delivered yet")

	_, err = s.Create(ctx, Input{UserID: 2, OrderID: "done", ProductID: 7, Rating: 5})
	assert.ErrorIs(t, err, ErrNotEligible, "someone else's order")

	_, err = s.Create(ctx, Input{UserID: 1, OrderID: "done", ProductID: 8, Rating: 5})
	assert.ErrorIs(t, err, ErrNotEligible, "product not in the order")

	_, err = s.Create(ctx, Input{UserID: 1, OrderID: "done", ProductID: 7, Rating: 5})
	require.NoError(t, err)
	_, err = s.Create(ctx, Input{UserID: 1, OrderID: "done", ProductID: 7, Rating: 3})
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
}

func TestListWithoutReviews(t *testing.T) {
	s := NewService(setupTestDB(t))
	page, err := s.List(context.Background(), 99, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)
	assert.Equal(t, 5.0, page.Average)
	assert.Empty(t, page.Reviews)
}
