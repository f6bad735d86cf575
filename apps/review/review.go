// Package review stores product reviews written by customers who received
// the product, and keeps the product's rating and review count in step.
package review

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	ordermodel "bulut3d/apps/order/model"
	productmodel "bulut3d/apps/product/model"

	"gorm.io/gorm"
)

var (
	ErrInvalidInput    = errors.New("review: invalid input")
	ErrNotEligible     = errors.New("review: product was not delivered to this customer")
	ErrAlreadyReviewed = errors.New("review: already reviewed")
)

const maxPageSize = 50

type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"index;uniqueIndex:idx_review_order_product" json:"productId"`
	OrderID   string    `gorm:"type:char(36);uniqueIndex:idx_review_order_product" json:"-"`
	UserID    uint      `gorm:"index" json:"-"`
	UserName  string    `gorm:"type:varchar(100)" json:"userName"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `json:"date"`
}

func (Review) TableName() string {
	return "product_reviews"
}

// Input is one submitted review. FullName is turned into the public
// "Mert Y." form.
type Input struct {
	UserID    uint
	FullName  string
	OrderID   string
	ProductID uint
	Rating    int
	Comment   string
}

// Page is one page of a product's reviews plus the totals over all of them.
type Page struct {
	Reviews []Review `json:"reviews"`
	Total   int64    `json:"total"`
	Average float64  `json:"average"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// DisplayName shortens "Mert Yıldız" to "Mert Y.".
func DisplayName(fullName string) string {
	parts := strings.Fields(fullName)
	switch len(parts) {
	case 0:
		return "Müşteri"
	case 1:
		return parts[0]
	}
	last, _ := utf8.DecodeRuneInString(parts[len(parts)-1])
	return strings.Join(parts[:len(parts)-1], " ") + " " + string(last) + "."
}

// Create stores a review for a product from a delivered order of the user.
func (s *Service) Create(ctx context.Context, in Input) (Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return Review{}, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	if err := s.eligible(ctx, in); err != nil {
		return Review{}, err
	}

	r := Review{
		ProductID: in.ProductID,
		OrderID:   in.OrderID,
		UserID:    in.UserID,
		UserName:  DisplayName(in.FullName),
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&Review{}).Where("order_id = ? AND product_id = ?", in.OrderID, in.ProductID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrAlreadyReviewed
		}
		if err := tx.Create(&r).Error; err != nil {
			return err
		}
		return refreshRating(tx, in.ProductID)
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyReviewed) {
			return Review{}, err
		}
		return Review{}, fmt.Errorf("create review: %w", err)
	}
	log.Printf("[review] product %d rated %d by user %d", r.ProductID, r.Rating, r.UserID)
	return r, nil
}

func (s *Service) eligible(ctx context.Context, in Input) error {
	var o ordermodel.Order
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", in.OrderID, in.UserID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotEligible
	}
	if err != nil {
		return err
	}
	if o.Status != ordermodel.StatusDelivered {
		return ErrNotEligible
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&ordermodel.OrderItem{}).
		Where("order_id = ? AND product_id = ?", in.OrderID, in.ProductID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotEligible
	}
	return nil
}

type aggregate struct {
	N   int64
	Avg float64
}

func stats(tx *gorm.DB, productID uint) (aggregate, error) {
	var a aggregate
	err := tx.Model(&Review{}).Select("COUNT(*) AS n, COALESCE(AVG(rating), 0) AS avg").
		Where("product_id = ?", productID).Scan(&a).Error
	return a, err
}

func refreshRating(tx *gorm.DB, productID uint) error {
	a, err := stats(tx, productID)
	if err != nil {
		return err
	}
	return tx.Model(&productmodel.Product{}).Where("id = ?", productID).Updates(map[string]any{
		"rating":       math.Round(a.Avg*10) / 10,
		"review_count": a.N,
	}).Error
}

// List pages through a product's reviews, newest first. A product without
// reviews averages 5.
func (s *Service) List(ctx context.Context, productID uint, page, pageSize int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = 10
	}
	db := s.db.WithContext(ctx)
	a, err := stats(db, productID)
	if err != nil {
		return Page{}, err
	}
	out := Page{Reviews: []Review{}, Total: a.N, Average: 5}
	if a.N > 0 {
		out.Average = math.Round(a.Avg*10) / 10
	}
	err = db.Where("product_id = ?", productID).Order("created_at desc").Order("id desc").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&out.Reviews).Error
	return out, err
}

// HasReviewed reports whether the product of that order already has a review.
func (s *Service) HasReviewed(ctx context.Context, userID uint, orderID string, productID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Review{}).
		Where("user_id = ? AND order_id = ? AND product_id = ?", userID, orderID, productID).Count(&n).Error
	return n > 0, err
}
