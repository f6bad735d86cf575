package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidCoupon = errors.New("coupon: unknown or already used")
	ErrBelowMinimum  = errors.New("coupon: order total below coupon minimum")
)

// Coupon is granted to one user and can be redeemed once.
type Coupon struct {
	ID           string          `gorm:"primaryKey;type:char(36)" json:"id"`
	UserID       uint            `gorm:"not null;uniqueIndex:idx_coupon_user_code" json:"userId"`
	Code         string          `gorm:"type:varchar(32);not null;uniqueIndex:idx_coupon_user_code" json:"code"`
	DiscountRate decimal.Decimal `gorm:"column:discount_rate;type:decimal(4,2);not null" json:"discountRate"`
	Description  string          `gorm:"type:varchar(255)" json:"description"`
	MinAmount    decimal.Decimal `gorm:"column:min_amount;type:decimal(10,2);default:0" json:"minAmount"`
	Used         bool            `gorm:"default:false" json:"isUsed"`
	UsedAt       *time.Time      `json:"usedAt,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

func (Coupon) TableName() string {
	return "coupons"
}

// Template describes a coupon handed out automatically.
type Template struct {
	Code        string
	Rate        decimal.Decimal
	Description string
	MinAmount   decimal.Decimal
}

type Service struct {
	db      *gorm.DB
	welcome Template
}

func NewService(db *gorm.DB, welcome Template) *Service {
	welcome.Code = normalize(welcome.Code)
	return &Service{db: db, welcome: welcome}
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// GrantWelcome gives userID the welcome coupon unless they already have it,
// used or not.
func (s *Service) GrantWelcome(ctx context.Context, userID uint) (Coupon, error) {
	var c Coupon
	if s.welcome.Code == "" {
		return c, nil
	}
	err := s.db.WithContext(ctx).
		Where(Coupon{UserID: userID, Code: s.welcome.Code}).
		Attrs(Coupon{
			ID:           uuid.NewString(),
			DiscountRate: s.welcome.Rate,
			Description:  s.welcome.Description,
			MinAmount:    s.welcome.MinAmount,
		}).
		FirstOrCreate(&c).Error
	if err != nil {
		return c, fmt.Errorf("grant welcome coupon: %w", err)
	}
	return c, nil
}

func (s *Service) ListForUser(ctx context.Context, userID uint) ([]Coupon, error) {
	var coupons []Coupon
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at asc").Find(&coupons).Error
	return coupons, err
}

// Discount is subtotal × rate rounded to two decimals.
func Discount(subtotal, rate decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(rate).Round(2)
}

// Redeem marks the user's coupon as used inside tx and returns it with the
// discount it grants on subtotal.
func Redeem(tx *gorm.DB, userID uint, code string, subtotal decimal.Decimal) (Coupon, decimal.Decimal, error) {
	var c Coupon
	err := tx.Where("user_id = ? AND code = ? AND used = ?", userID, normalize(code), false).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c, decimal.Zero, ErrInvalidCoupon
	}
	if err != nil {
		return c, decimal.Zero, err
	}
	if subtotal.LessThan(c.MinAmount) {
		return c, decimal.Zero, fmt.Errorf("%w: minimum %s", ErrBelowMinimum, c.MinAmount.StringFixed(2))
	}

	now := time.Now()
	res := tx.Model(&Coupon{}).Where("id = ? AND used = ?", c.ID, false).
		Updates(map[string]any{"used": true, "used_at": now})
	if res.Error != nil {
		return c, decimal.Zero, res.Error
	}
	if res.RowsAffected == 0 {
		return c, decimal.Zero, ErrInvalidCoupon
	}
	c.Used = true
	c.UsedAt = &now
	return c, Discount(subtotal, c.DiscountRate), nil
}
