package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ordermodel "bulut3d/apps/order/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("customer: not found")
	ErrInvalidInput = errors.New("customer: invalid input")
)

// Customer is the admin-facing record. Orders point at it through
// orders.customer_id.
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"uniqueIndex" json:"userId,omitempty"`
	FullName  string    `gorm:"column:full_name;type:varchar(120);not null" json:"fullName"`
	Email     string    `gorm:"type:varchar(120);index" json:"email"`
	Phone     string    `gorm:"type:varchar(32)" json:"phone"`
	Location  string    `gorm:"type:varchar(120)" json:"location"`
	Address   string    `gorm:"type:text" json:"address"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Customer) TableName() string {
	return "customers"
}

// Summary is a customer with lifetime figures derived from their orders.
// Cancelled and returned orders are counted but not spent.
type Summary struct {
	Customer
	TotalOrders int64           `json:"totalOrders"`
	TotalSpent  decimal.Decimal `json:"totalSpent"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func validate(c Customer) error {
	if strings.TrimSpace(c.FullName) == "" {
		return fmt.Errorf("%w: fullName is required", ErrInvalidInput)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uint) (Customer, error) {
	var c Customer
	err := s.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c, ErrNotFound
	}
	return c, err
}

func (s *Service) Create(ctx context.Context, c Customer) (Customer, error) {
	c.ID = 0
	if err := validate(c); err != nil {
		return c, err
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return c, fmt.Errorf("create customer: %w", err)
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, c Customer) (Customer, error) {
	if err := validate(c); err != nil {
		return c, err
	}
	current, err := s.Get(ctx, c.ID)
	if err != nil {
		return c, err
	}
	c.UserID = current.UserID
	c.CreatedAt = current.CreatedAt
	if err := s.db.WithContext(ctx).Save(&c).Error; err != nil {
		return c, fmt.Errorf("update customer %d: %w", c.ID, err)
	}
	return c, nil
}

// Delete removes the customer. Their orders stay and lose the link.
func (s *Service) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&Customer{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Model(&ordermodel.Order{}).Where("customer_id = ?", id).Update("customer_id", nil).Error
	})
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete customer %d: %w", id, err)
	}
	return err
}

// Profile is what checkout knows about the buyer.
type Profile struct {
	FullName string
	Email    string
	Phone    string
	Location string
	Address  string
}

// LinkUser returns the customer linked to userID, creating it from p on the
// first order. Existing records are not overwritten. db is usually the
// order transaction.
func LinkUser(db *gorm.DB, userID uint, p Profile) (Customer, error) {
	var c Customer
	err := db.
		Where(Customer{UserID: &userID}).
		Attrs(Customer{
			FullName: strings.TrimSpace(p.FullName),
			Email:    strings.TrimSpace(p.Email),
			Phone:    strings.TrimSpace(p.Phone),
			Location: strings.TrimSpace(p.Location),
			Address:  strings.TrimSpace(p.Address),
		}).
		FirstOrCreate(&c).Error
	if err != nil {
		return c, fmt.Errorf("ensure customer for user %d: %w", userID, err)
	}
	return c, nil
}

// LinkGuest matches guest checkouts on email among customers without an
// account, creating one when none exists.
func LinkGuest(db *gorm.DB, p Profile) (Customer, error) {
	email := strings.ToLower(strings.TrimSpace(p.Email))
	if email == "" {
		return Customer{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	var c Customer
	err := db.Where("user_id IS NULL AND email = ?", email).First(&c).Error
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c, err
	}
	c = Customer{
		FullName: strings.TrimSpace(p.FullName),
		Email:    email,
		Phone:    strings.TrimSpace(p.Phone),
		Location: strings.TrimSpace(p.Location),
		Address:  strings.TrimSpace(p.Address),
	}
	if err := validate(c); err != nil {
		return c, err
	}
	if err := db.Create(&c).Error; err != nil {
		return c, fmt.Errorf("create customer: %w", err)
	}
	return c, nil
}

type orderRow struct {
	CustomerID uint
	Status     ordermodel.Status
	Total      decimal.Decimal
}

func (s *Service) totals(ctx context.Context, ids []uint) (map[uint]Summary, error) {
	q := s.db.WithContext(ctx).Model(&ordermodel.Order{}).
		Select("customer_id", "status", "total").Where("customer_id IS NOT NULL")
	if ids != nil {
		q = q.Where("customer_id IN ?", ids)
	}
	var rows []orderRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]Summary)
	for _, r := range rows {
		sum := out[r.CustomerID]
		sum.TotalOrders++
		if r.Status.Counted() {
			sum.TotalSpent = sum.TotalSpent.Add(r.Total)
		}
		out[r.CustomerID] = sum
	}
	return out, nil
}

func (s *Service) Summary(ctx context.Context, id uint) (Summary, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return Summary{}, err
	}
	totals, err := s.totals(ctx, []uint{id})
	if err != nil {
		return Summary{}, err
	}
	sum := totals[id]
	sum.Customer = c
	return sum, nil
}

// List returns every customer with their totals, newest first.
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	var customers []Customer
	if err := s.db.WithContext(ctx).Order("created_at desc").Order("id desc").Find(&customers).Error; err != nil {
		return nil, err
	}
	totals, err := s.totals(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(customers))
	for _, c := range customers {
		sum := totals[c.ID]
		sum.Customer = c
		out = append(out, sum)
	}
	return out, nil
}

func (s *Service) Orders(ctx context.Context, id uint) ([]ordermodel.Order, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	var orders []ordermodel.Order
	err := s.db.WithContext(ctx).Preload("Items").Where("customer_id = ?", id).
		Order("created_at desc").Find(&orders).Error
	return orders, err
}
