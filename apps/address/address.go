// Package address keeps the saved shipping addresses of signed-in users.
package address

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("address: not found")
	ErrInvalidInput = errors.New("address: invalid input")
)

type Address struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"index;not null" json:"-"`
	Title       string `gorm:"type:varchar(50)" json:"title"` // "Ev", "İş"
	FullName    string `gorm:"type:varchar(100);not null" json:"fullName"`
	Phone       string `gorm:"type:varchar(20)" json:"phone"`
	City        string `gorm:"type:varchar(50)" json:"city"`
	District    string `gorm:"type:varchar(50)" json:"district"`
	FullAddress string `gorm:"type:varchar(255);not null" json:"fullAddress"`
	IsDefault   bool   `gorm:"default:false" json:"isDefault"`
}

func (Address) TableName() string {
	return "addresses"
}

func (a Address) validate() error {
	if strings.TrimSpace(a.FullName) == "" || strings.TrimSpace(a.FullAddress) == "" {
		return fmt.Errorf("%w: fullName and fullAddress are required", ErrInvalidInput)
	}
	return nil
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns the user's addresses, default first.
func (s *Service) List(ctx context.Context, userID uint) ([]Address, error) {
	var out []Address
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("is_default desc").Order("id").Find(&out).Error
	return out, err
}

// Get only finds addresses owned by userID.
func (s *Service) Get(ctx context.Context, userID, id uint) (Address, error) {
	var a Address
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return a, ErrNotFound
	}
	return a, err
}

// Default returns the default address, ErrNotFound when the user has none.
func (s *Service) Default(ctx context.Context, userID uint) (Address, error) {
	var a Address
	err := s.db.WithContext(ctx).Where("user_id = ? AND is_default = ?", userID, true).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return a, ErrNotFound
	}
	return a, err
}

// Create saves a new address. The first one a user saves becomes the default.
func (s *Service) Create(ctx context.Context, userID uint, a Address) (Address, error) {
	if err := a.validate(); err != nil {
		return a, err
	}
	a.ID = 0
	a.UserID = userID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Address{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		a.IsDefault = count == 0
		return tx.Create(&a).Error
	})
	if err != nil {
		return a, fmt.Errorf("create address: %w", err)
	}
	return a, nil
}

// Update rewrites the fields of an address; the default flag is left alone.
func (s *Service) Update(ctx context.Context, userID uint, a Address) (Address, error) {
	if err := a.validate(); err != nil {
		return a, err
	}
	current, err := s.Get(ctx, userID, a.ID)
	if err != nil {
		return a, err
	}
	current.Title = a.Title
	current.FullName = a.FullName
	current.Phone = a.Phone
	current.City = a.City
	current.District = a.District
	current.FullAddress = a.FullAddress
	if err := s.db.WithContext(ctx).Save(&current).Error; err != nil {
		return current, fmt.Errorf("update address %d: %w", a.ID, err)
	}
	return current, nil
}

// Delete removes an address. When it was the default, the oldest remaining
// address takes over.
func (s *Service) Delete(ctx context.Context, userID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a Address
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&a).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Delete(&a).Error; err != nil {
			return err
		}
		if !a.IsDefault {
			return nil
		}
		var next Address
		err := tx.Where("user_id = ?", userID).Order("id").First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&next).Update("is_default", true).Error
	})
}

// SetDefault makes id the only default address of the user.
func (s *Service) SetDefault(ctx context.Context, userID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Address{}).Where("user_id = ?", userID).Update("is_default", false).Error; err != nil {
			return err
		}
		res := tx.Model(&Address{}).Where("id = ? AND user_id = ?", id, userID).Update("is_default", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
