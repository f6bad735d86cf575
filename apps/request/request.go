package request

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusNew      Status = "Yeni"
	StatusReviewed Status = "İncelendi"
	StatusOffered  Status = "Teklif Verildi"
)

// CustomRequest is a bespoke print job submitted from the custom order form.
type CustomRequest struct {
	ID          uint                `gorm:"primaryKey" json:"id"`
	Name        string              `gorm:"type:varchar(120);not null" json:"name"`
	Email       string              `gorm:"type:varchar(120);not null" json:"email"`
	Phone       string              `gorm:"type:varchar(32)" json:"phone"`
	Material    string              `gorm:"type:varchar(32)" json:"material"`
	Description string              `gorm:"type:text;not null" json:"description"`
	Status      Status              `gorm:"type:varchar(32);index;not null" json:"status"`
	FileURL     string              `gorm:"column:file_url;type:varchar(512)" json:"fileUrl,omitempty"`
	OfferPrice  decimal.NullDecimal `gorm:"column:offer_price;type:decimal(10,2)" json:"offerPrice"`
	OfferNote   string              `gorm:"column:offer_note;type:text" json:"offerNote,omitempty"`
	OfferDate   *time.Time          `gorm:"column:offer_date" json:"offerDate,omitempty"`
	CreatedAt   time.Time           `json:"date"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

func (CustomRequest) TableName() string {
	return "custom_requests"
}
