package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods offered at checkout.
const (
	PaymentCash     = "Nakit"
	PaymentTransfer = "EFT/Havale"
	PaymentCard     = "Kredi Kartı"
	PaymentShopier  = "Shopier"
)

// Order is the orders row. Customer fields and Items are snapshots taken at
// checkout and are not touched by later catalog or customer edits.
type Order struct {
	ID              string          `gorm:"primaryKey;type:char(36)" json:"id"`
	OrderNumber     string          `gorm:"column:order_number;type:varchar(32);uniqueIndex;not null" json:"orderNumber"`
	UserID          *uint           `gorm:"index" json:"userId,omitempty"`
	CustomerID      *uint           `gorm:"column:customer_id;index" json:"customerId,omitempty"`
	Status          Status          `gorm:"type:varchar(32);index;not null" json:"status"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Discount        decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"discount"`
	Total           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	CouponCode      string          `gorm:"column:coupon_code;type:varchar(32)" json:"couponCode,omitempty"`
	ItemCount       int             `gorm:"column:item_count" json:"items"`
	PaymentMethod   string          `gorm:"column:payment_method;type:varchar(32)" json:"paymentMethod"`
	CardLast4       string          `gorm:"column:card_last4;type:varchar(4)" json:"cardLast4,omitempty"`
	Installments    int             `gorm:"default:1" json:"installments"`
	CustomerName    string          `gorm:"column:customer_name;type:varchar(120)" json:"customerName"`
	CustomerEmail   string          `gorm:"column:customer_email;type:varchar(120)" json:"customerEmail"`
	CustomerPhone   string          `gorm:"column:customer_phone;type:varchar(32)" json:"customerPhone"`
	CustomerCity    string          `gorm:"column:customer_city;type:varchar(64)" json:"customerCity"`
	CustomerAddress string          `gorm:"column:customer_address;type:text" json:"customerAddress"`
	ShippingCompany string          `gorm:"column:shipping_company;type:varchar(64)" json:"shippingCompany,omitempty"`
	TrackingNumber  string          `gorm:"column:tracking_number;type:varchar(64)" json:"trackingNumber,omitempty"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID" json:"orderItems"`
	CreatedAt       time.Time       `json:"date"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem is one cart line frozen at checkout.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"-"`
	OrderID     string          `gorm:"type:char(36);index" json:"-"`
	ProductID   uint            `gorm:"index" json:"productId"`
	ProductName string          `gorm:"type:varchar(200)" json:"productName"`
	VariantInfo string          `gorm:"type:varchar(120)" json:"variantInfo"`
	Color       string          `gorm:"type:varchar(32)" json:"color"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2)" json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(10,2)" json:"totalPrice"`
	ImageURL    string          `gorm:"column:image_url;type:varchar(255)" json:"imageUrl"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
