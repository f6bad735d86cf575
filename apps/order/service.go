package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"time"

	"bulut3d/apps/cart"
	"bulut3d/apps/coupon"
	"bulut3d/apps/customer"
	"bulut3d/apps/order/model"
	"bulut3d/apps/payment"
	productmodel "bulut3d/apps/product/model"
	"bulut3d/pkg/events"
	"bulut3d/pkg/inflight"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound             = errors.New("order: not found")
	ErrTransitionNotAllowed = errors.New("order: status transition not allowed")
	ErrInvalidStatus        = errors.New("order: unknown status")
	ErrInvalidCheckout      = errors.New("order: invalid checkout")
	ErrInvalidTab           = errors.New("order: unknown tab")
)

const numberAttempts = 10

// Carts is what checkout needs from the cart store.
type Carts interface {
	Get(ctx context.Context, owner string) (*cart.Cart, error)
	RemovePlaced(ctx context.Context, owner string, placed *cart.Cart) error
}

type Address struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	City        string `json:"city"`
	District    string `json:"district"`
	FullAddress string `json:"fullAddress"`
}

// Checkout is one place-order call. Owner is the cart owner key. When Buyer
// is set the order is linked to a customer record in the same transaction.
type Checkout struct {
	Owner      string
	UserID     *uint
	Buyer      *customer.Profile
	Address    Address
	Payment    payment.Request
	CouponCode string
}

// Event is the payload of order events.
type Event struct {
	ID          string          `json:"id"`
	OrderNumber string          `json:"orderNumber"`
	Status      model.Status    `json:"status"`
	Previous    model.Status    `json:"previous,omitempty"`
	Total       decimal.Decimal `json:"total"`
	Email       string          `json:"email"`
}

type Service struct {
	db        *gorm.DB
	carts     Carts
	guard     inflight.Guard
	publisher events.Publisher
	prefix    string

	now    func() time.Time
	number func() int
}

func NewService(db *gorm.DB, carts Carts, guard inflight.Guard, publisher events.Publisher, prefix string) *Service {
	if guard == nil {
		guard = inflight.NewMemory()
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	if prefix == "" {
		prefix = "BLT"
	}
	return &Service{
		db:        db,
		carts:     carts,
		guard:     guard,
		publisher: publisher,
		prefix:    prefix,
		now:       time.Now,
		number:    func() int { return rand.IntN(10000) },
	}
}

func (a Address) validate() error {
	var missing []string
	if strings.TrimSpace(a.FullName) == "" {
		missing = append(missing, "fullName")
	}
	if strings.TrimSpace(a.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(a.Phone) == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(a.FullAddress) == "" {
		missing = append(missing, "fullAddress")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidCheckout, strings.Join(missing, ", "))
	}
	return nil
}

// Snapshot freezes the cart lines into order items.
func Snapshot(c *cart.Cart) []model.OrderItem {
	items := make([]model.OrderItem, 0, c.Len())
	for _, it := range c.Items() {
		items = append(items, model.OrderItem{
			ProductID:   it.Product.ID,
			ProductName: it.Product.Name,
			VariantInfo: it.Variant.Describe(),
			Color:       it.Variant.Color,
			UnitPrice:   it.UnitPrice(),
			Quantity:    it.Quantity,
			TotalPrice:  it.LineTotal(),
			ImageURL:    it.Product.ImageURL,
		})
	}
	return items
}

func link(tx *gorm.DB, userID *uint, p customer.Profile) (customer.Customer, error) {
	if userID != nil {
		return customer.LinkUser(tx, *userID, p)
	}
	return customer.LinkGuest(tx, p)
}

// PlaceOrder turns the owner's cart into an order. Only the placed lines are
// taken out of the cart, after the order is stored.
func (s *Service) PlaceOrder(ctx context.Context, in Checkout) (model.Order, error) {
	release, err := s.guard.Acquire(ctx, "checkout:"+in.Owner)
	if err != nil {
		return model.Order{}, err
	}
	defer release()

	if err := in.Address.validate(); err != nil {
		return model.Order{}, err
	}
	c, err := s.carts.Get(ctx, in.Owner)
	if err != nil {
		return model.Order{}, err
	}
	if err := c.Validate(); err != nil {
		return model.Order{}, err
	}

	paid, err := payment.Authorize(in.Payment)
	if err != nil {
		return model.Order{}, err
	}
	subtotal := c.Total()
	o := model.Order{
		ID:              uuid.NewString(),
		UserID:          in.UserID,
		Status:          model.StatusPreparing,
		Subtotal:        subtotal,
		Discount:        decimal.Zero,
		Total:           subtotal,
		ItemCount:       c.ItemCount(),
		PaymentMethod:   paid.Method,
		CardLast4:       paid.CardLast4,
		Installments:    paid.Installments,
		CustomerName:    strings.TrimSpace(in.Address.FullName),
		CustomerEmail:   strings.TrimSpace(in.Address.Email),
		CustomerPhone:   strings.TrimSpace(in.Address.Phone),
		CustomerCity:    strings.TrimSpace(strings.Join([]string{in.Address.District, in.Address.City}, " ")),
		CustomerAddress: strings.TrimSpace(in.Address.FullAddress),
		Items:           Snapshot(c),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if code := strings.TrimSpace(in.CouponCode); code != "" {
			if in.UserID == nil {
				return coupon.ErrInvalidCoupon
			}
			used, discount, err := coupon.Redeem(tx, *in.UserID, code, subtotal)
			if err != nil {
				return err
			}
			o.CouponCode = used.Code
			o.Discount = discount
			o.Total = subtotal.Sub(discount)
		}

		if in.Buyer != nil {
			linked, err := link(tx, in.UserID, *in.Buyer)
			if err != nil {
				return err
			}
			o.CustomerID = &linked.ID
		}

		number, err := s.nextNumber(tx)
		if err != nil {
			return err
		}
		o.OrderNumber = number
		if err := tx.Create(&o).Error; err != nil {
			return err
		}
		for _, it := range o.Items {
			if err := tx.Model(&productmodel.Product{}).Where("id = ?", it.ProductID).
				UpdateColumn("sales", gorm.Expr("sales + ?", it.Quantity)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, coupon.ErrInvalidCoupon) || errors.Is(err, coupon.ErrBelowMinimum) ||
			errors.Is(err, customer.ErrInvalidInput) {
			return model.Order{}, err
		}
		return model.Order{}, fmt.Errorf("place order: %w", err)
	}

	if err := s.carts.RemovePlaced(ctx, in.Owner, c); err != nil {
		log.Printf("[order] %s placed but clearing cart %s failed: %v", o.OrderNumber, in.Owner, err)
	}
	log.Printf("[order] placed %s total=%s items=%d", o.OrderNumber, o.Total.StringFixed(2), o.ItemCount)
	events.Emit(ctx, s.publisher, events.OrderPlaced, eventOf(o, ""))
	return o, nil
}

// nextNumber draws PREFIX-YEAR-N until it finds one not yet used.
func (s *Service) nextNumber(tx *gorm.DB) (string, error) {
	year := s.now().Year()
	for i := 0; i < numberAttempts; i++ {
		candidate := fmt.Sprintf("%s-%d-%d", s.prefix, year, s.number())
		var n int64
		if err := tx.Model(&model.Order{}).Where("order_number = ?", candidate).Count(&n).Error; err != nil {
			return "", err
		}
		if n == 0 {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free order number after %d attempts", numberAttempts)
}

func eventOf(o model.Order, previous model.Status) Event {
	return Event{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
		Previous:    previous,
		Total:       o.Total,
		Email:       o.CustomerEmail,
	}
}

func (s *Service) Get(ctx context.Context, id string) (model.Order, error) {
	var o model.Order
	err := s.db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return o, ErrNotFound
	}
	return o, err
}

// GetForUser hides orders that belong to someone else.
func (s *Service) GetForUser(ctx context.Context, id string, userID uint) (model.Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return o, err
	}
	if o.UserID == nil || *o.UserID != userID {
		return model.Order{}, ErrNotFound
	}
	return o, nil
}

// Track looks an order up by the number printed on the confirmation.
func (s *Service) Track(ctx context.Context, number string) (model.Order, error) {
	var o model.Order
	err := s.db.WithContext(ctx).Preload("Items").
		Where("order_number = ?", strings.ToUpper(strings.TrimSpace(number))).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return o, ErrNotFound
	}
	return o, err
}

// ListTab returns the orders on one admin tab, newest first.
func (s *Service) ListTab(ctx context.Context, tab model.Tab) ([]model.Order, error) {
	if !tab.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTab, tab)
	}
	q := s.db.WithContext(ctx).Preload("Items").Order("created_at desc")
	closed := []model.Status{model.StatusDelivered, model.StatusCancelled, model.StatusReturned}
	switch tab {
	case model.TabActive:
		q = q.Where("status NOT IN ?", closed)
	case model.TabHistory:
		q = q.Where("status = ?", model.StatusDelivered)
	case model.TabCancelled:
		q = q.Where("status = ?", model.StatusCancelled)
	case model.TabReturned:
		q = q.Where("status = ?", model.StatusReturned)
	}
	var orders []model.Order
	err := q.Find(&orders).Error
	return orders, err
}

func (s *Service) ListForUser(ctx context.Context, userID uint) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).Preload("Items").Where("user_id = ?", userID).
		Order("created_at desc").Find(&orders).Error
	return orders, err
}
