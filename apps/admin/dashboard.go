package admin

import (
	"context"
	"fmt"

	"bulut3d/apps/customer"
	ordermodel "bulut3d/apps/order/model"
	productmodel "bulut3d/apps/product/model"
	"bulut3d/apps/request"
	usermodel "bulut3d/apps/user/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const bestSellerCount = 5

// costOfGoodsRatio estimates filament and machine cost as a share of revenue.
var costOfGoodsRatio = decimal.RequireFromString("0.35")

type Stats struct {
	Revenue         decimal.Decimal        `json:"revenue"`
	OrderCount      int64                  `json:"orderCount"`
	ActiveOrders    int64                  `json:"activeOrders"`
	ProductCount    int64                  `json:"productCount"`
	CustomerCount   int64                  `json:"customerCount"`
	UserCount       int64                  `json:"userCount"`
	PendingRequests int64                  `json:"pendingRequests"`
	CriticalStock   []productmodel.Product `json:"criticalStock"`
	BestSellers     []BestSeller           `json:"bestSellers"`
}

type BestSeller struct {
	ID      uint            `json:"id"`
	Name    string          `json:"name"`
	Sales   int             `json:"sales"`
	Revenue decimal.Decimal `json:"revenue"`
}

type Service struct {
	db            *gorm.DB
	criticalStock int
}

func NewService(db *gorm.DB, criticalStock int) *Service {
	if criticalStock <= 0 {
		criticalStock = 5
	}
	return &Service{db: db, criticalStock: criticalStock}
}

type orderRow struct {
	Status ordermodel.Status
	Total  decimal.Decimal
}

// Stats builds the dashboard. Revenue is the sum of every order total.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	db := s.db.WithContext(ctx)
	var st Stats

	var orders []orderRow
	if err := db.Model(&ordermodel.Order{}).Select("status", "total").Scan(&orders).Error; err != nil {
		return st, fmt.Errorf("load orders: %w", err)
	}
	st.Revenue = decimal.Zero
	for _, o := range orders {
		st.Revenue = st.Revenue.Add(o.Total)
		if o.Status.Active() {
			st.ActiveOrders++
		}
	}
	st.OrderCount = int64(len(orders))

	if err := db.Model(&productmodel.Product{}).Count(&st.ProductCount).Error; err != nil {
		return st, err
	}
	if err := db.Model(&customer.Customer{}).Count(&st.CustomerCount).Error; err != nil {
		return st, err
	}
	if err := db.Model(&usermodel.User{}).Count(&st.UserCount).Error; err != nil {
		return st, err
	}
	if err := db.Model(&request.CustomRequest{}).Where("status = ?", request.StatusNew).
		Count(&st.PendingRequests).Error; err != nil {
		return st, err
	}

	if err := db.Where("stock < ?", s.criticalStock).Order("stock asc").Order("id asc").
		Find(&st.CriticalStock).Error; err != nil {
		return st, err
	}

	var top []productmodel.Product
	if err := db.Order("sales desc").Order("id asc").Limit(bestSellerCount).Find(&top).Error; err != nil {
		return st, err
	}
	st.BestSellers = make([]BestSeller, 0, len(top))
	for _, p := range top {
		st.BestSellers = append(st.BestSellers, BestSeller{
			ID:      p.ID,
			Name:    p.Name,
			Sales:   p.Sales,
			Revenue: p.BasePrice.Mul(decimal.NewFromInt(int64(p.Sales))),
		})
	}
	return st, nil
}

// Expenses are the monthly running costs entered on the dashboard.
type Expenses struct {
	ElectricityRate decimal.Decimal `json:"electricityRate"` // per kWh
	Consumption     decimal.Decimal `json:"consumption"`     // kWh
	Filament        decimal.Decimal `json:"filament"`
	Rent            decimal.Decimal `json:"rent"`
	Other           decimal.Decimal `json:"other"`
}

type Profit struct {
	Revenue           decimal.Decimal `json:"revenue"`
	CostOfGoods       decimal.Decimal `json:"costOfGoods"`
	OperatingExpenses decimal.Decimal `json:"operatingExpenses"`
	NetProfit         decimal.Decimal `json:"netProfit"`
}

func (e Expenses) Total() decimal.Decimal {
	return e.ElectricityRate.Mul(e.Consumption).Add(e.Filament).Add(e.Rent).Add(e.Other)
}

// NetProfit = revenue - (cost of goods + operating expenses).
func NetProfit(revenue decimal.Decimal, e Expenses) Profit {
	cogs := revenue.Mul(costOfGoodsRatio).Round(2)
	opex := e.Total().Round(2)
	return Profit{
		Revenue:           revenue,
		CostOfGoods:       cogs,
		OperatingExpenses: opex,
		NetProfit:         revenue.Sub(cogs).Sub(opex),
	}
}

func (s *Service) Profit(ctx context.Context, e Expenses) (Profit, error) {
	st, err := s.Stats(ctx)
	if err != nil {
		return Profit{}, err
	}
	return NetProfit(st.Revenue, e), nil
}

// UserRow is the admin listing of accounts.
type UserRow struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	JoinDate string `json:"joinDate"`
}

// ListUsers pages through registered accounts, newest first.
func (s *Service) ListUsers(ctx context.Context, page, pageSize int) ([]UserRow, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	db := s.db.WithContext(ctx)
	var total int64
	if err := db.Model(&usermodel.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []usermodel.User
	if err := db.Order("id desc").Limit(pageSize).Offset((page - 1) * pageSize).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	rows := make([]UserRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, UserRow{
			ID:       u.ID,
			Email:    u.Email,
			FullName: u.FullName,
			Phone:    u.Phone,
			JoinDate: u.CreatedAt.Format("2006-01-02"),
		})
	}
	return rows, total, nil
}
