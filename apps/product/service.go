package product

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"bulut3d/apps/product/model"
	"bulut3d/pkg/search"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("product: not found")
	ErrInvalidInput = errors.New("product: invalid input")
)

var costRatio = decimal.RequireFromString("0.4")

type Service struct {
	db      *gorm.DB
	indexer search.Indexer
	Rules   PriceRules
}

func NewService(db *gorm.DB, indexer search.Indexer, rules PriceRules) *Service {
	if indexer == nil {
		indexer = search.Nop{}
	}
	return &Service{db: db, indexer: indexer, Rules: rules}
}

// List returns every product, newest first.
func (s *Service) List(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := s.db.WithContext(ctx).Order("created_at desc").Order("id desc").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Catalog runs the catalog filter over the current collection.
func (s *Service) Catalog(ctx context.Context, q Query) ([]model.Product, error) {
	products, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(products, q), nil
}

// Inventory runs the admin filter over the current collection.
func (s *Service) Inventory(ctx context.Context, q Query) ([]model.Product, error) {
	products, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return FilterInventory(products, q), nil
}

const maxSuggestions = 8

// Suggest answers the search box while typing. The Elasticsearch mirror is
// asked first; without one, or when it fails, the catalog filter serves the
// best sellers matching text.
func (s *Service) Suggest(ctx context.Context, text string, limit int) ([]model.Product, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []model.Product{}, nil
	}
	if limit <= 0 || limit > maxSuggestions {
		limit = maxSuggestions
	}
	if sr, ok := s.indexer.(search.Searcher); ok {
		out, err := s.suggestFromIndex(ctx, sr, text, limit)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, search.ErrDisabled) {
			log.Printf("[product] suggest from index failed, using catalog: %v", err)
		}
	}
	matched, err := s.Catalog(ctx, Query{Search: text, Sort: SortSales})
	if err != nil {
		return nil, err
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// suggestFromIndex loads the hits in rank order. Hits for products deleted
// since they were indexed are skipped.
func (s *Service) suggestFromIndex(ctx context.Context, sr search.Searcher, text string, limit int) ([]model.Product, error) {
	hits, err := sr.Suggest(ctx, text, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(hits))
	for _, h := range hits {
		id, err := strconv.ParseUint(h, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	found, err := s.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := found[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id uint) (model.Product, error) {
	var p model.Product
	err := s.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return p, ErrNotFound
	}
	return p, err
}

// GetMany loads the products for ids; unknown ids are simply absent.
func (s *Service) GetMany(ctx context.Context, ids []uint) (map[uint]model.Product, error) {
	out := make(map[uint]model.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var products []model.Product
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func validate(p model.Product) error {
	var problems []string
	if strings.TrimSpace(p.Name) == "" {
		problems = append(problems, "name is required")
	}
	if p.BasePrice.IsNegative() {
		problems = append(problems, "basePrice must not be negative")
	}
	if p.Stock < 0 {
		problems = append(problems, "stock must not be negative")
	}
	if len(p.Categories) == 0 {
		problems = append(problems, "at least one category is required")
	}
	if len(p.AvailableMaterials) == 0 || len(p.AvailableSizes) == 0 || len(p.AvailableColors) == 0 {
		problems = append(problems, "materials, sizes and colors must not be empty")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}

func (s *Service) Create(ctx context.Context, p model.Product) (model.Product, error) {
	p.ID = 0
	if err := validate(p); err != nil {
		return p, err
	}
	if p.CostPrice.IsZero() {
		// Rough filament + machine time estimate until the admin enters one.
		p.CostPrice = p.BasePrice.Mul(costRatio).Round(2)
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return p, fmt.Errorf("create product: %w", err)
	}
	s.mirror(ctx, p)
	return p, nil
}

// Update replaces the editable fields of an existing product.
func (s *Service) Update(ctx context.Context, p model.Product) (model.Product, error) {
	if err := validate(p); err != nil {
		return p, err
	}
	current, err := s.Get(ctx, p.ID)
	if err != nil {
		return p, err
	}
	p.CreatedAt = current.CreatedAt
	p.Sales = current.Sales
	p.Rating = current.Rating
	p.ReviewCount = current.ReviewCount
	if err := s.db.WithContext(ctx).Save(&p).Error; err != nil {
		return p, fmt.Errorf("update product %d: %w", p.ID, err)
	}
	s.mirror(ctx, p)
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&model.Product{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	if err := s.indexer.Delete(ctx, strconv.FormatUint(uint64(id), 10)); err != nil {
		log.Printf("[product] unindex %d failed: %v", id, err)
	}
	return nil
}

// AdjustStock sets the absolute stock of one product.
func (s *Service) AdjustStock(ctx context.Context, id uint, stock int) (model.Product, error) {
	if stock < 0 {
		return model.Product{}, fmt.Errorf("%w: stock must not be negative", ErrInvalidInput)
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return p, err
	}
	if err := s.db.WithContext(ctx).Model(&p).Update("stock", stock).Error; err != nil {
		return p, fmt.Errorf("adjust stock %d: %w", id, err)
	}
	p.Stock = stock
	s.mirror(ctx, p)
	return p, nil
}

// BulkAddStock adds delta to every listed product in one transaction and
// returns how many rows changed. Stock never drops below zero.
func (s *Service) BulkAddStock(ctx context.Context, ids []uint, delta int) (int64, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: no products selected", ErrInvalidInput)
	}
	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Product{}).Where("id IN ?", ids).
			Update("stock", gorm.Expr("CASE WHEN stock + ? < 0 THEN 0 ELSE stock + ? END", delta, delta))
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("bulk stock update: %w", err)
	}
	if products, err := s.GetMany(ctx, ids); err == nil {
		for _, p := range products {
			s.mirror(ctx, p)
		}
	}
	return affected, nil
}

func (s *Service) mirror(ctx context.Context, p model.Product) {
	if err := s.indexer.Index(ctx, strconv.FormatUint(uint64(p.ID), 10), p); err != nil {
		log.Printf("[product] index %d failed: %v", p.ID, err)
	}
}
