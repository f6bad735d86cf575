package product

import (
	"errors"
	"fmt"
	"strings"

	"bulut3d/apps/product/model"

	"github.com/shopspring/decimal"
)

var ErrInvalidVariant = errors.New("product: invalid variant")

// PriceRules is the surcharge table keyed by material. Size and color never
// change the price. Keys compare case-insensitively.
type PriceRules struct {
	Materials map[string]decimal.Decimal
}

// DefaultPriceRules: ABS costs 50 more, everything else prints at base price.
func DefaultPriceRules() PriceRules {
	return PriceRules{Materials: map[string]decimal.Decimal{
		strings.ToLower(model.MaterialABS): decimal.NewFromInt(50),
	}}
}

// ParsePriceRules reads the shop.material_surcharges config map.
func ParsePriceRules(raw map[string]string) (PriceRules, error) {
	if len(raw) == 0 {
		return DefaultPriceRules(), nil
	}
	rules := PriceRules{Materials: make(map[string]decimal.Decimal, len(raw))}
	for material, amount := range raw {
		d, err := decimal.NewFromString(strings.TrimSpace(amount))
		if err != nil {
			return PriceRules{}, fmt.Errorf("product: surcharge for %s: %w", material, err)
		}
		rules.Materials[strings.ToLower(strings.TrimSpace(material))] = d
	}
	return rules, nil
}

// ModifierFor returns the surcharge for material, zero when none applies.
func (r PriceRules) ModifierFor(material string) decimal.Decimal {
	if d, ok := r.Materials[strings.ToLower(material)]; ok {
		return d
	}
	return decimal.Zero
}

// Variant builds the variant a customer picked on the product page. Every
// axis value must be one the product offers.
func (r PriceRules) Variant(p model.Product, material, size, color string) (model.VariantConfig, error) {
	switch {
	case !p.HasMaterial(material):
		return model.VariantConfig{}, fmt.Errorf("%w: material %q", ErrInvalidVariant, material)
	case !p.HasSize(size):
		return model.VariantConfig{}, fmt.Errorf("%w: size %q", ErrInvalidVariant, size)
	case !p.HasColor(color):
		return model.VariantConfig{}, fmt.Errorf("%w: color %q", ErrInvalidVariant, color)
	}
	return model.VariantConfig{
		Material:      material,
		Size:          size,
		Color:         color,
		PriceModifier: r.ModifierFor(material),
		Stock:         p.Stock,
	}, nil
}

// UnitPrice = base price + variant modifier.
func UnitPrice(p model.Product, v model.VariantConfig) decimal.Decimal {
	return p.BasePrice.Add(v.PriceModifier)
}

func LineTotal(p model.Product, v model.VariantConfig, quantity int) decimal.Decimal {
	return UnitPrice(p, v).Mul(decimal.NewFromInt(int64(quantity)))
}
