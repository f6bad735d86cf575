package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Materials offered by the print farm.
const (
	MaterialPLA  = "PLA"
	MaterialPETG = "PETG"
	MaterialABS  = "ABS"
	MaterialTPU  = "TPU (Esnek)"
)

// Size labels as shown in the storefront.
const (
	SizeSmall  = "Küçük"
	SizeMedium = "Orta"
	SizeLarge  = "Büyük"
	SizeXLarge = "Dev (XL)"
)

// Product is both the products row and the API shape: column names are
// snake_case, JSON names camelCase, and nothing else renames fields.
type Product struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	Name               string          `gorm:"type:varchar(200);not null" json:"name"`
	ShortDescription   string          `gorm:"type:varchar(255)" json:"shortDescription"`
	Description        string          `gorm:"type:text" json:"description"`
	BasePrice          decimal.Decimal `gorm:"column:base_price;type:decimal(10,2);not null" json:"basePrice"`
	CostPrice          decimal.Decimal `gorm:"column:cost_price;type:decimal(10,2)" json:"costPrice"`
	Categories         []string        `gorm:"serializer:json;type:text" json:"categories"`
	Tags               []string        `gorm:"serializer:json;type:text" json:"tags"`
	ImageURL           string          `gorm:"column:image_url;type:varchar(255)" json:"imageUrl"`
	Images             []string        `gorm:"serializer:json;type:text" json:"images"`
	VideoURL           string          `gorm:"column:video_url;type:varchar(255)" json:"videoUrl"`
	Rating             float64         `gorm:"default:5" json:"rating"`
	ReviewCount        int             `gorm:"column:review_count;default:0" json:"reviewCount"`
	Sales              int             `gorm:"default:0" json:"sales"`
	Stock              int             `gorm:"default:0" json:"stock"`
	Barcode            string          `gorm:"type:varchar(64)" json:"barcode"`
	AvailableMaterials []string        `gorm:"column:available_materials;serializer:json;type:text" json:"availableMaterials"`
	AvailableColors    []string        `gorm:"column:available_colors;serializer:json;type:text" json:"availableColors"`
	AvailableSizes     []string        `gorm:"column:available_sizes;serializer:json;type:text" json:"availableSizes"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

func (Product) TableName() string {
	return "products"
}

// VariantConfig is one material/size/color choice. It is never stored on its
// own; carts and order snapshots embed it.
type VariantConfig struct {
	Material      string          `json:"material"`
	Size          string          `json:"size"`
	Color         string          `json:"color"`
	PriceModifier decimal.Decimal `json:"priceModifier"`
	Stock         int             `json:"stock"`
}

// Describe renders the variant the way order summaries show it.
func (v VariantConfig) Describe() string {
	return v.Material + " • " + v.Size
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func (p Product) HasMaterial(m string) bool { return contains(p.AvailableMaterials, m) }
func (p Product) HasSize(s string) bool     { return contains(p.AvailableSizes, s) }
func (p Product) HasColor(c string) bool    { return contains(p.AvailableColors, c) }
func (p Product) HasCategory(c string) bool { return contains(p.Categories, c) }
func (p Product) HasTag(t string) bool      { return contains(p.Tags, t) }
