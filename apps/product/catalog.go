package product

import (
	"sort"
	"strings"

	"bulut3d/apps/product/model"

	"golang.org/x/text/cases"
)

type SortOrder string

const (
	SortSales SortOrder = "sales" // best sellers first, missing sales count as 0
	SortNone  SortOrder = "none"  // keep the collection order (newest first from the store)
)

// Category values that mean "no category filter".
var allCategories = map[string]bool{"": true, "all": true, "Tümü": true}

// Query is the predicate set of a catalog view. Empty fields match everything.
type Query struct {
	Search   string    `form:"q"`
	Category string    `form:"category"`
	Tag      string    `form:"tag"`
	Sort     SortOrder `form:"sort"`
}

// Filter returns the products matching every predicate of q. The input slice
// is never modified, so equal inputs always give equal output.
func Filter(products []model.Product, q Query) []model.Product {
	fold := cases.Fold()
	search := fold.String(strings.TrimSpace(q.Search))

	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if search != "" && !matchesSearch(fold, p, search) {
			continue
		}
		if !allCategories[q.Category] && !p.HasCategory(q.Category) {
			continue
		}
		if q.Tag != "" && !p.HasTag(q.Tag) {
			continue
		}
		out = append(out, p)
	}

	if q.Sort != SortNone {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Sales > out[j].Sales
		})
	}
	return out
}

// FilterInventory is the admin product table's filter: the search matches
// the name or a barcode fragment, and the collection order is kept.
func FilterInventory(products []model.Product, q Query) []model.Product {
	fold := cases.Fold()
	search := strings.TrimSpace(q.Search)
	folded := fold.String(search)

	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if search != "" && !strings.Contains(fold.String(p.Name), folded) &&
			(p.Barcode == "" || !strings.Contains(p.Barcode, search)) {
			continue
		}
		if !allCategories[q.Category] && !p.HasCategory(q.Category) {
			continue
		}
		if q.Tag != "" && !p.HasTag(q.Tag) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesSearch(fold cases.Caser, p model.Product, search string) bool {
	if strings.Contains(fold.String(p.Name), search) {
		return true
	}
	for _, c := range p.Categories {
		if strings.Contains(fold.String(c), search) {
			return true
		}
	}
	return false
}
