package product

import (
	"testing"

	"bulut3d/apps/product/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func collection() []model.Product {
	return []model.Product{
		{ID: 5, Name: "Headphone Stand - Low Poly", Categories: []string{"Aksesuar", "Ofis"}, Sales: 300, BasePrice: decimal.NewFromInt(220)},
		{ID: 2, Name: "Geometric Planter Pot", Categories: []string{"Dekorasyon", "Ev"}, Tags: []string{"Minimalist", "İndirim"}, Sales: 850},
		dragon(),
		{ID: 3, Name: "Lithophane Photo Lamp", Categories: []string{"Aydınlatma", "Hediye"}, Tags: []string{"Hediye"}},
	}
}

func names(ps []model.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

func TestFilterSearch(t *testing.T) {
	got := Filter(collection(), Query{Search: "dragon"})
	assert.Equal(t, []string{"Articulated Crystal Dragon"}, names(got))

	assert.Empty(t, Filter(collection(), Query{Search: "ejderha"}))
}

func TestFilterSearchIsCaseInsensitiveAndMatchesCategories(t *testing.T) {
	assert.Equal(t, []string{"Articulated Crystal Dragon"}, names(Filter(collection(), Query{Search: "DRAGON"})))
	assert.Equal(t, []string{"Articulated Crystal Dragon"}, names(Filter(collection(), Query{Search: "figür"})))
	assert.Equal(t, []string{"Geometric Planter Pot"}, names(Filter(collection(), Query{Search: "DEKORASYON"})))
}

func TestFilterCategoryAndTag(t *testing.T) {
	assert.Equal(t, []string{"Geometric Planter Pot"}, names(Filter(collection(), Query{Category: "Ev"})))
	assert.Len(t, Filter(collection(), Query{Category: "all"}), 4)
	assert.Len(t, Filter(collection(), Query{Category: "Tümü"}), 4)

	assert.Equal(t, []string{"Lithophane Photo Lamp"}, names(Filter(collection(), Query{Tag: "Hediye"})))
	assert.Empty(t, Filter(collection(), Query{Category: "Ev", Tag: "Hediye"}))
}

func TestFilterOrdering(t *testing.T) {
	got := Filter(collection(), Query{})
	assert.Equal(t, []string{
		"Articulated Crystal Dragon",
		"Geometric Planter Pot",
		"Headphone Stand - Low Poly",
		"Lithophane Photo Lamp",
	}, names(got))

	unsorted := Filter(collection(), Query{Sort: SortNone})
	assert.Equal(t, names(collection()), names(unsorted))
}

func TestFilterIsPure(t *testing.T) {
	in := collection()
	before := names(in)

	q := Query{Search: "o", Category: "all"}
	first := Filter(in, q)
	second := Filter(in, q)

	assert.Equal(t, first, second)
	assert.Equal(t, before, names(in))
}

func TestFilterInventoryMatchesNameOrBarcode(t *testing.T) {
	products := collection()
	products[0].Barcode = "8690001112223"
	products[1].Barcode = "8690004445556"

	assert.Equal(t, []string{"Geometric Planter Pot"}, names(FilterInventory(products, Query{Search: "44455"})))
	assert.Equal(t, []string{"Headphone Stand - Low Poly", "Geometric Planter Pot"},
		names(FilterInventory(products, Query{Search: "8690"})), "collection order is kept")
	assert.Equal(t, []string{"Lithophane Photo Lamp"}, names(FilterInventory(products, Query{Search: "LAMP"})))
	assert.Empty(t, FilterInventory(products, Query{Search: "Aydınlatma"}), "categories are not searched")
}

func TestFilterInventoryTagAndCategory(t *testing.T) {
	products := collection()
	assert.Equal(t, []string{"Lithophane Photo Lamp"}, names(FilterInventory(products, Query{Tag: "Hediye", Category: "Tümü"})))
	assert.Empty(t, FilterInventory(products, Query{Tag: "Hediye", Category: "Ev"}))
	assert.Equal(t, []string{"Geometric Planter Pot"}, names(FilterInventory(products, Query{Search: "pot", Tag: "İndirim"})))
	assert.Len(t, FilterInventory(products, Query{}), len(products))
}
