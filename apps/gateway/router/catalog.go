package router

import (
	"strconv"

	"bulut3d/apps/product"
	"bulut3d/apps/product/model"
	"bulut3d/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (h *handler) listProducts(c *gin.Context) {
	var q product.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	products, err := h.Products.Catalog(c.Request.Context(), q)
	if err != nil {
		fail(c, "list products", err)
		return
	}
	response.Success(c, products)
}

func (h *handler) suggestProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	products, err := h.Products.Suggest(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		fail(c, "suggest products", err)
		return
	}
	response.Success(c, products)
}

func (h *handler) getProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.Products.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, "load product", err)
		return
	}
	response.Success(c, p)
}

type quoteResponse struct {
	Variant   model.VariantConfig `json:"variant"`
	UnitPrice decimal.Decimal     `json:"unitPrice"`
	Quantity  int                 `json:"quantity"`
	LineTotal decimal.Decimal     `json:"lineTotal"`
}

// quote prices one variant selection without touching the cart.
func (h *handler) quote(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.Products.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, "load product", err)
		return
	}
	v, err := h.Products.Rules.Variant(p, c.Query("material"), c.Query("size"), c.Query("color"))
	if err != nil {
		fail(c, "price variant", err)
		return
	}
	qty, err := strconv.Atoi(c.DefaultQuery("quantity", "1"))
	if err != nil || qty < 1 {
		qty = 1
	}
	response.Success(c, quoteResponse{
		Variant:   v,
		UnitPrice: product.UnitPrice(p, v),
		Quantity:  qty,
		LineTotal: product.LineTotal(p, v, qty),
	})
}

func (h *handler) getWishlist(c *gin.Context) {
	ctx := c.Request.Context()
	ids, err := h.Wishlist.List(ctx, cartOwner(c))
	if err != nil {
		fail(c, "load wishlist", err)
		return
	}
	found, err := h.Products.GetMany(ctx, ids)
	if err != nil {
		fail(c, "load wishlist", err)
		return
	}
	products := make([]model.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := found[id]; ok {
			products = append(products, p)
		}
	}
	response.Success(c, products)
}

func (h *handler) toggleWishlist(c *gin.Context) {
	id, ok := parseID(c, "productId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.Products.Get(ctx, id); err != nil {
		fail(c, "load product", err)
		return
	}
	on, err := h.Wishlist.Toggle(ctx, cartOwner(c), id)
	if err != nil {
		fail(c, "update wishlist", err)
		return
	}
	response.Success(c, gin.H{"productId": id, "inWishlist": on})
}
