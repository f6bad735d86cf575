package router

import (
	"strconv"

	"bulut3d/apps/cart"
	"bulut3d/apps/gateway/middleware"
	"bulut3d/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartTokenHeader carries the guest cart id. A fresh one is issued when the
// request has none.
const CartTokenHeader = "X-Cart-Token"

// cartOwner is user:<id> for signed-in customers and guest:<token> otherwise.
func cartOwner(c *gin.Context) string {
	if sess, ok := middleware.Session(c); ok {
		return "user:" + strconv.FormatUint(uint64(sess.UserID), 10)
	}
	token := c.GetHeader(CartTokenHeader)
	if _, err := uuid.Parse(token); err != nil {
		token = uuid.NewString()
	}
	c.Header(CartTokenHeader, token)
	return "guest:" + token
}

type cartLine struct {
	cart.Item
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type cartView struct {
	Items     []cartLine      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

func viewOf(c *cart.Cart) cartView {
	items := c.Items()
	lines := make([]cartLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, cartLine{Item: it, UnitPrice: it.UnitPrice(), LineTotal: it.LineTotal()})
	}
	return cartView{Items: lines, Total: c.Total(), ItemCount: c.ItemCount()}
}

func (h *handler) getCart(c *gin.Context) {
	got, err := h.Carts.Get(c.Request.Context(), cartOwner(c))
	if err != nil {
		fail(c, "load cart", err)
		return
	}
	response.Success(c, viewOf(got))
}

type addItemRequest struct {
	ProductID uint   `json:"productId" binding:"required"`
	Material  string `json:"material" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Color     string `json:"color" binding:"required"`
	Quantity  int    `json:"quantity"`
}

func (h *handler) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	got, err := h.Carts.Add(c.Request.Context(), cartOwner(c), req.ProductID, req.Material, req.Size, req.Color, req.Quantity)
	if err != nil {
		fail(c, "add to cart", err)
		return
	}
	response.Success(c, viewOf(got))
}

type deltaRequest struct {
	Delta int `json:"delta" binding:"required"`
}

func (h *handler) updateCartDelta(c *gin.Context) {
	var req deltaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	got, err := h.Carts.UpdateDelta(c.Request.Context(), cartOwner(c), c.Param("id"), req.Delta)
	if err != nil {
		fail(c, "update cart", err)
		return
	}
	response.Success(c, viewOf(got))
}

type quantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *handler) setCartQuantity(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	got, err := h.Carts.SetQuantity(c.Request.Context(), cartOwner(c), c.Param("id"), *req.Quantity)
	if err != nil {
		fail(c, "update cart", err)
		return
	}
	response.Success(c, viewOf(got))
}

func (h *handler) removeCartItem(c *gin.Context) {
	got, err := h.Carts.Remove(c.Request.Context(), cartOwner(c), c.Param("id"))
	if err != nil {
		fail(c, "remove from cart", err)
		return
	}
	response.Success(c, viewOf(got))
}

func (h *handler) clearCart(c *gin.Context) {
	if err := h.Carts.Clear(c.Request.Context(), cartOwner(c)); err != nil {
		fail(c, "clear cart", err)
		return
	}
	response.Success(c, viewOf(&cart.Cart{}))
}
