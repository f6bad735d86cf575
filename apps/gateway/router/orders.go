package router

import (
	"context"
	"strings"

	"bulut3d/apps/customer"
	"bulut3d/apps/gateway/middleware"
	"bulut3d/apps/order"
	"bulut3d/apps/order/model"
	"bulut3d/apps/payment"
	"bulut3d/pkg/response"

	"github.com/gin-gonic/gin"
)

// checkoutRequest carries either a typed address or, for signed-in users,
// the id of a saved one.
type checkoutRequest struct {
	Address    order.Address   `json:"address"`
	AddressID  uint            `json:"addressId"`
	Payment    payment.Request `json:"payment"`
	CouponCode string          `json:"couponCode"`
}

func (h *handler) savedAddress(c *gin.Context, req *checkoutRequest) error {
	sess, ok := middleware.Session(c)
	if req.AddressID == 0 || !ok {
		return nil
	}
	a, err := h.Addresses.Get(c.Request.Context(), sess.UserID, req.AddressID)
	if err != nil {
		return err
	}
	email := req.Address.Email
	if email == "" {
		email = sess.Email
	}
	req.Address = order.Address{
		FullName:    a.FullName,
		Email:       email,
		Phone:       a.Phone,
		City:        a.City,
		District:    a.District,
		FullAddress: a.FullAddress,
	}
	return nil
}

func (h *handler) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.savedAddress(c, &req); err != nil {
		fail(c, "load address", err)
		return
	}
	ctx := c.Request.Context()
	in := order.Checkout{
		Owner:      cartOwner(c),
		Address:    req.Address,
		Payment:    req.Payment,
		CouponCode: req.CouponCode,
		Buyer: &customer.Profile{
			FullName: req.Address.FullName,
			Email:    req.Address.Email,
			Phone:    req.Address.Phone,
			Location: strings.TrimSpace(req.Address.District + " " + req.Address.City),
			Address:  req.Address.FullAddress,
		},
	}
	if sess, ok := middleware.Session(c); ok {
		uid := sess.UserID
		in.UserID = &uid
	}

	o, err := h.Orders.PlaceOrder(ctx, in)
	if err != nil {
		fail(c, "place order", err)
		return
	}
	response.Created(c, o)
}

func (h *handler) trackOrder(c *gin.Context) {
	o, err := h.Orders.Track(c.Request.Context(), c.Param("number"))
	if err != nil {
		fail(c, "track order", err)
		return
	}
	response.Success(c, o)
}

func (h *handler) myOrders(c *gin.Context) {
	sess, _ := middleware.Session(c)
	orders, err := h.Orders.ListForUser(c.Request.Context(), sess.UserID)
	if err != nil {
		fail(c, "list orders", err)
		return
	}
	response.Success(c, orders)
}

// ownOrder runs op on one of the signed-in customer's orders after the
// confirmation step.
func (h *handler) ownOrder(c *gin.Context, name string, op func(context.Context, string) (model.Order, error)) {
	sess, _ := middleware.Session(c)
	id := c.Param("id")
	if _, err := h.Orders.GetForUser(c.Request.Context(), id, sess.UserID); err != nil {
		fail(c, name, err)
		return
	}
	if !confirmed(c) {
		return
	}
	o, err := op(c.Request.Context(), id)
	if err != nil {
		fail(c, name, err)
		return
	}
	response.Success(c, o)
}

func (h *handler) cancelMyOrder(c *gin.Context) {
	h.ownOrder(c, "cancel order", h.Orders.Cancel)
}

func (h *handler) returnMyOrder(c *gin.Context) {
	h.ownOrder(c, "return order", h.Orders.Return)
}
