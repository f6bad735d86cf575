package router

import (
	"context"
	"strconv"

	"bulut3d/apps/admin"
	"bulut3d/apps/customer"
	"bulut3d/apps/order/model"
	"bulut3d/apps/product"
	productmodel "bulut3d/apps/product/model"
	"bulut3d/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (h *handler) dashboard(c *gin.Context) {
	st, err := h.Admin.Stats(c.Request.Context())
	if err != nil {
		fail(c, "load dashboard", err)
		return
	}
	response.Success(c, st)
}

func (h *handler) profit(c *gin.Context) {
	var e admin.Expenses
	if err := c.ShouldBindJSON(&e); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.Admin.Profit(c.Request.Context(), e)
	if err != nil {
		fail(c, "compute profit", err)
		return
	}
	response.Success(c, p)
}

func (h *handler) listUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	users, total, err := h.Admin.ListUsers(c.Request.Context(), page, pageSize)
	if err != nil {
		fail(c, "list users", err)
		return
	}
	response.Success(c, gin.H{"users": users, "total": total})
}

// products

func (h *handler) adminListProducts(c *gin.Context) {
	var q product.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	products, err := h.Products.Inventory(c.Request.Context(), q)
	if err != nil {
		fail(c, "list products", err)
		return
	}
	response.Success(c, products)
}

func (h *handler) createProduct(c *gin.Context) {
	var p productmodel.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	created, err := h.Products.Create(c.Request.Context(), p)
	if err != nil {
		fail(c, "create product", err)
		return
	}
	response.Created(c, created)
}

func (h *handler) updateProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var p productmodel.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	p.ID = id
	updated, err := h.Products.Update(c.Request.Context(), p)
	if err != nil {
		fail(c, "update product", err)
		return
	}
	response.Success(c, updated)
}

func (h *handler) deleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok || !confirmed(c) {
		return
	}
	if err := h.Products.Delete(c.Request.Context(), id); err != nil {
		fail(c, "delete product", err)
		return
	}
	response.Success(c, nil)
}

type stockRequest struct {
	Stock *int `json:"stock" binding:"required"`
}

func (h *handler) adjustStock(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.Products.AdjustStock(c.Request.Context(), id, *req.Stock)
	if err != nil {
		fail(c, "adjust stock", err)
		return
	}
	response.Success(c, p)
}

type bulkStockRequest struct {
	IDs   []uint `json:"ids" binding:"required,min=1"`
	Delta int    `json:"delta" binding:"required"`
}

func (h *handler) bulkStock(c *gin.Context) {
	var req bulkStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	n, err := h.Products.BulkAddStock(c.Request.Context(), req.IDs, req.Delta)
	if err != nil {
		fail(c, "bulk stock update", err)
		return
	}
	response.Success(c, gin.H{"updated": n})
}

// orders

func (h *handler) listOrders(c *gin.Context) {
	orders, err := h.Orders.ListTab(c.Request.Context(), model.Tab(c.Query("tab")))
	if err != nil {
		fail(c, "list orders", err)
		return
	}
	response.Success(c, orders)
}

func (h *handler) getOrder(c *gin.Context) {
	o, err := h.Orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, "load order", err)
		return
	}
	response.Success(c, o)
}

func (h *handler) orderAction(c *gin.Context, name string, op func(context.Context, string) (model.Order, error)) {
	o, err := op(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, name, err)
		return
	}
	response.Success(c, o)
}

func (h *handler) advanceOrder(c *gin.Context) {
	h.orderAction(c, "advance order", h.Orders.Advance)
}

func (h *handler) revertOrder(c *gin.Context) {
	h.orderAction(c, "revert order", h.Orders.Revert)
}

func (h *handler) cancelOrder(c *gin.Context) {
	if !confirmed(c) {
		return
	}
	h.orderAction(c, "cancel order", h.Orders.Cancel)
}

func (h *handler) returnOrder(c *gin.Context) {
	if !confirmed(c) {
		return
	}
	h.orderAction(c, "return order", h.Orders.Return)
}

type statusRequest struct {
	Status model.Status `json:"status" binding:"required"`
}

func (h *handler) setOrderStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	o, err := h.Orders.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		fail(c, "update order status", err)
		return
	}
	response.Success(c, o)
}

type shipmentRequest struct {
	ShippingCompany string `json:"shippingCompany" binding:"required"`
	TrackingNumber  string `json:"trackingNumber"`
}

func (h *handler) updateShipment(c *gin.Context) {
	var req shipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	o, err := h.Orders.UpdateShipment(c.Request.Context(), c.Param("id"), req.ShippingCompany, req.TrackingNumber)
	if err != nil {
		fail(c, "update shipment", err)
		return
	}
	response.Success(c, o)
}

// customers

func (h *handler) listCustomers(c *gin.Context) {
	list, err := h.Customers.List(c.Request.Context())
	if err != nil {
		fail(c, "list customers", err)
		return
	}
	response.Success(c, list)
}

func (h *handler) getCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	sum, err := h.Customers.Summary(c.Request.Context(), id)
	if err != nil {
		fail(c, "load customer", err)
		return
	}
	response.Success(c, sum)
}

func (h *handler) createCustomer(c *gin.Context) {
	var in customer.Customer
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	in.UserID = nil
	created, err := h.Customers.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, "create customer", err)
		return
	}
	response.Created(c, created)
}

func (h *handler) updateCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in customer.Customer
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	in.ID = id
	updated, err := h.Customers.Update(c.Request.Context(), in)
	if err != nil {
		fail(c, "update customer", err)
		return
	}
	response.Success(c, updated)
}

func (h *handler) deleteCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok || !confirmed(c) {
		return
	}
	if err := h.Customers.Delete(c.Request.Context(), id); err != nil {
		fail(c, "delete customer", err)
		return
	}
	response.Success(c, nil)
}

func (h *handler) customerOrders(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	orders, err := h.Customers.Orders(c.Request.Context(), id)
	if err != nil {
		fail(c, "list customer orders", err)
		return
	}
	response.Success(c, orders)
}

// custom requests

func (h *handler) listRequests(c *gin.Context) {
	list, err := h.Requests.List(c.Request.Context())
	if err != nil {
		fail(c, "list custom requests", err)
		return
	}
	response.Success(c, list)
}

func (h *handler) getRequest(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	r, err := h.Requests.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, "load custom request", err)
		return
	}
	response.Success(c, r)
}

func (h *handler) reviewRequest(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	r, err := h.Requests.Review(c.Request.Context(), id)
	if err != nil {
		fail(c, "review custom request", err)
		return
	}
	response.Success(c, r)
}

type offerRequest struct {
	Price decimal.Decimal `json:"price"`
	Note  string          `json:"note"`
}

func (h *handler) sendOffer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req offerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	r, err := h.Requests.SendOffer(c.Request.Context(), id, req.Price, req.Note)
	if err != nil {
		fail(c, "send offer", err)
		return
	}
	response.Success(c, r)
}
