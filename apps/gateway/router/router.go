// Package router maps the storefront and admin HTTP API onto the domain
// services.
package router

import (
	"net/http"

	"bulut3d/apps/address"
	"bulut3d/apps/admin"
	"bulut3d/apps/cart"
	"bulut3d/apps/coupon"
	"bulut3d/apps/customer"
	"bulut3d/apps/gateway/middleware"
	"bulut3d/apps/order"
	ordermodel "bulut3d/apps/order/model"
	"bulut3d/apps/product"
	productmodel "bulut3d/apps/product/model"
	"bulut3d/apps/request"
	"bulut3d/apps/review"
	"bulut3d/apps/user"
	usermodel "bulut3d/apps/user/model"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps are the services behind the API. Limiter may be nil, in which case
// nothing is rate limited.
type Deps struct {
	Products  *product.Service
	Carts     *cart.Service
	Wishlist  *cart.Wishlist
	Orders    *order.Service
	Requests  *request.Service
	Customers *customer.Service
	Coupons   *coupon.Service
	Users     *user.Service
	Admin     *admin.Service
	Addresses *address.Service
	Reviews   *review.Service

	Limiter    func(resource string) gin.HandlerFunc
	Middleware []gin.HandlerFunc
}

type handler struct {
	Deps
}

// AutoMigrate creates or updates every table the API uses.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&productmodel.Product{},
		&ordermodel.Order{},
		&ordermodel.OrderItem{},
		&request.CustomRequest{},
		&customer.Customer{},
		&coupon.Coupon{},
		&usermodel.User{},
		&address.Address{},
		&review.Review{},
	)
}

func (h *handler) limit(resource string) gin.HandlerFunc {
	if h.Limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return h.Limiter(resource)
}

func New(d Deps) *gin.Engine {
	h := &handler{Deps: d}

	r := gin.Default()
	r.Use(d.Middleware...)
	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Auth(d.Users))

	// storefront, guests allowed
	{
		v1.POST("/user/register", h.register)
		v1.POST("/user/login", h.login)

		v1.GET("/products", h.listProducts)
		v1.GET("/products/suggest", h.suggestProducts)
		v1.GET("/products/:id", h.getProduct)
		v1.GET("/products/:id/price", h.quote)
		v1.GET("/products/:id/reviews", h.listReviews)

		v1.GET("/cart", h.getCart)
		v1.POST("/cart/items", h.addCartItem)
		v1.PATCH("/cart/items/:id", h.updateCartDelta)
		v1.PUT("/cart/items/:id/quantity", h.setCartQuantity)
		v1.DELETE("/cart/items/:id", h.removeCartItem)
		v1.DELETE("/cart", h.clearCart)

		v1.GET("/wishlist", h.getWishlist)
		v1.POST("/wishlist/:productId", h.toggleWishlist)

		v1.POST("/checkout", h.limit(middleware.ResCheckout), h.checkout)
		v1.GET("/orders/track/:number", h.trackOrder)
		v1.POST("/custom-requests", h.limit(middleware.ResCustomRequest), h.submitRequest)
	}

	authed := v1.Group("/")
	authed.Use(middleware.RequireUser())
	{
		authed.POST("/user/logout", h.logout)
		authed.GET("/user/me", h.me)
		authed.PUT("/user/me", h.updateMe)
		authed.PUT("/user/password", h.changePassword)
		authed.GET("/coupons", h.myCoupons)
		authed.GET("/orders", h.myOrders)
		authed.POST("/orders/:id/cancel", h.cancelMyOrder)
		authed.POST("/orders/:id/return", h.returnMyOrder)
		authed.POST("/products/:id/reviews", h.createReview)

		authed.GET("/addresses", h.listAddresses)
		authed.POST("/addresses", h.createAddress)
		authed.PUT("/addresses/:id", h.updateAddress)
		authed.DELETE("/addresses/:id", h.deleteAddress)
		authed.POST("/addresses/:id/default", h.setDefaultAddress)
	}

	adm := v1.Group("/admin")
	adm.Use(middleware.RequireAdmin())
	{
		adm.GET("/dashboard", h.dashboard)
		adm.POST("/dashboard/profit", h.profit)
		adm.GET("/users", h.listUsers)

		adm.GET("/products", h.adminListProducts)
		adm.POST("/products", h.createProduct)
		adm.PUT("/products/:id", h.updateProduct)
		adm.DELETE("/products/:id", h.deleteProduct)
		adm.PUT("/products/:id/stock", h.adjustStock)
		adm.POST("/products/stock", h.bulkStock)

		adm.GET("/orders", h.listOrders)
		adm.GET("/orders/:id", h.getOrder)
		adm.POST("/orders/:id/next", h.advanceOrder)
		adm.POST("/orders/:id/prev", h.revertOrder)
		adm.PUT("/orders/:id/status", h.setOrderStatus)
		adm.PUT("/orders/:id/shipment", h.updateShipment)
		adm.POST("/orders/:id/cancel", h.cancelOrder)
		adm.POST("/orders/:id/return", h.returnOrder)

		adm.GET("/customers", h.listCustomers)
		adm.POST("/customers", h.createCustomer)
		adm.GET("/customers/:id", h.getCustomer)
		adm.PUT("/customers/:id", h.updateCustomer)
		adm.DELETE("/customers/:id", h.deleteCustomer)
		adm.GET("/customers/:id/orders", h.customerOrders)

		adm.GET("/custom-requests", h.listRequests)
		adm.GET("/custom-requests/:id", h.getRequest)
		adm.POST("/custom-requests/:id/review", h.reviewRequest)
		adm.POST("/custom-requests/:id/offer", h.sendOffer)
	}

	return r
}
