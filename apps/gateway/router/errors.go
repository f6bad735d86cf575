package router

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"bulut3d/apps/address"
	"bulut3d/apps/cart"
	"bulut3d/apps/coupon"
	"bulut3d/apps/customer"
	"bulut3d/apps/order"
	"bulut3d/apps/payment"
	"bulut3d/apps/product"
	"bulut3d/apps/request"
	"bulut3d/apps/review"
	"bulut3d/apps/user"
	"bulut3d/pkg/inflight"
	"bulut3d/pkg/jwt"
	"bulut3d/pkg/response"

	"github.com/gin-gonic/gin"
)

func isAny(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

func statusOf(err error) int {
	switch {
	case isAny(err, inflight.ErrBusy, order.ErrTransitionNotAllowed, request.ErrTransitionNotAllowed, user.ErrEmailTaken,
		review.ErrAlreadyReviewed):
		return http.StatusConflict
	case isAny(err, review.ErrNotEligible):
		return http.StatusForbidden
	case isAny(err, product.ErrNotFound, order.ErrNotFound, request.ErrNotFound, customer.ErrNotFound,
		user.ErrNotFound, cart.ErrProductNotFound, cart.ErrItemNotFound, address.ErrNotFound):
		return http.StatusNotFound
	case isAny(err, product.ErrInvalidInput, product.ErrInvalidVariant, cart.ErrEmpty, cart.ErrInvalidQuantity,
		order.ErrInvalidCheckout, order.ErrInvalidStatus, order.ErrInvalidTab, request.ErrInvalidInput, customer.ErrInvalidInput,
		coupon.ErrInvalidCoupon, coupon.ErrBelowMinimum, user.ErrInvalidInput, payment.ErrInvalidPayment,
		address.ErrInvalidInput, review.ErrInvalidInput):
		return http.StatusBadRequest
	case isAny(err, user.ErrInvalidCredentials, user.ErrRevoked, jwt.ErrInvalidToken):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// fail answers err with its mapped status. Store failures name the operation.
func fail(c *gin.Context, op string, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("[gateway] %s failed: %v", op, err)
		msg = op + " failed: " + err.Error()
	}
	response.Error(c, status, msg)
}

func badRequest(c *gin.Context, err error) {
	response.Error(c, http.StatusBadRequest, err.Error())
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

type confirmRequest struct {
	Confirm bool `json:"confirm"`
}

// confirmed gates destructive actions on {"confirm": true} or ?confirm=true
// and answers 400 when missing.
func confirmed(c *gin.Context) bool {
	if c.Query("confirm") == "true" {
		return true
	}
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.Confirm {
		return true
	}
	response.Error(c, http.StatusBadRequest, "confirmation required: send {\"confirm\": true}")
	return false
}
