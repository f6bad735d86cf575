package router

import (
	"strconv"

	"bulut3d/apps/gateway/middleware"
	"bulut3d/apps/review"
	"bulut3d/pkg/response"

	"github.com/gin-gonic/gin"
)

func (h *handler) listReviews(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("pageSize", "10"))
	out, err := h.Reviews.List(c.Request.Context(), id, page, size)
	if err != nil {
		fail(c, "list reviews", err)
		return
	}
	response.Success(c, out)
}

type reviewRequest struct {
	OrderID string `json:"orderId" binding:"required"`
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

func (h *handler) createReview(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sess, _ := middleware.Session(c)
	me, err := h.Users.Me(c.Request.Context(), sess.UserID)
	if err != nil {
		fail(c, "load user", err)
		return
	}
	r, err := h.Reviews.Create(c.Request.Context(), review.Input{
		UserID:    sess.UserID,
		FullName:  me.FullName,
		OrderID:   req.OrderID,
		ProductID: id,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		fail(c, "create review", err)
		return
	}
	response.Created(c, r)
}
