package router

import (
	"bulut3d/apps/address"
	"bulut3d/apps/gateway/middleware"
	"bulut3d/pkg/response"

	"github.com/gin-gonic/gin"
)

func (h *handler) listAddresses(c *gin.Context) {
	sess, _ := middleware.Session(c)
	list, err := h.Addresses.List(c.Request.Context(), sess.UserID)
	if err != nil {
		fail(c, "list addresses", err)
		return
	}
	response.Success(c, list)
}

func (h *handler) createAddress(c *gin.Context) {
	var req address.Address
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sess, _ := middleware.Session(c)
	a, err := h.Addresses.Create(c.Request.Context(), sess.UserID, req)
	if err != nil {
		fail(c, "create address", err)
		return
	}
	response.Created(c, a)
}

func (h *handler) updateAddress(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req address.Address
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.ID = id
	sess, _ := middleware.Session(c)
	a, err := h.Addresses.Update(c.Request.Context(), sess.UserID, req)
	if err != nil {
		fail(c, "update address", err)
		return
	}
	response.Success(c, a)
}

func (h *handler) deleteAddress(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	sess, _ := middleware.Session(c)
	if err := h.Addresses.Delete(c.Request.Context(), sess.UserID, id); err != nil {
		fail(c, "delete address", err)
		return
	}
	response.Success(c, nil)
}

func (h *handler) setDefaultAddress(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	sess, _ := middleware.Session(c)
	if err := h.Addresses.SetDefault(c.Request.Context(), sess.UserID, id); err != nil {
		fail(c, "set default address", err)
		return
	}
	response.Success(c, nil)
}
