package router

import (
	"net/http"

	"bulut3d/apps/gateway/middleware"
	"bulut3d/apps/user"
	"bulut3d/pkg/response"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"fullName"`
	Phone    string `json:"phoneNumber"`
}

func (h *handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.Users.Register(c.Request.Context(), user.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		fail(c, "register", err)
		return
	}
	response.Created(c, res)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.Users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, "login", err)
		return
	}
	response.Success(c, res)
}

func (h *handler) logout(c *gin.Context) {
	sess, _ := middleware.Session(c)
	if err := h.Users.Logout(c.Request.Context(), sess); err != nil {
		fail(c, "logout", err)
		return
	}
	response.Success(c, nil)
}

func (h *handler) me(c *gin.Context) {
	sess, _ := middleware.Session(c)
	p, err := h.Users.Me(c.Request.Context(), sess.UserID)
	if err != nil {
		fail(c, "load profile", err)
		return
	}
	response.Success(c, p)
}

type profileRequest struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phoneNumber"`
	Address  string `json:"address"`
}

func (h *handler) updateMe(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sess, _ := middleware.Session(c)
	p, err := h.Users.UpdateProfile(c.Request.Context(), sess.UserID, req.FullName, req.Phone, req.Address)
	if err != nil {
		fail(c, "update profile", err)
		return
	}
	response.Success(c, p)
}

type passwordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

func (h *handler) changePassword(c *gin.Context) {
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sess, _ := middleware.Session(c)
	err := h.Users.ChangePassword(c.Request.Context(), sess.UserID, req.OldPassword, req.NewPassword)
	if err != nil {
		if statusOf(err) == http.StatusUnauthorized {
			// the session is fine, only the old password was wrong
			response.Error(c, http.StatusBadRequest, "current password is incorrect")
			return
		}
		fail(c, "change password", err)
		return
	}
	response.Success(c, nil)
}

func (h *handler) myCoupons(c *gin.Context) {
	sess, _ := middleware.Session(c)
	coupons, err := h.Coupons.ListForUser(c.Request.Context(), sess.UserID)
	if err != nil {
		fail(c, "list coupons", err)
		return
	}
	response.Success(c, coupons)
}
