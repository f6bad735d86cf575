package router

import (
	"strings"

	"bulut3d/apps/request"
	"bulut3d/pkg/response"

	"github.com/gin-gonic/gin"
)

type submitRequest struct {
	Name        string `json:"name" form:"name" binding:"required"`
	Email       string `json:"email" form:"email" binding:"required,email"`
	Phone       string `json:"phone" form:"phone"`
	Material    string `json:"material" form:"material"`
	Description string `json:"description" form:"description" binding:"required"`
}

// submitRequest accepts JSON or a multipart form with an optional "file".
func (h *handler) submitRequest(c *gin.Context) {
	var (
		req    submitRequest
		upload *request.Upload
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBind(&req); err != nil {
			badRequest(c, err)
			return
		}
		if fh, err := c.FormFile("file"); err == nil {
			f, err := fh.Open()
			if err != nil {
				badRequest(c, err)
				return
			}
			defer f.Close()
			upload = &request.Upload{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Body:        f,
			}
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	r, err := h.Requests.Submit(c.Request.Context(), request.Submission{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Material:    req.Material,
		Description: req.Description,
	}, upload)
	if err != nil {
		fail(c, "submit custom request", err)
		return
	}
	response.Created(c, r)
}
