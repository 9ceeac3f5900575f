package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"task_manager/internal/domain"
	"task_manager/internal/logger"

	"github.com/gin-gonic/gin"
)

// Business endpoints answer with {"success": bool, "data" | "error": ...}.

func businessOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func (h *Handler) businessError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "Internal server error"
	switch domain.KindOf(err) {
	case domain.KindValidation:
		status, msg = http.StatusBadRequest, err.Error()
	case domain.KindNotFound:
		status, msg = http.StatusNotFound, err.Error()
	case domain.KindUnauthorized:
		status, msg = http.StatusUnauthorized, err.Error()
	case domain.KindConflict:
		status, msg = http.StatusConflict, err.Error()
	default:
		logger.WithContext(c.Request.Context()).Error("business request failed", "error", err, "path", c.FullPath())
	}
	c.JSON(status, gin.H{"success": false, "error": msg})
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// saveUpload stores the optional "image" file and returns its name.
func (h *Handler) saveUpload(c *gin.Context) (string, error) {
	if !isMultipart(c) || h.Images == nil {
		return "", nil
	}
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", domain.Validation("Invalid image upload")
	}
	return h.Images.Save(fh)
}

func (h *Handler) discardUpload(c *gin.Context, name string) {
	if name == "" {
		return
	}
	if err := h.Images.Remove(name); err != nil {
		logger.WithContext(c.Request.Context()).Warn("failed to remove orphaned upload", "image", name, "error", err)
	}
}

func (h *Handler) ListBusinesses(c *gin.Context) {
	bs, err := h.Businesses.ListApproved(c.Request.Context())
	if err != nil {
		h.businessError(c, err)
		return
	}
	businessOK(c, http.StatusOK, bs)
}

// ListAllBusinesses is admin only; ?status= narrows the list.
func (h *Handler) ListAllBusinesses(c *gin.Context) {
	bs, err := h.Businesses.ListAll(c.Request.Context(), domain.BusinessStatus(c.Query("status")))
	if err != nil {
		h.businessError(c, err)
		return
	}
	businessOK(c, http.StatusOK, bs)
}

func (h *Handler) ListMyBusinesses(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	bs, err := h.Businesses.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		h.businessError(c, err)
		return
	}
	businessOK(c, http.StatusOK, bs)
}

func (h *Handler) GetBusiness(c *gin.Context) {
	b, err := h.Businesses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.businessError(c, err)
		return
	}
	businessOK(c, http.StatusOK, b)
}

func (h *Handler) CreateBusiness(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var in domain.BusinessInput
	var err error
	if isMultipart(c) {
		err = c.ShouldBind(&in)
	} else {
		err = c.ShouldBindJSON(&in)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	image, err := h.saveUpload(c)
	if err != nil {
		h.businessError(c, err)
		return
	}
	in.Image = image

	b, err := h.Businesses.Create(c.Request.Context(), in, userID)
	if err != nil {
		h.discardUpload(c, image)
		h.businessError(c, err)
		return
	}
	businessOK(c, http.StatusCreated, b)
}

func (h *Handler) UpdateBusiness(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var patch domain.BusinessPatch
	if isMultipart(c) {
		p, err := businessPatchFromForm(c)
		if err != nil {
			h.businessError(c, err)
			return
		}
		patch = p
	} else if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	image, err := h.saveUpload(c)
	if err != nil {
		h.businessError(c, err)
		return
	}
	if image != "" {
		patch.Image = &image
	}

	b, err := h.Businesses.Update(c.Request.Context(), c.Param("id"), userID, patch)
	if err != nil {
		h.discardUpload(c, image)
		h.businessError(c, err)
		return
	}
	businessOK(c, http.StatusOK, b)
}

func (h *Handler) DeleteBusiness(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.Businesses.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.businessError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ChangeBusinessStatus handles PUT /businesses/change-status/:id/:status. Admin only.
func (h *Handler) ChangeBusinessStatus(c *gin.Context) {
	adminID, _ := getUserID(c)
	b, err := h.Businesses.ChangeStatus(c.Request.Context(), c.Param("id"), domain.BusinessStatus(c.Param("status")), adminID)
	if err != nil {
		h.businessError(c, err)
		return
	}
	businessOK(c, http.StatusOK, b)
}

func businessPatchFromForm(c *gin.Context) (domain.BusinessPatch, error) {
	var p domain.BusinessPatch
	str := func(key string) *string {
		if v, ok := c.GetPostForm(key); ok {
			return &v
		}
		return nil
	}
	p.Name = str("name")
	p.PhoneNumber = str("phoneNumber")
	p.Email = str("email")
	p.Country = str("country")
	p.City = str("city")
	p.Description = str("description")
	if v, ok := c.GetPostForm("employeeCount"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, domain.Validation("employeeCount must be a number")
		}
		p.EmployeeCount = &n
	}
	return p, nil
}
