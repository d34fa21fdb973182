package uploads

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/orgblog/pkg/orgblog/apperr"
	"github.com/mikepea/orgblog/pkg/orgblog/auth"
	"github.com/mikepea/orgblog/pkg/orgblog/logger"
	"github.com/mikepea/orgblog/pkg/orgblog/models"
	"github.com/mikepea/orgblog/pkg/orgblog/policy"
	"gorm.io/gorm"
)

// multipartOverhead allows for form boundaries and headers around the file.
const multipartOverhead = 1 << 20

// Handler handles image uploads
type Handler struct {
	db       *gorm.DB
	store    Store
	maxBytes int64
}

// NewHandler creates a new uploads handler
func NewHandler(db *gorm.DB, store Store, maxBytes int64) *Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Handler{db: db, store: store, maxBytes: maxBytes}
}

// UploadResponse is returned after a successful upload
type UploadResponse struct {
	URL string `json:"url"`
}

// canUpload reports whether p may upload into category.
func canUpload(p *policy.Principal, category Category) bool {
	switch category {
	case CategoryAvatars:
		return p != nil
	case CategoryBlogs:
		return policy.CanPost(p)
	case CategoryDepartments:
		return policy.RoleAtLeast(p, models.RoleDeptAdmin)
	case CategoryOrganizations:
		return policy.RoleAtLeast(p, models.RoleOrgAdmin)
	}
	return false
}

// Upload stores an image
// @Summary Upload an image
// @Description Store a JPEG, PNG, GIF or WebP image of at most 5MB and return its URL
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param category path string true "blogs, avatars, organizations or departments"
// @Param image formData file true "Image file"
// @Success 201 {object} UploadResponse
// @Failure 400 {object} map[string]string "Invalid file"
// @Failure 403 {object} map[string]string "Not allowed to upload into this category"
// @Security BearerAuth
// @Router /uploads/{category} [post]
func (h *Handler) Upload(c *gin.Context) {
	category := Category(c.Param("category"))
	if !category.Valid() {
		apperr.Respond(c, apperr.Validation("Invalid upload category"))
		return
	}

	p := auth.GetPrincipal(c)
	if err := auth.Check(p, canUpload(p, category), "Not allowed to upload into this category"); err != nil {
		apperr.Respond(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	fh, err := c.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apperr.Respond(c, apperr.Validation("File is too large"))
			return
		}
		apperr.Respond(c, apperr.Validation("Image file is required"))
		return
	}
	if fh.Size > h.maxBytes {
		apperr.Respond(c, apperr.Validation("File is too large"))
		return
	}

	f, err := fh.Open()
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to read upload", err))
		return
	}
	defer f.Close()

	url, err := h.store.Save(category, f)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if err := Record(h.db, p.ID, url); err != nil {
		if delErr := h.store.Delete(url); delErr != nil {
			logger.Get().WithError(delErr).WithField("url", url).Warn("failed to remove unrecorded upload")
		}
		apperr.Respond(c, apperr.Internal("Failed to store file", err))
		return
	}

	c.JSON(http.StatusCreated, UploadResponse{URL: url})
}

// RegisterRoutes registers upload routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/:category", auth.AuthMiddleware(h.db), h.Upload)
}
