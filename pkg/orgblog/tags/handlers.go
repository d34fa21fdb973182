package tags

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/orgblog/pkg/orgblog/apperr"
	"gorm.io/gorm"
)

// Handler handles tag requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new tags handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// TagResponse represents a tag with its usage count
type TagResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	BlogCount int    `json:"blog_count"`
}

// List returns tags used by published blogs, most used first
// @Summary List popular tags
// @Description Get tags with the number of published blogs using each
// @Tags tags
// @Produce json
// @Param org_id query int false "Only count blogs of this organization"
// @Param limit query int false "Max results (default 50, max 100)"
// @Success 200 {array} TagResponse
// @Router /tags [get]
func (h *Handler) List(c *gin.Context) {
	join := "INNER JOIN blogs ON blog_tags.blog_id = blogs.id AND blogs.published = ?"
	args := []interface{}{true}
	if orgID := c.Query("org_id"); orgID != "" {
		id, err := strconv.ParseUint(orgID, 10, 32)
		if err != nil {
			apperr.Respond(c, apperr.Validation("Invalid organization ID"))
			return
		}
		join += " AND blogs.org_id = ?"
		args = append(args, id)
	}

	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	var results []TagResponse
	err := h.db.Table("tags").
		Select("tags.id, tags.name, COUNT(DISTINCT blogs.id) as blog_count").
		Joins("INNER JOIN blog_tags ON tags.id = blog_tags.tag_id").
		Joins(join, args...).
		Group("tags.id, tags.name").
		Order("blog_count DESC, tags.name ASC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to fetch tags", err))
		return
	}
	if results == nil {
		results = []TagResponse{}
	}

	c.JSON(http.StatusOK, results)
}

// RegisterRoutes registers tag routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/tags", h.List)
}
