package likes

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/orgblog/pkg/orgblog/apperr"
	"github.com/mikepea/orgblog/pkg/orgblog/auth"
	"github.com/mikepea/orgblog/pkg/orgblog/blogs"
	"gorm.io/gorm"
)

// Handler handles like requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new likes handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// LikerResponse is a user who liked a blog
type LikerResponse struct {
	UserID  uint      `json:"user_id"`
	Name    string    `json:"name"`
	Avatar  string    `json:"avatar"`
	LikedAt time.Time `json:"liked_at"`
}

func (h *Handler) visibleBlogID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperr.Respond(c, apperr.Validation("Invalid blog ID"))
		return 0, false
	}
	blog, err := blogs.LoadVisible(h.db, auth.GetPrincipal(c), uint(id))
	if err != nil {
		apperr.Respond(c, err)
		return 0, false
	}
	return blog.ID, true
}

// Toggle likes the blog, or unlikes it if already liked
// @Summary Toggle like
// @Description Like or unlike a blog. Any authenticated user may like.
// @Tags likes
// @Produce json
// @Param id path int true "Blog ID"
// @Success 200 {object} Status
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 404 {object} map[string]string "Blog not found"
// @Security BearerAuth
// @Router /blogs/{id}/like [post]
func (h *Handler) Toggle(c *gin.Context) {
	blogID, ok := h.visibleBlogID(c)
	if !ok {
		return
	}
	userID, _ := auth.GetUserID(c)

	st, err := Toggle(c.Request.Context(), h.db, blogID, userID)
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to toggle like", err))
		return
	}
	c.JSON(http.StatusOK, st)
}

// Status reports whether the current user likes the blog
// @Summary Like status
// @Tags likes
// @Produce json
// @Param id path int true "Blog ID"
// @Success 200 {object} Status
// @Failure 404 {object} map[string]string "Blog not found"
// @Router /blogs/{id}/like [get]
func (h *Handler) Status(c *gin.Context) {
	blogID, ok := h.visibleBlogID(c)
	if !ok {
		return
	}
	userID, _ := auth.GetUserID(c)

	st, err := Get(c.Request.Context(), h.db, blogID, userID)
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to fetch like status", err))
		return
	}
	c.JSON(http.StatusOK, st)
}

// ListLikers returns the users who liked a blog
// @Summary List likers
// @Tags likes
// @Produce json
// @Param id path int true "Blog ID"
// @Param limit query int false "Max results (default 50, max 100)"
// @Param offset query int false "Offset for pagination"
// @Success 200 {array} LikerResponse
// @Failure 404 {object} map[string]string "Blog not found"
// @Router /blogs/{id}/likes [get]
func (h *Handler) ListLikers(c *gin.Context) {
	blogID, ok := h.visibleBlogID(c)
	if !ok {
		return
	}

	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	offset := 0
	if o := c.Query("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	list, err := Likers(c.Request.Context(), h.db, blogID, limit, offset)
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to fetch likers", err))
		return
	}

	responses := make([]LikerResponse, len(list))
	for i, l := range list {
		responses[i] = LikerResponse{
			UserID:  l.UserID,
			Name:    l.User.Name,
			Avatar:  l.User.Avatar,
			LikedAt: l.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, responses)
}

// RegisterRoutes registers like routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	optional := auth.OptionalAuth(h.db)

	rg.POST("/blogs/:id/like", auth.AuthMiddleware(h.db), h.Toggle)
	rg.GET("/blogs/:id/like", optional, h.Status)
	rg.GET("/blogs/:id/likes", optional, h.ListLikers)
}
