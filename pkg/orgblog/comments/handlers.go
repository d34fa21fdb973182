package comments

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/orgblog/pkg/orgblog/apperr"
	"github.com/mikepea/orgblog/pkg/orgblog/auth"
	"github.com/mikepea/orgblog/pkg/orgblog/blogs"
	"github.com/mikepea/orgblog/pkg/orgblog/logger"
	"github.com/mikepea/orgblog/pkg/orgblog/models"
	"github.com/mikepea/orgblog/pkg/orgblog/policy"
	"gorm.io/gorm"
)

// Handler handles comment requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new comments handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CommentRequest represents the request to create or edit a comment
type CommentRequest struct {
	Text string `json:"text" binding:"required,notblank,max=500"`
}

// CommenterSummary is the user shown alongside a comment
type CommenterSummary struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// CommentResponse represents a comment in API responses
type CommentResponse struct {
	ID        uint             `json:"id"`
	BlogID    uint             `json:"blog_id"`
	Text      string           `json:"text"`
	User      CommenterSummary `json:"user"`
	Edited    bool             `json:"edited"`
	EditedAt  *time.Time       `json:"edited_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

func commentToResponse(cm models.Comment) CommentResponse {
	return CommentResponse{
		ID:        cm.ID,
		BlogID:    cm.BlogID,
		Text:      cm.Text,
		User:      CommenterSummary{ID: cm.User.ID, Name: cm.User.Name, Avatar: cm.User.Avatar},
		Edited:    cm.Edited,
		EditedAt:  cm.EditedAt,
		CreatedAt: cm.CreatedAt,
	}
}

func parseID(c *gin.Context, what string) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, apperr.Validation("Invalid " + what + " ID")
	}
	return uint(id), nil
}

func (h *Handler) loadComment(id uint) (*models.Comment, error) {
	var cm models.Comment
	if err := h.db.Preload("User").First(&cm, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Comment not found")
		}
		return nil, apperr.Internal("Failed to load comment", err)
	}
	return &cm, nil
}

// List returns the comments of a blog, oldest first
// @Summary List comments
// @Tags comments
// @Produce json
// @Param id path int true "Blog ID"
// @Success 200 {array} CommentResponse
// @Failure 404 {object} map[string]string "Blog not found"
// @Router /blogs/{id}/comments [get]
func (h *Handler) List(c *gin.Context) {
	blogID, err := parseID(c, "blog")
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if _, err := blogs.LoadVisible(h.db, auth.GetPrincipal(c), blogID); err != nil {
		apperr.Respond(c, err)
		return
	}

	var list []models.Comment
	if err := h.db.Preload("User").Where("blog_id = ?", blogID).Order("created_at ASC, id ASC").Find(&list).Error; err != nil {
		apperr.Respond(c, apperr.Internal("Failed to fetch comments", err))
		return
	}

	responses := make([]CommentResponse, len(list))
	for i, cm := range list {
		responses[i] = commentToResponse(cm)
	}
	c.JSON(http.StatusOK, responses)
}

// Create adds a comment to a blog
// @Summary Comment on a blog
// @Description Verified members may comment on blogs of organizations that have comments enabled
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Blog ID"
// @Param request body CommentRequest true "Comment text"
// @Success 201 {object} CommentResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]string "Not allowed to comment"
// @Failure 404 {object} map[string]string "Blog not found"
// @Security BearerAuth
// @Router /blogs/{id}/comments [post]
func (h *Handler) Create(c *gin.Context) {
	blogID, err := parseID(c, "blog")
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	p := auth.GetPrincipal(c)
	blog, err := blogs.LoadVisible(h.db, p, blogID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if err := auth.Check(p, policy.CanPost(p), "Only verified members can comment"); err != nil {
		apperr.Respond(c, err)
		return
	}

	var org models.Organization
	if err := h.db.Select("id", "comments_enabled").First(&org, blog.OrgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperr.Respond(c, apperr.NotFound("Organization not found"))
			return
		}
		apperr.Respond(c, apperr.Internal("Failed to load organization", err))
		return
	}
	if !org.CommentsEnabled {
		apperr.Respond(c, apperr.Forbidden("Comments are disabled for this organization"))
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation(err.Error()))
		return
	}

	cm := models.Comment{Text: strings.TrimSpace(req.Text), BlogID: blog.ID, UserID: p.ID}
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User").Create(&cm).Error; err != nil {
			return err
		}
		return tx.Model(&models.Blog{}).Where("id = ?", blog.ID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + ?", 1)).Error
	})
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to create comment", err))
		return
	}

	created, err := h.loadComment(cm.ID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	logger.Get().WithField("comment_id", cm.ID).WithField("blog_id", blog.ID).Debug("comment created")
	c.JSON(http.StatusCreated, commentToResponse(*created))
}

// Update edits a comment's text
// @Summary Edit a comment
// @Description Only the comment's author may edit it
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Comment ID"
// @Param request body CommentRequest true "New text"
// @Success 200 {object} CommentResponse
// @Failure 403 {object} map[string]string "Not the author"
// @Failure 404 {object} map[string]string "Comment not found"
// @Security BearerAuth
// @Router /comments/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, err := parseID(c, "comment")
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	cm, err := h.loadComment(id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	p := auth.GetPrincipal(c)
	if !policy.CanEditComment(p, cm) {
		apperr.Respond(c, apperr.Forbidden("You can only edit your own comments"))
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation(err.Error()))
		return
	}

	text := strings.TrimSpace(req.Text)
	if text != cm.Text {
		now := time.Now()
		updates := map[string]interface{}{"text": text, "edited": true, "edited_at": now}
		if err := h.db.Model(&models.Comment{}).Where("id = ?", cm.ID).Updates(updates).Error; err != nil {
			apperr.Respond(c, apperr.Internal("Failed to update comment", err))
			return
		}
		cm.Text = text
		cm.Edited = true
		cm.EditedAt = &now
	}

	c.JSON(http.StatusOK, commentToResponse(*cm))
}

// Delete removes a comment
// @Summary Delete a comment
// @Description The comment's author or an admin with jurisdiction over the blog may delete it
// @Tags comments
// @Produce json
// @Param id path int true "Comment ID"
// @Success 200 {object} map[string]string "Comment deleted"
// @Failure 403 {object} map[string]string "Not allowed"
// @Failure 404 {object} map[string]string "Comment not found"
// @Security BearerAuth
// @Router /comments/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, err := parseID(c, "comment")
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	cm, err := h.loadComment(id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	blog, err := blogs.Load(h.db, cm.BlogID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	p := auth.GetPrincipal(c)
	if !policy.CanDeleteComment(p, cm, blog) {
		apperr.Respond(c, apperr.Forbidden("You cannot delete this comment"))
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Comment{}, cm.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.Blog{}).Where("id = ? AND comments_count > 0", cm.BlogID).
			UpdateColumn("comments_count", gorm.Expr("comments_count - ?", 1)).Error
	})
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to delete comment", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}

// RegisterRoutes registers comment routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	required := auth.AuthMiddleware(h.db)

	rg.GET("/blogs/:id/comments", auth.OptionalAuth(h.db), h.List)
	rg.POST("/blogs/:id/comments", required, h.Create)
	rg.PUT("/comments/:id", required, h.Update)
	rg.DELETE("/comments/:id", required, h.Delete)
}
