package blogs

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/orgblog/pkg/orgblog/apperr"
	"github.com/mikepea/orgblog/pkg/orgblog/auth"
	"github.com/mikepea/orgblog/pkg/orgblog/database"
	"github.com/mikepea/orgblog/pkg/orgblog/logger"
	"github.com/mikepea/orgblog/pkg/orgblog/models"
	"github.com/mikepea/orgblog/pkg/orgblog/policy"
	"github.com/mikepea/orgblog/pkg/orgblog/tags"
	"github.com/mikepea/orgblog/pkg/orgblog/uploads"
	"gorm.io/gorm"
)

// Handler handles blog requests
type Handler struct {
	db    *gorm.DB
	store uploads.Store
}

// NewHandler creates a new blogs handler. store is used to remove cover
// images of deleted blogs and may be nil.
func NewHandler(db *gorm.DB, store uploads.Store) *Handler {
	return &Handler{db: db, store: store}
}

const (
	minTitle   = 5
	maxTitle   = 200
	minContent = 50
)

// CreateBlogRequest represents the request to create a blog
type CreateBlogRequest struct {
	Title      string   `json:"title" binding:"required,notblank,min=5,max=200"`
	Content    string   `json:"content" binding:"required,notblank,min=50"`
	Excerpt    string   `json:"excerpt" binding:"max=300"`
	CoverImage string   `json:"cover_image" binding:"max=500"`
	Slug       string   `json:"slug" binding:"omitempty,slug,max=200"`
	Tags       []string `json:"tags" binding:"max=20,dive,max=50"`
	Published  *bool    `json:"published"`
}

// UpdateBlogRequest represents the request to update a blog. Omitted fields
// are left unchanged.
type UpdateBlogRequest struct {
	Title      *string   `json:"title" binding:"omitnil,notblank,min=5,max=200"`
	Content    *string   `json:"content" binding:"omitnil,notblank,min=50"`
	Excerpt    *string   `json:"excerpt" binding:"omitnil,max=300"`
	CoverImage *string   `json:"cover_image" binding:"omitnil,max=500"`
	Slug       *string   `json:"slug" binding:"omitnil,slug,max=200"`
	Tags       *[]string `json:"tags" binding:"omitnil,max=20"`
	Published  *bool     `json:"published"`
	Featured   *bool     `json:"featured"`
	Pinned     *bool     `json:"pinned"`
}

// AuthorSummary is the author shown alongside a blog
type AuthorSummary struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// BlogResponse represents a blog in API responses
type BlogResponse struct {
	ID            uint          `json:"id"`
	Title         string        `json:"title"`
	Content       string        `json:"content"`
	Excerpt       string        `json:"excerpt"`
	CoverImage    string        `json:"cover_image"`
	Slug          string        `json:"slug"`
	Tags          []string      `json:"tags"`
	Author        AuthorSummary `json:"author"`
	DeptID        uint          `json:"dept_id"`
	OrgID         uint          `json:"org_id"`
	LikesCount    int64         `json:"likes_count"`
	CommentsCount int64         `json:"comments_count"`
	ViewsCount    int64         `json:"views_count"`
	Published     bool          `json:"published"`
	Featured      bool          `json:"featured"`
	Pinned        bool          `json:"pinned"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func blogToResponse(b models.Blog) BlogResponse {
	resp := BlogResponse{
		ID:            b.ID,
		Title:         b.Title,
		Content:       b.Content,
		Excerpt:       b.Excerpt,
		CoverImage:    b.CoverImage,
		Tags:          b.TagNames(),
		Author:        AuthorSummary{ID: b.Author.ID, Name: b.Author.Name, Avatar: b.Author.Avatar},
		DeptID:        b.DeptID,
		OrgID:         b.OrgID,
		LikesCount:    b.LikesCount,
		CommentsCount: b.CommentsCount,
		ViewsCount:    b.ViewsCount,
		Published:     b.Published,
		Featured:      b.Featured,
		Pinned:        b.Pinned,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	if b.Slug != nil {
		resp.Slug = *b.Slug
	}
	return resp
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, apperr.Validation("Invalid blog ID")
	}
	return uint(id), nil
}

// Load fetches a blog with its author and tags
func Load(db *gorm.DB, id uint) (*models.Blog, error) {
	var blog models.Blog
	if err := db.Preload("Author").Preload("Tags").First(&blog, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Blog not found")
		}
		return nil, apperr.Internal("Failed to load blog", err)
	}
	return &blog, nil
}

// LoadVisible fetches a blog that p may read. Drafts p cannot edit are
// reported as not found.
func LoadVisible(db *gorm.DB, p *policy.Principal, id uint) (*models.Blog, error) {
	blog, err := Load(db, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewBlog(p, blog) {
		return nil, apperr.NotFound("Blog not found")
	}
	return blog, nil
}

// List returns published blogs
// @Summary List blogs
// @Description List published blogs, pinned first, then newest
// @Tags blogs
// @Produce json
// @Param org_id query int false "Filter by organization"
// @Param dept_id query int false "Filter by department"
// @Param author_id query int false "Filter by author"
// @Param tag query string false "Filter by tag name"
// @Param featured query bool false "Only featured blogs"
// @Param q query string false "Search title, excerpt and content"
// @Param limit query int false "Max results (default 20, max 100)"
// @Param offset query int false "Offset for pagination"
// @Success 200 {array} BlogResponse
// @Router /blogs [get]
func (h *Handler) List(c *gin.Context) {
	query, err := h.filteredQuery(c, h.db.Model(&models.Blog{}).Where("blogs.published = ?", true))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	h.respondList(c, query)
}

// ListMine returns the current user's blogs including drafts
// @Summary List own blogs
// @Tags blogs
// @Produce json
// @Param limit query int false "Max results (default 20, max 100)"
// @Param offset query int false "Offset for pagination"
// @Success 200 {array} BlogResponse
// @Security BearerAuth
// @Router /blogs/mine [get]
func (h *Handler) ListMine(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	query, err := h.filteredQuery(c, h.db.Model(&models.Blog{}).Where("blogs.author_id = ?", userID))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	h.respondList(c, query)
}

func (h *Handler) filteredQuery(c *gin.Context, query *gorm.DB) (*gorm.DB, error) {
	for _, f := range []struct{ param, column string }{
		{"org_id", "blogs.org_id"},
		{"dept_id", "blogs.dept_id"},
		{"author_id", "blogs.author_id"},
	} {
		if v := c.Query(f.param); v != "" {
			id, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return nil, apperr.Validation("Invalid " + f.param)
			}
			query = query.Where(f.column+" = ?", id)
		}
	}

	if featured := c.Query("featured"); featured != "" {
		query = query.Where("blogs.featured = ?", featured == "true")
	}
	if tag := c.Query("tag"); tag != "" {
		query = query.Where("blogs.id IN (?)", h.db.Table("blog_tags").
			Select("blog_tags.blog_id").
			Joins("JOIN tags ON tags.id = blog_tags.tag_id").
			Where("tags.name = ?", strings.ToLower(strings.TrimSpace(tag))))
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		searchTerm := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(blogs.title) LIKE ? OR LOWER(blogs.excerpt) LIKE ? OR LOWER(blogs.content) LIKE ?", searchTerm, searchTerm, searchTerm)
	}

	// Pagination
	limit := 20
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

	return query.Order("blogs.pinned DESC, blogs.created_at DESC, blogs.id DESC").Limit(limit).Offset(offset), nil
}

func (h *Handler) respondList(c *gin.Context, query *gorm.DB) {
	var blogs []models.Blog
	if err := query.Preload("Author").Preload("Tags").Find(&blogs).Error; err != nil {
		apperr.Respond(c, apperr.Internal("Failed to fetch blogs", err))
		return
	}

	responses := make([]BlogResponse, len(blogs))
	for i, b := range blogs {
		responses[i] = blogToResponse(b)
	}
	c.JSON(http.StatusOK, responses)
}

// Get returns a blog by ID and counts the view
// @Summary Get a blog
// @Tags blogs
// @Produce json
// @Param id path int true "Blog ID"
// @Success 200 {object} BlogResponse
// @Failure 404 {object} map[string]string "Blog not found"
// @Router /blogs/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	h.respondView(c, id)
}

// GetBySlug returns a blog by slug and counts the view
// @Summary Get a blog by slug
// @Tags blogs
// @Produce json
// @Param slug path string true "Blog slug"
// @Success 200 {object} BlogResponse
// @Failure 404 {object} map[string]string "Blog not found"
// @Router /blogs/slug/{slug} [get]
func (h *Handler) GetBySlug(c *gin.Context) {
	var blog models.Blog
	if err := h.db.Select("id").Where("slug = ?", c.Param("slug")).First(&blog).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperr.Respond(c, apperr.NotFound("Blog not found"))
			return
		}
		apperr.Respond(c, apperr.Internal("Failed to load blog", err))
		return
	}
	h.respondView(c, blog.ID)
}

func (h *Handler) respondView(c *gin.Context, id uint) {
	blog, err := LoadVisible(h.db, auth.GetPrincipal(c), id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	res := h.db.Model(&models.Blog{}).Where("id = ?", blog.ID).
		UpdateColumn("views_count", gorm.Expr("views_count + ?", 1))
	if res.Error != nil {
		apperr.Respond(c, apperr.Internal("Failed to record view", res.Error))
		return
	}
	if res.RowsAffected > 0 {
		blog.ViewsCount++
	}

	c.JSON(http.StatusOK, blogToResponse(*blog))
}

// Create creates a new blog in the author's department
// @Summary Create a blog
// @Description Create a blog as a verified member. The blog belongs to the author's organization and department.
// @Tags blogs
// @Accept json
// @Produce json
// @Param request body CreateBlogRequest true "Blog details"
// @Success 201 {object} BlogResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]string "Verified membership required"
// @Failure 409 {object} map[string]string "Slug already taken"
// @Security BearerAuth
// @Router /blogs [post]
func (h *Handler) Create(c *gin.Context) {
	p := auth.GetPrincipal(c)
	if err := auth.Check(p, policy.CanPost(p), "Only verified members can create blogs"); err != nil {
		apperr.Respond(c, err)
		return
	}

	var req CreateBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation(err.Error()))
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := checkLengths(&req.Title, &req.Content); err != nil {
		apperr.Respond(c, err)
		return
	}
	if err := uploads.CheckOwned(h.db, p.ID, req.CoverImage); err != nil {
		apperr.Respond(c, err)
		return
	}

	excerpt := strings.TrimSpace(req.Excerpt)
	if excerpt == "" {
		excerpt = deriveExcerpt(req.Content)
	}

	published := true
	if req.Published != nil {
		published = *req.Published
	}

	blog := models.Blog{
		Title:      req.Title,
		Content:    req.Content,
		Excerpt:    excerpt,
		CoverImage: req.CoverImage,
		AuthorID:   p.ID,
		OrgID:      *p.OrgID,
		DeptID:     *p.DeptID,
		Published:  published,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		slug := req.Slug
		if slug == "" {
			generated, err := generateSlug(tx, blog.Title)
			if err != nil {
				return err
			}
			slug = generated
		} else {
			taken, err := slugTaken(tx, slug, 0)
			if err != nil {
				return err
			}
			if taken {
				return errSlugTaken
			}
		}
		blog.Slug = &slug

		if err := tx.Omit("Author", "Tags").Create(&blog).Error; err != nil {
			return err
		}
		return replaceTags(tx, &blog, tags.Normalize(req.Tags))
	})
	if err != nil {
		h.respondWriteError(c, err, "Failed to create blog")
		return
	}

	created, err := Load(h.db, blog.ID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	logger.Get().WithField("blog_id", blog.ID).WithField("user_id", p.ID).Info("blog created")
	c.JSON(http.StatusCreated, blogToResponse(*created))
}

var errSlugTaken = apperr.Conflict("This slug is already taken")

// checkLengths applies the title and content bounds to the trimmed text, so
// surrounding whitespace cannot make up the minimum. Nil fields are skipped.
func checkLengths(title, content *string) error {
	if title != nil {
		if n := utf8.RuneCountInString(strings.TrimSpace(*title)); n < minTitle || n > maxTitle {
			return apperr.Validation(fmt.Sprintf("Title must be between %d and %d characters", minTitle, maxTitle))
		}
	}
	if content != nil && utf8.RuneCountInString(strings.TrimSpace(*content)) < minContent {
		return apperr.Validation(fmt.Sprintf("Content must be at least %d characters", minContent))
	}
	return nil
}

func replaceTags(tx *gorm.DB, blog *models.Blog, names []string) error {
	for _, n := range names {
		if len(n) > tags.MaxTagLength {
			return apperr.Validation("Tags must be at most 50 characters")
		}
	}
	resolved, err := tags.Resolve(tx, names)
	if err != nil {
		return err
	}
	return tx.Model(blog).Association("Tags").Replace(resolved)
}

func (h *Handler) respondWriteError(c *gin.Context, err error, msg string) {
	var appErr *apperr.Error
	switch {
	case errors.As(err, &appErr):
		apperr.Respond(c, err)
	case database.IsUniqueViolation(err):
		apperr.Respond(c, errSlugTaken)
	default:
		apperr.Respond(c, apperr.Internal(msg, err))
	}
}

// Update updates a blog
// @Summary Update a blog
// @Description Update a blog as its author or an admin with jurisdiction. Only admins may set featured and pinned.
// @Tags blogs
// @Accept json
// @Produce json
// @Param id path int true "Blog ID"
// @Param request body UpdateBlogRequest true "Fields to update"
// @Success 200 {object} BlogResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]string "Not allowed to edit this blog"
// @Failure 404 {object} map[string]string "Blog not found"
// @Security BearerAuth
// @Router /blogs/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	p := auth.GetPrincipal(c)
	blog, err := LoadVisible(h.db, p, id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if !policy.CanEditBlog(p, blog) {
		apperr.Respond(c, apperr.Forbidden("You cannot edit this blog"))
		return
	}

	var req UpdateBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation(err.Error()))
		return
	}

	if err := checkLengths(req.Title, req.Content); err != nil {
		apperr.Respond(c, err)
		return
	}

	if (req.Featured != nil || req.Pinned != nil) && !policy.CanModerateBlog(p, blog) {
		apperr.Respond(c, apperr.Forbidden("Only admins can feature or pin blogs"))
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		updates["content"] = *req.Content
		if req.Excerpt == nil {
			updates["excerpt"] = deriveExcerpt(*req.Content)
		}
	}
	if req.Excerpt != nil {
		excerpt := strings.TrimSpace(*req.Excerpt)
		if excerpt == "" {
			content := blog.Content
			if req.Content != nil {
				content = *req.Content
			}
			excerpt = deriveExcerpt(content)
		}
		updates["excerpt"] = excerpt
	}
	oldCover := ""
	if req.CoverImage != nil && *req.CoverImage != blog.CoverImage {
		if err := uploads.CheckOwned(h.db, p.ID, *req.CoverImage); err != nil {
			apperr.Respond(c, err)
			return
		}
		oldCover = blog.CoverImage
		updates["cover_image"] = *req.CoverImage
	}
	if req.Published != nil {
		updates["published"] = *req.Published
	}
	if req.Featured != nil {
		updates["featured"] = *req.Featured
	}
	if req.Pinned != nil {
		updates["pinned"] = *req.Pinned
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if req.Slug != nil && (blog.Slug == nil || *req.Slug != *blog.Slug) {
			taken, err := slugTaken(tx, *req.Slug, blog.ID)
			if err != nil {
				return err
			}
			if taken {
				return errSlugTaken
			}
			updates["slug"] = *req.Slug
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.Blog{}).Where("id = ?", blog.ID).Updates(updates).Error; err != nil {
				return err
			}
		}
		if req.Tags != nil {
			return replaceTags(tx, blog, tags.Normalize(*req.Tags))
		}
		return nil
	})
	if err != nil {
		h.respondWriteError(c, err, "Failed to update blog")
		return
	}

	uploads.Release(h.db, h.store, oldCover)

	updated, err := Load(h.db, blog.ID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, blogToResponse(*updated))
}

// Delete deletes a blog with its comments and likes
// @Summary Delete a blog
// @Tags blogs
// @Produce json
// @Param id path int true "Blog ID"
// @Success 200 {object} map[string]string "Blog deleted"
// @Failure 403 {object} map[string]string "Not allowed to delete this blog"
// @Failure 404 {object} map[string]string "Blog not found"
// @Security BearerAuth
// @Router /blogs/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	p := auth.GetPrincipal(c)
	blog, err := LoadVisible(h.db, p, id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if !policy.CanEditBlog(p, blog) {
		apperr.Respond(c, apperr.Forbidden("You cannot delete this blog"))
		return
	}

	var covers []string
	err = h.db.Transaction(func(tx *gorm.DB) error {
		var err error
		covers, err = Purge(tx, []uint{blog.ID})
		return err
	})
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to delete blog", err))
		return
	}

	uploads.Release(h.db, h.store, covers...)

	logger.Get().WithField("blog_id", blog.ID).WithField("user_id", p.ID).Info("blog deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Blog deleted"})
}

// RegisterRoutes registers blog routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	optional := auth.OptionalAuth(h.db)
	required := auth.AuthMiddleware(h.db)

	rg.GET("/blogs", optional, h.List)
	rg.GET("/blogs/mine", required, h.ListMine)
	rg.GET("/blogs/slug/:slug", optional, h.GetBySlug)
	rg.GET("/blogs/:id", optional, h.Get)
	rg.POST("/blogs", required, h.Create)
	rg.PUT("/blogs/:id", required, h.Update)
	rg.DELETE("/blogs/:id", required, h.Delete)
}
