package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"inkwell/internal/db"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type BlogHandler struct{}

func NewBlogHandler() *BlogHandler {
	return &BlogHandler{}
}

type blogRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Thumbnail   string   `json:"thumbnail"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Content     string   `json:"content"`
	Status      string   `json:"status"`
}

// normalizeTags trims entries and splits comma-separated ones, so both
// ["go","web"] and ["go, web"] come out the same.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, raw := range tags {
		for _, tag := range strings.Split(raw, ",") {
			if t := strings.TrimSpace(tag); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}

func validStatus(status string) bool {
	return status == models.StatusDraft || status == models.StatusPublished
}

// invalidateFeedCache drops the cached feed pages so the next read sees
// the mutation. The cache holds nothing but published-feed pages, and
// page/limit combinations cannot be enumerated, so it drops them all.
func invalidateFeedCache() {
	utils.GetCache().Purge()
}

func (h *BlogHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req blogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Title == "" || req.Description == "" || req.Content == "" || req.Category == "" {
		Fail(c, http.StatusBadRequest, "All required fields must be provided")
		return
	}
	if req.Thumbnail == "" {
		Fail(c, http.StatusBadRequest, "Blog thumbnail is required")
		return
	}

	status := req.Status
	if status == "" {
		status = models.StatusDraft
	}
	if !validStatus(status) {
		Fail(c, http.StatusBadRequest, "Status must be draft or published")
		return
	}

	blog := models.Blog{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Thumbnail:   req.Thumbnail,
		Category:    strings.TrimSpace(req.Category),
		Tags:        normalizeTags(req.Tags),
		Content:     utils.SanitizeHTML(req.Content),
		Status:      status,
		// Author info is copied here, not joined live: later profile
		// edits must not rewrite bylines on existing blogs.
		Author: models.Author{
			ID:     user.ID,
			Name:   user.Name,
			Avatar: user.Avatar,
		},
	}

	if err := db.DB.Create(&blog).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Failed to create blog")
		return
	}
	invalidateFeedCache()

	message := "Blog saved as draft!"
	if status == models.StatusPublished {
		message = "Blog published successfully!"
	}
	OK(c, http.StatusCreated, message, gin.H{"blog": blog})
}

// ListPublished serves the public feed with pagination and optional
// category/tags/search filters. Search is a plain substring match over
// title and description.
func (h *BlogHandler) ListPublished(c *gin.Context) {
	page := utils.StringToInt(c.Query("page"))
	if page < 1 {
		page = 1
	}
	limit := utils.StringToInt(c.Query("limit"))
	if limit < 1 || limit > 100 {
		limit = 10
	}

	category := c.Query("category")
	tags := c.Query("tags")
	search := c.Query("search")

	unfiltered := category == "" && tags == "" && search == ""
	cacheKey := fmt.Sprintf("blogs:published:%d:%d", page, limit)
	if unfiltered {
		if cached := utils.GetCache().Get(cacheKey); cached != nil {
			if body, ok := cached.(gin.H); ok {
				OK(c, http.StatusOK, "Published blogs retrieved successfully", body)
				return
			}
		}
	}

	query := db.DB.Model(&models.Blog{}).Where("status = ?", models.StatusPublished)

	if category != "" {
		query = query.Where("LOWER(category) LIKE ?", "%"+strings.ToLower(category)+"%")
	}
	if tags != "" {
		// Tags are stored as a JSON array; match any requested tag.
		var conds []string
		var args []interface{}
		for _, tag := range strings.Split(tags, ",") {
			if t := strings.TrimSpace(tag); t != "" {
				conds = append(conds, "tags LIKE ?")
				args = append(args, fmt.Sprintf(`%%"%s"%%`, t))
			}
		}
		if len(conds) > 0 {
			query = query.Where(strings.Join(conds, " OR "), args...)
		}
	}
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var total int64
	query.Count(&total)

	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	var blogs []models.Blog
	query.Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&blogs)

	body := gin.H{
		"blogs": blogs,
		"pagination": gin.H{
			"currentPage": page,
			"totalPages":  totalPages,
			"totalBlogs":  total,
			"hasNextPage": page < totalPages,
			"hasPrevPage": page > 1,
		},
	}

	if unfiltered {
		utils.GetCache().Set(cacheKey, body, 1*time.Minute)
	}

	OK(c, http.StatusOK, "Published blogs retrieved successfully", body)
}

// Detail serves one blog. Anonymous callers are allowed here; the
// visibility rule decides what they may see.
func (h *BlogHandler) Detail(c *gin.Context) {
	id := utils.StringToInt(c.Param("id"))

	var blog models.Blog
	if err := db.DB.First(&blog, id).Error; err != nil {
		Fail(c, http.StatusNotFound, "Blog not found")
		return
	}

	caller := middleware.CurrentUser(c)
	if !blog.VisibleTo(caller) {
		Fail(c, http.StatusForbidden, "You are not authorized to view this draft blog")
		return
	}

	if blog.Status == models.StatusPublished {
		db.DB.Model(&blog).UpdateColumn("views", gorm.Expr("views + 1"))
		blog.Views++
	}

	blog.Content = utils.EnhanceHTMLContent(blog.Content)

	OK(c, http.StatusOK, "Blog retrieved successfully", gin.H{"blog": blog})
}

// UserBlogs lists everything the caller has written, drafts included.
func (h *BlogHandler) UserBlogs(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var blogs []models.Blog
	db.DB.Where("author_id = ?", user.ID).
		Order("created_at DESC").
		Find(&blogs)

	OK(c, http.StatusOK, "User blogs fetched successfully", gin.H{
		"data": gin.H{
			"totalBlogs": len(blogs),
			"blogs":      blogs,
		},
	})
}

func (h *BlogHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id := utils.StringToInt(c.Param("id"))

	var blog models.Blog
	if err := db.DB.First(&blog, id).Error; err != nil {
		Fail(c, http.StatusNotFound, "Blog not found")
		return
	}

	if !blog.OwnedBy(user) {
		Fail(c, http.StatusForbidden, "You are not authorized to modify this blog")
		return
	}

	var req blogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Title != "" {
		blog.Title = strings.TrimSpace(req.Title)
	}
	if req.Description != "" {
		blog.Description = strings.TrimSpace(req.Description)
	}
	if req.Thumbnail != "" {
		blog.Thumbnail = req.Thumbnail
	}
	if req.Category != "" {
		blog.Category = strings.TrimSpace(req.Category)
	}
	if req.Content != "" {
		blog.Content = utils.SanitizeHTML(req.Content)
	}
	if req.Tags != nil {
		blog.Tags = normalizeTags(req.Tags)
	}
	if req.Status != "" {
		if !validStatus(req.Status) {
			Fail(c, http.StatusBadRequest, "Status must be draft or published")
			return
		}
		blog.Status = req.Status
	}
	// The author snapshot is immutable; it is never touched here.

	if err := db.DB.Save(&blog).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Failed to update blog")
		return
	}
	invalidateFeedCache()

	OK(c, http.StatusOK, "Blog updated successfully", gin.H{"blog": blog})
}

func (h *BlogHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id := utils.StringToInt(c.Param("id"))

	var blog models.Blog
	if err := db.DB.First(&blog, id).Error; err != nil {
		Fail(c, http.StatusNotFound, "Blog not found")
		return
	}

	if !blog.OwnedBy(user) {
		Fail(c, http.StatusForbidden, "You are not authorized to delete this blog")
		return
	}

	if err := db.DB.Delete(&blog).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Failed to delete blog")
		return
	}
	invalidateFeedCache()

	OK(c, http.StatusOK, "Blog deleted successfully", nil)
}
