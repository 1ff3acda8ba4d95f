package handlers

import (
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"inkwell/internal/db"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	media *services.CloudinaryService
}

func NewUserHandler(media *services.CloudinaryService) *UserHandler {
	return &UserHandler{media: media}
}

type signatureRequest struct {
	Folder string `json:"folder"`
}

// Signature returns everything the SPA needs for a direct upload to the
// media host. The binary never passes through this server.
func (h *UserHandler) Signature(c *gin.Context) {
	var req signatureRequest
	// Body is optional; an empty one means the default folder
	_ = c.ShouldBindJSON(&req)

	sig, err := h.media.SignUpload(req.Folder)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Failed to generate signature")
		return
	}

	OK(c, http.StatusOK, "", gin.H{
		"signature": sig.Signature,
		"timestamp": sig.Timestamp,
		"cloudName": sig.CloudName,
		"apiKey":    sig.APIKey,
		"folder":    sig.Folder,
	})
}

var urlPattern = regexp.MustCompile(`^(https?://)?([\da-zA-Z.-]+)\.([a-zA-Z.]{2,6})([/\w .-]*)*/?$`)

type profileUpdateRequest struct {
	Name        string             `json:"name"`
	Bio         string             `json:"bio"`
	Website     string             `json:"website"`
	Avatar      string             `json:"avatar"`
	SocialLinks models.SocialLinks `json:"social_links"`
}

// UpdateProfile lets the owning user edit their display fields. Identity
// fields (email, provider links, role) are not editable here.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req profileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Limits count characters, not bytes, to match the register binding
	name := strings.TrimSpace(req.Name)
	if utf8.RuneCountInString(name) < 2 {
		Fail(c, http.StatusBadRequest, "Name must be at least 2 characters long")
		return
	}
	if utf8.RuneCountInString(name) > 50 {
		Fail(c, http.StatusBadRequest, "Name cannot exceed 50 characters")
		return
	}
	if utf8.RuneCountInString(req.Bio) > 500 {
		Fail(c, http.StatusBadRequest, "Bio cannot exceed 500 characters")
		return
	}

	website := strings.TrimSpace(req.Website)
	if website != "" && !urlPattern.MatchString(website) {
		Fail(c, http.StatusBadRequest, "Please provide a valid website URL")
		return
	}

	links := map[string]string{
		"twitter":  strings.TrimSpace(req.SocialLinks.Twitter),
		"linkedin": strings.TrimSpace(req.SocialLinks.LinkedIn),
		"github":   strings.TrimSpace(req.SocialLinks.GitHub),
	}
	for platform, url := range links {
		if url != "" && !urlPattern.MatchString(url) {
			Fail(c, http.StatusBadRequest, "Please provide a valid "+platform+" URL")
			return
		}
	}

	user.Name = name
	user.Bio = strings.TrimSpace(req.Bio)
	user.Website = website
	if avatar := strings.TrimSpace(req.Avatar); avatar != "" {
		user.Avatar = avatar
	}
	user.SocialLinks = models.SocialLinks{
		Twitter:  links["twitter"],
		LinkedIn: links["linkedin"],
		GitHub:   links["github"],
	}

	if err := db.DB.Save(user).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	OK(c, http.StatusOK, "Profile updated successfully", gin.H{"data": user})
}
