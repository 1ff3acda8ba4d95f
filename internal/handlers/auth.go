package handlers

import (
	"errors"
	"net/http"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	identity *services.IdentityService
	tokens   *services.TokenService
	mail     *services.MailService
}

func NewAuthHandler(identity *services.IdentityService, tokens *services.TokenService, mail *services.MailService) *AuthHandler {
	return &AuthHandler{
		identity: identity,
		tokens:   tokens,
		mail:     mail,
	}
}

// sendToken mints a session credential for user, sets the httpOnly cookie
// and writes the success envelope. The token never appears in a URL.
func (h *AuthHandler) sendToken(c *gin.Context, code int, user *models.User, message string) {
	token, expiresAt, err := h.tokens.Issue(user)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Failed to create session")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(time.Until(expiresAt).Seconds()), "/", "", false, true)

	OK(c, code, message, gin.H{"data": user})
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Name, a valid email and a password of at least 6 characters are required")
		return
	}

	user, err := h.identity.CreateLocalUser(req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateEmail) {
			Fail(c, http.StatusConflict, "Email already registered")
			return
		}
		Fail(c, http.StatusInternalServerError, "Registration failed")
		return
	}

	code, err := h.identity.IssueVerifyCode(user)
	if err == nil {
		h.mail.SendVerificationEmail(user.Email, code)
	}

	h.sendToken(c, http.StatusCreated, user, "Registered successfully. A verification code has been sent to your email.")
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.identity.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrAccountDisabled) {
			Fail(c, http.StatusForbidden, "Your account has been deactivated")
			return
		}
		Fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	h.sendToken(c, http.StatusOK, user, "Logged in successfully")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	// Only the issuing browser forgets the credential; the token itself
	// stays valid until expiry.
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)

	OK(c, http.StatusOK, "Logged out successfully", nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	OK(c, http.StatusOK, "", gin.H{"data": user})
}

type verifyEmailRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Email and code are required")
		return
	}

	user, err := h.identity.VerifyEmail(req.Email, req.Code)
	if err != nil {
		Fail(c, http.StatusBadRequest, "Invalid or expired verification code")
		return
	}

	OK(c, http.StatusOK, "Email verified successfully", gin.H{"data": user})
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Email is required")
		return
	}

	if user, code, err := h.identity.IssueResetCode(req.Email); err == nil {
		h.mail.SendPasswordResetEmail(user.Email, code)
	}

	// Identical response whether the account exists or not
	OK(c, http.StatusOK, "If that email is registered, a reset code has been sent", nil)
}

type resetPasswordRequest struct {
	Email    string `json:"email" binding:"required"`
	Code     string `json:"code" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Email, code and a password of at least 6 characters are required")
		return
	}

	if err := h.identity.ResetPassword(req.Email, req.Code, req.Password); err != nil {
		Fail(c, http.StatusBadRequest, "Invalid or expired reset code")
		return
	}

	OK(c, http.StatusOK, "Password reset successfully. Please log in.", nil)
}
