package services

import (
	"errors"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/utils"

	"gorm.io/gorm"
)

var (
	// ErrDuplicateEmail is returned when registering an email that exists.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials covers unknown email, wrong password and
	// passwordless (pure OAuth) accounts alike.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountDisabled is returned for deactivated accounts.
	ErrAccountDisabled = errors.New("account is deactivated")
	// ErrUserNotFound is returned by lookups.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCode is returned for wrong or expired one-time codes.
	ErrInvalidCode = errors.New("invalid or expired code")
)

// OAuthProfile is the verified profile returned by the provider's
// server-to-server token exchange. Client-supplied identity claims
// never reach this type.
type OAuthProfile struct {
	SubjectID string
	Email     string
	Name      string
	Avatar    string
}

// IdentityService owns user records: registration, credential checks,
// OAuth account resolution and login bookkeeping.
type IdentityService struct {
	db *gorm.DB
}

func NewIdentityService(db *gorm.DB) *IdentityService {
	return &IdentityService{db: db}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateLocalUser registers a manual account. The plaintext password is
// hashed and discarded; only the hash is stored.
func (s *IdentityService) CreateLocalUser(name, email, password string) (*models.User, error) {
	email = normalizeEmail(email)

	var existing models.User
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrDuplicateEmail
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		Password:     hash,
		AuthProvider: models.ProviderManual,
		Role:         models.RoleUser,
		IsActive:     true,
	}

	if err := s.db.Create(&user).Error; err != nil {
		// Unique index race on email
		return nil, ErrDuplicateEmail
	}

	return &user, nil
}

// VerifyPassword checks a candidate password. Fails closed for accounts
// without a password hash.
func (s *IdentityService) VerifyPassword(user *models.User, candidate string) bool {
	if !user.HasPassword() {
		return false
	}
	return utils.CheckPasswordHash(candidate, user.Password)
}

// Authenticate resolves a local login attempt. The same error is returned
// for unknown emails and wrong passwords so nothing is leaked.
func (s *IdentityService) Authenticate(email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if !s.VerifyPassword(&user, password) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	if err := s.RecordLogin(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

// CreateOrLinkOAuthUser resolves a verified provider profile to exactly one
// user record. The subject id takes precedence over email; email is the
// fallback merge key so a manual signup and an OAuth login with the same
// address never become two accounts. Idempotent under repeated logins.
func (s *IdentityService) CreateOrLinkOAuthUser(profile OAuthProfile) (*models.User, error) {
	// 1. Returning OAuth user
	var user models.User
	err := s.db.Where("google_id = ?", profile.SubjectID).First(&user).Error
	if err == nil {
		if !user.IsActive {
			return nil, ErrAccountDisabled
		}
		if err := s.RecordLogin(&user); err != nil {
			return nil, err
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 2. Manual account with the same email: link the OAuth identity
	err = s.db.Where("email = ?", normalizeEmail(profile.Email)).First(&user).Error
	if err == nil {
		if !user.IsActive {
			return nil, ErrAccountDisabled
		}

		now := time.Now()
		updates := map[string]interface{}{
			"google_id":     profile.SubjectID,
			"auth_provider": models.ProviderBoth,
			"is_verified":   true,
			"last_login":    now,
			"login_count":   gorm.Expr("login_count + 1"),
		}
		if user.Avatar == "" {
			updates["avatar"] = profile.Avatar
		}
		// Single statement: the link, the verified flag and the login
		// bookkeeping land together or not at all.
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}

		return s.FindByID(user.ID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 3. First OAuth login: fresh account, no password, auto-verified
	now := time.Now()
	user = models.User{
		Name:         profile.Name,
		Email:        normalizeEmail(profile.Email),
		GoogleID:     profile.SubjectID,
		AuthProvider: models.ProviderGoogle,
		Avatar:       profile.Avatar,
		Role:         models.RoleUser,
		IsVerified:   true,
		IsActive:     true,
		LastLogin:    &now,
		LoginCount:   1,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

// RecordLogin bumps the audit counters for a successful authentication.
func (s *IdentityService) RecordLogin(user *models.User) error {
	now := time.Now()
	err := s.db.Model(user).Updates(map[string]interface{}{
		"login_count": gorm.Expr("login_count + 1"),
		"last_login":  now,
	}).Error
	if err != nil {
		return err
	}

	user.LoginCount++
	user.LastLogin = &now
	return nil
}

// FindByID loads a user record.
func (s *IdentityService) FindByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// IssueVerifyCode creates a fresh email-verification code valid for a day.
func (s *IdentityService) IssueVerifyCode(user *models.User) (string, error) {
	code := utils.GenerateRandomCode(6)
	expires := time.Now().Add(24 * time.Hour)

	err := s.db.Model(user).Updates(map[string]interface{}{
		"verify_code":    code,
		"verify_expires": expires,
	}).Error
	if err != nil {
		return "", err
	}

	user.VerifyCode = code
	user.VerifyExpires = &expires
	return code, nil
}

// VerifyEmail consumes a verification code and marks the account verified.
func (s *IdentityService) VerifyEmail(email, code string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		return nil, ErrUserNotFound
	}

	if user.IsVerified {
		return &user, nil
	}

	if user.VerifyCode == "" || user.VerifyCode != code {
		return nil, ErrInvalidCode
	}
	if user.VerifyExpires == nil || time.Now().After(*user.VerifyExpires) {
		return nil, ErrInvalidCode
	}

	err := s.db.Model(&user).Updates(map[string]interface{}{
		"is_verified":    true,
		"verify_code":    "",
		"verify_expires": nil,
	}).Error
	if err != nil {
		return nil, err
	}

	user.IsVerified = true
	user.VerifyCode = ""
	user.VerifyExpires = nil
	return &user, nil
}

// IssueResetCode creates a password-reset code valid for 15 minutes.
func (s *IdentityService) IssueResetCode(email string) (*models.User, string, error) {
	var user models.User
	if err := s.db.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		return nil, "", ErrUserNotFound
	}

	code := utils.GenerateRandomCode(6)
	expires := time.Now().Add(15 * time.Minute)

	err := s.db.Model(&user).Updates(map[string]interface{}{
		"reset_code":    code,
		"reset_expires": expires,
	}).Error
	if err != nil {
		return nil, "", err
	}

	return &user, code, nil
}

// ResetPassword consumes a reset code and replaces the password hash.
// A pure OAuth account that sets a password this way becomes "both".
func (s *IdentityService) ResetPassword(email, code, newPassword string) error {
	var user models.User
	if err := s.db.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		return ErrUserNotFound
	}

	if user.ResetCode == "" || user.ResetCode != code {
		return ErrInvalidCode
	}
	if user.ResetExpires == nil || time.Now().After(*user.ResetExpires) {
		return ErrInvalidCode
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"password":      hash,
		"reset_code":    "",
		"reset_expires": nil,
	}
	if user.AuthProvider == models.ProviderGoogle {
		updates["auth_provider"] = models.ProviderBoth
	}

	return s.db.Model(&user).Updates(updates).Error
}
