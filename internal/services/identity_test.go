package services

import (
	"errors"
	"testing"
	"time"

	"inkwell/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.AutoMigrate(&models.User{}, &models.Blog{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return database
}

func TestCreateLocalUserAndVerifyPassword(t *testing.T) {
	svc := NewIdentityService(newTestDB(t))

	user, err := svc.CreateLocalUser("Alice", "Alice@Example.com", "secret123")
	if err != nil {
		t.Fatalf("CreateLocalUser() error = %v", err)
	}

	if user.Email != "alice@example.com" {
		t.Errorf("email not lowercased: %q", user.Email)
	}
	if user.Password == "secret123" || user.Password == "" {
		t.Error("plaintext password must not be stored")
	}
	if user.AuthProvider != models.ProviderManual {
		t.Errorf("expected provider manual, got %q", user.AuthProvider)
	}

	if !svc.VerifyPassword(user, "secret123") {
		t.Error("correct password rejected")
	}
	if svc.VerifyPassword(user, "secret124") {
		t.Error("wrong password accepted")
	}
}

func TestDuplicateEmail(t *testing.T) {
	svc := NewIdentityService(newTestDB(t))

	if _, err := svc.CreateLocalUser("Alice", "a@x.com", "secret123"); err != nil {
		t.Fatalf("CreateLocalUser() error = %v", err)
	}

	// Same address, different case
	_, err := svc.CreateLocalUser("Mallory", "A@X.com", "other456")
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestVerifyPasswordFailsClosedForOAuthAccounts(t *testing.T) {
	svc := NewIdentityService(newTestDB(t))

	user, err := svc.CreateOrLinkOAuthUser(OAuthProfile{
		SubjectID: "g-1", Email: "o@x.com", Name: "Oauth Only",
	})
	if err != nil {
		t.Fatalf("CreateOrLinkOAuthUser() error = %v", err)
	}

	if svc.VerifyPassword(user, "") || svc.VerifyPassword(user, "anything") {
		t.Error("passwordless account must never verify a password")
	}

	if _, err := svc.Authenticate("o@x.com", "anything"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestOAuthNewUser(t *testing.T) {
	svc := NewIdentityService(newTestDB(t))

	user, err := svc.CreateOrLinkOAuthUser(OAuthProfile{
		SubjectID: "g-123", Email: "new@x.com", Name: "New User", Avatar: "http://img/a.png",
	})
	if err != nil {
		t.Fatalf("CreateOrLinkOAuthUser() error = %v", err)
	}

	if user.AuthProvider != models.ProviderGoogle {
		t.Errorf("expected provider google, got %q", user.AuthProvider)
	}
	if !user.IsVerified {
		t.Error("OAuth users are verified automatically")
	}
	if user.HasPassword() {
		t.Error("OAuth-only account must not have a password hash")
	}
	if user.LoginCount != 1 || user.LastLogin == nil {
		t.Errorf("login bookkeeping not recorded: count=%d", user.LoginCount)
	}
}

func TestOAuthRepeatLoginIsIdempotent(t *testing.T) {
	svc := NewIdentityService(newTestDB(t))

	profile := OAuthProfile{SubjectID: "g-123", Email: "r@x.com", Name: "Repeat"}

	first, err := svc.CreateOrLinkOAuthUser(profile)
	if err != nil {
		t.Fatalf("CreateOrLinkOAuthUser() error = %v", err)
	}
	second, err := svc.CreateOrLinkOAuthUser(profile)
	if err != nil {
		t.Fatalf("CreateOrLinkOAuthUser() error = %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("repeated OAuth login created a second account: %d != %d", first.ID, second.ID)
	}
	if second.LoginCount != 2 {
		t.Errorf("expected login count 2, got %d", second.LoginCount)
	}

	var count int64
	svc.db.Model(&models.User{}).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly 1 user record, got %d", count)
	}
}

func TestOAuthLinksExistingLocalAccount(t *testing.T) {
	svc := NewIdentityService(newTestDB(t))

	local, err := svc.CreateLocalUser("Alice", "a@x.com", "pw1")
	if err != nil {
		t.Fatalf("CreateLocalUser() error = %v", err)
	}

	linked, err := svc.CreateOrLinkOAuthUser(OAuthProfile{
		SubjectID: "g-123", Email: "a@x.com", Name: "Alice G", Avatar: "http://img/a.png",
	})
	if err != nil {
		t.Fatalf("CreateOrLinkOAuthUser() error = %v", err)
	}

	if linked.ID != local.ID {
		t.Fatalf("linking created a second account: %d != %d", linked.ID, local.ID)
	}
	if linked.AuthProvider != models.ProviderBoth {
		t.Errorf("expected provider both, got %q", linked.AuthProvider)
	}
	if linked.GoogleID != "g-123" {
		t.Errorf("expected google id g-123, got %q", linked.GoogleID)
	}
	if !linked.IsVerified {
		t.Error("linking must mark the account verified")
	}

	// Original password hash stays intact
	if !svc.VerifyPassword(linked, "pw1") {
		t.Error("password login broken after OAuth link")
	}

	// Subject id takes precedence over email from now on
	again, err := svc.CreateOrLinkOAuthUser(OAuthProfile{
		SubjectID: "g-123", Email: "a@x.com", Name: "Alice G",
	})
	if err != nil {
		t.Fatalf("CreateOrLinkOAuthUser() error = %v", err)
	}
	if again.ID != local.ID {
		t.Error("repeat login after link resolved to a different account")
	}

	var count int64
	svc.db.Model(&models.User{}).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly 1 user record, got %d", count)
	}
}

func TestAuthenticate(t *testing.T) {
	svc := NewIdentityService(newTestDB(t))

	if _, err := svc.CreateLocalUser("Alice", "a@x.com", "pw1"); err != nil {
		t.Fatalf("CreateLocalUser() error = %v", err)
	}

	user, err := svc.Authenticate("a@x.com", "pw1")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if user.LoginCount != 1 || user.LastLogin == nil {
		t.Errorf("login not recorded: count=%d", user.LoginCount)
	}

	if _, err := svc.Authenticate("a@x.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate("nobody@x.com", "pw1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}

	svc.db.Model(&models.User{}).Where("email = ?", "a@x.com").Update("is_active", false)
	if _, err := svc.Authenticate("a@x.com", "pw1"); !errors.Is(err, ErrAccountDisabled) {
		t.Errorf("deactivated account: expected ErrAccountDisabled, got %v", err)
	}
}

func TestEmailVerificationFlow(t *testing.T) {
	svc := NewIdentityService(newTestDB(t))

	user, err := svc.CreateLocalUser("Alice", "a@x.com", "pw1")
	if err != nil {
		t.Fatalf("CreateLocalUser() error = %v", err)
	}
	if user.IsVerified {
		t.Fatal("manual signup must start unverified")
	}

	code, err := svc.IssueVerifyCode(user)
	if err != nil {
		t.Fatalf("IssueVerifyCode() error = %v", err)
	}

	if _, err := svc.VerifyEmail("a@x.com", "000000"); !errors.Is(err, ErrInvalidCode) {
		t.Errorf("wrong code: expected ErrInvalidCode, got %v", err)
	}

	verified, err := svc.VerifyEmail("a@x.com", code)
	if err != nil {
		t.Fatalf("VerifyEmail() error = %v", err)
	}
	if !verified.IsVerified {
		t.Error("account not marked verified")
	}

	// Consuming again is a no-op success
	if _, err := svc.VerifyEmail("a@x.com", code); err != nil {
		t.Errorf("re-verify should succeed quietly, got %v", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	svc := NewIdentityService(newTestDB(t))

	if _, err := svc.CreateLocalUser("Alice", "a@x.com", "old-pass"); err != nil {
		t.Fatalf("CreateLocalUser() error = %v", err)
	}

	_, code, err := svc.IssueResetCode("a@x.com")
	if err != nil {
		t.Fatalf("IssueResetCode() error = %v", err)
	}

	if err := svc.ResetPassword("a@x.com", "999999", "new-pass"); !errors.Is(err, ErrInvalidCode) {
		t.Errorf("wrong code: expected ErrInvalidCode, got %v", err)
	}

	if err := svc.ResetPassword("a@x.com", code, "new-pass"); err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}

	if _, err := svc.Authenticate("a@x.com", "old-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Error("old password still accepted after reset")
	}
	if _, err := svc.Authenticate("a@x.com", "new-pass"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}

	// A used code cannot be replayed
	if err := svc.ResetPassword("a@x.com", code, "evil-pass"); !errors.Is(err, ErrInvalidCode) {
		t.Errorf("replayed code: expected ErrInvalidCode, got %v", err)
	}
}

func TestExpiredCodesRejected(t *testing.T) {
	svc := NewIdentityService(newTestDB(t))

	user, err := svc.CreateLocalUser("Alice", "a@x.com", "pw1")
	if err != nil {
		t.Fatalf("CreateLocalUser() error = %v", err)
	}

	code, err := svc.IssueVerifyCode(user)
	if err != nil {
		t.Fatalf("IssueVerifyCode() error = %v", err)
	}

	past := time.Now().Add(-time.Minute)
	svc.db.Model(user).Update("verify_expires", past)

	if _, err := svc.VerifyEmail("a@x.com", code); !errors.Is(err, ErrInvalidCode) {
		t.Errorf("expired code: expected ErrInvalidCode, got %v", err)
	}
}
