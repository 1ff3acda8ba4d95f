package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/middleware"
	"inkwell/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// OAuthHandler drives the Google authorization-code flow. Identity claims
// are only ever taken from Google's userinfo endpoint after the
// server-to-server token exchange, never from the client.
type OAuthHandler struct {
	oauth       *oauth2.Config
	clientURL   string
	userInfoURL string
	identity    *services.IdentityService
	tokens      *services.TokenService
}

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

func NewOAuthHandler(cfg *config.Config, identity *services.IdentityService, tokens *services.TokenService) *OAuthHandler {
	return &OAuthHandler{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.SiteURL + "/api/v1/auth/google/callback",
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		clientURL:   cfg.ClientURL,
		userInfoURL: googleUserInfoURL,
		identity:    identity,
		tokens:      tokens,
	}
}

// googleUserInfo is the verified profile from Google's userinfo endpoint.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func generateStateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// GoogleLogin starts the flow: random state into the session cookie, then
// redirect to Google's consent screen.
func (h *OAuthHandler) GoogleLogin(c *gin.Context) {
	state, err := generateStateToken()
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Failed to start authentication")
		return
	}

	session := sessions.Default(c)
	session.Set("oauth_state", state)
	session.Save()

	url := h.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback finishes the flow. Every provider-side failure takes the
// same exit: redirect to the SPA's login-failure page with no user record
// created or touched.
func (h *OAuthHandler) GoogleCallback(c *gin.Context) {
	session := sessions.Default(c)
	savedState := session.Get("oauth_state")
	session.Delete("oauth_state")
	session.Save()

	if savedState == nil || c.Query("state") != savedState.(string) {
		h.failLogin(c)
		return
	}

	code := c.Query("code")
	if code == "" {
		h.failLogin(c)
		return
	}

	token, err := h.oauth.Exchange(context.Background(), code)
	if err != nil {
		h.failLogin(c)
		return
	}

	info, err := h.fetchUserInfo(token.AccessToken)
	if err != nil {
		h.failLogin(c)
		return
	}

	if !info.VerifiedEmail {
		h.failLogin(c)
		return
	}

	user, err := h.identity.CreateOrLinkOAuthUser(services.OAuthProfile{
		SubjectID: info.ID,
		Email:     info.Email,
		Name:      info.Name,
		Avatar:    info.Picture,
	})
	if err != nil {
		if errors.Is(err, services.ErrAccountDisabled) {
			c.Redirect(http.StatusFound, h.clientURL+"/login?error=account_disabled")
			return
		}
		h.failLogin(c)
		return
	}

	credential, expiresAt, err := h.tokens.Issue(user)
	if err != nil {
		h.failLogin(c)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, credential, int(time.Until(expiresAt).Seconds()), "/", "", false, true)

	// Cookie set; no token in the URL
	c.Redirect(http.StatusFound, h.clientURL+"/auth/success")
}

func (h *OAuthHandler) failLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, h.clientURL+"/login?error=auth_failed")
}

func (h *OAuthHandler) fetchUserInfo(accessToken string) (*googleUserInfo, error) {
	resp, err := http.Get(h.userInfoURL + "?access_token=" + accessToken)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, err
	}

	return &info, nil
}
