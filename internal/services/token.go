package services

import (
	"errors"
	"fmt"
	"time"

	"inkwell/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the minimum signing secret length. 32 bytes is the
// floor for HMAC-SHA256 keys.
const MinSecretLength = 32

// JWT claim keys.
const (
	claimUserID = "user_id"
	claimRole   = "role"
)

var (
	// ErrTokenExpired is returned when the credential is past its expiry claim.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenSignature is returned when the signature does not verify.
	ErrTokenSignature = errors.New("invalid token signature")
	// ErrTokenMalformed is returned when the credential cannot be parsed.
	ErrTokenMalformed = errors.New("malformed token")
	// ErrSecretTooShort is returned by NewTokenService for weak secrets.
	ErrSecretTooShort = errors.New("signing secret too short")
)

// TokenClaims is the verified identity carried by a session credential.
type TokenClaims struct {
	UserID uint
	Role   string
}

// TokenService issues and verifies stateless signed session credentials.
// There is no server-side record of issued tokens: expiry is the only
// termination mechanism, and rotating the secret invalidates everything.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret []byte, ttl time.Duration) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	return &TokenService{secret: secret, ttl: ttl}, nil
}

// Issue mints a credential for the user and returns it with its expiry.
func (s *TokenService) Issue(user *models.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.ttl)

	claims := jwt.MapClaims{
		claimUserID: user.ID,
		claimRole:   user.Role,
		"iat":       now.Unix(),
		"exp":       expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify parses and checks a credential. The three failure classes are
// distinguishable so the gate can log precisely, but callers translate
// all of them into the same 401 for the client.
func (s *TokenService) Verify(tokenString string) (*TokenClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))

	parsed, err := parser.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignature
		default:
			return nil, fmt.Errorf("%w: %w", ErrTokenMalformed, err)
		}
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenMalformed
	}

	// JSON numbers decode as float64
	id, ok := claims[claimUserID].(float64)
	if !ok || id <= 0 {
		return nil, ErrTokenMalformed
	}
	role, _ := claims[claimRole].(string)

	return &TokenClaims{UserID: uint(id), Role: role}, nil
}
