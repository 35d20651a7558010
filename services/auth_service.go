package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the only role the API recognizes
const RoleAdmin = "admin"

// ErrInvalidToken is returned for any token that fails validation
var ErrInvalidToken = errors.New("invalid token")

// AdminAuthConfig configures admin token signing
type AdminAuthConfig struct {
	Secret string
	Expiry time.Duration
}

// AdminClaims identifies an operator allowed to run administrative operations
type AdminClaims struct {
	Actor string `json:"actor"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService issues and validates admin bearer tokens. End-user
// authentication is out of scope; only operators carry tokens.
type AuthService struct {
	jwtSecret   []byte
	tokenExpiry time.Duration
	now         func() time.Time
}

// NewAuthService creates a new admin auth service
func NewAuthService(cfg AdminAuthConfig) *AuthService {
	expiry := cfg.Expiry
	if expiry <= 0 {
		expiry = 12 * time.Hour
	}
	return &AuthService{
		jwtSecret:   []byte(cfg.Secret),
		tokenExpiry: expiry,
		now:         time.Now,
	}
}

// GenerateToken signs an admin token for actor
func (a *AuthService) GenerateToken(actor string) (string, error) {
	if actor == "" {
		return "", validationErrorf("actor is required")
	}
	now := a.now()
	claims := &AdminClaims{
		Actor: actor,
		Role:  RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor,
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

// ValidateToken parses the token and requires the admin role
func (a *AuthService) ValidateToken(tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.jwtSecret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Role != RoleAdmin || claims.Actor == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
