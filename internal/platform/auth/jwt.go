package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"upiqr/internal/platform/config"
)

const Issuer = "upiqr"

var ErrMissingSecret = errors.New("jwt secret is not configured")

// Claims identify the merchant calling the management API.
type Claims struct {
	MerchantID string   `json:"mid"`
	Scopes     []string `json:"scp,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) HasScope(scope string) bool {
	if len(c.Scopes) == 0 {
		return true
	}
	for _, s := range c.Scopes {
		if s == scope || s == "*" {
			return true
		}
	}
	return false
}

type TokenService struct {
	config config.JWTConfig
	now    func() time.Time
}

func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{config: cfg, now: time.Now}
}

func (s *TokenService) GenerateAccessToken(merchantID string, scopes []string) (string, error) {
	if s.config.Secret == "" {
		return "", ErrMissingSecret
	}

	now := s.now()
	claims := Claims{
		MerchantID: merchantID,
		Scopes:     scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   merchantID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}

func (s *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	if s.config.Secret == "" {
		return nil, ErrMissingSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithIssuer(Issuer))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
