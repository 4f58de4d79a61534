package token

import (
	"time"

	"github.com/dgrijalva/jwt-go"

	"chat-api/internal/models"
	"chat-api/internal/pkg/apperr"
)

const (
	Issuer   = "chat-app-api"
	Audience = "chat-app-client"

	accessTTL  = 24 * time.Hour
	refreshTTL = 30 * 24 * time.Hour
)

// AccessClaims bind the public user identity into the access token so
// handlers never need a user lookup just to know who is calling.
type AccessClaims struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Pic    string `json:"pic"`
	jwt.StandardClaims
}

type RefreshClaims struct {
	UserID uint `json:"user_id"`
	jwt.StandardClaims
}

// Service issues and verifies bearer tokens. Access and refresh tokens are
// signed with separate keys so a leaked access key cannot mint long-lived
// credentials.
type Service struct {
	accessKey  []byte
	refreshKey []byte
}

func NewService(accessKey, refreshKey string) *Service {
	return &Service{
		accessKey:  []byte(accessKey),
		refreshKey: []byte(refreshKey),
	}
}

func (s *Service) standardClaims(ttl time.Duration) jwt.StandardClaims {
	now := time.Now()
	return jwt.StandardClaims{
		Issuer:    Issuer,
		Audience:  Audience,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}
}

func (s *Service) AccessToken(user models.User) (string, error) {
	claims := AccessClaims{
		UserID:         user.ID,
		Name:           user.Name,
		Email:          user.Email,
		Pic:            user.Pic,
		StandardClaims: s.standardClaims(accessTTL),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.accessKey)
}

func (s *Service) RefreshToken(userID uint) (string, error) {
	claims := RefreshClaims{
		UserID:         userID,
		StandardClaims: s.standardClaims(refreshTTL),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.refreshKey)
}

// VerifyAccess validates signature, expiry, issuer and audience, and returns
// the embedded identity.
func (s *Service) VerifyAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.parse(tokenString, claims, s.accessKey); err != nil {
		return nil, err
	}
	if !claims.VerifyIssuer(Issuer, true) || !claims.VerifyAudience(Audience, true) {
		return nil, apperr.Unauthorized("invalid or expired token")
	}
	return claims, nil
}

func (s *Service) VerifyRefresh(tokenString string) (uint, error) {
	claims := &RefreshClaims{}
	if err := s.parse(tokenString, claims, s.refreshKey); err != nil {
		return 0, err
	}
	if !claims.VerifyIssuer(Issuer, true) || !claims.VerifyAudience(Audience, true) {
		return 0, apperr.Unauthorized("invalid or expired refresh token")
	}
	return claims.UserID, nil
}

func (s *Service) parse(tokenString string, claims jwt.Claims, key []byte) error {
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.Unauthorized("unexpected signing method")
		}
		return key, nil
	})
	if err != nil || !parsed.Valid {
		return apperr.Unauthorized("invalid or expired token")
	}
	return nil
}
