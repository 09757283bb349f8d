// Package auth issues and verifies the signed tokens behind the portal's
// passwordless sign-in: short-lived login tokens delivered by e-mail, and the
// session tokens handed out when one is redeemed.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/newsportal/news-backend/models"
	"github.com/newsportal/news-backend/util"
)

// Token lifetimes. Login tokens are only alive long enough to click the
// e-mailed link.
const (
	loginTokenTTL   = 15 * time.Minute
	sessionTokenTTL = 24 * time.Hour
)

// Token purposes. A login token must never pass as a session.
const (
	purposeLogin   = "login"
	purposeSession = "session"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the resolved caller of an authenticated request.
type Identity struct {
	UserID string
	Email  string
}

// Service signs and verifies tokens with a shared HMAC secret.
type Service struct {
	secret []byte
}

// NewService creates an auth Service around a signing secret.
func NewService(secret string) *Service {
	return &Service{secret: []byte(secret)}
}

// MakeServiceFromEnv initializes the Service from the JWT_SECRET environment
// variable.
func MakeServiceFromEnv() (*Service, error) {
	varErrs := util.Errors{}
	secret := util.RequireEnv("JWT_SECRET", &varErrs)
	if len(varErrs) > 0 {
		return nil, varErrs
	}
	return NewService(secret), nil
}

// IssueLoginToken creates the short-lived token embedded in a magic sign-in
// link for an e-mail address.
func (s *Service) IssueLoginToken(email string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email":   email,
		"purpose": purposeLogin,
		"exp":     time.Now().Add(loginTokenTTL).Unix(),
	})
	return token.SignedString(s.secret)
}

// VerifyLoginToken validates a magic-link token and returns the e-mail
// address it was issued for.
func (s *Service) VerifyLoginToken(tokenString string) (string, error) {
	claims, err := s.parse(tokenString, purposeLogin)
	if err != nil {
		return "", err
	}
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", ErrInvalidToken
	}
	return email, nil
}

// IssueSession creates a session token for a signed-in user.
func (s *Service) IssueSession(user models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     user.ID,
		"email":   user.Email,
		"purpose": purposeSession,
		"exp":     time.Now().Add(sessionTokenTTL).Unix(),
	})
	return token.SignedString(s.secret)
}

// VerifySession validates a session token and returns the caller's identity.
func (s *Service) VerifySession(tokenString string) (Identity, error) {
	claims, err := s.parse(tokenString, purposeSession)
	if err != nil {
		return Identity{}, err
	}
	userID, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if userID == "" || email == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: userID, Email: email}, nil
}

func (s *Service) parse(tokenString string, purpose string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["purpose"] != purpose {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// BearerToken extracts the bearer token from a request's Authorization
// header. Returns the empty string when the header is absent or malformed.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
