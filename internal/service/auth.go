package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"aurejet/internal/domain"
)

const (
	// DefaultGuestTokenTTL is how long a guest token stays valid.
	DefaultGuestTokenTTL = 24 * time.Hour

	tokenIssuer = "aurejet"
)

// GuestClaims are the claims carried by a guest token.
type GuestClaims struct {
	Method domain.SignInMethod `json:"method"`
	jwt.RegisteredClaims
}

// AuthService is the auth gateway stub. Every sign-in succeeds as a new guest.
type AuthService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = DefaultGuestTokenTTL
	}
	return &AuthService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// SignInResult is returned by SignIn.
type SignInResult struct {
	GuestID    string
	Token      string
	ExpiresAt  time.Time
	NextScreen domain.Screen
}

// ParseSignInMethod maps the wire value onto a SignInMethod.
func ParseSignInMethod(raw string) (domain.SignInMethod, error) {
	switch raw {
	case "email":
		return domain.SignInMethodEmail, nil
	case "phone_otp":
		return domain.SignInMethodPhoneOTP, nil
	case "social":
		return domain.SignInMethodSocial, nil
	default:
		return "", ErrInvalidSignInMethod
	}
}

// SignIn issues a signed guest token. No credential is checked.
func (s *AuthService) SignIn(method domain.SignInMethod) (*SignInResult, error) {
	switch method {
	case domain.SignInMethodEmail, domain.SignInMethodPhoneOTP, domain.SignInMethodSocial:
	default:
		return nil, ErrInvalidSignInMethod
	}

	now := s.now()
	guestID := "guest_" + uuid.New().String()
	expiresAt := now.Add(s.ttl)

	claims := GuestClaims{
		Method: method,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   guestID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign guest token: %w", err)
	}

	return &SignInResult{
		GuestID:    guestID,
		Token:      token,
		ExpiresAt:  expiresAt,
		NextScreen: domain.ScreenHomeFeed,
	}, nil
}

// VerifyToken validates a guest token and returns its guest ID.
func (s *AuthService) VerifyToken(tokenString string) (string, error) {
	claims := &GuestClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
