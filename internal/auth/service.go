package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/frahmantamala/workforce-portal/internal"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "workforce-portal"

// TokenService signs and verifies HS256 access tokens carrying an Actor.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue mints an access token for actor.
func (s *TokenService) Issue(actor Actor) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: actor.ID,
		Role:   string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(actor.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

// Verify validates tokenString and returns the actor it was issued for.
func (s *TokenService) Verify(tokenString string) (Actor, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Actor{}, internal.ErrTokenExpired
		}
		return Actor{}, internal.ErrInvalidToken.WithCause(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return Actor{}, internal.ErrInvalidToken
	}
	role, ok := ParseRole(claims.Role)
	if !ok {
		return Actor{}, internal.ErrInvalidToken
	}
	return Actor{ID: claims.UserID, Role: role}, nil
}
