// Package auth provides bearer-token issuance and verification, the HTTP middleware
// guarding the private endpoints, and password hashing helpers.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/brainly/internal/logger"
	"github.com/patric-chuzhbe/brainly/internal/models"
)

const bearerPrefix = "Bearer "

var (
	// ErrUnauthenticated is returned when the Authorization value is absent or malformed.
	ErrUnauthenticated = errors.New("user not authenticated")

	// ErrInvalidToken is returned when a token fails signature, algorithm or expiry checks.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Auth issues and verifies the signed, time-limited tokens.
type Auth struct {
	// secretKey is the key used to sign JWTs.
	secretKey []byte

	// tokenTTL is the lifetime of an issued token.
	tokenTTL time.Duration

	// requireBearerPrefix rejects bare tokens in the Authorization header.
	requireBearerPrefix bool

	now func() time.Time
}

// Claims represents the JWT claims used by the system.
// The user identifier is the only application claim.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// ContextKey is a custom type for storing values in context to avoid collisions.
type ContextKey string

// UserIDKey is the context key used to store and retrieve the authenticated user's ID.
const UserIDKey ContextKey = "userID"

// Option configures an Auth.
type Option func(*Auth)

// WithRequireBearerPrefix toggles strict `Bearer <token>` parsing.
func WithRequireBearerPrefix(require bool) Option {
	return func(a *Auth) {
		a.requireBearerPrefix = require
	}
}

// WithClock overrides the time source used when issuing tokens.
func WithClock(now func() time.Time) Option {
	return func(a *Auth) {
		a.now = now
	}
}

// New creates an Auth with the given signing secret and token lifetime.
func New(secretKey []byte, tokenTTL time.Duration, options ...Option) *Auth {
	a := &Auth{
		secretKey: secretKey,
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
	for _, option := range options {
		option(a)
	}

	return a
}

// BuildJWTString issues a token carrying the user ID and an expiry of now + TTL.
func (a *Auth) BuildJWTString(userID string) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(a.now().Add(a.tokenTTL)),
		},
		UserID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(a.secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetUserIDFromToken verifies the token and returns the embedded user ID.
func (a *Auth) GetUserIDFromToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.secretKey, nil
		},
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" || claims.ExpiresAt == nil {
		return "", ErrInvalidToken
	}

	return claims.UserID, nil
}

// ExtractToken pulls the token out of an Authorization header value.
// A bare token is tolerated unless the Bearer prefix is required.
func (a *Auth) ExtractToken(authorizationHeader string) (string, error) {
	header := strings.TrimSpace(authorizationHeader)
	if header == "" || header == strings.TrimSpace(bearerPrefix) {
		return "", ErrUnauthenticated
	}

	token, hasPrefix := strings.CutPrefix(header, bearerPrefix)
	if !hasPrefix && a.requireBearerPrefix {
		return "", ErrUnauthenticated
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrUnauthenticated
	}

	return token, nil
}

// VerifyAuthorization runs ExtractToken and GetUserIDFromToken on a header value.
func (a *Auth) VerifyAuthorization(authorizationHeader string) (string, error) {
	tokenString, err := a.ExtractToken(authorizationHeader)
	if err != nil {
		return "", err
	}

	return a.GetUserIDFromToken(tokenString)
}

// AuthenticateUser is an HTTP middleware that rejects requests without a valid
// bearer token and otherwise exposes the user ID through the request context.
func (a *Auth) AuthenticateUser(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		userID, err := a.VerifyAuthorization(request.Header.Get("Authorization"))
		if err != nil {
			logger.Log.Debugln("Error calling the `a.VerifyAuthorization()`: ", zap.Error(err))
			writeUnauthorized(response, err)
			return
		}

		ctx := context.WithValue(request.Context(), UserIDKey, userID)
		h.ServeHTTP(response, request.WithContext(ctx))
	}

	return http.HandlerFunc(middleware)
}

// UserIDFromContext returns the user ID stored by AuthenticateUser.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

func writeUnauthorized(response http.ResponseWriter, err error) {
	message := "Invalid or expired token"
	if errors.Is(err, ErrUnauthenticated) {
		message = "User not authenticated"
	}

	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(response).Encode(models.MessageResponse{Message: message}); err != nil {
		logger.Log.Debugln("Error calling the `json.NewEncoder().Encode()`: ", zap.Error(err))
	}
}
