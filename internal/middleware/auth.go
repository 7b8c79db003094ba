package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"cryptosim/internal/usecase"
)

const (
	// TokenCookie is the cookie the web client keeps the session token in
	TokenCookie = "token"

	sessionKey = "session"
	tokenTTL   = 24 * time.Hour
)

// JWTClaims represents the JWT token claims
type JWTClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager issues and checks session tokens
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTManager creates a JWTManager signing with secret
func NewJWTManager(secret string) *JWTManager {
	return &JWTManager{secret: []byte(secret), ttl: tokenTTL, now: time.Now}
}

// GenerateToken signs a token for session and returns it with its expiry
func (m *JWTManager) GenerateToken(session usecase.Session) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.ttl)
	claims := &JWTClaims{
		Username: session.Username,
		Role:     string(session.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.Username,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

// ParseToken validates tokenString and returns the session it carries
func (m *JWTManager) ParseToken(tokenString string) (usecase.Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return usecase.Session{}, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid || claims.Username == "" {
		return usecase.Session{}, fmt.Errorf("invalid token claims")
	}
	return usecase.Session{Username: claims.Username, Role: usecase.Role(claims.Role)}, nil
}

// AuthMiddleware validates the session token and stores the session in
// the echo context
func (m *JWTManager) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			cookie, err := c.Cookie(TokenCookie)
			if err != nil || cookie.Value == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authentication token")
			}
			authHeader = "Bearer " + cookie.Value
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
		}

		session, err := m.ParseToken(parts[1])
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}

		c.Set(sessionKey, session)
		return next(c)
	}
}

// AdminMiddleware checks if the authenticated user has the admin role
func AdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		session, err := GetSession(c)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Session not found in context")
		}
		if !session.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
		}
		return next(c)
	}
}

// GetSession extracts the session from echo context
func GetSession(c echo.Context) (usecase.Session, error) {
	session, ok := c.Get(sessionKey).(usecase.Session)
	if !ok {
		return usecase.Session{}, fmt.Errorf("session not found in context")
	}
	return session, nil
}
