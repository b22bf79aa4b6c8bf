package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"counter_pos/internal/models"
	"counter_pos/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const sessionContextKey = "session"

// Claims is the payload of a counter session token.
type Claims struct {
	SessionID  string            `json:"sid"`
	Username   string            `json:"username"`
	Permission models.Permission `json:"permission"`
	jwt.RegisteredClaims
}

// GenerateToken signs a bearer token for s that expires after ttl.
func GenerateToken(secret []byte, s *services.Session, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := Claims{
		SessionID:  s.ID,
		Username:   s.User.Username,
		Permission: s.User.Permission,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.User.Username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseToken verifies an HS256 token and returns its claims.
func ParseToken(secret []byte, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// AuthMiddleware resolves the bearer token to a live session.
func AuthMiddleware(secret []byte, sessions services.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing bearer token"})
			return
		}

		claims, err := ParseToken(secret, strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		s, err := sessions.Get(c.Request.Context(), claims.SessionID)
		if err != nil {
			writeError(c, err)
			c.Abort()
			return
		}

		c.Set(sessionContextKey, s)
		c.Next()
	}
}

// AdminOnly rejects sessions without the Admin permission.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := currentSession(c).RequireAdmin(); err != nil {
			writeError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentSession(c *gin.Context) *services.Session {
	return c.MustGet(sessionContextKey).(*services.Session)
}
