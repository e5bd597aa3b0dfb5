package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"

	"github.com/leegyeongyoon/honbabnono-sub007/internal/common"
)

const actorKey = "actor_id"

// DevUserHeader lets local clients act as any user without a token.
// Only honoured when allowDevHeader is set (AUTH_ALLOW_DEV_HEADER=true).
const DevUserHeader = "X-User-ID"

// Identity resolves the caller from an HS256 bearer token whose subject is
// the user id. Requests without a valid identity get 401.
func Identity(secret []byte, allowDevHeader bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if allowDevHeader {
			if id := strings.TrimSpace(c.GetHeader(DevUserHeader)); id != "" {
				c.Set(actorKey, id)
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": common.ErrUnauthorized.Error()})
			return
		}

		subject, err := ParseSubject(strings.TrimPrefix(authHeader, "Bearer "), secret)
		if err != nil {
			log.WithError(err).Debug("Rejected bearer token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": common.ErrUnauthorized.Error()})
			return
		}

		c.Set(actorKey, subject)
		c.Next()
	}
}

// ParseSubject validates an HS256 token and returns its subject.
func ParseSubject(tokenString string, secret []byte) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", common.ErrUnauthorized
	}
	return claims.Subject, nil
}

// ActorID returns the authenticated caller, if any.
func ActorID(c *gin.Context) (string, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
