package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/leegyeongyoon/honbabnono-sub007/internal/common"
)

// RespondError writes err as {"error": "..."} with the mapped status.
// Internal errors are logged and hidden from the client.
func RespondError(c *gin.Context, err error) {
	status := common.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("path", c.FullPath()).Error("Unhandled error")
		c.AbortWithStatusJSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// RespondBadRequest reports a malformed request body or parameter.
func RespondBadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// MustActor returns the caller or writes 401 and returns false.
func MustActor(c *gin.Context) (string, bool) {
	id, ok := ActorID(c)
	if !ok {
		RespondError(c, common.ErrUnauthorized)
		return "", false
	}
	return id, true
}
