package web

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/CyberBoyAyush/TuduAI-sub001/internal/auth"
	"github.com/CyberBoyAyush/TuduAI-sub001/internal/storage"
)

const userKey = "user"

// requireAuth resolves the bearer token to a user or aborts with 401
func (s *Server) requireAuth(c *gin.Context) {
	token := bearerToken(c.GetHeader("Authorization"))
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "authentication required",
		})
		return
	}

	user, err := s.auth.Authenticate(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "invalid or expired session",
		})
		return
	}

	c.Set(userKey, user)
	c.Next()
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// currentUser returns the user set by requireAuth
func currentUser(c *gin.Context) *storage.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*storage.User)
	return user
}

// fail logs a service error and surfaces it to the client with a status
// derived from the error kind
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, storage.ErrDuplicateEmail):
		status = http.StatusConflict
	case errors.Is(err, storage.ErrDefaultWorkspace):
		status = http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	}

	log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}
