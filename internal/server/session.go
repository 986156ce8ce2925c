package server

import (
	"crypto/rand"
	"encoding/binary"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const participantKey = "participant"

// newSeed returns the random seed a new game is replayed from.
func newSeed() uint64 {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return binary.LittleEndian.Uint64(b[:])
}

// bearerToken extracts the identity token from the Authorization header,
// falling back to the token query parameter.
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if t, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(t)
		}
	}
	return c.Query("token")
}

// requireIdentity rejects requests without a valid participant token and
// stores the participant id in the context.
func (s *Server) requireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		pid, err := s.issuer.Parse(bearerToken(c))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
			return
		}
		c.Set(participantKey, pid)
		c.Next()
	}
}
