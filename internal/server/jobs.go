package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// runOverdueSweep is the external scheduler trigger. It is authenticated by
// a shared bearer token and responds with the sweep summary.
func (s *Server) runOverdueSweep(c *gin.Context) {
	if s.scheduler == nil {
		AbortWithError(c, ErrInternal)
		return
	}
	if !s.authorizeSweep(c.GetHeader("Authorization")) {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	summary, err := s.scheduler.OverdueSweepJob(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) authorizeSweep(header string) bool {
	token := strings.TrimSpace(s.cfg.SweepToken)
	if token == "" {
		return false
	}
	presented := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(presented)) == 1
}
