package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	lifecycledomain "github.com/smallbiznis/worksuite/internal/lifecycle/domain"
)

type transitionRequest struct {
	ToState string `json:"to_state" binding:"required"`
}

func (s *Server) createEntity(c *gin.Context) {
	entityType, ok := parseEntityType(c.Param("type"))
	if !ok {
		AbortWithError(c, lifecycledomain.ErrUnknownEntityType)
		return
	}

	record, err := s.lifecycleSvc.CreateEntity(c.Request.Context(), entityType)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (s *Server) getEntity(c *gin.Context) {
	entityType, ok := parseEntityType(c.Param("type"))
	if !ok {
		AbortWithError(c, lifecycledomain.ErrUnknownEntityType)
		return
	}
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	record, err := s.lifecycleSvc.GetEntity(c.Request.Context(), entityType, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) transitionEntity(c *gin.Context) {
	entityType, ok := parseEntityType(c.Param("type"))
	if !ok {
		AbortWithError(c, lifecycledomain.ErrUnknownEntityType)
		return
	}
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	to := lifecycledomain.State(strings.ToUpper(strings.TrimSpace(req.ToState)))

	record, err := s.lifecycleSvc.TransitionEntity(c.Request.Context(), entityType, id, to)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func parseEntityType(raw string) (lifecycledomain.EntityType, bool) {
	candidate := lifecycledomain.EntityType(strings.ToUpper(strings.TrimSpace(raw)))
	for _, entityType := range lifecycledomain.AllEntityTypes() {
		if entityType == candidate {
			return entityType, true
		}
	}
	return "", false
}
