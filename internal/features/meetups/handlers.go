// Package meetups: handlers.go exposes the lifecycle over HTTP.
package meetups

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leegyeongyoon/honbabnono-sub007/internal/server/middleware"
)

// Handler serves /meetups routes.
type Handler struct {
	service *Service
}

// NewHandler creates the meetup handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the routes on an authenticated group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/meetups", h.Create)
	rg.GET("/meetups/:id", h.Get)
	rg.POST("/meetups/:id/confirm", h.Confirm)
	rg.POST("/meetups/:id/cancel", h.Cancel)
	rg.POST("/meetups/:id/leave", h.HostLeave)
}

func (h *Handler) Create(c *gin.Context) {
	actorID, ok := middleware.MustActor(c)
	if !ok {
		return
	}

	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		middleware.RespondBadRequest(c, err)
		return
	}
	in.HostID = actorID

	m, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) Get(c *gin.Context) {
	m, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) Confirm(c *gin.Context) {
	actorID, ok := middleware.MustActor(c)
	if !ok {
		return
	}
	m, err := h.service.Confirm(c.Request.Context(), c.Param("id"), actorID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) Cancel(c *gin.Context) {
	actorID, ok := middleware.MustActor(c)
	if !ok {
		return
	}
	m, err := h.service.Cancel(c.Request.Context(), c.Param("id"), actorID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// HostLeave is the host's "leave" button; it cancels the meetup.
func (h *Handler) HostLeave(c *gin.Context) {
	actorID, ok := middleware.MustActor(c)
	if !ok {
		return
	}
	m, err := h.service.HostLeaves(c.Request.Context(), c.Param("id"), actorID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}
