package participation

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leegyeongyoon/honbabnono-sub007/internal/server/middleware"
)

// Handler serves /meetups/:id/participants routes.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/meetups/:id/participants", h.Join)
	rg.GET("/meetups/:id/participants", h.List)
	rg.POST("/meetups/:id/participants/:userId/decision", h.Decide)
	rg.DELETE("/meetups/:id/participants/me", h.Cancel)
}

func (h *Handler) Join(c *gin.Context) {
	actorID, ok := middleware.MustActor(c)
	if !ok {
		return
	}
	p, err := h.service.Join(c.Request.Context(), c.Param("id"), actorID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	if list == nil {
		list = []*Participation{}
	}
	c.JSON(http.StatusOK, gin.H{"participants": list})
}

type decisionRequest struct {
	Approve *bool `json:"approve"`
}

func (h *Handler) Decide(c *gin.Context) {
	actorID, ok := middleware.MustActor(c)
	if !ok {
		return
	}

	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondBadRequest(c, err)
		return
	}
	if req.Approve == nil {
		middleware.RespondBadRequest(c, errors.New("approve is required"))
		return
	}

	p, err := h.service.Decide(c.Request.Context(), c.Param("id"), c.Param("userId"), actorID, *req.Approve)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) Cancel(c *gin.Context) {
	actorID, ok := middleware.MustActor(c)
	if !ok {
		return
	}
	p, err := h.service.CancelParticipation(c.Request.Context(), c.Param("id"), actorID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
