package reviews

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/leegyeongyoon/honbabnono-sub007/internal/server/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/meetups/:id/reviews", h.SubmitMeetupReview)
	rg.GET("/meetups/:id/reviews", h.List)
	rg.POST("/meetups/:id/peer-reviews", h.SubmitPeerReview)
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *Handler) SubmitMeetupReview(c *gin.Context) {
	actorID, ok := middleware.MustActor(c)
	if !ok {
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondBadRequest(c, err)
		return
	}

	r, err := h.service.SubmitMeetupReview(c.Request.Context(), c.Param("id"), actorID, req.Rating, req.Comment, time.Now())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *Handler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	if list == nil {
		list = []*Review{}
	}
	c.JSON(http.StatusOK, gin.H{"reviews": list})
}

type peerReviewRequest struct {
	RevieweeID string `json:"reviewee_id" binding:"required"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
}

func (h *Handler) SubmitPeerReview(c *gin.Context) {
	actorID, ok := middleware.MustActor(c)
	if !ok {
		return
	}

	var req peerReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondBadRequest(c, err)
		return
	}

	r, score, err := h.service.SubmitPeerReview(c.Request.Context(), c.Param("id"), actorID, req.RevieweeID, req.Rating, req.Comment)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"review": r, "reviewee_reputation": score})
}
