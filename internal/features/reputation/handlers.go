package reputation

import (
	"net/http"

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
	rg.GET("/users/:id/reputation", h.Get)
}

func (h *Handler) Get(c *gin.Context) {
	score, err := h.service.Score(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, score)
}
