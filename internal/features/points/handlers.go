package points

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leegyeongyoon/honbabnono-sub007/internal/server/middleware"
)

// Handler serves the caller's own points.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/users/me/points", h.Mine)
}

// Mine returns the balance, the latest entries and a text statement.
func (h *Handler) Mine(c *gin.Context) {
	actorID, ok := middleware.MustActor(c)
	if !ok {
		return
	}

	account, err := h.service.Account(c.Request.Context(), actorID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	txs, err := h.service.History(c.Request.Context(), actorID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	if txs == nil {
		txs = []*Transaction{}
	}

	c.JSON(http.StatusOK, gin.H{
		"account":      account,
		"transactions": txs,
		"statement":    h.service.Statement(txs),
	})
}
