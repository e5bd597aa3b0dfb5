package attendance

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/leegyeongyoon/honbabnono-sub007/internal/server/middleware"
)

// Handler serves check-in and penalty routes.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/meetups/:id/checkin-token", h.IssueToken)
	rg.POST("/meetups/:id/checkins/qr", h.CheckInQR)
	rg.POST("/meetups/:id/checkins/gps", h.CheckInGPS)
	rg.GET("/meetups/:id/checkins", h.List)
	rg.POST("/meetups/:id/penalties", h.Penalties)
}

// IssueToken returns the token as JSON, or as a PNG QR code with ?format=png.
func (h *Handler) IssueToken(c *gin.Context) {
	actorID, ok := middleware.MustActor(c)
	if !ok {
		return
	}

	t, err := h.service.GenerateCheckInToken(c.Request.Context(), c.Param("id"), actorID, time.Now())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	if c.Query("format") == "png" {
		png, err := RenderQR(t.Value)
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		c.Header("X-Token-Expires-At", t.ExpiresAt.Format(time.RFC3339))
		c.Data(http.StatusOK, "image/png", png)
		return
	}
	c.JSON(http.StatusOK, t)
}

type qrCheckInRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h *Handler) CheckInQR(c *gin.Context) {
	actorID, ok := middleware.MustActor(c)
	if !ok {
		return
	}

	var req qrCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondBadRequest(c, err)
		return
	}

	rec, err := h.service.CheckInWithToken(c.Request.Context(), c.Param("id"), actorID, req.Token, time.Now())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

type gpsCheckInRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

func (h *Handler) CheckInGPS(c *gin.Context) {
	actorID, ok := middleware.MustActor(c)
	if !ok {
		return
	}

	var req gpsCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondBadRequest(c, err)
		return
	}
	if req.Lat == nil || req.Lon == nil {
		middleware.RespondBadRequest(c, errors.New("lat and lon are required"))
		return
	}

	rec, err := h.service.CheckInWithLocation(c.Request.Context(), c.Param("id"), actorID, *req.Lat, *req.Lon, time.Now())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) List(c *gin.Context) {
	records, err := h.service.Records(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	if records == nil {
		records = []*Record{}
	}
	c.JSON(http.StatusOK, gin.H{"checkins": records})
}

type penaltyRequest struct {
	UserIDs []string `json:"user_ids" binding:"required"`
	Amount  int64    `json:"amount"`
	Reason  string   `json:"reason"`
}

func (h *Handler) Penalties(c *gin.Context) {
	actorID, ok := middleware.MustActor(c)
	if !ok {
		return
	}

	var req penaltyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondBadRequest(c, err)
		return
	}
	if req.Reason == "" {
		req.Reason = "no-show"
	}

	res, err := h.service.ApplyNoShowPenalties(c.Request.Context(), c.Param("id"), actorID, req.UserIDs, req.Amount, req.Reason)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
