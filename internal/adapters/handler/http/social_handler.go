package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ashu2906-design/habit-flow/internal/adapters/handler/http/middleware"
	"github.com/ashu2906-design/habit-flow/internal/core/domain"
	"github.com/ashu2906-design/habit-flow/internal/core/services"
)

type SocialHandler struct {
	svc *services.SocialService
}

func NewSocialHandler(svc *services.SocialService) *SocialHandler {
	return &SocialHandler{
		svc: svc,
	}
}

type pairingRequest struct {
	PartnerEmail string `json:"partner_email" binding:"required,email"`
}

type respondRequest struct {
	Accept bool `json:"accept"`
}

type shareRequest struct {
	HabitID string `json:"habit_id" binding:"required"`
}

func (h *SocialHandler) RegisterRoutes(router *gin.RouterGroup) {
	partners := router.Group("/partners")
	{
		partners.POST("", h.Request)
		partners.GET("", h.List)
		partners.POST("/:id/respond", h.Respond)
		partners.POST("/:id/share", h.Share)
		partners.POST("/:id/unshare", h.Unshare)
		partners.GET("/:id/view", h.PartnerView)
	}
}

func (h *SocialHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrAccountabilityNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "pairing not found"})
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, domain.ErrHabitNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
	case errors.Is(err, domain.ErrPairingExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrSelfPairing),
		errors.Is(err, domain.ErrPairingNotPending),
		errors.Is(err, domain.ErrPairingNotAccepted):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func (h *SocialHandler) Request(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req pairingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pairing, err := h.svc.RequestPairing(c.Request.Context(), userID, req.PartnerEmail)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, pairing)
}

func (h *SocialHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	pairings, err := h.svc.ListPairings(c.Request.Context(), userID, c.Query("status"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, pairings)
}

func (h *SocialHandler) Respond(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req respondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pairing, err := h.svc.RespondToPairing(c.Request.Context(), userID, c.Param("id"), req.Accept)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, pairing)
}

func (h *SocialHandler) Share(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pairing, err := h.svc.ShareHabit(c.Request.Context(), userID, c.Param("id"), req.HabitID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, pairing)
}

func (h *SocialHandler) Unshare(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pairing, err := h.svc.UnshareHabit(c.Request.Context(), userID, c.Param("id"), req.HabitID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, pairing)
}

func (h *SocialHandler) PartnerView(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	view, err := h.svc.GetPartnerView(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
