package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"bio-clicker-backend/internal/models"
	"bio-clicker-backend/internal/services"
)

type AdminHandler struct {
	admin    *services.AdminService
	settings *services.SettingsService
	ws       *WebSocketHandler
}

func NewAdminHandler(admin *services.AdminService, settings *services.SettingsService, ws *WebSocketHandler) *AdminHandler {
	return &AdminHandler{admin: admin, settings: settings, ws: ws}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.admin.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	sanitized := make([]*models.User, 0, len(users))
	for _, u := range users {
		sanitized = append(sanitized, publicUser(u))
	}
	c.JSON(http.StatusOK, gin.H{"users": sanitized})
}

func (h *AdminHandler) PendingWithdrawals(c *gin.Context) {
	pending, err := h.admin.PendingWithdrawals(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": pending})
}

func (h *AdminHandler) PendingBets(c *gin.Context) {
	pending, err := h.admin.PendingBets(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bets": pending})
}

type resolveRequest struct {
	Approve bool `json:"approve"`
}

func (h *AdminHandler) ResolveWithdrawal(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resolution payload"})
		return
	}

	id := c.Param("id")
	user, err := h.admin.ResolveWithdrawal(c.Request.Context(), id, req.Approve)
	if err != nil {
		respondError(c, err)
		return
	}

	h.ws.PushRequestResolved(user.Username, "withdrawal", id, req.Approve, user.Balance)
	c.JSON(http.StatusOK, gin.H{"user": publicUser(user)})
}

func (h *AdminHandler) ResolveBet(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resolution payload"})
		return
	}

	id := c.Param("id")
	user, err := h.admin.ResolveBet(c.Request.Context(), id, req.Approve)
	if err != nil {
		respondError(c, err)
		return
	}

	h.ws.PushRequestResolved(user.Username, "bet", id, req.Approve, user.Balance)
	c.JSON(http.StatusOK, gin.H{"user": publicUser(user)})
}

func (h *AdminHandler) RemoveWithdrawal(c *gin.Context) {
	user, err := h.admin.RemoveWithdrawal(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": publicUser(user)})
}

func (h *AdminHandler) RemoveBet(c *gin.Context) {
	user, err := h.admin.RemoveBet(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": publicUser(user)})
}

func (h *AdminHandler) SetBanned(c *gin.Context) {
	h.setFlag(c, h.admin.SetBanned)
}

func (h *AdminHandler) SetChatBanned(c *gin.Context) {
	h.setFlag(c, h.admin.SetChatBanned)
}

func (h *AdminHandler) SetPremium(c *gin.Context) {
	h.setFlag(c, h.admin.SetPremium)
}

func (h *AdminHandler) setFlag(c *gin.Context, apply func(ctx context.Context, username string, value bool) (*models.User, error)) {
	var req struct {
		Value *bool `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value is required"})
		return
	}

	user, err := apply(c.Request.Context(), c.Param("username"), *req.Value)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": publicUser(user)})
}

func (h *AdminHandler) AdjustBalance(c *gin.Context) {
	var req struct {
		Delta float64 `json:"delta" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "delta is required"})
		return
	}

	user, err := h.admin.AdjustBalance(c.Request.Context(), c.Param("username"), req.Delta)
	if err != nil {
		respondError(c, err)
		return
	}

	h.ws.PushBalance(user.Username, user.Balance)
	c.JSON(http.StatusOK, gin.H{"user": publicUser(user)})
}

func (h *AdminHandler) SetFlashy(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Color    string `json:"color"`
		Animated bool   `json:"animated"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flashy payload"})
		return
	}

	user, err := h.admin.SetFlashy(c.Request.Context(), c.Param("username"), req.Name, req.Color, req.Animated)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": publicUser(user)})
}

func (h *AdminHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"settings": h.settings.Get(c.Request.Context())})
}

func (h *AdminHandler) UpdateLimits(c *gin.Context) {
	var input services.LimitsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limits payload"})
		return
	}

	settings, err := h.admin.UpdateLimits(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (h *AdminHandler) SetMaintenance(c *gin.Context) {
	var input services.ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid schedule payload"})
		return
	}

	settings, err := h.admin.SetMaintenance(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (h *AdminHandler) SetServerClosed(c *gin.Context) {
	var input services.ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid schedule payload"})
		return
	}

	settings, err := h.admin.SetServerClosed(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (h *AdminHandler) AddCoupon(c *gin.Context) {
	var coupon models.Coupon
	if err := c.ShouldBindJSON(&coupon); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid coupon payload"})
		return
	}

	settings, err := h.admin.AddCoupon(c.Request.Context(), coupon)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"settings": settings})
}

func (h *AdminHandler) DeleteCoupon(c *gin.Context) {
	settings, err := h.admin.DeleteCoupon(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (h *AdminHandler) AddAnnouncement(c *gin.Context) {
	var req struct {
		Title   string `json:"title" binding:"required"`
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and message are required"})
		return
	}

	settings, err := h.admin.AddAnnouncement(c.Request.Context(), req.Title, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}

	if n := len(settings.Announcements); n > 0 {
		h.ws.BroadcastAnnouncement(settings.Announcements[n-1])
	}
	c.JSON(http.StatusCreated, gin.H{"settings": settings})
}

func (h *AdminHandler) DeleteAnnouncement(c *gin.Context) {
	settings, err := h.admin.DeleteAnnouncement(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}
