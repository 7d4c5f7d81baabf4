package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bio-clicker-backend/internal/models"
	"bio-clicker-backend/internal/services"
)

type UserHandler struct {
	auth     *services.AuthService
	settings *services.SettingsService
}

func NewUserHandler(auth *services.AuthService, settings *services.SettingsService) *UserHandler {
	return &UserHandler{auth: auth, settings: settings}
}

// publicUser strips the password hash from a user document before it
// goes over the wire.
func publicUser(u *models.User) *models.User {
	out := *u
	out.HashedPassword = ""
	return &out
}

func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.auth.Me(c.Request.Context(), c.GetString("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": publicUser(user)})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var input services.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile payload"})
		return
	}

	user, err := h.auth.UpdateProfile(c.Request.Context(), c.GetString("username"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": publicUser(user)})
}

func (h *UserHandler) Heartbeat(c *gin.Context) {
	if err := h.auth.MarkPresence(c.Request.Context(), c.GetString("username")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *UserHandler) OnlineUsers(c *gin.Context) {
	online, err := h.auth.OnlineUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": online})
}

func (h *UserHandler) Leaderboard(c *gin.Context) {
	top, err := h.auth.Leaderboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": top})
}

// Status is the unauthenticated probe the client polls before showing
// the login screen.
func (h *UserHandler) Status(c *gin.Context) {
	ctx := c.Request.Context()
	maint := h.settings.MaintenanceInfo(ctx)
	settings := h.settings.Get(ctx)

	c.JSON(http.StatusOK, gin.H{
		"maintenance":   maint,
		"server":        settings.Server,
		"announcements": settings.Announcements,
	})
}
