package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bio-clicker-backend/internal/services"
)

type GameHandler struct {
	ledger   *services.Ledger
	coupons  *services.CouponService
	withdraw *services.WithdrawService
	bets     *services.BetService
	chat     *services.ChatService
	ws       *WebSocketHandler
}

func NewGameHandler(ledger *services.Ledger, coupons *services.CouponService, withdraw *services.WithdrawService, bets *services.BetService, chat *services.ChatService, ws *WebSocketHandler) *GameHandler {
	return &GameHandler{
		ledger:   ledger,
		coupons:  coupons,
		withdraw: withdraw,
		bets:     bets,
		chat:     chat,
		ws:       ws,
	}
}

func (h *GameHandler) Click(c *gin.Context) {
	username := c.GetString("username")

	result, err := h.ledger.Click(c.Request.Context(), username)
	if err != nil {
		respondError(c, err)
		return
	}

	h.ws.PushBalance(username, result.Balance)
	c.JSON(http.StatusOK, result)
}

func (h *GameHandler) ApplyCoupon(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coupon code is required"})
		return
	}

	username := c.GetString("username")
	result, err := h.coupons.Apply(c.Request.Context(), username, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	h.ws.PushBalance(username, result.Balance)
	c.JSON(http.StatusOK, result)
}

func (h *GameHandler) RequestWithdrawal(c *gin.Context) {
	var input services.WithdrawInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid withdrawal payload"})
		return
	}

	username := c.GetString("username")
	receipt, err := h.withdraw.Request(c.Request.Context(), username, input)
	if err != nil {
		respondError(c, err)
		return
	}

	h.ws.PushBalance(username, receipt.Balance)
	c.JSON(http.StatusCreated, receipt)
}

func (h *GameHandler) WithdrawalHistory(c *gin.Context) {
	requests, err := h.withdraw.History(c.Request.Context(), c.GetString("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

func (h *GameHandler) PlaceBet(c *gin.Context) {
	var input services.BetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bet payload"})
		return
	}

	username := c.GetString("username")
	outcome, err := h.bets.Place(c.Request.Context(), username, input)
	if err != nil {
		respondError(c, err)
		return
	}

	h.ws.PushBalance(username, outcome.Balance)
	c.JSON(http.StatusOK, outcome)
}

func (h *GameHandler) BetHistory(c *gin.Context) {
	bets, err := h.bets.History(c.Request.Context(), c.GetString("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bets": bets})
}

func (h *GameHandler) SendChatMessage(c *gin.Context) {
	var input services.ChatInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat payload"})
		return
	}

	msg, err := h.chat.SendPublic(c.Request.Context(), c.GetString("username"), input)
	if err != nil {
		respondError(c, err)
		return
	}

	h.ws.BroadcastChat(msg)
	c.JSON(http.StatusCreated, msg)
}

func (h *GameHandler) ChatHistory(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "100"), 10, 64)

	msgs, err := h.chat.RecentPublic(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h *GameHandler) SendDirectMessage(c *gin.Context) {
	var input services.ChatInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat payload"})
		return
	}

	username := c.GetString("username")
	peer := c.Param("peer")
	msg, err := h.chat.SendDirect(c.Request.Context(), username, peer, input)
	if err != nil {
		respondError(c, err)
		return
	}

	h.ws.PushDirectMessage(username, peer, msg)
	c.JSON(http.StatusCreated, msg)
}

func (h *GameHandler) DirectMessageHistory(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "100"), 10, 64)

	msgs, err := h.chat.RecentDirect(c.Request.Context(), c.GetString("username"), c.Param("peer"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}
