package handler

import (
	"net/http"
	"strconv"

	"campusmart/internal/middleware"
	"campusmart/internal/service"

	"github.com/gin-gonic/gin"
)

type CoinHandler struct {
	coinSvc   *service.CoinService
	ledgerSvc *service.LedgerService
	notifSvc  *service.NotificationService
}

func NewCoinHandler(coinSvc *service.CoinService, ledgerSvc *service.LedgerService, notifSvc *service.NotificationService) *CoinHandler {
	return &CoinHandler{coinSvc: coinSvc, ledgerSvc: ledgerSvc, notifSvc: notifSvc}
}

// Balance returns the user's coin balance and recent ledger entries.
func (h *CoinHandler) Balance(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	balance, err := h.ledgerSvc.Balance(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	history, err := h.ledgerSvc.History(userID, limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"coins": balance, "transactions": history})
}

// Purchase is phase 1 of a coin purchase: create a gateway order the client
// pays against.
func (h *CoinHandler) Purchase(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Coins int64 `json:"coins" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	order, err := h.coinSvc.CreatePurchaseOrder(c.Request.Context(), userID, req.Coins)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusCreated, gin.H{"order": order})
}

// Verify is phase 2: check the gateway signature and credit the coins.
func (h *CoinHandler) Verify(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Coins            int64  `json:"coins" binding:"required,min=1"`
		GatewayOrderID   string `json:"gateway_order_id" binding:"required"`
		GatewayPaymentID string `json:"gateway_payment_id" binding:"required"`
		GatewaySignature string `json:"gateway_signature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	record, err := h.coinSvc.VerifyAndCredit(c.Request.Context(), userID, req.Coins,
		req.GatewayOrderID, req.GatewayPaymentID, req.GatewaySignature)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.notifSvc.NotifyCoinsCredited(userID, record.Coins)
	respondMessage(c, http.StatusOK, record, "coins credited")
}
