package handler

import (
	"net/http"
	"strconv"

	"campusmart/internal/middleware"
	"campusmart/internal/repository"
	"campusmart/internal/service"

	"github.com/gin-gonic/gin"
)

type OfferHandler struct {
	offerSvc *service.OfferService
	userRepo *repository.UserRepository
	notifSvc *service.NotificationService
}

func NewOfferHandler(offerSvc *service.OfferService, userRepo *repository.UserRepository, notifSvc *service.NotificationService) *OfferHandler {
	return &OfferHandler{offerSvc: offerSvc, userRepo: userRepo, notifSvc: notifSvc}
}

func (h *OfferHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		ItemID        uint     `json:"item_id" binding:"required"`
		Amount        *float64 `json:"amount" binding:"required,gte=0"`
		Message       string   `json:"message"`
		ParentOfferID *uint    `json:"parent_offer_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	offer, err := h.offerSvc.SendOffer(userID, req.ItemID, *req.Amount, req.Message, req.ParentOfferID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	senderName := ""
	if u, err := h.userRepo.GetByID(userID); err == nil {
		senderName = u.Username
	}
	h.notifSvc.NotifyOfferReceived(offer.ReceiverID, offer.ID, senderName, offer.Amount)
	respondData(c, http.StatusCreated, offer)
}

func (h *OfferHandler) Counter(c *gin.Context) {
	userID := middleware.GetUserID(c)
	offerID, err := parseID(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid offer id")
		return
	}
	var req struct {
		Amount  *float64 `json:"amount" binding:"required,gte=0"`
		Message string   `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	offer, err := h.offerSvc.SendCounterOffer(offerID, userID, *req.Amount, req.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.notifSvc.NotifyCounterOffer(offer.ReceiverID, offer.ID, offer.Amount)
	respondData(c, http.StatusCreated, offer)
}

func (h *OfferHandler) Accept(c *gin.Context) {
	userID := middleware.GetUserID(c)
	offerID, err := parseID(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid offer id")
		return
	}
	offer, err := h.offerSvc.AcceptOffer(offerID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.notifSvc.NotifyOfferAccepted(offer.SenderID, offer.ID)
	respondMessage(c, http.StatusOK, offer, "offer accepted")
}

func (h *OfferHandler) Reject(c *gin.Context) {
	userID := middleware.GetUserID(c)
	offerID, err := parseID(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid offer id")
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)
	offer, err := h.offerSvc.RejectOffer(offerID, userID, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.notifSvc.NotifyOfferRejected(offer.SenderID, offer.ID, offer.RejectionReason)
	respondMessage(c, http.StatusOK, offer, "offer rejected")
}

func (h *OfferHandler) Cancel(c *gin.Context) {
	userID := middleware.GetUserID(c)
	offerID, err := parseID(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid offer id")
		return
	}
	offer, err := h.offerSvc.CancelOffer(offerID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, offer, "offer cancelled")
}

func (h *OfferHandler) Chain(c *gin.Context) {
	offerID, err := parseID(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid offer id")
		return
	}
	chain, err := h.offerSvc.GetChain(offerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, chain)
}

func (h *OfferHandler) ListSent(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.offerSvc.ListSent(userID, limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, list)
}

func (h *OfferHandler) ListReceived(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.offerSvc.ListReceived(userID, limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, list)
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	return uint(id), err
}
