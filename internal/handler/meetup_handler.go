package handler

import (
	"net/http"
	"strconv"
	"time"

	"campusmart/internal/domain"
	"campusmart/internal/middleware"
	"campusmart/internal/models"
	"campusmart/internal/service"

	"github.com/gin-gonic/gin"
)

type MeetupHandler struct {
	meetupSvc *service.MeetupService
	notifSvc  *service.NotificationService
}

func NewMeetupHandler(meetupSvc *service.MeetupService, notifSvc *service.NotificationService) *MeetupHandler {
	return &MeetupHandler{meetupSvc: meetupSvc, notifSvc: notifSvc}
}

// Create schedules a meetup, either from an accepted offer or directly on an
// item at the listed price.
func (h *MeetupHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		OfferID            *uint      `json:"offer_id"`
		ItemID             *uint      `json:"item_id"`
		Location           string     `json:"location" binding:"required,max=255"`
		LocationType       string     `json:"location_type" binding:"omitempty,oneof=public campus doorstep"`
		PreferredTime      time.Time  `json:"preferred_time" binding:"required"`
		AlternativeTime    *time.Time `json:"alternative_time"`
		PaymentMethod      string     `json:"payment_method"`
		BuyerNotes         string     `json:"buyer_notes"`
		AcknowledgedSafety bool       `json:"acknowledged_safety"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	details := service.MeetupDetails{
		Location:           req.Location,
		LocationType:       req.LocationType,
		PreferredTime:      req.PreferredTime,
		AlternativeTime:    req.AlternativeTime,
		PaymentMethod:      req.PaymentMethod,
		BuyerNotes:         req.BuyerNotes,
		AcknowledgedSafety: req.AcknowledgedSafety,
	}

	var m *models.Meetup
	var err error
	switch {
	case req.OfferID != nil:
		m, err = h.meetupSvc.CreateFromOffer(*req.OfferID, userID, details)
	case req.ItemID != nil:
		m, err = h.meetupSvc.CreateDirect(userID, *req.ItemID, details)
	default:
		respondError(c, http.StatusBadRequest, "offer_id or item_id required")
		return
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.notifSvc.NotifyMeetupScheduled(h.otherParty(m, userID), m.ID, m.Location)
	respondData(c, http.StatusCreated, m)
}

func (h *MeetupHandler) Reschedule(c *gin.Context) {
	userID := middleware.GetUserID(c)
	meetupID, err := parseID(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid meetup id")
		return
	}
	var req struct {
		Location        *string    `json:"location"`
		PreferredTime   *time.Time `json:"preferred_time"`
		AlternativeTime *time.Time `json:"alternative_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	m, err := h.meetupSvc.Reschedule(meetupID, userID, req.Location, req.PreferredTime, req.AlternativeTime)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.notifSvc.NotifyMeetupScheduled(h.otherParty(m, userID), m.ID, m.Location)
	respondMessage(c, http.StatusOK, m, "meetup updated")
}

func (h *MeetupHandler) Confirm(c *gin.Context) {
	userID := middleware.GetUserID(c)
	meetupID, err := parseID(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid meetup id")
		return
	}
	var req struct {
		Role string `json:"role" binding:"omitempty,oneof=buyer seller"`
	}
	_ = c.ShouldBindJSON(&req)
	m, settled, err := h.meetupSvc.Confirm(meetupID, userID, req.Role)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if settled {
		h.notifSvc.NotifyMeetupCompleted(m.BuyerID, m.ID)
		h.notifSvc.NotifyMeetupCompleted(m.SellerID, m.ID)
	} else {
		h.notifSvc.NotifyMeetupConfirmed(h.otherParty(m, userID), m.ID)
	}
	respondMessage(c, http.StatusOK, gin.H{"meetup": m, "both_confirmed": settled}, "confirmation recorded")
}

func (h *MeetupHandler) MarkFailed(c *gin.Context) {
	userID := middleware.GetUserID(c)
	meetupID, err := parseID(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid meetup id")
		return
	}
	var req struct {
		Reason string `json:"reason"`
		Relist bool   `json:"relist"`
	}
	_ = c.ShouldBindJSON(&req)
	m, err := h.meetupSvc.MarkFailed(meetupID, userID, req.Reason, req.Relist)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.notifSvc.NotifyMeetupClosed(h.otherParty(m, userID), m.ID, domain.MeetupStatusFailed, m.CancellationReason)
	respondMessage(c, http.StatusOK, m, "meetup marked failed")
}

func (h *MeetupHandler) Cancel(c *gin.Context) {
	userID := middleware.GetUserID(c)
	meetupID, err := parseID(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid meetup id")
		return
	}
	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	m, err := h.meetupSvc.Cancel(meetupID, userID, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.notifSvc.NotifyMeetupClosed(h.otherParty(m, userID), m.ID, domain.MeetupStatusCancelled, m.CancellationReason)
	respondMessage(c, http.StatusOK, m, "meetup cancelled")
}

func (h *MeetupHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)
	meetupID, err := parseID(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid meetup id")
		return
	}
	m, err := h.meetupSvc.GetMeetup(meetupID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, m)
}

func (h *MeetupHandler) ListMine(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.meetupSvc.ListMine(userID, limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, list)
}

func (h *MeetupHandler) otherParty(m *models.Meetup, userID uint) uint {
	if m.BuyerID == userID {
		return m.SellerID
	}
	return m.BuyerID
}
