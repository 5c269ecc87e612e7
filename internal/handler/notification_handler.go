package handler

import (
	"net/http"
	"strconv"

	"campusmart/internal/middleware"
	"campusmart/internal/repository"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	repo *repository.NotificationRepository
}

func NewNotificationHandler(repo *repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{repo: repo}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.repo.ListByUserID(userID, limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "list failed")
		return
	}
	unread, _ := h.repo.CountUnread(userID)
	respondData(c, http.StatusOK, gin.H{"notifications": list, "unread": unread})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, err := parseID(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid notification id")
		return
	}
	if err := h.repo.MarkRead(id, userID); err != nil {
		respondError(c, http.StatusInternalServerError, "update failed")
		return
	}
	respondMessage(c, http.StatusOK, nil, "marked read")
}
