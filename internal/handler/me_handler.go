package handler

import (
	"net/http"

	"campusmart/internal/middleware"
	"campusmart/internal/repository"

	"github.com/gin-gonic/gin"
)

type MeHandler struct {
	userRepo        *repository.UserRepository
	transactionRepo *repository.TransactionRepository
}

func NewMeHandler(userRepo *repository.UserRepository, transactionRepo *repository.TransactionRepository) *MeHandler {
	return &MeHandler{userRepo: userRepo, transactionRepo: transactionRepo}
}

// Get returns the profile with coin balance and cached marketplace counters.
func (h *MeHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		respondError(c, http.StatusNotFound, "user not found")
		return
	}
	recent, _ := h.transactionRepo.ListByUserID(userID, 5, 0)
	respondData(c, http.StatusOK, gin.H{"user": u, "recent_transactions": recent})
}
