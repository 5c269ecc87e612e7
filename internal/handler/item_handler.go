package handler

import (
	"net/http"
	"strconv"

	"campusmart/internal/middleware"
	"campusmart/internal/models"
	"campusmart/internal/service"

	"github.com/gin-gonic/gin"
)

type ItemHandler struct {
	itemSvc *service.ItemService
}

func NewItemHandler(itemSvc *service.ItemService) *ItemHandler {
	return &ItemHandler{itemSvc: itemSvc}
}

func (h *ItemHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Title       string  `json:"title" binding:"required,max=255"`
		Description string  `json:"description"`
		Price       float64 `json:"price" binding:"required,gt=0"`
		Category    string  `json:"category"`
		Condition   string  `json:"condition"`
		Campus      string  `json:"campus"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	item := &models.Item{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Condition:   req.Condition,
		Campus:      req.Campus,
	}
	item, err := h.itemSvc.Create(item)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusCreated, item)
}

func (h *ItemHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid item id")
		return
	}
	item, err := h.itemSvc.Get(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, item)
}

func (h *ItemHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.itemSvc.ListActive(c.Query("campus"), c.Query("category"), limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, list)
}

func (h *ItemHandler) ListMine(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.itemSvc.ListMine(userID, limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, list)
}

func (h *ItemHandler) Deactivate(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid item id")
		return
	}
	if err := h.itemSvc.Deactivate(uint(id), userID); err != nil {
		respondServiceError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, nil, "listing removed")
}
