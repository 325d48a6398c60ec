package card

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fuelcards/internal/api"
	"fuelcards/internal/auth"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

type SetLimitRequest struct {
	DailyLimit float64 `json:"daily_limit" binding:"gte=0"`
}

type BlockRequest struct {
	Reason string `json:"reason"`
}

type TransferRequest struct {
	SourceCardID int     `json:"source_card_id" binding:"required"`
	TargetCardID int     `json:"target_card_id" binding:"required"`
	Quantity     float64 `json:"quantity" binding:"required,gt=0"`
	Price        float64 `json:"price" binding:"gte=0"`
}

func cardIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("cardID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid card ID"})
		return 0, false
	}
	return id, true
}

func (h *Handler) respondCardError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Card not found"})
	case errors.Is(err, ErrNotOwner):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Card belongs to another client"})
	case errors.Is(err, ErrCardBlocked):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Card is blocked"})
	case errors.Is(err, ErrInsufficientBalance):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Insufficient card balance"})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: fallback})
	}
}

// ListMine returns the authenticated client's cards.
func (h *Handler) ListMine(c *gin.Context) {
	clientID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Unauthorized"})
		return
	}

	cards, err := h.service.ListByClient(c.Request.Context(), clientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch cards"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards})
}

func (h *Handler) SetLimit(c *gin.Context) {
	cardID, ok := cardIDParam(c)
	if !ok {
		return
	}
	clientID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req SetLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	cd, err := h.service.SetDailyLimit(c.Request.Context(), clientID, cardID, req.DailyLimit)
	if err != nil {
		h.respondCardError(c, err, "Failed to update daily limit")
		return
	}
	c.JSON(http.StatusOK, cd)
}

func (h *Handler) Block(c *gin.Context) {
	cardID, ok := cardIDParam(c)
	if !ok {
		return
	}
	clientID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req BlockRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	cd, err := h.service.Block(c.Request.Context(), clientID, cardID, req.Reason)
	if err != nil {
		h.respondCardError(c, err, "Failed to block card")
		return
	}
	c.JSON(http.StatusOK, cd)
}

func (h *Handler) Unblock(c *gin.Context) {
	cardID, ok := cardIDParam(c)
	if !ok {
		return
	}
	clientID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Unauthorized"})
		return
	}

	cd, err := h.service.Unblock(c.Request.Context(), clientID, cardID)
	if err != nil {
		h.respondCardError(c, err, "Failed to unblock card")
		return
	}
	c.JSON(http.StatusOK, cd)
}

// Transfer moves liters between two of the client's cards.
func (h *Handler) Transfer(c *gin.Context) {
	clientID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	debit, credit, err := h.service.Transfer(c.Request.Context(), clientID,
		req.SourceCardID, req.TargetCardID, req.Quantity, req.Price)
	if err != nil {
		h.respondCardError(c, err, "Failed to transfer")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"debit": debit, "credit": credit})
}

// --- Admin ---

func (h *Handler) List(c *gin.Context) {
	cards, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch cards"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards})
}

func (h *Handler) Create(c *gin.Context) {
	var cd Card
	if err := c.ShouldBindJSON(&cd); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	created, err := h.service.Create(c.Request.Context(), cd)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create card"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) Update(c *gin.Context) {
	var cd Card
	if err := c.ShouldBindJSON(&cd); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	if cd.ID == 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Card ID is required"})
		return
	}

	if err := h.service.Update(c.Request.Context(), cd); err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to update card"})
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Card updated"})
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Query("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid card ID"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to delete card"})
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Card deleted"})
}

// Reconcile recomputes the card balance from the journal. A persistence
// failure still answers 200 with "saved": false so the operator sees the
// computed drift.
func (h *Handler) Reconcile(c *gin.Context) {
	cardID, ok := cardIDParam(c)
	if !ok {
		return
	}

	outcome, err := h.service.Reconcile(c.Request.Context(), cardID)
	if err != nil {
		h.respondCardError(c, err, "Failed to reconcile card")
		return
	}
	c.JSON(http.StatusOK, outcome)
}
