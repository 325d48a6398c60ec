package operation

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fuelcards/internal/api"
	"fuelcards/internal/auth"
	"fuelcards/internal/ledger"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

func filterFromQuery(c *gin.Context) Filter {
	return Filter{
		CardCode: c.Query("card_code"),
		Station:  c.Query("station"),
		Type:     ledger.OperationType(c.Query("type")),
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
	}
}

// List serves the admin journal view, newest operations first.
func (h *Handler) List(c *gin.Context) {
	ops, err := h.service.List(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch operations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"operations": ops})
}

// CardStatement serves a client's per-card statement with running balances.
func (h *Handler) CardStatement(c *gin.Context) {
	cardID, err := strconv.Atoi(c.Param("cardID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid card ID"})
		return
	}

	clientID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Unauthorized"})
		return
	}

	entries, err := h.service.CardStatement(c.Request.Context(), clientID, cardID, filterFromQuery(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrCardNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Card not found"})
		case errors.Is(err, ErrNotCardOwner):
			c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Card belongs to another client"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch operations"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"operations": entries})
}

func (h *Handler) Create(c *gin.Context) {
	var op ledger.Operation
	if err := c.ShouldBindJSON(&op); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	created, err := h.service.Create(c.Request.Context(), op)
	if err != nil {
		if errors.Is(err, ErrUnknownType) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Unknown operation type"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create operation"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *Handler) Update(c *gin.Context) {
	var op ledger.Operation
	if err := c.ShouldBindJSON(&op); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	if op.ID == 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Operation ID is required"})
		return
	}

	if err := h.service.Update(c.Request.Context(), op); err != nil {
		if errors.Is(err, ErrUnknownType) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Unknown operation type"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to update operation"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Operation updated"})
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Query("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid operation ID"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to delete operation"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Operation deleted"})
}
