package station

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fuelcards/internal/api"
)

// Store is the record-store surface for stations.
type Store interface {
	ListStations(ctx context.Context) ([]Station, error)
	CreateStation(ctx context.Context, s Station) (Station, error)
	UpdateStation(ctx context.Context, s Station) error
	DeleteStation(ctx context.Context, id int) error
}

// Handler is a thin pass-through to the record store: stations carry no
// business rules of their own.
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) List(c *gin.Context) {
	stations, err := h.store.ListStations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch stations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stations": stations})
}

func (h *Handler) Create(c *gin.Context) {
	var s Station
	if err := c.ShouldBindJSON(&s); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	if s.Name == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Station name is required"})
		return
	}

	created, err := h.store.CreateStation(c.Request.Context(), s)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create station"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) Update(c *gin.Context) {
	var s Station
	if err := c.ShouldBindJSON(&s); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	if s.ID == 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Station ID is required"})
		return
	}

	if err := h.store.UpdateStation(c.Request.Context(), s); err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to update station"})
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Station updated"})
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Query("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid station ID"})
		return
	}

	if err := h.store.DeleteStation(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to delete station"})
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Station deleted"})
}
