package fueltype

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fuelcards/internal/api"
)

// Store is the record-store surface for fuel types.
type Store interface {
	ListFuelTypes(ctx context.Context) ([]FuelType, error)
	CreateFuelType(ctx context.Context, ft FuelType) (FuelType, error)
	UpdateFuelType(ctx context.Context, ft FuelType) error
	DeleteFuelType(ctx context.Context, id int) error
}

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) List(c *gin.Context) {
	types, err := h.store.ListFuelTypes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch fuel types"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"fuel_types": types})
}

func (h *Handler) Create(c *gin.Context) {
	var ft FuelType
	if err := c.ShouldBindJSON(&ft); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	if ft.Name == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Fuel type name is required"})
		return
	}

	created, err := h.store.CreateFuelType(c.Request.Context(), ft)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create fuel type"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) Update(c *gin.Context) {
	var ft FuelType
	if err := c.ShouldBindJSON(&ft); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	if ft.ID == 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Fuel type ID is required"})
		return
	}

	if err := h.store.UpdateFuelType(c.Request.Context(), ft); err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to update fuel type"})
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Fuel type updated"})
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Query("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid fuel type ID"})
		return
	}

	if err := h.store.DeleteFuelType(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to delete fuel type"})
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Fuel type deleted"})
}
