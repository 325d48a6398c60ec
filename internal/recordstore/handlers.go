package recordstore

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fuelcards/internal/api"
	"fuelcards/internal/metrics"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// NewRouter wires the entity resources, the terminal endpoints and the
// system routes. Requests with a known path but wrong method get 405.
func NewRouter(repo *Repository) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, api.ErrorResponse{Error: "Method not allowed"})
	})

	h := NewHandler(repo)

	router.GET("/clients", h.ListClients)
	router.POST("/clients", h.CreateClient)
	router.PUT("/clients", h.UpdateClient)
	router.DELETE("/clients", h.DeleteClient)

	router.GET("/stations", h.ListStations)
	router.POST("/stations", h.CreateStation)
	router.PUT("/stations", h.UpdateStation)
	router.DELETE("/stations", h.DeleteStation)

	router.GET("/fuel-types", h.ListFuelTypes)
	router.POST("/fuel-types", h.CreateFuelType)
	router.PUT("/fuel-types", h.UpdateFuelType)
	router.DELETE("/fuel-types", h.DeleteFuelType)

	router.GET("/cards", h.ListCards)
	router.POST("/cards", h.CreateCard)
	router.PUT("/cards", h.UpdateCard)
	router.DELETE("/cards", h.DeleteCard)

	router.GET("/operations", h.ListOperations)
	router.POST("/operations", h.CreateOperation)
	router.PUT("/operations", h.UpdateOperation)
	router.DELETE("/operations", h.DeleteOperation)

	router.POST("/refuel", h.Refuel)
	router.GET("/card-status", h.CardStatus)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, api.HealthResponse{Status: "ok"})
	})

	return router
}

func idQueryParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Query("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid id"})
		return 0, false
	}
	return id, true
}

func respondRepoError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrCardNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrUnknownType), errors.Is(err, ErrStationRequired),
		errors.Is(err, ErrInsufficientFuel), errors.Is(err, ErrDailyLimitExceeded):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrCardBlocked), errors.Is(err, ErrWrongPin):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: fallback})
	}
}

// --- Clients ---

func (h *Handler) ListClients(c *gin.Context) {
	clients, err := h.repo.ListClients(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch clients"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients})
}

func (h *Handler) CreateClient(c *gin.Context) {
	var cl Client
	if err := c.ShouldBindJSON(&cl); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	created, err := h.repo.CreateClient(c.Request.Context(), cl)
	if err != nil {
		respondRepoError(c, err, "Failed to create client")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"client": created})
}

func (h *Handler) UpdateClient(c *gin.Context) {
	var cl Client
	if err := c.ShouldBindJSON(&cl); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.repo.UpdateClient(c.Request.Context(), cl); err != nil {
		respondRepoError(c, err, "Failed to update client")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) DeleteClient(c *gin.Context) {
	id, ok := idQueryParam(c)
	if !ok {
		return
	}
	if err := h.repo.DeleteClient(c.Request.Context(), id); err != nil {
		respondRepoError(c, err, "Failed to delete client")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// --- Stations ---

func (h *Handler) ListStations(c *gin.Context) {
	stations, err := h.repo.ListStations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch stations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stations": stations})
}

func (h *Handler) CreateStation(c *gin.Context) {
	var s Station
	if err := c.ShouldBindJSON(&s); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	created, err := h.repo.CreateStation(c.Request.Context(), s)
	if err != nil {
		respondRepoError(c, err, "Failed to create station")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"station": created})
}

func (h *Handler) UpdateStation(c *gin.Context) {
	var s Station
	if err := c.ShouldBindJSON(&s); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.repo.UpdateStation(c.Request.Context(), s); err != nil {
		respondRepoError(c, err, "Failed to update station")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) DeleteStation(c *gin.Context) {
	id, ok := idQueryParam(c)
	if !ok {
		return
	}
	if err := h.repo.DeleteStation(c.Request.Context(), id); err != nil {
		respondRepoError(c, err, "Failed to delete station")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// --- Fuel types ---

func (h *Handler) ListFuelTypes(c *gin.Context) {
	types, err := h.repo.ListFuelTypes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch fuel types"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"fuel_types": types})
}

func (h *Handler) CreateFuelType(c *gin.Context) {
	var ft FuelType
	if err := c.ShouldBindJSON(&ft); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	created, err := h.repo.CreateFuelType(c.Request.Context(), ft)
	if err != nil {
		respondRepoError(c, err, "Failed to create fuel type")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"fuel_type": created})
}

func (h *Handler) UpdateFuelType(c *gin.Context) {
	var ft FuelType
	if err := c.ShouldBindJSON(&ft); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.repo.UpdateFuelType(c.Request.Context(), ft); err != nil {
		respondRepoError(c, err, "Failed to update fuel type")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) DeleteFuelType(c *gin.Context) {
	id, ok := idQueryParam(c)
	if !ok {
		return
	}
	if err := h.repo.DeleteFuelType(c.Request.Context(), id); err != nil {
		respondRepoError(c, err, "Failed to delete fuel type")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// --- Cards ---

func (h *Handler) ListCards(c *gin.Context) {
	cards, err := h.repo.ListCards(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch cards"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards})
}

func (h *Handler) CreateCard(c *gin.Context) {
	var cd Card
	if err := c.ShouldBindJSON(&cd); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	created, err := h.repo.CreateCard(c.Request.Context(), cd)
	if err != nil {
		respondRepoError(c, err, "Failed to create card")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"card": created})
}

func (h *Handler) UpdateCard(c *gin.Context) {
	var cd Card
	if err := c.ShouldBindJSON(&cd); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.repo.UpdateCard(c.Request.Context(), cd); err != nil {
		respondRepoError(c, err, "Failed to update card")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) DeleteCard(c *gin.Context) {
	id, ok := idQueryParam(c)
	if !ok {
		return
	}
	if err := h.repo.DeleteCard(c.Request.Context(), id); err != nil {
		respondRepoError(c, err, "Failed to delete card")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// --- Operations ---

func (h *Handler) ListOperations(c *gin.Context) {
	ops, err := h.repo.ListOperations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch operations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"operations": ops})
}

func (h *Handler) CreateOperation(c *gin.Context) {
	var op Operation
	if err := c.ShouldBindJSON(&op); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	requestID := c.GetHeader("X-Request-Id")
	created, err := h.repo.CreateOperation(c.Request.Context(), op, requestID)
	if err != nil {
		respondRepoError(c, err, "Failed to create operation")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"operation": created})
}

func (h *Handler) UpdateOperation(c *gin.Context) {
	var op Operation
	if err := c.ShouldBindJSON(&op); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.repo.UpdateOperation(c.Request.Context(), op); err != nil {
		respondRepoError(c, err, "Failed to update operation")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) DeleteOperation(c *gin.Context) {
	id, ok := idQueryParam(c)
	if !ok {
		return
	}
	if err := h.repo.DeleteOperation(c.Request.Context(), id); err != nil {
		respondRepoError(c, err, "Failed to delete operation")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// --- Terminal endpoints ---

func (h *Handler) Refuel(c *gin.Context) {
	var req RefuelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.repo.Refuel(c.Request.Context(), req)
	if err != nil {
		respondRepoError(c, err, "Failed to process refuel")
		return
	}

	metrics.RecordOperationCreated("fill")
	c.JSON(http.StatusOK, result)
}

func (h *Handler) CardStatus(c *gin.Context) {
	cardCode := c.Query("card_code")
	if cardCode == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "card_code parameter required"})
		return
	}

	st, err := h.repo.CardStatus(c.Request.Context(), cardCode)
	if err != nil {
		respondRepoError(c, err, "Failed to fetch card status")
		return
	}
	c.JSON(http.StatusOK, st)
}
