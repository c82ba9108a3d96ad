package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/codyseavey/tcg-binder/internal/api/middleware"
	"github.com/codyseavey/tcg-binder/internal/logging"
	"github.com/codyseavey/tcg-binder/internal/models"
	"github.com/codyseavey/tcg-binder/internal/services"
)

const curatedUnavailableMessage = "Curated cards are temporarily unavailable. Please try again later."

// Catalog is the read side of the catalog service.
type Catalog interface {
	FetchSets(ctx context.Context) ([]models.Set, error)
	FetchMeta(ctx context.Context) (*models.Meta, error)
	FetchCards(ctx context.Context, q services.CardQuery) (*models.CardsPage, error)
	FetchCardByID(ctx context.Context, id string) (*models.Card, error)
}

// CuratedSource produces the editor's picks.
type CuratedSource interface {
	Curated(ctx context.Context) (*models.CuratedResult, error)
}

type CatalogHandler struct {
	catalog Catalog
	curator CuratedSource
	logger  *logrus.Logger
}

func NewCatalogHandler(catalog Catalog, curator CuratedSource, logger *logrus.Logger) *CatalogHandler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &CatalogHandler{
		catalog: catalog,
		curator: curator,
		logger:  logger,
	}
}

func (h *CatalogHandler) ListCards(c *gin.Context) {
	q := services.CardQuery{
		Q:        c.Query("q"),
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "pageSize"),
		OrderBy:  c.Query("orderBy"),
	}

	page, err := h.catalog.FetchCards(c.Request.Context(), q)
	if err != nil {
		h.logError(c, err, "cards")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch cards"})
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *CatalogHandler) GetCard(c *gin.Context) {
	id := c.Param("id")

	card, err := h.catalog.FetchCardByID(c.Request.Context(), id)
	if err != nil {
		h.logError(c, err, "card")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch card"})
		return
	}
	if card == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"card": card})
}

// GetCurated always answers with a well-formed card list, even when degraded.
func (h *CatalogHandler) GetCurated(c *gin.Context) {
	result, err := h.curator.Curated(c.Request.Context())
	if err != nil {
		h.logError(c, err, "curated")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"cards":     []models.Card{},
			"windowKey": -1,
			"error":     curatedUnavailableMessage,
		})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CatalogHandler) GetMeta(c *gin.Context) {
	meta, err := h.catalog.FetchMeta(c.Request.Context())
	if err != nil {
		h.logError(c, err, "meta")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch meta"})
		return
	}
	c.JSON(http.StatusOK, meta)
}

func (h *CatalogHandler) GetSets(c *gin.Context) {
	sets, err := h.catalog.FetchSets(c.Request.Context())
	if err != nil {
		h.logError(c, err, "sets")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch sets"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sets": sets})
}

// logError skips requests the client already abandoned.
func (h *CatalogHandler) logError(c *gin.Context, err error, resource string) {
	entry := h.logger.WithError(err).WithFields(logrus.Fields{
		"resource":   resource,
		"request_id": c.GetString(middleware.RequestIDKey),
	})
	if c.Request.Context().Err() != nil {
		entry.Debug("Catalog API: request cancelled")
		return
	}
	entry.Error("Catalog API: request failed")
}

// queryInt reads an integer parameter; missing or malformed values read as 0
// and fall back to the service default.
func queryInt(c *gin.Context, name string) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return n
}
