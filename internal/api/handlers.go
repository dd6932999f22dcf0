package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"imobiliaria/server/config"
	"imobiliaria/server/internal/database"
	"imobiliaria/server/internal/geometry"
	"imobiliaria/server/internal/models"
	"imobiliaria/server/internal/queue"
	"imobiliaria/server/internal/ratelimit"
	"imobiliaria/server/internal/telegram"
)

type Handler struct {
	db        *database.Database
	logger    *logrus.Logger
	cfg       *config.Config
	views     *ratelimit.ViewLimiter
	leadQueue *queue.LeadQueue
	notifier  *telegram.Service
	bairros   *geometry.BairroManager
}

func NewHandler(db *database.Database, logger *logrus.Logger, cfg *config.Config) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		db:     db,
		logger: logger,
		cfg:    cfg,
		views:  ratelimit.NewViewLimiter(cfg.Views.RateWindow),
	}
}

// SetLeadQueue routes lead submissions through the batch queue instead
// of direct inserts.
func (h *Handler) SetLeadQueue(q *queue.LeadQueue) {
	h.leadQueue = q
}

func (h *Handler) SetNotifier(s *telegram.Service) {
	h.notifier = s
}

func (h *Handler) SetBairroManager(m *geometry.BairroManager) {
	h.bairros = m
}

// GetProperties handles the search endpoint. Requests carrying page or
// limit get the pagination envelope; requests without any pagination
// parameter get the legacy bare array of all matching rows.
func (h *Handler) GetProperties(c *gin.Context) {
	filters := parseFilters(c)

	_, hasPage := c.GetQuery("page")
	_, hasLimit := c.GetQuery("limit")
	if !hasPage && !hasLimit {
		properties, err := h.db.SearchProperties(filters)
		if err != nil {
			h.logger.WithError(err).Error("Failed to search properties")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get properties"})
			return
		}
		c.JSON(http.StatusOK, properties)
		return
	}

	req := database.PageRequest{
		Page:  atoiDefault(c.Query("page"), 1),
		Limit: atoiDefault(c.Query("limit"), database.DefaultPageLimit),
	}
	page, err := h.db.SearchPropertiesPage(filters, req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to search properties page")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get properties"})
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *Handler) GetProperty(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	property, err := h.db.GetProperty(id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get property"})
		return
	}
	if property == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	c.JSON(http.StatusOK, property)
}

func (h *Handler) CreateProperty(c *gin.Context) {
	var property models.Property
	if err := c.ShouldBindJSON(&property); err != nil {
		h.logger.WithError(err).Error("Failed to parse property payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if msg := validateProperty(&property); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	// The featured flag only changes through the toggle endpoint, so
	// the cap cannot be bypassed on create.
	property.Featured = false
	property.Views = 0

	if err := h.db.CreateProperty(&property); err != nil {
		h.logger.WithError(err).Error("Failed to create property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create property"})
		return
	}

	created, err := h.db.GetProperty(property.ID)
	if err != nil || created == nil {
		h.logger.WithError(err).Error("Failed to reload created property")
		c.JSON(http.StatusCreated, property)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateProperty(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var property models.Property
	if err := c.ShouldBindJSON(&property); err != nil {
		h.logger.WithError(err).Error("Failed to parse property payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if msg := validateProperty(&property); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	property.ID = id
	updated, err := h.db.UpdateProperty(&property)
	if err != nil {
		h.logger.WithError(err).Error("Failed to update property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update property"})
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	current, err := h.db.GetProperty(id)
	if err != nil || current == nil {
		h.logger.WithError(err).Error("Failed to reload updated property")
		c.JSON(http.StatusOK, property)
		return
	}

	c.JSON(http.StatusOK, current)
}

func (h *Handler) DeleteProperty(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	deleted, err := h.db.DeleteProperty(id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to delete property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete property"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// IncrementViews counts a public page view, at most once per
// (IP, property) within the configured window.
func (h *Handler) IncrementViews(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	property, err := h.db.GetProperty(id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get property for view count")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register view"})
		return
	}
	if property == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	if !h.views.Allow(c.ClientIP(), id) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "View already counted"})
		return
	}

	if _, err := h.db.IncrementViews(id); err != nil {
		h.logger.WithError(err).Error("Failed to increment views")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register view"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ToggleFeatured flips the highlight flag, holding the site-wide cap.
func (h *Handler) ToggleFeatured(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	property, err := h.db.ToggleFeatured(id)
	if errors.Is(err, database.ErrFeaturedCap) {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Limite de destaques atingido (máximo 4 imóveis)",
		})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to toggle featured flag")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle featured"})
		return
	}
	if property == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	c.JSON(http.StatusOK, property)
}

func (h *Handler) GetAmenities(c *gin.Context) {
	c.JSON(http.StatusOK, config.GetAmenities())
}

// GetBairroHulls returns the neighborhood outlines as GeoJSON.
func (h *Handler) GetBairroHulls(c *gin.Context) {
	if h.bairros == nil {
		c.JSON(http.StatusOK, gin.H{"type": "FeatureCollection", "features": []interface{}{}})
		return
	}
	c.JSON(http.StatusOK, h.bairros.FeatureCollection())
}

func validateProperty(p *models.Property) string {
	var missing []string
	if p.Title == "" {
		missing = append(missing, "title")
	}
	if p.Price == "" {
		missing = append(missing, "price")
	}
	if p.Bairro == "" {
		missing = append(missing, "bairro")
	}
	if p.Tipo == "" {
		missing = append(missing, "tipo")
	}
	if len(missing) > 0 {
		return "Missing required fields: " + strings.Join(missing, ", ")
	}

	if p.TransactionType != "" && !models.ValidTransactionType(p.TransactionType) {
		return "Invalid transaction_type"
	}
	if p.Status != "" && !models.ValidPropertyStatus(p.Status) {
		return "Invalid status"
	}
	return ""
}

func parseFilters(c *gin.Context) database.SearchFilters {
	return database.SearchFilters{
		Search:          c.Query("search"),
		TransactionType: c.Query("transaction_type"),
		AreaMin:         intQuery(c, "area_min"),
		AreaMax:         intQuery(c, "area_max"),
		QuartosMin:      intQuery(c, "quartos_min"),
		QuartosMax:      intQuery(c, "quartos_max"),
		BanheirosMin:    intQuery(c, "banheiros_min"),
		BanheirosMax:    intQuery(c, "banheiros_max"),
		VagasMin:        intQuery(c, "vagas_min"),
		VagasMax:        intQuery(c, "vagas_max"),
	}
}

func intQuery(c *gin.Context, name string) *int {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

func atoiDefault(raw string, fallback int) int {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return 0, false
	}
	return id, true
}
