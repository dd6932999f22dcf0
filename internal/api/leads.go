package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"imobiliaria/server/internal/models"
)

// CreateLead captures a prospect contact from the public forms. When a
// lead queue is wired, submissions go through it and are persisted in
// batches; otherwise they are inserted directly.
func (h *Handler) CreateLead(c *gin.Context) {
	var req models.LeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse lead payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: name, phone, type"})
		return
	}

	if !models.ValidLeadType(req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lead type"})
		return
	}

	lead := &models.Lead{
		Name:       req.Name,
		Phone:      req.Phone,
		PropertyID: req.PropertyID,
		Type:       req.Type,
	}

	// Snapshot the title now; the property may be deleted later.
	if req.PropertyID != nil {
		property, err := h.db.GetProperty(*req.PropertyID)
		if err != nil {
			h.logger.WithError(err).Error("Failed to load property for lead snapshot")
		} else if property != nil {
			lead.PropertyTitle = property.Title
		}
	}

	if h.leadQueue != nil {
		if err := h.leadQueue.Push(lead); err != nil {
			h.logger.WithError(err).Warn("Lead queue rejected submission, inserting directly")
			if err := h.db.InsertLead(lead); err != nil {
				h.logger.WithError(err).Error("Failed to insert lead")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save lead"})
				return
			}
		}
	} else {
		if err := h.db.InsertLead(lead); err != nil {
			h.logger.WithError(err).Error("Failed to insert lead")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save lead"})
			return
		}
	}

	if h.notifier != nil {
		go func(l models.Lead) {
			if err := h.notifier.NotifyNewLead(&l); err != nil {
				h.logger.WithError(err).Error("Failed to send lead notification")
			}
		}(*lead)
	}

	c.JSON(http.StatusCreated, gin.H{"success": true})
}

func (h *Handler) GetLeads(c *gin.Context) {
	leadType := c.Query("type")
	if leadType != "" && !models.ValidLeadType(leadType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lead type"})
		return
	}

	limit := atoiDefault(c.Query("limit"), 0)

	leads, err := h.db.GetLeads(leadType, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get leads")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get leads"})
		return
	}

	c.JSON(http.StatusOK, leads)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.db.GetDashboardStats()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get dashboard stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
