package models

import "time"

// Lead is a captured prospect contact. Leads are insert-only: they are
// never mutated or deleted after capture. PropertyID is a weak reference
// and may point to a property that has since been removed, which is why
// PropertyTitle is denormalized at capture time.
type Lead struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	PropertyID    *int64    `json:"property_id,omitempty"`
	PropertyTitle string    `json:"property_title"`
	Type          string    `json:"type"`
	CreatedAt     time.Time `json:"created_at"`
}

// LeadTypes are the accepted values for Lead.Type.
var LeadTypes = []string{"gate", "contact", "whatsapp"}

func ValidLeadType(t string) bool {
	for _, v := range LeadTypes {
		if v == t {
			return true
		}
	}
	return false
}

type LeadRequest struct {
	Name       string `json:"name" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
	PropertyID *int64 `json:"property_id"`
	Type       string `json:"type" binding:"required"`
}

// DashboardStats aggregates the counters shown on the admin dashboard.
type DashboardStats struct {
	TotalProperties int            `json:"total_properties"`
	TotalViews      int            `json:"total_views"`
	TotalLeads      int            `json:"total_leads"`
	FeaturedCount   int            `json:"featured_count"`
	LeadsByType     map[string]int `json:"leads_by_type"`
	RecentLeads     []Lead         `json:"recent_leads"`
}
