package database

import (
	"fmt"

	"gorm.io/gorm"

	"imobiliaria/server/internal/models"
)

func (d *Database) InsertLead(l *models.Lead) error {
	result, err := d.db.Exec(`
		INSERT INTO leads (name, phone, property_id, property_title, type)
		VALUES (?, ?, ?, ?, ?)
	`, l.Name, l.Phone, l.PropertyID, l.PropertyTitle, l.Type)
	if err != nil {
		return fmt.Errorf("failed to insert lead: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get lead id: %v", err)
	}
	l.ID = id
	return nil
}

// InsertLeads writes a batch of leads inside an existing gorm
// transaction. Used by the batch processor.
func InsertLeads(tx *gorm.DB, batch []*models.Lead) error {
	for _, l := range batch {
		err := tx.Exec(`
			INSERT INTO leads (name, phone, property_id, property_title, type)
			VALUES (?, ?, ?, ?, ?)
		`, l.Name, l.Phone, l.PropertyID, l.PropertyTitle, l.Type).Error
		if err != nil {
			return fmt.Errorf("failed to insert lead: %w", err)
		}
	}
	return nil
}

// GetLeads lists captured leads, newest first. leadType narrows by type
// when non-empty; limit <= 0 means no limit.
func (d *Database) GetLeads(leadType string, limit int) ([]models.Lead, error) {
	query := `
		SELECT id, name, phone, property_id, COALESCE(property_title, ''), type, created_at
		FROM leads
	`
	var args []interface{}

	if leadType != "" {
		query += " WHERE type = ?"
		args = append(args, leadType)
	}
	query += " ORDER BY created_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %v", err)
	}
	defer rows.Close()

	leads := []models.Lead{}
	for rows.Next() {
		var l models.Lead
		if err := rows.Scan(&l.ID, &l.Name, &l.Phone, &l.PropertyID,
			&l.PropertyTitle, &l.Type, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lead: %v", err)
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

// GetDashboardStats aggregates the admin dashboard counters. Leads join
// loosely against properties by the denormalized snapshot, so deleted
// properties still count.
func (d *Database) GetDashboardStats() (models.DashboardStats, error) {
	stats := models.DashboardStats{LeadsByType: map[string]int{}}

	err := d.db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM properties),
			(SELECT COALESCE(SUM(views), 0) FROM properties),
			(SELECT COUNT(*) FROM properties WHERE featured = 1),
			(SELECT COUNT(*) FROM leads)
	`).Scan(&stats.TotalProperties, &stats.TotalViews,
		&stats.FeaturedCount, &stats.TotalLeads)
	if err != nil {
		return stats, fmt.Errorf("failed to aggregate stats: %v", err)
	}

	rows, err := d.db.Query("SELECT type, COUNT(*) FROM leads GROUP BY type")
	if err != nil {
		return stats, fmt.Errorf("failed to count leads by type: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var leadType string
		var count int
		if err := rows.Scan(&leadType, &count); err != nil {
			return stats, err
		}
		stats.LeadsByType[leadType] = count
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	recent, err := d.GetLeads("", 10)
	if err != nil {
		return stats, err
	}
	stats.RecentLeads = recent

	return stats, nil
}
