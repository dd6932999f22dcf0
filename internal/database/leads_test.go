package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imobiliaria/server/internal/models"
)

func TestInsertLead_SurvivesPropertyDeletion(t *testing.T) {
	db := newTestDatabase(t)
	p := seedProperty(t, db, "Casa vendida")

	lead := &models.Lead{
		Name:          "Maria",
		Phone:         "+55 81 99999-0000",
		PropertyID:    &p.ID,
		PropertyTitle: p.Title,
		Type:          "whatsapp",
	}
	require.NoError(t, db.InsertLead(lead))
	require.NotZero(t, lead.ID)

	ok, err := db.DeleteProperty(p.ID)
	require.NoError(t, err)
	require.True(t, ok)

	leads, err := db.GetLeads("", 0)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "Casa vendida", leads[0].PropertyTitle)
}

func TestGetLeads_FilterAndLimit(t *testing.T) {
	db := newTestDatabase(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, db.InsertLead(&models.Lead{Name: "A", Phone: "1", Type: "gate"}))
	}
	require.NoError(t, db.InsertLead(&models.Lead{Name: "B", Phone: "2", Type: "contact"}))

	gates, err := db.GetLeads("gate", 0)
	require.NoError(t, err)
	assert.Len(t, gates, 3)

	limited, err := db.GetLeads("", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestGetDashboardStats(t *testing.T) {
	db := newTestDatabase(t)

	p := seedProperty(t, db, "Com visitas")
	seedProperty(t, db, "Sem visitas")
	_, err := db.ToggleFeatured(p.ID)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := db.IncrementViews(p.ID)
		require.NoError(t, err)
	}

	require.NoError(t, db.InsertLead(&models.Lead{Name: "A", Phone: "1", Type: "gate"}))
	require.NoError(t, db.InsertLead(&models.Lead{Name: "B", Phone: "2", Type: "gate"}))
	require.NoError(t, db.InsertLead(&models.Lead{Name: "C", Phone: "3", Type: "whatsapp"}))

	stats, err := db.GetDashboardStats()
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalProperties)
	assert.Equal(t, 5, stats.TotalViews)
	assert.Equal(t, 1, stats.FeaturedCount)
	assert.Equal(t, 3, stats.TotalLeads)
	assert.Equal(t, 2, stats.LeadsByType["gate"])
	assert.Equal(t, 1, stats.LeadsByType["whatsapp"])
	assert.Len(t, stats.RecentLeads, 3)
}
