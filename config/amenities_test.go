package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAmenities_MissingFileFallsBackToDefaults(t *testing.T) {
	require.NoError(t, LoadAmenities())

	catalog := GetAmenities()
	assert.NotEmpty(t, catalog.Common)
	assert.NotEmpty(t, catalog.Private)
	assert.Contains(t, catalog.Common, "Piscina")
}

func TestGetAmenities_ReturnsACopy(t *testing.T) {
	require.NoError(t, LoadAmenities())

	catalog := GetAmenities()
	require.NotEmpty(t, catalog.Common)
	catalog.Common[0] = "alterado"

	again := GetAmenities()
	assert.NotEqual(t, "alterado", again.Common[0])
}
