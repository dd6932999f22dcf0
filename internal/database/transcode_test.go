package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanProperty_CorruptJSONDegradesToEmpty(t *testing.T) {
	db := newTestDatabase(t)

	result, err := db.GetDB().Exec(`
		INSERT INTO properties (title, price, bairro, tipo, images, tags, features, multimedia)
		VALUES ('Corrompido', 'R$ 1', 'Centro', 'Casa', '{not json', 'nope', '[]', '"str"')
	`)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)

	got, err := db.GetProperty(id)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, []string{}, got.Images)
	assert.Equal(t, []string{}, got.Tags)
	assert.NotNil(t, got.Features.Common)
	assert.Empty(t, got.Features.Common)
	assert.NotNil(t, got.Features.Private)
	assert.Empty(t, got.Multimedia.VideoURL)
}

func TestScanProperty_NullColumnsDegradeToDefaults(t *testing.T) {
	db := newTestDatabase(t)

	result, err := db.GetDB().Exec(`
		INSERT INTO properties (title, price, bairro, tipo)
		VALUES ('Mínimo', 'R$ 1', 'Centro', 'Casa')
	`)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)

	got, err := db.GetProperty(id)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "Venda", got.TransactionType, "NULL enum falls back to default")
	assert.Equal(t, "disponivel", got.Status)
	assert.Equal(t, []string{}, got.Images)
	assert.Equal(t, []string{}, got.Tags)
	assert.NotNil(t, got.Features.Common)
	assert.Nil(t, got.Latitude)
	assert.Nil(t, got.Longitude)
}

func TestScanProperty_FeaturesPartialObject(t *testing.T) {
	db := newTestDatabase(t)

	result, err := db.GetDB().Exec(`
		INSERT INTO properties (title, price, bairro, tipo, features)
		VALUES ('Parcial', 'R$ 1', 'Centro', 'Casa', '{"common":{"piscina":true}}')
	`)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)

	got, err := db.GetProperty(id)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.True(t, got.Features.Common["piscina"])
	assert.NotNil(t, got.Features.Private, "missing half still decodes to an empty map")
}
