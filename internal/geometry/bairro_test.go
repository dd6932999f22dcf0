package geometry

import (
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imobiliaria/server/internal/database"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestConvexHull_SquareWithInteriorPoint(t *testing.T) {
	points := []orb.Point{
		{0, 0}, {4, 0}, {4, 4}, {0, 4},
		{2, 2}, // interior, must not appear in the hull
	}

	hull := convexHull(points)
	require.NotNil(t, hull)

	// Closed ring: 4 corners plus the repeated first point.
	assert.Len(t, hull, 5)
	assert.Equal(t, hull[0], hull[len(hull)-1])
	for _, p := range hull {
		assert.NotEqual(t, orb.Point{2, 2}, p)
	}
}

func TestConvexHull_DegenerateInputs(t *testing.T) {
	assert.Nil(t, convexHull(nil))
	assert.Nil(t, convexHull([]orb.Point{{0, 0}, {1, 1}}))
	assert.Nil(t, convexHull([]orb.Point{{0, 0}, {1, 1}, {2, 2}}), "collinear points have no area")
}

func TestBairroManager_Refresh(t *testing.T) {
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	defer db.Close()

	insert := func(bairro string, lat, lon float64) {
		_, err := db.GetDB().Exec(`
			INSERT INTO properties (title, price, bairro, tipo, latitude, longitude)
			VALUES ('P', 'R$ 1', ?, 'Casa', ?, ?)
		`, bairro, lat, lon)
		require.NoError(t, err)
	}

	// Enough points for a hull
	insert("Boa Viagem", -8.10, -34.90)
	insert("Boa Viagem", -8.12, -34.89)
	insert("Boa Viagem", -8.11, -34.92)
	insert("Boa Viagem", -8.13, -34.91)

	// Too few points, skipped
	insert("Pina", -8.09, -34.88)
	insert("Pina", -8.08, -34.88)

	manager := NewBairroManager(db, quietLogger())
	require.NoError(t, manager.Refresh())

	fc := manager.FeatureCollection()
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "Boa Viagem", fc.Features[0].Properties["bairro"])
	assert.Equal(t, 4, fc.Features[0].Properties["point_count"])
}

func TestBairroManager_EmptyDatabase(t *testing.T) {
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	defer db.Close()

	manager := NewBairroManager(db, quietLogger())
	require.NoError(t, manager.Refresh())
	assert.Empty(t, manager.FeatureCollection().Features)
}
