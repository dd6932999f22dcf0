package geometry

import (
	"sort"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"

	"imobiliaria/server/internal/database"
)

// BairroManager maintains convex-hull outlines per bairro, computed from
// the geocoded coordinates of the listings themselves. The public site
// draws these instead of an exact marker when a property hides its
// address.
type BairroManager struct {
	db     *database.Database
	logger *logrus.Logger

	mu        sync.RWMutex
	hulls     *geojson.FeatureCollection
	refreshed time.Time
}

func NewBairroManager(db *database.Database, logger *logrus.Logger) *BairroManager {
	return &BairroManager{
		db:     db,
		logger: logger,
		hulls:  geojson.NewFeatureCollection(),
	}
}

// Refresh recomputes every bairro hull from the current coordinates.
// Bairros with fewer than 3 geocoded listings are skipped.
func (m *BairroManager) Refresh() error {
	grouped, err := m.db.GetBairroPoints()
	if err != nil {
		return err
	}

	fc := geojson.NewFeatureCollection()
	for bairro, coords := range grouped {
		if len(coords) < 3 {
			m.logger.Debugf("Not enough points for bairro %s (minimum 3 required)", bairro)
			continue
		}

		points := make([]orb.Point, len(coords))
		for i, c := range coords {
			// orb points are (lon, lat)
			points[i] = orb.Point{c[1], c[0]}
		}

		hull := convexHull(points)
		if hull == nil {
			continue
		}

		feature := geojson.NewFeature(orb.Polygon{hull})
		feature.Properties = geojson.Properties{
			"bairro":      bairro,
			"point_count": len(coords),
		}
		fc.Append(feature)
	}

	m.mu.Lock()
	m.hulls = fc
	m.refreshed = time.Now()
	m.mu.Unlock()

	m.logger.Infof("Refreshed %d bairro hulls", len(fc.Features))
	return nil
}

// FeatureCollection returns the current hulls as GeoJSON.
func (m *BairroManager) FeatureCollection() *geojson.FeatureCollection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hulls
}

// convexHull runs a Graham scan over the points and returns a closed
// ring, or nil when the input is degenerate.
func convexHull(points []orb.Point) orb.Ring {
	if len(points) < 3 {
		return nil
	}

	pts := append([]orb.Point(nil), points...)

	// Anchor at the lowest point, leftmost on ties
	sort.Slice(pts, func(i, j int) bool {
		if pts[i][1] != pts[j][1] {
			return pts[i][1] < pts[j][1]
		}
		return pts[i][0] < pts[j][0]
	})
	anchor := pts[0]

	sort.Slice(pts[1:], func(i, j int) bool {
		a, b := pts[1+i], pts[1+j]
		c := cross(anchor, a, b)
		if c != 0 {
			return c > 0
		}
		return sqDist(anchor, a) < sqDist(anchor, b)
	})

	hull := []orb.Point{pts[0], pts[1]}
	for i := 2; i < len(pts); i++ {
		for len(hull) > 1 && cross(hull[len(hull)-2], hull[len(hull)-1], pts[i]) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, pts[i])
	}

	if len(hull) < 3 {
		return nil
	}

	hull = append(hull, hull[0])
	return orb.Ring(hull)
}

func cross(o, a, b orb.Point) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}

func sqDist(a, b orb.Point) float64 {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	return dx*dx + dy*dy
}
