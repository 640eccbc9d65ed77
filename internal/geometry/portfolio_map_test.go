package geometry

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func located(id int64, lat, lon float64) MapItem {
	return MapItem{
		PropertyID:     id,
		Name:           "House",
		Latitude:       &lat,
		Longitude:      &lon,
		CompositeValue: decimal.NewFromInt(450000),
	}
}

func TestPortfolioMap_Empty(t *testing.T) {
	m := PortfolioMap(nil)
	assert.Empty(t, m.Features.Features)
	assert.Nil(t, m.Bound)
	assert.Empty(t, m.Unlocated)
}

func TestPortfolioMap_PointsAndBound(t *testing.T) {
	m := PortfolioMap([]MapItem{
		located(1, 40.0, -74.0),
		{PropertyID: 2, Name: "Unmapped"},
		located(3, 41.0, -73.5),
	})

	require.Len(t, m.Features.Features, 2)
	assert.Equal(t, []int64{2}, m.Unlocated)

	first := m.Features.Features[0]
	assert.Equal(t, orb.Point{-74.0, 40.0}, first.Geometry)
	assert.Equal(t, "450000.00", first.Properties["composite_value"])
	assert.Equal(t, "property", first.Properties["kind"])

	require.NotNil(t, m.Bound)
	assert.Equal(t, orb.Point{-74.0, 40.0}, m.Bound.Min)
	assert.Equal(t, orb.Point{-73.5, 41.0}, m.Bound.Max)
}

func TestPortfolioMap_Footprint(t *testing.T) {
	m := PortfolioMap([]MapItem{
		located(1, 0, 0),
		located(2, 0, 2),
		located(3, 2, 2),
		located(4, 2, 0),
		located(5, 1, 1),
	})

	require.Len(t, m.Features.Features, 6)
	footprint := m.Features.Features[5]
	assert.Equal(t, "footprint", footprint.Properties["kind"])

	polygon, ok := footprint.Geometry.(orb.Polygon)
	require.True(t, ok)
	require.Len(t, polygon, 1)
	// Four corners plus the closing point; the interior point is dropped
	assert.Len(t, polygon[0], 5)
	assert.True(t, polygon[0].Closed())
	assert.Equal(t, orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{2, 2}}, polygon.Bound())
}

func TestPortfolioMap_CollinearHasNoFootprint(t *testing.T) {
	m := PortfolioMap([]MapItem{
		located(1, 0, 0),
		located(2, 1, 1),
		located(3, 2, 2),
	})
	assert.Len(t, m.Features.Features, 3)
}

func TestPortfolioMap_MarshalsAsGeoJSON(t *testing.T) {
	m := PortfolioMap([]MapItem{located(1, 40.0, -74.0)})

	data, err := json.Marshal(m.Features)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"FeatureCollection"`)
	assert.Contains(t, string(data), `"coordinates":[-74,40]`)
}
