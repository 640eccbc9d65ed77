package geometry

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/shopspring/decimal"
)

// MapItem is one property to place on the portfolio map.
type MapItem struct {
	PropertyID     int64
	Name           string
	City           string
	Latitude       *float64
	Longitude      *float64
	CompositeValue decimal.Decimal
}

// Map is the GeoJSON rendering of a portfolio. Bound is nil when no property
// has coordinates.
type Map struct {
	Features  *geojson.FeatureCollection `json:"features"`
	Bound     *orb.Bound                 `json:"bound,omitempty"`
	Unlocated []int64                    `json:"unlocated"`
}

// PortfolioMap places every located property as a Point feature. With three
// or more distinct positions a "footprint" polygon (the convex hull) is added.
func PortfolioMap(items []MapItem) *Map {
	fc := geojson.NewFeatureCollection()
	m := &Map{Features: fc, Unlocated: []int64{}}

	points := make([]orb.Point, 0, len(items))
	for _, item := range items {
		if item.Latitude == nil || item.Longitude == nil {
			m.Unlocated = append(m.Unlocated, item.PropertyID)
			continue
		}

		p := orb.Point{*item.Longitude, *item.Latitude}
		points = append(points, p)

		feature := geojson.NewFeature(p)
		feature.ID = item.PropertyID
		feature.Properties = geojson.Properties{
			"kind":            "property",
			"property_id":     item.PropertyID,
			"name":            item.Name,
			"city":            item.City,
			"composite_value": item.CompositeValue.StringFixed(2),
		}
		fc.Append(feature)
	}

	if len(points) == 0 {
		return m
	}

	bound := orb.MultiPoint(points).Bound()
	m.Bound = &bound

	if hull := convexHull(points); hull != nil {
		footprint := geojson.NewFeature(orb.Polygon{hull})
		footprint.Properties = geojson.Properties{
			"kind":        "footprint",
			"point_count": len(points),
		}
		fc.Append(footprint)
	}
	return m
}

// convexHull returns the closed counter-clockwise hull of points, or nil when
// the points are fewer than three or collinear.
func convexHull(points []orb.Point) orb.Ring {
	sorted := make([]orb.Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i][0] != sorted[j][0] {
			return sorted[i][0] < sorted[j][0]
		}
		return sorted[i][1] < sorted[j][1]
	})

	unique := sorted[:0]
	for i, p := range sorted {
		if i == 0 || p != unique[len(unique)-1] {
			unique = append(unique, p)
		}
	}
	if len(unique) < 3 {
		return nil
	}

	// Andrew's monotone chain
	hull := make([]orb.Point, 0, 2*len(unique))
	for _, p := range unique {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(unique) - 2; i >= 0; i-- {
		p := unique[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	// hull ends on its first point, so a triangle has four entries
	if len(hull) < 4 {
		return nil
	}
	return orb.Ring(hull)
}

func cross(o, a, b orb.Point) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}
