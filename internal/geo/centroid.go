package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/pkordes/visa-planner/internal/domain"
)

// Centroid returns the representative [lon, lat] point of a clicked
// geometry.
//
//   - Polygon: mean of the outer ring's vertices.
//   - MultiPolygon: mean of the outer ring with the most vertices, as a
//     proxy for the largest landmass.
//
// Nil, empty or unsupported geometries yield [0, 0]; Centroid never panics.
func Centroid(g orb.Geometry) domain.Coordinates {
	switch v := g.(type) {
	case orb.Polygon:
		if len(v) == 0 {
			return domain.Coordinates{}
		}
		return ringMean(v[0])
	case orb.MultiPolygon:
		var largest orb.Ring
		for _, poly := range v {
			if len(poly) > 0 && len(poly[0]) > len(largest) {
				largest = poly[0]
			}
		}
		return ringMean(largest)
	case orb.Ring:
		return ringMean(v)
	case orb.Point:
		return domain.Coordinates{v[0], v[1]}
	default:
		return domain.Coordinates{}
	}
}

// CentroidFromGeoJSON decodes a GeoJSON geometry object and returns its
// centroid. Malformed input degrades to [0, 0].
func CentroidFromGeoJSON(raw []byte) domain.Coordinates {
	if len(raw) == 0 {
		return domain.Coordinates{}
	}
	g, err := geojson.UnmarshalGeometry(raw)
	if err != nil || g == nil {
		return domain.Coordinates{}
	}
	return Centroid(g.Geometry())
}

func ringMean(r orb.Ring) domain.Coordinates {
	if len(r) == 0 {
		return domain.Coordinates{}
	}
	var sumLon, sumLat float64
	for _, p := range r {
		sumLon += p[0]
		sumLat += p[1]
	}
	n := float64(len(r))
	return domain.Coordinates{sumLon / n, sumLat / n}
}
