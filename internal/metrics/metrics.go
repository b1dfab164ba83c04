// Package metrics derives trip figures from a route: great-circle distance,
// the visa-free share and the plain-text itinerary summary.
package metrics

import (
	"math"

	"github.com/golang/geo/s2"

	"github.com/pkordes/visa-planner/internal/domain"
	"github.com/pkordes/visa-planner/internal/visa"
)

// EarthRadiusKm is the mean Earth radius used for all distances.
const EarthRadiusKm = 6371.0

// HaversineDistanceKm returns the great-circle distance between two
// [lon, lat] points in kilometres.
func HaversineDistanceKm(a, b domain.Coordinates) float64 {
	p1 := s2.LatLngFromDegrees(a.Lat(), a.Lon())
	p2 := s2.LatLngFromDegrees(b.Lat(), b.Lon())
	return p1.Distance(p2).Radians() * EarthRadiusKm
}

// TotalRouteDistanceKm sums the legs between consecutive entries and rounds
// to the nearest kilometre. Routes with fewer than two entries are 0.
func TotalRouteDistanceKm(route []domain.Country) int {
	if len(route) < 2 {
		return 0
	}
	var total float64
	for i := 1; i < len(route); i++ {
		total += HaversineDistanceKm(route[i-1].Coordinates, route[i].Coordinates)
	}
	return int(math.Round(total))
}

// VisaFreeRatio counts the entries whose resolved requirement is visa-free.
// The caller decides how to present count against total.
func VisaFreeRatio(route []domain.Country, nationality string, reqs domain.RequirementMap) (count, total int) {
	for _, c := range route {
		r, ok := visa.ResolveForCountry(c.ISO, nationality, reqs)
		if ok && r.Requirement == domain.RequirementVisaFree {
			count++
		}
	}
	return count, len(route)
}
