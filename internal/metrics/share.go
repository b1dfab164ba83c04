package metrics

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pkordes/visa-planner/internal/domain"
)

const routeSeparator = " → "

// ShareText renders the itinerary summary handed to the clipboard:
//
//	My trip: Germany → Japan
//	Distance: 9,012 km
//	Visa-free: 2 / 2
func ShareText(route []domain.Country, nationality string, reqs domain.RequirementMap) string {
	names := make([]string, len(route))
	for i, c := range route {
		names[i] = c.Name
	}
	count, total := VisaFreeRatio(route, nationality, reqs)

	p := message.NewPrinter(language.English)
	var b strings.Builder
	b.WriteString("My trip: ")
	b.WriteString(strings.Join(names, routeSeparator))
	b.WriteString("\n")
	b.WriteString(p.Sprintf("Distance: %d km\n", TotalRouteDistanceKm(route)))
	b.WriteString(p.Sprintf("Visa-free: %d / %d", count, total))
	return b.String()
}
