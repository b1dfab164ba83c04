package domain

import "time"

// ExportDocument is the downloadable itinerary artifact.
// TotalVisaCost is always 0: the upstream visa service carries no pricing.
type ExportDocument struct {
	ID            string        `json:"id"`
	Nationality   string        `json:"nationality"`
	Route         []ExportEntry `json:"route"`
	TotalDistance int           `json:"totalDistance"`
	TotalVisaCost int           `json:"totalVisaCost"`
	ExportedAt    time.Time     `json:"exportedAt"`
}

// ExportEntry is one route entry inside an ExportDocument.
// Visa is never nil; destinations without data carry RequirementUnknown.
type ExportEntry struct {
	Name  string           `json:"name"`
	ISO   string           `json:"iso,omitempty"`
	Dates *Dates           `json:"dates,omitempty"`
	Notes string           `json:"notes,omitempty"`
	Visa  *VisaRequirement `json:"visa"`
}
