package domain

// Requirement is the resolved visa category for a destination.
type Requirement string

const (
	RequirementVisaFree      Requirement = "visa-free"
	RequirementVisaRequired  Requirement = "visa-required"
	RequirementVisaOnArrival Requirement = "visa-on-arrival"
	RequirementEVisa         Requirement = "e-visa"
	RequirementNoAdmission   Requirement = "no-admission"

	// RequirementUnknown is never produced by the resolver; presentation
	// layers use it when no record exists for a destination.
	RequirementUnknown Requirement = "unknown"
)

// VisaRequirement is a resolved visa record for one destination, keyed by
// destination ISO code inside a RequirementMap.
type VisaRequirement struct {
	Country     string      `json:"country"`
	CountryCode string      `json:"countryCode"`
	Requirement Requirement `json:"requirement"`
	Duration    *int        `json:"duration,omitempty"` // days
	Notes       string      `json:"notes,omitempty"`
}

// RequirementMap maps destination ISO codes to resolved requirements for a
// single passport nationality.
type RequirementMap map[string]VisaRequirement

// Destination is one entry of a categorized destination list returned by
// the visa data service.
type Destination struct {
	Name         string `json:"name"`
	Code         string `json:"code"`
	DurationDays *int   `json:"duration"`
}

// CountryVisaData is the normalized per-passport response of the visa data
// service: five categorized destination lists.
type CountryVisaData struct {
	Name          string        `json:"name"`
	Code          string        `json:"code"`
	VisaFree      []Destination `json:"visaFree"`
	VisaOnArrival []Destination `json:"visaOnArrival"`
	EVisa         []Destination `json:"eVisa"`
	VisaRequired  []Destination `json:"visaRequired"`
	NoAdmission   []Destination `json:"noAdmission"`
	LastUpdated   string        `json:"lastUpdated,omitempty"`
}
