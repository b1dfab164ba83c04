package geo

// presetNationalities is the short list offered by the nationality picker.
// Any other well-formed code is still accepted by the planner.
var presetNationalities = []string{
	"RU", "US", "GB", "CA", "AU", "DE", "FR", "IT", "ES", "CN",
	"JP", "IN", "BR", "MX", "KR", "NL", "CH", "SG", "NZ", "SE",
}

// Nationality is a selectable passport nationality.
type Nationality struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// PresetNationalities returns the picker list in display order.
// The returned slice is a fresh copy.
func PresetNationalities() []Nationality {
	out := make([]Nationality, len(presetNationalities))
	for i, code := range presetNationalities {
		out[i] = Nationality{Code: code, Name: CountryNameFromISO(code)}
	}
	return out
}
