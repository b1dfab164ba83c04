// Package geo maps map-layer geometry identifiers to ISO 3166-1 alpha-2
// codes and display names, and derives representative points for clicked
// geometries.
//
// The lookup tables are static: they are built once at package
// initialisation and never mutated afterwards, so every function here is
// safe for concurrent use.
package geo

import (
	"fmt"
	"strings"
)

// placeholderID is what some map layers emit for features without an id.
const placeholderID = "undefined"

var (
	isoByID    map[string]string
	idByISO    map[string]string
	labelByISO map[string]string
)

func init() {
	isoByID = make(map[string]string, len(geographyTable))
	idByISO = make(map[string]string, len(geographyTable))
	labelByISO = make(map[string]string, len(geographyTable))
	for _, e := range geographyTable {
		if _, dup := isoByID[e.id]; dup {
			panic(fmt.Sprintf("geo: duplicate geography id %q", e.id))
		}
		if _, dup := idByISO[e.iso]; dup {
			panic(fmt.Sprintf("geo: duplicate iso code %q", e.iso))
		}
		isoByID[e.id] = e.iso
		idByISO[e.iso] = e.id
		labelByISO[e.iso] = e.label
	}
}

// ISOFromGeographyID returns the ISO code for a geometry id.
// Empty ids, the "undefined" placeholder and unmapped ids report false.
func ISOFromGeographyID(id string) (string, bool) {
	if id == "" || id == placeholderID {
		return "", false
	}
	iso, ok := isoByID[id]
	return iso, ok
}

// GeographyIDFromISO is the exact inverse of ISOFromGeographyID.
func GeographyIDFromISO(iso string) (string, bool) {
	id, ok := idByISO[strings.ToUpper(iso)]
	return id, ok
}

// CountryNameFromISO returns the English display name for iso. It never
// fails: unknown codes are returned unchanged.
func CountryNameFromISO(iso string) string {
	code := strings.ToUpper(iso)
	if name, ok := displayNames[code]; ok {
		return name
	}
	if label, ok := labelByISO[code]; ok && label != "" {
		return label
	}
	return iso
}

// Territory is the result of a full lookup by geometry id.
type Territory struct {
	ID   string `json:"id"`
	ISO  string `json:"iso"`
	Name string `json:"name"`
}

// LookupGeography resolves a geometry id to its ISO code and display name.
func LookupGeography(id string) (Territory, bool) {
	iso, ok := ISOFromGeographyID(id)
	if !ok {
		return Territory{}, false
	}
	return Territory{ID: id, ISO: iso, Name: CountryNameFromISO(iso)}, true
}

// Size reports how many geometry ids are mapped.
func Size() int { return len(isoByID) }
