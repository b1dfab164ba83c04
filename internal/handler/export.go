package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkordes/visa-planner/internal/domain"
)

// csvHeaders are the column names written as the first row of a CSV export.
var csvHeaders = []string{
	"position", "name", "iso", "arrival", "departure",
	"notes", "requirement", "duration_days",
}

// GetExport handles GET /session/export. JSON by default, ?format=csv for
// one row per route entry. Both download as trip-{nationality}-{date}.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	var format *string
	if !queryOptional(w, r, "format", &format) {
		return
	}
	wantCSV := false
	if format != nil {
		switch strings.ToLower(*format) {
		case "csv":
			wantCSV = true
		case "json":
		default:
			writeJSON(w, http.StatusBadRequest, requestBody("format must be json or csv"))
			return
		}
	}

	doc, err := s.planner.Export()
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	name := "trip-" + doc.Nationality + "-" + doc.ExportedAt.Format("2006-01-02")
	if wantCSV {
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.csv"`)
		buf := buildCSV(doc)
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck
		buf.WriteTo(w)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.json"`)
	writeJSON(w, http.StatusOK, doc)
}

// buildCSV encodes the export document as CSV.
func buildCSV(doc domain.ExportDocument) *bytes.Buffer {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for i, e := range doc.Route {
		//nolint:errcheck
		cw.Write(entryToCSVRecord(i+1, e))
	}
	cw.Flush()
	return &buf
}

// entryToCSVRecord flattens one export entry. Missing dates and durations
// are empty strings.
func entryToCSVRecord(position int, e domain.ExportEntry) []string {
	var arrival, departure string
	if e.Dates != nil {
		arrival, departure = e.Dates.Arrival, e.Dates.Departure
	}
	requirement, duration := string(domain.RequirementUnknown), ""
	if e.Visa != nil {
		requirement = string(e.Visa.Requirement)
		if e.Visa.Duration != nil {
			duration = strconv.Itoa(*e.Visa.Duration)
		}
	}
	return []string{
		strconv.Itoa(position),
		e.Name,
		e.ISO,
		arrival,
		departure,
		e.Notes,
		requirement,
		duration,
	}
}

// ShareResponse is the body of GET /session/share.
type ShareResponse struct {
	Text string `json:"text"`
}

// GetShare handles GET /session/share. ?format=text returns text/plain.
func (s *Server) GetShare(w http.ResponseWriter, r *http.Request) {
	var format *string
	if !queryOptional(w, r, "format", &format) {
		return
	}
	text, err := s.planner.ShareText()
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if format != nil && *format == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck
		w.Write([]byte(text))
		return
	}
	writeJSON(w, http.StatusOK, ShareResponse{Text: text})
}

// GetShareQR handles GET /session/share.png. ?size sets the edge length in
// pixels, between 64 and 1024.
func (s *Server) GetShareQR(w http.ResponseWriter, r *http.Request) {
	var size *int
	if !queryOptional(w, r, "size", &size) {
		return
	}
	px := 0
	if size != nil {
		if *size < 64 || *size > 1024 {
			writeJSON(w, http.StatusBadRequest, requestBody("size must be between 64 and 1024"))
			return
		}
		px = *size
	}
	png, err := s.planner.ShareQR(px)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write(png)
}
