package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/pkordes/visa-planner/internal/domain"
	"github.com/pkordes/visa-planner/internal/metrics"
)

// DefaultQRSize is the edge length in pixels of the share QR code.
const DefaultQRSize = 256

// Export assembles the downloadable itinerary document.
func (s *PlannerService) Export() (domain.ExportDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nationality == "" {
		return domain.ExportDocument{}, fmt.Errorf("service.PlannerService.Export: %w", domain.ErrNoNationality)
	}
	countries := s.planner.Route()
	entries := make([]domain.ExportEntry, len(countries))
	for i, c := range countries {
		req := s.requirementLocked(c.ISO)
		entries[i] = domain.ExportEntry{
			Name:  c.Name,
			ISO:   c.ISO,
			Dates: c.Dates,
			Notes: c.Notes,
			Visa:  &req,
		}
	}
	return domain.ExportDocument{
		ID:            uuid.NewString(),
		Nationality:   s.nationality,
		Route:         entries,
		TotalDistance: metrics.TotalRouteDistanceKm(countries),
		ExportedAt:    s.now().UTC(),
	}, nil
}

// ShareText returns the plain-text itinerary summary.
func (s *PlannerService) ShareText() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nationality == "" {
		return "", fmt.Errorf("service.PlannerService.ShareText: %w", domain.ErrNoNationality)
	}
	return metrics.ShareText(s.planner.Route(), s.nationality, s.reqs), nil
}

// ShareQR renders the share text as a PNG QR code of size pixels.
func (s *PlannerService) ShareQR(size int) ([]byte, error) {
	text, err := s.ShareText()
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = DefaultQRSize
	}
	png, err := qrcode.Encode(text, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("service.PlannerService.ShareQR: %w", err)
	}
	return png, nil
}
