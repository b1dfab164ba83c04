// Package visa fetches per-passport visa requirements from the remote visa
// data service, caches them, and resolves the effective requirement for a
// destination.
package visa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pkordes/visa-planner/internal/domain"
)

const (
	// DefaultBaseURL is the public passport visa API.
	DefaultBaseURL = "https://rough-sun-2523.fly.dev"

	defaultTimeout = 10 * time.Second

	// maxResponseBytes bounds a single country payload.
	maxResponseBytes = 4 << 20
)

// countryPayload mirrors GET /country/{code}.
type countryPayload struct {
	Name        string               `json:"name"`
	Code        string               `json:"code"`
	VR          []destinationPayload `json:"VR"`
	VOA         []destinationPayload `json:"VOA"`
	VF          []destinationPayload `json:"VF"`
	EV          []destinationPayload `json:"EV"`
	NA          []destinationPayload `json:"NA"`
	LastUpdated string               `json:"last_updated"`
}

type destinationPayload struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	Duration *int   `json:"duration"`
}

// Client talks to the visa data service. All results are memoized in a
// Cache owned by the client; concurrent requests for the same passport code
// share one upstream call.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *Cache
	log     *slog.Logger
	group   singleflight.Group

	mu          sync.Mutex
	lastUpdated string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithCache replaces the default 24h cache.
func WithCache(cache *Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithLogger sets the logger used for fetch failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient constructs a Client for baseURL. An empty baseURL uses
// DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		cache:   NewCache(DefaultTTL, nil),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchCountryVisaData returns the categorized destination lists for a
// passport code, or nil on any transport, status or decode failure.
// Failures are logged, never returned.
func (c *Client) FetchCountryVisaData(ctx context.Context, code string) *domain.CountryVisaData {
	code = normalizeCode(code)
	key := "country-" + code

	if v, ok := c.cache.Get(key); ok {
		return v.(*domain.CountryVisaData)
	}

	// The flight is keyed by generation so a fetch started after ClearCache
	// never joins one started before it. It runs detached from any single
	// caller's cancellation; the http.Client timeout bounds it.
	gen := c.cache.Generation()
	flight := fmt.Sprintf("%s@%d", key, gen)
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(flight, func() (any, error) {
		data, err := c.get(detached, code)
		if err != nil {
			return nil, err
		}
		if c.cache.SetFor(gen, key, data) && data.LastUpdated != "" {
			c.mu.Lock()
			c.lastUpdated = data.LastUpdated
			c.mu.Unlock()
		}
		return data, nil
	})

	select {
	case <-ctx.Done():
		c.log.WarnContext(ctx, "visa data fetch abandoned", "passport", code, "error", ctx.Err())
		return nil
	case r := <-ch:
		if r.Err != nil {
			c.log.WarnContext(ctx, "visa data fetch failed", "passport", code, "error", r.Err)
			return nil
		}
		return r.Val.(*domain.CountryVisaData)
	}
}

// FetchAllVisaRequirements flattens the five categorized lists for a
// passport into a map keyed by destination ISO code.
//
// When the upstream fetch fails the result is an empty, non-nil map and a
// nil error. An error is returned only when ctx is done, so callers can
// tell an abandoned request apart from a service with no data.
func (c *Client) FetchAllVisaRequirements(ctx context.Context, code string) (domain.RequirementMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("visa.Client.FetchAllVisaRequirements: %w", err)
	}

	code = normalizeCode(code)
	key := "all-" + code

	if v, ok := c.cache.Get(key); ok {
		return copyRequirements(v.(domain.RequirementMap)), nil
	}

	gen := c.cache.Generation()
	data := c.FetchCountryVisaData(ctx, code)
	if data == nil {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("visa.Client.FetchAllVisaRequirements: %w", err)
		}
		return domain.RequirementMap{}, nil
	}

	reqs := Flatten(data)
	c.cache.SetFor(gen, key, reqs)
	return copyRequirements(reqs), nil
}

// ClearCache purges every cached entry and forgets the last-updated
// timestamp.
func (c *Client) ClearCache() {
	c.cache.Clear()
	c.mu.Lock()
	c.lastUpdated = ""
	c.mu.Unlock()
}

// LastUpdated returns the last_updated stamp of the most recent successful
// fetch, or "" when nothing has been fetched since the last ClearCache.
func (c *Client) LastUpdated() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUpdated
}

// Stats reports the cache contents.
func (c *Client) Stats() CacheStats {
	return c.cache.Stats()
}

func (c *Client) get(ctx context.Context, code string) (*domain.CountryVisaData, error) {
	endpoint := c.baseURL + "/country/" + url.PathEscape(code)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, fmt.Errorf("request %s: unexpected status %d", endpoint, resp.StatusCode)
	}

	var payload countryPayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return payload.normalize(), nil
}

func (p countryPayload) normalize() *domain.CountryVisaData {
	return &domain.CountryVisaData{
		Name:          p.Name,
		Code:          p.Code,
		VisaFree:      destinations(p.VF),
		VisaOnArrival: destinations(p.VOA),
		EVisa:         destinations(p.EV),
		VisaRequired:  destinations(p.VR),
		NoAdmission:   destinations(p.NA),
		LastUpdated:   p.LastUpdated,
	}
}

func destinations(in []destinationPayload) []domain.Destination {
	out := make([]domain.Destination, 0, len(in))
	for _, d := range in {
		out = append(out, domain.Destination{Name: d.Name, Code: d.Code, DurationDays: d.Duration})
	}
	return out
}

// Flatten tags every destination with its category. Lists are applied in
// the fixed order visa-free, visa-on-arrival, e-visa, visa-required,
// no-admission; a code listed twice keeps the later category.
func Flatten(data *domain.CountryVisaData) domain.RequirementMap {
	reqs := make(domain.RequirementMap)
	if data == nil {
		return reqs
	}

	groups := []struct {
		list []domain.Destination
		req  domain.Requirement
	}{
		{data.VisaFree, domain.RequirementVisaFree},
		{data.VisaOnArrival, domain.RequirementVisaOnArrival},
		{data.EVisa, domain.RequirementEVisa},
		{data.VisaRequired, domain.RequirementVisaRequired},
		{data.NoAdmission, domain.RequirementNoAdmission},
	}
	for _, g := range groups {
		for _, d := range g.list {
			r := domain.VisaRequirement{
				Country:     d.Name,
				CountryCode: d.Code,
				Requirement: g.req,
				Duration:    d.DurationDays,
			}
			switch {
			case g.req == domain.RequirementNoAdmission:
				r.Notes = "Entry not permitted"
			case d.DurationDays != nil && *d.DurationDays > 0:
				r.Notes = fmt.Sprintf("Stay up to %d days", *d.DurationDays)
			}
			reqs[d.Code] = r
		}
	}
	return reqs
}

func copyRequirements(in domain.RequirementMap) domain.RequirementMap {
	out := make(domain.RequirementMap, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
