// Package geo resolves an origin IP to a human-readable location label.
// Resolution is best-effort: an empty label is a valid outcome and
// never an error for callers that record sessions or events.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/config"
)

type Resolver interface {
	// Resolve returns a label like "Berlin, Germany", or "" when the
	// IP cannot be resolved.
	Resolve(ctx context.Context, ip string) string
}

// NopResolver is used when geolocation is disabled in config.
type NopResolver struct{}

func (NopResolver) Resolve(context.Context, string) string { return "" }

// HTTPResolver queries an ip-api style JSON endpoint.
type HTTPResolver struct {
	endpoint string
	client   *http.Client
}

func NewHTTPResolver(cfg config.GeoConfig) *HTTPResolver {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HTTPResolver{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type geoResponse struct {
	Status  string `json:"status"`
	City    string `json:"city"`
	Country string `json:"country"`
}

func (r *HTTPResolver) Resolve(ctx context.Context, ip string) string {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.IsLoopback() || parsed.IsPrivate() {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", r.endpoint, ip), nil)
	if err != nil {
		return ""
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var body geoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ""
	}
	if body.Status != "success" {
		return ""
	}

	switch {
	case body.City != "" && body.Country != "":
		return body.City + ", " + body.Country
	case body.Country != "":
		return body.Country
	default:
		return ""
	}
}
