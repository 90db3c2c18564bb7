package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"eventsnap/internal/domain"
)

// DefaultBaseURL points at the public Nominatim instance. Deployments with
// real traffic should run their own and respect the usage policy.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

type nominatimGeocoder struct {
	client  *http.Client
	baseURL string
}

// NewNominatimGeocoder returns a Geocoder backed by a Nominatim-compatible
// search endpoint.
func NewNominatimGeocoder(client *http.Client, baseURL string) domain.Geocoder {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &nominatimGeocoder{client: client, baseURL: baseURL}
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode resolves address to coordinates. An address the service does not
// know yields (nil, nil), never an error.
func (g *nominatimGeocoder) Geocode(ctx context.Context, address string) (*domain.Coordinates, error) {
	endpoint := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", g.baseURL, url.QueryEscape(address))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "eventsnap")
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from geocoder: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder returned status: %d", resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode geocoder response: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("bad latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("bad longitude %q: %w", results[0].Lon, err)
	}
	return &domain.Coordinates{Latitude: lat, Longitude: lon}, nil
}
