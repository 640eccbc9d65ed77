package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var ErrNoResults = errors.New("no geocoding results")

type Settings struct {
	BaseURL     string
	UserAgent   string
	MinInterval time.Duration
}

// Geocoder resolves postal addresses through a Nominatim compatible search
// endpoint. Results are cached for the lifetime of the instance and upstream
// calls are spaced at least MinInterval apart.
type Geocoder struct {
	logger    *logrus.Logger
	settings  Settings
	cache     map[string][2]float64
	cacheLock sync.RWMutex
	limiter   *rate.Limiter
	client    *http.Client
}

func NewGeocoder(settings Settings, logger *logrus.Logger) *Geocoder {
	if logger == nil {
		logger = logrus.New()
	}
	settings.BaseURL = strings.TrimRight(settings.BaseURL, "/")

	limit := rate.Inf
	if settings.MinInterval > 0 {
		limit = rate.Every(settings.MinInterval)
	}

	return &Geocoder{
		logger:   logger,
		settings: settings,
		cache:    make(map[string][2]float64),
		limiter:  rate.NewLimiter(limit, 1),
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type nominatimResponse []struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (g *Geocoder) GeocodeAddress(ctx context.Context, street, postalCode, city string) (float64, float64, error) {
	cacheKey := strings.ToLower(fmt.Sprintf("%s|%s|%s", street, postalCode, city))
	fullAddress := joinAddress(street, postalCode, city)
	if fullAddress == "" {
		return 0, 0, fmt.Errorf("%w: empty address", ErrNoResults)
	}

	g.cacheLock.RLock()
	coords, ok := g.cache[cacheKey]
	g.cacheLock.RUnlock()
	if ok {
		g.logger.WithFields(logrus.Fields{
			"address": fullAddress,
			"source":  "cache",
		}).Debug("Found coordinates in cache")
		return coords[0], coords[1], nil
	}

	// Respect the upstream usage policy
	if err := g.limiter.Wait(ctx); err != nil {
		return 0, 0, err
	}

	params := url.Values{
		"q":      []string{fullAddress},
		"format": []string{"json"},
		"limit":  []string{"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.settings.BaseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", g.settings.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.WithError(err).WithField("address", fullAddress).Error("Geocoding request failed")
		return 0, 0, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocoding request failed: status %d", resp.StatusCode)
	}

	var result nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, 0, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(result) == 0 {
		g.logger.WithField("address", fullAddress).Warn("No results found")
		return 0, 0, fmt.Errorf("%w for address: %s", ErrNoResults, fullAddress)
	}

	lat, err := strconv.ParseFloat(result[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q: %w", result[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(result[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q: %w", result[0].Lon, err)
	}

	g.logger.WithFields(logrus.Fields{
		"address":   fullAddress,
		"latitude":  lat,
		"longitude": lon,
		"source":    "nominatim",
	}).Info("Successfully geocoded address")

	g.cacheLock.Lock()
	g.cache[cacheKey] = [2]float64{lat, lon}
	g.cacheLock.Unlock()

	return lat, lon, nil
}

func joinAddress(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
