package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, body string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGeocodeAddress(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, `[{"lat":"40.7128","lon":"-74.0060"}]`, &calls)
	g := NewGeocoder(Settings{BaseURL: srv.URL + "/", UserAgent: "test-agent"}, logrus.New())

	lat, lon, err := g.GeocodeAddress(context.Background(), "12 Maple St", "12345", "Springfield")
	require.NoError(t, err)
	assert.InDelta(t, 40.7128, lat, 1e-9)
	assert.InDelta(t, -74.0060, lon, 1e-9)

	// Second lookup is served from the cache
	_, _, err = g.GeocodeAddress(context.Background(), "12 maple st", "12345", "springfield")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGeocodeAddress_NoResults(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, `[]`, &calls)
	g := NewGeocoder(Settings{BaseURL: srv.URL, UserAgent: "test-agent"}, logrus.New())

	_, _, err := g.GeocodeAddress(context.Background(), "Nowhere 1", "", "Atlantis")
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestGeocodeAddress_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	g := NewGeocoder(Settings{BaseURL: srv.URL}, logrus.New())

	_, _, err := g.GeocodeAddress(context.Background(), "1 Main St", "", "Springfield")
	assert.ErrorContains(t, err, "status 503")
}

func TestGeocodeAddress_EmptyAddress(t *testing.T) {
	g := NewGeocoder(Settings{BaseURL: "http://unused"}, logrus.New())

	_, _, err := g.GeocodeAddress(context.Background(), " ", "", "")
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestGeocodeAddress_RespectsMinInterval(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, `[{"lat":"1","lon":"2"}]`, &calls)
	g := NewGeocoder(Settings{BaseURL: srv.URL, UserAgent: "test-agent", MinInterval: time.Hour}, logrus.New())

	_, _, err := g.GeocodeAddress(context.Background(), "1 Main St", "", "Springfield")
	require.NoError(t, err)

	// The next upstream call would have to wait an hour
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, _, err = g.GeocodeAddress(ctx, "2 Main St", "", "Springfield")
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
