package bootstrap

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creamcroissant/sub2xray/internal/config"
	"github.com/creamcroissant/sub2xray/internal/support/logging"
)

func testConfig(t *testing.T, url string, metrics bool) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Subscription: config.SubscriptionConfig{URL: url, Timeout: 2 * time.Second},
		Storage:      config.StorageConfig{Dir: filepath.Join(dir, "out")},
		Rules:        config.RulesConfig{Path: filepath.Join(dir, "rules.json")},
		Inbound:      config.InboundConfig{HTTPPort: 10809},
		Serve:        config.ServeConfig{CacheTTL: time.Minute},
		Metrics:      config.MetricsConfig{Enabled: metrics, Namespace: "test"},
	}
}

func TestBuildAppRequiresConfig(t *testing.T) {
	_, err := BuildApp(nil, nil)
	assert.Error(t, err)
}

func TestBuildAppServesRefreshedSnapshot(t *testing.T) {
	body := base64.StdEncoding.EncodeToString([]byte("trojan://pw@t.example.com:443?sni=t.example.com#JP"))
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, body)
	}))
	defer upstream.Close()

	app, err := BuildApp(testConfig(t, upstream.URL, true), logging.Discard())
	require.NoError(t, err)
	require.NotNil(t, app.Metrics)
	assert.Equal(t, 10809, app.InboundOptions().HTTPPort)

	snap, err := app.Catalog.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Servers, 1)
	assert.FileExists(t, app.Store.RecordPath(1))

	srv := httptest.NewServer(app.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/servers/1/config")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	metrics, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	data, err := io.ReadAll(metrics.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "test_decode_records_total")
	assert.Contains(t, string(data), "go_goroutines")
}

func TestBuildAppWithoutMetrics(t *testing.T) {
	app, err := BuildApp(testConfig(t, "", false), logging.Discard())
	require.NoError(t, err)
	assert.Nil(t, app.Metrics)
	assert.Nil(t, app.Registry)

	srv := httptest.NewServer(app.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNewHTTPServer(t *testing.T) {
	srv := NewHTTPServer("127.0.0.1:0", http.NotFoundHandler())
	assert.Equal(t, "127.0.0.1:0", srv.Addr)
	assert.Equal(t, 10*time.Second, srv.ReadHeaderTimeout)
}
