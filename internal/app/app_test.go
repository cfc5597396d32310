package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Marlvin12/perfit/internal/config"
	"github.com/Marlvin12/perfit/internal/types"
	"github.com/Marlvin12/perfit/messaging"
	"github.com/Marlvin12/perfit/watch"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	defaults := types.DefaultConfig()
	return &config.Config{
		Fetch: config.FetchConfig{
			RequestDelay: 10 * time.Millisecond,
			MaxRetries:   1,
			Timeout:      time.Second,
			UserAgent:    defaults.UserAgent,
		},
		API:     config.APIConfig{BaseURL: "http://127.0.0.1:1/v1", Timeout: time.Second},
		Storage: config.StorageConfig{Sync: "memory"},
		Server:  config.ServerConfig{Port: "8080"},
		Log:     config.LogConfig{Level: "info"},
		Watch:   config.WatchConfig{Interval: 5 * time.Millisecond},
	}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := New(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestNew_InMemory(t *testing.T) {
	a := newTestApp(t, testConfig())

	assert.Equal(t, 8, a.Registry.Len())
	assert.NotNil(t, a.Detector)
	assert.NotNil(t, a.Adapter)
	assert.NotNil(t, a.API)

	resp := a.Router.Handle(context.Background(), messaging.Message{Type: messaging.GetAuthState})
	assert.True(t, resp.Success)
}

func TestNew_SQLiteAndSiteFile(t *testing.T) {
	dir := t.TempDir()
	sitesFile := filepath.Join(dir, "sites.yaml")
	require.NoError(t, os.WriteFile(sitesFile, []byte(`
sites:
  - domain: shop.example.com
    name: Example
    url_pattern: ^/item/
    try_on_button_target: .buy
    selectors:
      product_container: main
      product_name: h1
      product_images: img
`), 0644))

	cfg := testConfig()
	cfg.Sites.File = sitesFile
	cfg.Storage.LocalPath = filepath.Join(dir, "state", "perfit.db")

	a := newTestApp(t, cfg)
	assert.Equal(t, 9, a.Registry.Len())

	require.NoError(t, a.Store.SetAuthToken(context.Background(), "tok"))
	_, err := os.Stat(cfg.Storage.LocalPath)
	assert.NoError(t, err)
}

func TestNew_BadSiteFile(t *testing.T) {
	cfg := testConfig()
	cfg.Sites.File = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := New(context.Background(), cfg, testLogger())
	assert.Error(t, err)
}

// fakeSession serves a fixed page and records marker injections
type fakeSession struct {
	mu       sync.Mutex
	location string
	html     string
	anchors  []string
}

func (f *fakeSession) Snapshot(ctx context.Context) (string, string, error) {
	return f.location, f.html, nil
}

func (f *fakeSession) MarkerPresent(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.anchors) > 0, nil
}

func (f *fakeSession) InjectMarker(ctx context.Context, anchorSelector string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.anchors = append(f.anchors, anchorSelector)
	return true, nil
}

const uniqloPage = `<html><body><div id="productDetail">
	<h1>Seamless Yoga Leggings</h1>
	<div class="product-image"><img src="https://image.uniqlo.com/1.jpg"></div>
	<button class="fr-ec-cta-button">Add to cart</button>
</div></body></html>`

func TestPageWatcher_Scan(t *testing.T) {
	a := newTestApp(t, testConfig())
	session := &fakeSession{location: "https://www.uniqlo.com/us/en/products/E455123-000", html: uniqloPage}

	var reports []types.PageReport
	w := NewPageWatcher(a, session, func(r types.PageReport) { reports = append(reports, r) })

	require.NoError(t, w.Scan(context.Background(), watch.Signal{Reason: watch.PageReady}))
	require.NoError(t, w.Scan(context.Background(), watch.Signal{Reason: watch.MarkerMissing}))

	require.Len(t, reports, 1)
	assert.Equal(t, types.CategoryBottom, reports[0].Product.Category)
	assert.Equal(t, []string{".fr-ec-cta-button, [data-test='add-to-cart-button']", ".fr-ec-cta-button, [data-test='add-to-cart-button']"}, session.anchors)
}

func TestPageWatcher_NoProduct(t *testing.T) {
	a := newTestApp(t, testConfig())
	session := &fakeSession{location: "https://www.uniqlo.com/us/en/women", html: uniqloPage}

	called := false
	w := NewPageWatcher(a, session, func(types.PageReport) { called = true })

	require.NoError(t, w.Scan(context.Background(), watch.Signal{Reason: watch.PageReady}))
	assert.False(t, called)
	assert.Empty(t, session.anchors)
}

func TestPageWatcher_Run(t *testing.T) {
	a := newTestApp(t, testConfig())
	session := &fakeSession{location: "https://www.uniqlo.com/us/en/products/E455123-000", html: uniqloPage}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	reports := 0
	err := NewPageWatcher(a, session, func(types.PageReport) { reports++ }).Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, reports)
	// the marker stays present after the first pass, so nothing re-injects it
	assert.Len(t, session.anchors, 1)
}
