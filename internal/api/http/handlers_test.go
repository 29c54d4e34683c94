package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/webtop/internal/domain/desktop"
	"github.com/GriffinCanCode/webtop/internal/domain/icons"
	"github.com/GriffinCanCode/webtop/internal/domain/theme"
	"github.com/GriffinCanCode/webtop/internal/domain/weather"
	"github.com/GriffinCanCode/webtop/internal/domain/windows"
	"github.com/GriffinCanCode/webtop/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webtop/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/webtop/internal/shared/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	router  *gin.Engine
	desktop *desktop.Desktop
}

func newFixture(t *testing.T, w *weather.Service) *fixture {
	t.Helper()
	opts := desktop.DefaultOptions()
	opts.Windows.Clock = func() time.Time { return time.UnixMilli(1700000000000) }
	opts.Viewport = types.Viewport{Width: 1920, Height: 1080}
	d := desktop.New(opts)
	require.True(t, d.Seed([]icons.Icon{
		{ID: "icon-home", Title: "Home", Image: "home.svg", Show: true, Size: types.Size{Width: 48, Height: 48}},
		{ID: "icon-documents", Title: "Documents", Image: "docs.svg", Show: true, Size: types.Size{Width: 48, Height: 48}},
	}))

	router := gin.New()
	NewHandlers(d, w, monitoring.NewMetrics(), nil).Register(router)
	return &fixture{router: router, desktop: d}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (f *fixture) open(t *testing.T, iconID string) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/icons/"+iconID+"/open", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[struct {
		WindowID string `json:"windowId"`
	}](t, rec).WindowID
}

func TestRootAndHealth(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "online", decode[map[string]any](t, rec)["status"])

	rec = f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	health := decode[map[string]any](t, rec)
	assert.Equal(t, "healthy", health["status"])
	assert.EqualValues(t, 2, health["icons"])
}

func TestOpenIconCentersWindow(t *testing.T) {
	f := newFixture(t, nil)

	windowID := f.open(t, "icon-home")
	assert.NotEmpty(t, windowID)

	rec := f.do(t, http.MethodGet, "/api/windows/"+windowID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	w := decode[windows.Window](t, rec)
	assert.True(t, w.IsActive)
	assert.Equal(t, "Home", w.Title)
	assert.Equal(t, 1920.0/2-w.Size.Width/2, w.Position.X)

	// Reopening focuses the same window
	assert.Equal(t, windowID, f.open(t, "icon-home"))
	assert.Len(t, f.desktop.Windows().Windows(), 1)
}

func TestOpenUnknownIcon(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodPost, "/api/icons/missing/open", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "missing")
}

func TestWindowLifecycle(t *testing.T) {
	f := newFixture(t, nil)
	home := f.open(t, "icon-home")
	docs := f.open(t, "icon-documents")

	rec := f.do(t, http.MethodPost, "/api/windows/"+home+"/focus", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decode[windows.State](t, rec)
	assert.Equal(t, home, state.ActiveWindowID)

	rec = f.do(t, http.MethodPost, "/api/windows/"+home+"/toggle-maximize", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	w, _ := f.desktop.Windows().Get(home)
	assert.True(t, w.IsMaximized)

	rec = f.do(t, http.MethodPost, "/api/windows/"+docs+"/minimize", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	w, _ = f.desktop.Windows().Get(docs)
	assert.True(t, w.IsMinimized)

	rec = f.do(t, http.MethodDelete, "/api/windows/"+home, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[windows.State](t, rec).Windows, 1)

	rec = f.do(t, http.MethodDelete, "/api/windows", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[windows.State](t, rec).Windows)
}

func TestWindowActionsUnknownID(t *testing.T) {
	f := newFixture(t, nil)
	for _, action := range []string{"focus", "minimize", "toggle-minimize", "toggle-maximize", "restore", "front"} {
		rec := f.do(t, http.MethodPost, "/api/windows/nope/"+action, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, action)
	}
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/windows/nope", nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodDelete, "/api/windows/nope", nil).Code)
}

func TestMoveAndResize(t *testing.T) {
	f := newFixture(t, nil)
	id := f.open(t, "icon-home")

	rec := f.do(t, http.MethodPut, "/api/windows/"+id+"/position", types.PositionRequest{X: 40, Y: 60})
	require.Equal(t, http.StatusOK, rec.Code)
	w, _ := f.desktop.Windows().Get(id)
	assert.Equal(t, types.Point{X: 40, Y: 60}, w.Position)

	rec = f.do(t, http.MethodPut, "/api/windows/"+id+"/size", types.SizeRequest{Width: 10, Height: 500})
	require.Equal(t, http.StatusOK, rec.Code)
	w, _ = f.desktop.Windows().Get(id)
	assert.Equal(t, 200.0, w.Size.Width)
	assert.Equal(t, 500.0, w.Size.Height)

	rec = f.do(t, http.MethodPut, "/api/windows/"+id+"/position", "not an object")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIconEndpoints(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/icons/icon-home/click", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decode[icons.State](t, rec)
	assert.True(t, state.Icons[0].IsHighlighted)

	rec = f.do(t, http.MethodPost, "/api/desktop/click", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[icons.State](t, rec).Icons[0].IsHighlighted)

	rec = f.do(t, http.MethodPost, "/api/icons", types.IconRequest{ID: "icon-music", Title: "Music"})
	require.Equal(t, http.StatusOK, rec.Code)
	icon, ok := f.desktop.Icons().Get("icon-music")
	require.True(t, ok)
	assert.Equal(t, types.Size{Width: 48, Height: 48}, icon.Size)

	rec = f.do(t, http.MethodPut, "/api/icons/icon-music/visibility", types.VisibilityRequest{Visible: false})
	require.Equal(t, http.StatusOK, rec.Code)
	icon, _ = f.desktop.Icons().Get("icon-music")
	assert.False(t, icon.Show)

	rec = f.do(t, http.MethodPut, "/api/icons/visibility", types.VisibilityRequest{Visible: true})
	require.Equal(t, http.StatusOK, rec.Code)
	for _, i := range decode[icons.State](t, rec).Icons {
		assert.True(t, i.Show, i.ID)
	}

	rec = f.do(t, http.MethodDelete, "/api/icons/icon-music", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[icons.State](t, rec).Icons, 2)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodDelete, "/api/icons/icon-music", nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/icons", map[string]string{"title": "x"}).Code)
}

func TestThemeEndpoints(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/api/theme", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[theme.State](t, rec)
	assert.Equal(t, theme.Dark, st.Theme)
	assert.True(t, st.SystemThemeEnabled)

	rec = f.do(t, http.MethodPut, "/api/theme", types.ThemeRequest{Theme: "light"})
	require.Equal(t, http.StatusOK, rec.Code)
	st = decode[theme.State](t, rec)
	assert.Equal(t, theme.Light, st.Theme)
	assert.False(t, st.SystemThemeEnabled)

	rec = f.do(t, http.MethodPost, "/api/theme/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, theme.Dark, decode[theme.State](t, rec).Theme)

	rec = f.do(t, http.MethodPut, "/api/theme/system", types.SystemThemeRequest{Enabled: true, SystemTheme: "light"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, theme.Light, decode[theme.State](t, rec).Theme)

	rec = f.do(t, http.MethodPost, "/api/theme/system-changed", types.ThemeRequest{Theme: "dark"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, theme.Dark, decode[theme.State](t, rec).Theme)

	rec = f.do(t, http.MethodPut, "/api/theme", types.ThemeRequest{Theme: "sepia"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestViewport(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPut, "/api/viewport", types.ViewportRequest{Width: 1024, Height: 768})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, types.Viewport{Width: 1024, Height: 768}, f.desktop.Viewport())

	rec = f.do(t, http.MethodPut, "/api/viewport", types.ViewportRequest{Width: -1, Height: 768})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDesktopSnapshot(t *testing.T) {
	f := newFixture(t, nil)
	id := f.open(t, "icon-documents")

	rec := f.do(t, http.MethodGet, "/api/desktop", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decode[map[string]any](t, rec)
	assert.Equal(t, id, snap["activeWindowId"])
	assert.Equal(t, "dark", snap["theme"])

	rec = f.do(t, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode[map[string]any](t, rec), "metrics")
}

func TestWeatherDisabled(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/weather?lat=1&lon=2", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWeatherProxy(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"location":{"name":"Oslo"},"current":{"temp_c":-3.4,"condition":{"text":"Snow","icon":"//cdn/snow.png"}}}`)
	}))
	t.Cleanup(upstream.Close)

	cfg := weather.DefaultConfig()
	cfg.BaseURL = upstream.URL + "/"
	cfg.APIKey = "k"
	cfg.RetryMax = 0
	f := newFixture(t, weather.New(cfg, nil))

	rec := f.do(t, http.MethodGet, "/weather?lat=59.9&lon=10.7", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decode[weather.Report](t, rec)
	assert.Equal(t, "Oslo", report.Location)
	assert.Equal(t, -3, report.Temp)
	assert.Equal(t, "https://cdn/snow.png", report.Icon)

	rec = f.do(t, http.MethodGet, "/weather?lat=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		desktop.ErrIconNotFound:                              http.StatusNotFound,
		fmt.Errorf("wrap: %w", desktop.ErrWindowNotFound):    http.StatusNotFound,
		theme.ErrInvalidTheme:                                http.StatusBadRequest,
		weather.ErrInvalidCoordinate:                         http.StatusBadRequest,
		weather.ErrDisabled:                                  http.StatusServiceUnavailable,
		fmt.Errorf("weather: %w", resilience.ErrCircuitOpen): http.StatusServiceUnavailable,
		weather.ErrUpstream:                                  http.StatusBadGateway,
		errors.New("boom"):                                   http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, StatusFor(err), err.Error())
	}
}

func TestAssets(t *testing.T) {
	dir := t.TempDir()
	svg := `<svg xmlns="http://www.w3.org/2000/svg" width="48" height="48"></svg>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "home.svg"), []byte(svg), 0o644))
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "icon.bin"), png, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	router := gin.New()
	NewAssets(dir).Register(router, "/assets/icons/")

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	rec := get("/assets/icons/home.svg")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "image/svg+xml")
	assert.Equal(t, svg, rec.Body.String())

	rec = get("/assets/icons/icon.bin")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	assert.Equal(t, http.StatusNotFound, get("/assets/icons/missing.svg").Code)
	assert.Equal(t, http.StatusNotFound, get("/assets/icons/sub").Code)
	assert.Equal(t, http.StatusNotFound, get("/assets/icons/../../etc/passwd").Code)
}

func TestGetDesktopETag(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/api/desktop", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/api/desktop", nil)
	req.Header.Set("If-None-Match", etag)
	cached := httptest.NewRecorder()
	f.router.ServeHTTP(cached, req)
	assert.Equal(t, http.StatusNotModified, cached.Code)
	assert.Empty(t, cached.Body.String())

	f.open(t, "icon-home")
	req = httptest.NewRequest(http.MethodGet, "/api/desktop", nil)
	req.Header.Set("If-None-Match", etag)
	changed := httptest.NewRecorder()
	f.router.ServeHTTP(changed, req)
	assert.Equal(t, http.StatusOK, changed.Code)
	assert.NotEqual(t, etag, changed.Header().Get("ETag"))
}

func TestAddIconValidation(t *testing.T) {
	f := newFixture(t, nil)

	for _, req := range []types.IconRequest{
		{ID: "bad id"},
		{ID: "../escape"},
		{ID: "icon-ok", Icon: "has space.svg"},
	} {
		rec := f.do(t, http.MethodPost, "/api/icons", req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, req.ID)
	}
	assert.Equal(t, 2, f.desktop.Icons().Len())
}
