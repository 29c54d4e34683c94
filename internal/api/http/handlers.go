package http

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webtop/internal/domain/catalog"
	"github.com/GriffinCanCode/webtop/internal/domain/desktop"
	"github.com/GriffinCanCode/webtop/internal/domain/icons"
	"github.com/GriffinCanCode/webtop/internal/domain/weather"
	"github.com/GriffinCanCode/webtop/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webtop/internal/shared/types"
	"github.com/GriffinCanCode/webtop/internal/shared/utils"
)

// Version is reported by the root endpoint
const Version = "0.1.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	desktop *desktop.Desktop
	weather *weather.Service
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// NewHandlers creates a new handler set. Weather and metrics may be nil.
func NewHandlers(d *desktop.Desktop, w *weather.Service, m *monitoring.Metrics, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		desktop: d,
		weather: w,
		metrics: m,
		logger:  logger,
	}
}

// Register mounts the desktop API on r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/weather", h.Weather)

	api := r.Group("/api")
	api.GET("/desktop", h.GetDesktop)
	api.POST("/desktop/click", h.ClickDesktop)
	api.PUT("/viewport", h.SetViewport)
	api.GET("/stats", h.Stats)

	api.GET("/icons", h.ListIcons)
	api.POST("/icons", h.AddIcon)
	api.PUT("/icons/visibility", h.SetAllIconsVisible)
	api.DELETE("/icons/:id", h.RemoveIcon)
	api.PUT("/icons/:id/visibility", h.SetIconVisible)
	api.POST("/icons/:id/click", h.ClickIcon)
	api.POST("/icons/:id/open", h.OpenIcon)

	api.GET("/windows", h.ListWindows)
	api.DELETE("/windows", h.CloseAllWindows)
	api.POST("/windows/deactivate", h.DeactivateWindows)
	api.GET("/windows/:id", h.GetWindow)
	api.DELETE("/windows/:id", h.windowAction(h.desktop.Close))
	api.POST("/windows/:id/focus", h.windowAction(h.desktop.Focus))
	api.POST("/windows/:id/minimize", h.windowAction(h.desktop.Minimize))
	api.POST("/windows/:id/toggle-minimize", h.windowAction(h.desktop.ToggleMinimize))
	api.POST("/windows/:id/toggle-maximize", h.windowAction(h.desktop.ToggleMaximize))
	api.POST("/windows/:id/restore", h.windowAction(h.desktop.Restore))
	api.POST("/windows/:id/front", h.windowAction(h.desktop.BringToFront))
	api.PUT("/windows/:id/position", h.MoveWindow)
	api.PUT("/windows/:id/size", h.ResizeWindow)

	api.GET("/theme", h.GetTheme)
	api.PUT("/theme", h.SetTheme)
	api.POST("/theme/toggle", h.ToggleTheme)
	api.PUT("/theme/system", h.SetSystemTheme)
	api.POST("/theme/system-changed", h.SystemThemeChanged)
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "webtop",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	weatherStatus := gin.H{"enabled": false}
	if h.weather != nil && h.weather.Enabled() {
		weatherStatus = gin.H{
			"enabled": true,
			"breaker": h.weather.Breaker().State().String(),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"windows": h.desktop.Windows().Stats(),
		"icons":   h.desktop.Icons().Len(),
		"weather": weatherStatus,
	})
}

// Stats returns request and event counters
func (h *Handlers) Stats(c *gin.Context) {
	resp := gin.H{"windows": h.desktop.Windows().Stats()}
	if h.metrics != nil {
		resp["metrics"] = h.metrics.GetSnapshot()
	}
	c.JSON(http.StatusOK, resp)
}

// GetDesktop returns the full render state. Pollers can send If-None-Match
// to skip unchanged bodies.
func (h *Handlers) GetDesktop(c *gin.Context) {
	body, err := sonic.Marshal(h.desktop.Snapshot())
	if err != nil {
		respondError(c, err)
		return
	}
	etag := utils.ETag(body)
	c.Header("ETag", etag)
	c.Header("Cache-Control", "no-cache")
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// ClickDesktop clears the icon selection
func (h *Handlers) ClickDesktop(c *gin.Context) {
	h.desktop.ClickDesktop()
	c.JSON(http.StatusOK, h.desktop.Icons().State())
}

// SetViewport records the renderer viewport
func (h *Handlers) SetViewport(c *gin.Context) {
	var req types.ViewportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.desktop.SetViewport(req.Width, req.Height); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.desktop.Viewport())
}

// ListIcons returns every icon
func (h *Handlers) ListIcons(c *gin.Context) {
	c.JSON(http.StatusOK, h.desktop.Icons().State())
}

// AddIcon adds an icon; duplicates are ignored
func (h *Handlers) AddIcon(c *gin.Context) {
	var req types.IconRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := validateIcon(req); err != nil {
		badRequest(c, err)
		return
	}
	size := req.Size
	if size.Width <= 0 || size.Height <= 0 {
		size = types.Size{Width: catalog.DefaultIconSize, Height: catalog.DefaultIconSize}
	}
	h.desktop.AddIcon(icons.Icon{
		ID:    req.ID,
		Title: req.Title,
		Image: req.Icon,
		Show:  true,
		Size:  size,
	})
	c.JSON(http.StatusOK, h.desktop.Icons().State())
}

// RemoveIcon removes an icon
func (h *Handlers) RemoveIcon(c *gin.Context) {
	if err := h.desktop.RemoveIcon(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.desktop.Icons().State())
}

// SetIconVisible shows or hides one icon
func (h *Handlers) SetIconVisible(c *gin.Context) {
	var req types.VisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.desktop.SetIconVisible(c.Param("id"), req.Visible); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.desktop.Icons().State())
}

// SetAllIconsVisible shows or hides every icon
func (h *Handlers) SetAllIconsVisible(c *gin.Context) {
	var req types.VisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.desktop.SetAllIconsVisible(req.Visible)
	c.JSON(http.StatusOK, h.desktop.Icons().State())
}

// ClickIcon selects one icon
func (h *Handlers) ClickIcon(c *gin.Context) {
	if err := h.desktop.ClickIcon(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.desktop.Icons().State())
}

// OpenIcon opens or focuses the icon's window
func (h *Handlers) OpenIcon(c *gin.Context) {
	windowID, err := h.desktop.OpenIcon(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	w, _ := h.desktop.Windows().Get(windowID)
	c.JSON(http.StatusOK, gin.H{
		"windowId": windowID,
		"window":   w,
	})
}

// ListWindows returns every window with the stacking state
func (h *Handlers) ListWindows(c *gin.Context) {
	c.JSON(http.StatusOK, h.desktop.Windows().State())
}

// GetWindow returns one window
func (h *Handlers) GetWindow(c *gin.Context) {
	w, ok := h.desktop.Windows().Get(c.Param("id"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "window not found: " + c.Param("id")})
		return
	}
	c.JSON(http.StatusOK, w)
}

// CloseAllWindows closes every window
func (h *Handlers) CloseAllWindows(c *gin.Context) {
	h.desktop.CloseAll()
	c.JSON(http.StatusOK, h.desktop.Windows().State())
}

// DeactivateWindows clears window focus
func (h *Handlers) DeactivateWindows(c *gin.Context) {
	h.desktop.DeactivateAll()
	c.JSON(http.StatusOK, h.desktop.Windows().State())
}

// MoveWindow commits a drag end position
func (h *Handlers) MoveWindow(c *gin.Context) {
	var req types.PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.respondWindow(c, h.desktop.MoveEnd(c.Param("id"), req.X, req.Y))
}

// ResizeWindow commits a resize end size
func (h *Handlers) ResizeWindow(c *gin.Context) {
	var req types.SizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.respondWindow(c, h.desktop.ResizeEnd(c.Param("id"), req.Width, req.Height))
}

func validateIcon(req types.IconRequest) error {
	if err := utils.ValidateID(req.ID, "id", true); err != nil {
		return err
	}
	if err := utils.ValidateTitle(req.Title); err != nil {
		return err
	}
	return utils.ValidateImage(req.Icon)
}

func (h *Handlers) windowAction(op func(string) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.respondWindow(c, op(c.Param("id")))
	}
}

// respondWindow writes the window state after a window operation
func (h *Handlers) respondWindow(c *gin.Context, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.desktop.Windows().State())
}

// GetTheme returns the theme state
func (h *Handlers) GetTheme(c *gin.Context) {
	c.JSON(http.StatusOK, h.desktop.Theme().State())
}

// SetTheme selects a theme explicitly
func (h *Handlers) SetTheme(c *gin.Context) {
	var req types.ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.respondTheme(c, h.desktop.SetTheme(req.Theme))
}

// ToggleTheme flips between light and dark
func (h *Handlers) ToggleTheme(c *gin.Context) {
	h.desktop.ToggleTheme()
	h.respondTheme(c, nil)
}

// SetSystemTheme turns OS theme following on or off
func (h *Handlers) SetSystemTheme(c *gin.Context) {
	var req types.SystemThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.respondTheme(c, h.desktop.SetSystemThemeEnabled(req.Enabled, req.SystemTheme))
}

// SystemThemeChanged reports an OS theme change
func (h *Handlers) SystemThemeChanged(c *gin.Context) {
	var req types.ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.respondTheme(c, h.desktop.SystemThemeChanged(req.Theme))
}

func (h *Handlers) respondTheme(c *gin.Context, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.desktop.Theme().State())
}
