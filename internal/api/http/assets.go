package http

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// Assets serves icon images from a directory. Content-Type is detected from
// the file bytes since icon files often lack a reliable extension.
type Assets struct {
	root string
}

// NewAssets serves files under dir
func NewAssets(dir string) *Assets {
	return &Assets{root: dir}
}

// Register mounts the asset route under prefix
func (a *Assets) Register(r gin.IRouter, prefix string) {
	r.GET(strings.TrimRight(prefix, "/")+"/*path", a.Serve)
}

// Serve writes the requested asset
func (a *Assets) Serve(c *gin.Context) {
	name := path.Clean("/" + c.Param("path"))
	if name == "/" {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "asset not found"})
		return
	}
	full := filepath.Join(a.root, filepath.FromSlash(name))

	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		status := http.StatusNotFound
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			status = http.StatusInternalServerError
		}
		c.AbortWithStatusJSON(status, gin.H{"error": "asset not found"})
		return
	}

	data, err := os.ReadFile(full)
	if err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "asset unreadable"})
		return
	}

	mtype := mimetype.Detect(data)
	contentType := mtype.String()
	// SVG sniffs as text/xml without a declaration
	if strings.EqualFold(filepath.Ext(full), ".svg") && !mtype.Is("image/svg+xml") {
		contentType = "image/svg+xml"
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, contentType, data)
}
