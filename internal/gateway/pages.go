package gateway

import (
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gin-gonic/gin"
)

const (
	templatesDir = "templates"
	staticDir    = "static"
	notFoundPage = "error.html"
)

// contentType picks the response type for a static asset by file extension.
func contentType(name string) string {
	switch path.Ext(name) {
	case ".css":
		return "text/css"
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

// HandlePage serves a fixed HTML page from templates/.
func (s *Server) HandlePage(name string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		content, err := s.readFile(path.Join(templatesDir, name))
		if err != nil {
			s.HandleNotFound(ctx)
			return
		}
		ctx.Data(http.StatusOK, "text/html", content)
	}
}

// HandleStatic serves an asset from static/.
func (s *Server) HandleStatic(ctx *gin.Context) {
	rel := strings.TrimPrefix(ctx.Param("filepath"), "/")
	if rel == "" || !fs.ValidPath(rel) || s.denied(rel) {
		s.HandleNotFound(ctx)
		return
	}

	content, err := s.readFile(path.Join(staticDir, rel))
	if err != nil {
		s.HandleNotFound(ctx)
		return
	}

	ctx.Data(http.StatusOK, contentType(rel), content)
}

// HandleNotFound renders the not-found page, or a plain 404 when the page
// itself is missing.
func (s *Server) HandleNotFound(ctx *gin.Context) {
	content, err := s.readFile(path.Join(templatesDir, notFoundPage))
	if err != nil {
		ctx.Data(http.StatusNotFound, "text/plain; charset=utf-8", []byte("404 Page not found"))
		return
	}
	ctx.Data(http.StatusNotFound, "text/html", content)
}

// readFile reads a regular file from the site.
func (s *Server) readFile(name string) ([]byte, error) {
	info, err := fs.Stat(s.site, name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fs.ErrNotExist
	}
	return fs.ReadFile(s.site, name)
}

func (s *Server) denied(rel string) bool {
	for _, pattern := range s.opts.StaticDeny {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
