// Package web holds the default site served by the gateway: the HTML pages
// under templates/ and the assets under static/.
package web

import (
	"embed"
	"io/fs"
	"os"
)

//go:embed templates static
var files embed.FS

// Site returns the site to serve. An empty dir selects the embedded default
// site; otherwise dir is served from disk and must contain templates/ and
// static/ subdirectories.
func Site(dir string) fs.FS {
	if dir == "" {
		return files
	}
	return os.DirFS(dir)
}
