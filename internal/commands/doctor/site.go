package doctor

import (
	"context"
	"errors"
	"io/fs"
	"path"
)

// requiredPages are the pages the gateway serves by name.
var requiredPages = []string{"index.html", "message.html", "error.html"}

// SiteCheck verifies that the site has the pages the gateway routes to and a
// static directory.
type SiteCheck struct {
	site fs.FS
}

// NewSiteCheck creates a check over the site the gateway would serve.
func NewSiteCheck(site fs.FS) *SiteCheck {
	return &SiteCheck{site: site}
}

func (c *SiteCheck) Name() string {
	return "Site"
}

func (c *SiteCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	for _, page := range requiredPages {
		name := path.Join("templates", page)
		_, err := fs.Stat(c.site, name)
		switch {
		case err == nil:
			result.Items = append(result.Items, CheckItem{Label: page, Status: StatusPass})
		case errors.Is(err, fs.ErrNotExist) && page == "error.html":
			result.Items = append(result.Items, CheckItem{
				Label:  page,
				Status: StatusWarn,
				Detail: "missing; unknown paths get a plain 404",
			})
		default:
			result.Items = append(result.Items, CheckItem{
				Label:  page,
				Status: StatusFail,
				Detail: err.Error(),
			})
		}
	}

	if info, err := fs.Stat(c.site, "static"); err != nil || !info.IsDir() {
		result.Items = append(result.Items, CheckItem{
			Label:  "static/",
			Status: StatusWarn,
			Detail: "no static directory; asset requests get the not-found page",
		})
	} else {
		result.Items = append(result.Items, CheckItem{Label: "static/", Status: StatusPass})
	}

	return result
}
