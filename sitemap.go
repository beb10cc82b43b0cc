package homepage

import (
	"encoding/xml"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/scubides/homepage/model"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// absURL joins a site-relative URL onto the canonical base.
func absURL(base, rel string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimPrefix(rel, "/")
}

func (a *App) handleSitemap(c echo.Context) error {
	base := a.Config.URL
	urls := []sitemapURL{
		{Loc: absURL(base, "")},
		{Loc: absURL(base, model.ProjectsPage)},
		{Loc: absURL(base, model.BlogsPage)},
	}
	for _, t := range []model.ContentType{model.Project, model.Blog} {
		items, err := a.lists.List(c.Request().Context(), t)
		if err != nil {
			return err
		}
		for _, m := range items {
			urls = append(urls, sitemapURL{
				Loc:     absURL(base, t.DetailURL(m.ID)),
				LastMod: m.Date,
			})
		}
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
