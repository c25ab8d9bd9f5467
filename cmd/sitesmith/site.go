package main

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"github.com/sitesmith/sitesmith/config"
	"github.com/sitesmith/sitesmith/content"
	"github.com/sitesmith/sitesmith/routes"
)

// assembleSite turns the configuration into the built-in site: an index page
// listing every entry, one page per entry of each content source, and a JSON
// feed. Projects wanting custom layouts use the library directly.
func assembleSite(cfg *config.Config) (*content.Registry, []routes.Route, error) {
	sources := make([]content.Source, 0, len(cfg.Content))
	for _, src := range cfg.Content {
		sources = append(sources, content.NewMarkdownSource(src.Name, src.Glob, content.MarkdownOptions{
			AllowRawHTML: src.AllowRawHTML,
		}))
	}
	reg, err := content.NewRegistry(sources...)
	if err != nil {
		return nil, nil, err
	}

	names := make([]string, 0, len(cfg.Content))
	for _, src := range cfg.Content {
		names = append(names, src.Name)
	}

	rts := []routes.Route{
		&indexRoute{site: cfg.Site, sources: names},
		&feedRoute{site: cfg.Site, sources: names},
	}
	for _, name := range names {
		rts = append(rts, &entryRoute{site: cfg.Site, source: name})
	}
	return reg, rts, nil
}

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
{{if .Description}}<p>{{.Description}}</p>{{end}}
{{range .Sections}}
<h2>{{.Name}}</h2>
<ul>
{{range .Items}}<li><a href="{{.URL}}">{{.Title}}</a></li>
{{end}}</ul>
{{end}}
</body>
</html>
`))

var entryTmpl = template.Must(template.New("entry").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}} - {{.Site}}</title></head>
<body>
<nav><a href="/">{{.Site}}</a></nav>
<article>
<h1>{{.Title}}</h1>
{{.Body}}
</article>
</body>
</html>
`))

type indexItem struct {
	URL   string
	Title string
}

type indexSection struct {
	Name  string
	Items []indexItem
}

// indexRoute is the site root: every entry of every source, grouped by
// source name.
type indexRoute struct {
	site    config.SiteConfig
	sources []string
}

func (r *indexRoute) Pattern() string { return "/" }

func (r *indexRoute) Render(ctx *routes.PageContext) (routes.RenderResult, error) {
	var sections []indexSection
	for _, name := range r.sources {
		view, err := ctx.Content.Source(name)
		if err != nil {
			return nil, err
		}
		section := indexSection{Name: name}
		for _, e := range view.Entries() {
			section.Items = append(section.Items, indexItem{
				URL:   "/" + name + "/" + e.ID + "/",
				Title: entryTitle(e),
			})
		}
		sections = append(sections, section)
	}

	var buf strings.Builder
	err := indexTmpl.Execute(&buf, map[string]any{
		"Title":       r.site.Title,
		"Description": r.site.Description,
		"Sections":    sections,
	})
	if err != nil {
		return nil, err
	}
	return routes.Text(buf.String()), nil
}

// entryRoute renders one page per entry of a single content source.
type entryRoute struct {
	site   config.SiteConfig
	source string
}

func (r *entryRoute) Pattern() string { return "/" + r.source + "/[slug]" }

func (r *entryRoute) Pages(ctx *routes.EnumerationContext) ([]routes.Page, error) {
	view, err := ctx.Content.Source(r.source)
	if err != nil {
		return nil, err
	}
	var pages []routes.Page
	for _, e := range view.Entries() {
		pages = append(pages, routes.Page{
			Params: routes.Params{"slug": routes.V(e.ID)},
		})
	}
	return pages, nil
}

func (r *entryRoute) Render(ctx *routes.PageContext) (routes.RenderResult, error) {
	slug := ""
	if v := ctx.Params["slug"]; v != nil {
		slug = *v
	}

	view, err := ctx.Content.Source(r.source)
	if err != nil {
		return nil, err
	}
	entry, err := view.Entry(slug)
	if err != nil {
		return nil, err
	}
	body, err := entry.Render()
	if err != nil {
		return nil, err
	}

	var buf strings.Builder
	err = entryTmpl.Execute(&buf, map[string]any{
		"Site":  r.site.Title,
		"Title": entryTitle(entry),
		"Body":  template.HTML(body),
	})
	if err != nil {
		return nil, err
	}
	return routes.Text(buf.String()), nil
}

// feedRoute is a machine-readable endpoint listing every entry.
type feedRoute struct {
	site    config.SiteConfig
	sources []string
}

func (r *feedRoute) Pattern() string { return "/feed.json" }

func (r *feedRoute) Render(ctx *routes.PageContext) (routes.RenderResult, error) {
	type feedItem struct {
		Source string         `json:"source"`
		ID     string         `json:"id"`
		URL    string         `json:"url"`
		Title  string         `json:"title"`
		Data   map[string]any `json:"data,omitempty"`
	}

	var items []feedItem
	for _, name := range r.sources {
		view, err := ctx.Content.Source(name)
		if err != nil {
			return nil, err
		}
		for _, e := range view.Entries() {
			items = append(items, feedItem{
				Source: name,
				ID:     e.ID,
				URL:    "/" + name + "/" + e.ID + "/",
				Title:  entryTitle(e),
				Data:   e.Data,
			})
		}
	}

	data, err := json.MarshalIndent(map[string]any{
		"title": r.site.Title,
		"items": items,
	}, "", "  ")
	if err != nil {
		return nil, err
	}
	return routes.Raw(data), nil
}

// entryTitle prefers the frontmatter title, falling back to the id.
func entryTitle(e *content.Entry) string {
	if t, ok := e.Data["title"]; ok {
		return fmt.Sprint(t)
	}
	return e.ID
}
