// Package components renders the HTML pages with gomponents.
package components

import (
	"strconv"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

const (
	siteName    = "Daribo & Niro-Tech"
	siteTagline = "Оборудование для посола и маринования"
)

// PageConfig holds the document head settings.
type PageConfig struct {
	Title       string
	Description string
	// RefreshSeconds adds a meta refresh when positive.
	RefreshSeconds int
}

// Layout wraps content in the HTML document shell.
func Layout(config PageConfig, content ...g.Node) g.Node {
	if config.Title == "" {
		config.Title = siteName + " — " + siteTagline
	}
	if config.Description == "" {
		config.Description = "Вакуумные массажеры и инъекторы рассола Daribo и Niro-Tech: поставка, подбор режимов и внедрение."
	}

	return g.Group([]g.Node{
		g.Raw("<!DOCTYPE html>"),
		HTML(
			Lang("ru"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1.0")),
				TitleEl(g.Text(config.Title)),
				Meta(Name("description"), Content(config.Description)),
				Meta(g.Attr("property", "og:title"), Content(config.Title)),
				Meta(g.Attr("property", "og:description"), Content(config.Description)),
				Meta(g.Attr("property", "og:type"), Content("website")),
				g.If(config.RefreshSeconds > 0,
					Meta(g.Attr("http-equiv", "refresh"), Content(strconv.Itoa(config.RefreshSeconds))),
				),
				Link(Rel("stylesheet"), Href("/static/styles.css")),
				Script(Src("https://code.iconify.design/1/1.0.7/iconify.min.js")),
			),
			Body(
				g.Group(content),
				Script(Type("module"), Src("/static/app.js")),
			),
		),
	})
}
