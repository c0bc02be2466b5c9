package components

import (
	"net/url"
	"slices"
	"strings"
	"unicode"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

type navLink struct {
	Href  string
	Label string
}

var navLinks = []navLink{
	{Href: "/#solutions", Label: "Решения"},
	{Href: "/#massager", Label: "Массажеры"},
	{Href: "/#gr", Label: "Серия GR"},
	{Href: "/#injector", Label: "Инъекторы"},
	{Href: "/catalog", Label: "Каталог"},
	{Href: "/#cta", Label: "Контакты"},
}

// iconName turns a PascalCase icon name into its lucide id.
func iconName(name string) string {
	var b strings.Builder
	b.WriteString("lucide:")
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Icon renders a decorative lucide icon, e.g. Icon("TrendingDown", "size-5").
func Icon(name, class string) g.Node {
	classes := "iconify icon"
	if class != "" {
		classes += " " + class
	}
	return Span(
		Class(classes),
		g.Attr("data-icon", iconName(name)),
		Aria("hidden", "true"),
	)
}

// Topbar is the fixed page header with the collapsible mobile menu.
func Topbar() g.Node {
	return Header(
		Class("topbar"),
		Div(
			Class("container topbar-inner"),
			A(
				Href("/"),
				Class("logo"),
				Span(Class("logo-name"), g.Text(siteName)),
				P(Class("logo-tagline"), g.Text(siteTagline)),
			),
			Nav(
				Class("topbar-nav"),
				g.Map(navLinks, func(l navLink) g.Node {
					return A(Href(l.Href), g.Text(l.Label))
				}),
			),
			Div(
				Class("topbar-actions"),
				A(Href("/quiz"), Class("btn btn-primary btn-pill hide-sm"), g.Text("Рассчитать решение")),
				Button(
					Type("button"),
					Class("menu-toggle"),
					Aria("label", "Меню"),
					Aria("expanded", "false"),
					Data("menu-toggle", ""),
					Icon("Menu", ""),
				),
			),
		),
		Nav(
			Class("mobile-menu"),
			Data("menu", ""),
			g.Attr("hidden"),
			g.Map(navLinks, func(l navLink) g.Node {
				return A(Href(l.Href), g.Text(l.Label))
			}),
		),
	)
}

// PageFooter is the site footer.
func PageFooter() g.Node {
	return Footer(
		Class("footer"),
		Div(
			Class("container footer-inner"),
			Div(
				P(Class("footer-name"), g.Text(siteName)),
				P(Class("muted small"), g.Text(siteTagline)),
			),
			Div(
				Class("footer-links"),
				g.Map(navLinks, func(l navLink) g.Node {
					return A(Href(l.Href), g.Text(l.Label))
				}),
			),
			P(Class("muted small"), g.Text("© 2025 Все права защищены")),
		),
	)
}

// hiddenFields carries query values through a form post.
func hiddenFields(values url.Values) g.Node {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	nodes := make([]g.Node, 0, len(keys))
	for _, k := range keys {
		for _, v := range values[k] {
			nodes = append(nodes, Input(Type("hidden"), Name(k), Value(v)))
		}
	}
	return g.Group(nodes)
}

func formError(msg string) g.Node {
	if msg == "" {
		return nil
	}
	return P(Class("form-error"), Role("alert"), Icon("AlertCircle", ""), g.Text(" "+msg))
}
