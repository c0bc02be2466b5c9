package components

import (
	"strconv"
	"strings"

	"github.com/aluiziolira/go-equipment-catalog/models"
	"github.com/aluiziolira/go-equipment-catalog/parser"
	"github.com/aluiziolira/go-equipment-catalog/view"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

const catalogPath = "/catalog"

// CatalogPhase mirrors the loader phase for rendering.
type CatalogPhase int

const (
	CatalogLoading CatalogPhase = iota
	CatalogLoaded
	CatalogFailed
)

// CatalogProps drives the catalog page.
type CatalogProps struct {
	Phase   CatalogPhase
	Reason  string // failure label
	State   view.State
	Catalog *models.Catalog
	// Item is the overlay item, resolved against the catalog.
	Item models.CatalogItem
	// LeadError is shown inside the lead dialog after a rejected submit.
	LeadError string
	// RefreshSeconds reloads the loading state.
	RefreshSeconds int
}

// CatalogPage renders the catalog view in the given phase.
func CatalogPage(props CatalogProps) g.Node {
	var body g.Node
	cfg := PageConfig{Title: "Каталог оборудования — " + siteName}
	switch props.Phase {
	case CatalogLoading:
		cfg.RefreshSeconds = props.RefreshSeconds
		body = catalogLoading()
	case CatalogFailed:
		body = catalogFailed(props)
	default:
		body = catalogLoaded(props)
	}

	return Layout(
		cfg,
		Topbar(),
		Main(
			Section(
				ID("catalog"),
				Class("section catalog"),
				Div(
					Class("container"),
					Div(
						Class("section-title"),
						Span(Class("kicker"), g.Text("Каталог")),
						H2(g.Text("Оборудование в наличии и под заказ")),
					),
					body,
				),
			),
		),
		PageFooter(),
	)
}

func catalogLoading() g.Node {
	return Div(
		Class("catalog-state"),
		Role("status"),
		Aria("live", "polite"),
		Span(Class("spinner"), Aria("hidden", "true")),
		P(g.Text("Загружаем каталог…")),
	)
}

func catalogFailed(props CatalogProps) g.Node {
	return Div(
		Class("catalog-state catalog-error"),
		Role("alert"),
		Icon("AlertTriangle", "icon-lg danger"),
		H3(g.Text("Не удалось загрузить каталог")),
		P(Class("muted"), g.Text(failureText(props.Reason))),
		Form(
			Method("post"),
			Action(catalogPath+"/retry"),
			hiddenFields(props.State.Encode()),
			Button(Type("submit"), Class("btn btn-primary btn-pill"), Icon("RefreshCw", ""), g.Text(" Повторить")),
		),
	)
}

func failureText(reason string) string {
	switch reason {
	case "timeout":
		return "Сервер каталога не ответил вовремя."
	case "connection":
		return "Нет соединения с сервером каталога."
	case "not_found", "forbidden", "bad_status", "rate_limited":
		return "Сервер каталога вернул ошибку."
	case "malformed":
		return "Сервер каталога вернул данные в неожиданном формате."
	default:
		return "Попробуйте ещё раз через несколько секунд."
	}
}

func catalogLoaded(props CatalogProps) g.Node {
	state := props.State
	items := state.Visible(props.Catalog)

	return g.Group([]g.Node{
		catalogTabs(props),
		searchForm(state),
		g.If(strings.TrimSpace(state.Query) != "",
			P(Class("muted small"), g.Text("Найдено: "+strconv.Itoa(len(items)))),
		),
		g.If(len(items) == 0, emptyResult(state)),
		g.If(len(items) > 0, Div(
			Class("catalog-grid"),
			g.Map(items, func(item models.CatalogItem) g.Node {
				return catalogCard(state, item)
			}),
		)),
		overlay(props),
	})
}

func catalogTabs(props CatalogProps) g.Node {
	return Nav(
		Class("tabs"),
		Role("tablist"),
		g.Map(models.Buckets, func(b models.Bucket) g.Node {
			class := "tab"
			selected := "false"
			if b == props.State.Bucket {
				class += " tab-active"
				selected = "true"
			}
			return A(
				Href(props.State.SelectBucket(b).URL(catalogPath)),
				Class(class),
				Role("tab"),
				Aria("selected", selected),
				g.Text(b.Label()),
				Span(Class("tab-count"), g.Text(strconv.Itoa(len(props.Catalog.Items(b))))),
			)
		}),
	)
}

func searchForm(state view.State) g.Node {
	return Form(
		Method("get"),
		Action(catalogPath),
		Class("search"),
		Role("search"),
		g.If(state.Bucket != models.BucketMassagers,
			Input(Type("hidden"), Name(view.KeyTab), Value(string(state.Bucket))),
		),
		Icon("Search", "muted"),
		Input(
			Type("search"),
			Name(view.KeyQuery),
			Value(state.Query),
			Placeholder("Поиск по названию или бренду"),
			Aria("label", "Поиск по каталогу"),
		),
		Button(Type("submit"), Class("btn btn-outline"), g.Text("Найти")),
	)
}

func emptyResult(state view.State) g.Node {
	return Div(
		Class("catalog-state"),
		Icon("SearchX", "icon-lg muted"),
		P(g.Text("Ничего не найдено")),
		g.If(strings.TrimSpace(state.Query) != "",
			A(Href(state.SetQuery("").URL(catalogPath)), Class("btn btn-outline btn-pill"), g.Text("Сбросить поиск")),
		),
	)
}

func priceText(item models.CatalogItem) string {
	if item.PriceDisplay != "" {
		return item.PriceDisplay
	}
	return "Цена по запросу"
}

func catalogCard(state view.State, item models.CatalogItem) g.Node {
	idx := state.Cards.Index(item.ID, len(item.Pictures))

	return Div(
		Class("card product"),
		ID("item-"+item.ID),
		imageStrip(item, idx,
			state.PrevImage(item).URL(catalogPath)+"#item-"+item.ID,
			state.NextImage(item).URL(catalogPath)+"#item-"+item.ID,
		),
		Div(
			Class("product-body"),
			g.If(item.Brand != "", Span(Class("chip"), g.Text(item.Brand))),
			H3(A(Href(state.OpenDetail(item).URL(catalogPath)), g.Text(item.Name))),
			productivity(item.Productivity),
			g.If(len(item.ExtraParams) > 0, paramList(item.ExtraParams)),
			P(Class("price"), g.Text(priceText(item))),
			Div(
				Class("product-actions"),
				A(Href(state.OpenDetail(item).URL(catalogPath)), Class("btn btn-outline"), g.Text("Подробнее")),
				A(Href(state.OpenLead(item).URL(catalogPath)), Class("btn btn-primary"), g.Text("Оставить заявку")),
			),
		),
	)
}

func productivity(p *models.Param) g.Node {
	if p == nil {
		return nil
	}
	return P(Class("productivity"), Icon("Zap", "accent"), g.Text(" "+p.Name+": "), Strong(g.Text(p.Value)))
}

func paramList(params []models.Param) g.Node {
	return Dl(
		Class("params"),
		g.Map(params, func(p models.Param) g.Node {
			return Div(Dt(g.Text(p.Name)), Dd(g.Text(p.Value)))
		}),
	)
}

// imageStrip shows picture idx of item with wrap-around controls when the
// item has more than one picture.
func imageStrip(item models.CatalogItem, idx int, prevURL, nextURL string) g.Node {
	if len(item.Pictures) == 0 {
		return Div(Class("strip strip-empty"), Icon("Image", "icon-lg muted"))
	}
	controls := view.HasControls(len(item.Pictures))
	return Div(
		Class("strip"),
		Img(Src(item.Pictures[idx]), Alt(item.Name), g.Attr("loading", "lazy")),
		g.If(controls, g.Group([]g.Node{
			A(Href(prevURL), Class("strip-control strip-prev"), Aria("label", "Предыдущее фото"), Icon("ChevronLeft", "")),
			A(Href(nextURL), Class("strip-control strip-next"), Aria("label", "Следующее фото"), Icon("ChevronRight", "")),
			Span(Class("strip-counter"), g.Text(strconv.Itoa(idx+1)+" / "+strconv.Itoa(len(item.Pictures)))),
		})),
	)
}

func overlay(props CatalogProps) g.Node {
	state := props.State
	switch state.Overlay.Kind {
	case view.OverlayDetail:
		return modal(state, props.Item.Name, detailBody(state, props.Item))
	case view.OverlayLead:
		return modal(state, "Заявка на оборудование", leadBody(props))
	default:
		return nil
	}
}

func modal(state view.State, title string, body g.Node) g.Node {
	closeURL := state.Close().URL(catalogPath)
	return Div(
		Class("overlay"),
		Role("dialog"),
		Aria("modal", "true"),
		Aria("label", title),
		Data("close-url", closeURL),
		A(Href(closeURL), Class("overlay-backdrop"), Aria("label", "Закрыть"), g.Attr("tabindex", "-1")),
		Div(
			Class("overlay-panel"),
			A(Href(closeURL), Class("overlay-close"), Aria("label", "Закрыть"), Icon("X", "")),
			body,
		),
	)
}

func detailBody(state view.State, item models.CatalogItem) g.Node {
	count := len(item.Pictures)
	idx := view.Wrap(state.Overlay.Image, count)

	var thumbs g.Node
	if view.HasControls(count) {
		nodes := make([]g.Node, 0, count)
		for i, pic := range item.Pictures {
			class := "thumb"
			if i == idx {
				class += " thumb-active"
			}
			nodes = append(nodes, A(
				Href(state.StepDetail(count, i-idx).URL(catalogPath)),
				Class(class),
				Img(Src(pic), Alt(item.Name+" — фото "+strconv.Itoa(i+1)), g.Attr("loading", "lazy")),
			))
		}
		thumbs = Div(Class("thumbs"), g.Group(nodes))
	}

	return Div(
		Class("detail"),
		Div(
			Class("detail-media"),
			imageStrip(item, idx,
				state.StepDetail(count, -1).URL(catalogPath),
				state.StepDetail(count, 1).URL(catalogPath),
			),
			thumbs,
		),
		Div(
			Class("detail-info"),
			g.If(item.Brand != "", Span(Class("chip"), g.Text(item.Brand))),
			H2(g.Text(item.Name)),
			P(Class("price price-lg"), g.Text(priceText(item))),
			productivity(item.Productivity),
			g.Map(parser.DescriptionText(item.Description), func(line string) g.Node {
				return P(Class("description"), g.Text(line))
			}),
			g.If(len(item.AllParams) > 0, g.Group([]g.Node{
				H4(g.Text("Характеристики")),
				paramList(item.AllParams),
			})),
			Div(
				Class("product-actions"),
				A(Href(state.OpenLead(item).URL(catalogPath)), Class("btn btn-primary"), g.Text("Оставить заявку")),
				g.If(item.URL != "",
					A(Href(item.URL), Target("_blank"), Rel("noopener noreferrer"), Class("btn btn-outline"), g.Text("На сайте поставщика")),
				),
			),
		),
	)
}

func leadBody(props CatalogProps) g.Node {
	state := props.State
	form := state.Overlay.Form
	if form.Submitted {
		return Div(
			thankYou("Спасибо!", "Мы получили заявку на «"+props.Item.Name+"» и свяжемся с вами в ближайшее время."),
			A(Href(state.Close().URL(catalogPath)), Class("btn btn-outline btn-block"), g.Text("Вернуться в каталог")),
		)
	}

	return Form(
		Method("post"),
		Action(catalogPath+"/lead"),
		Class("lead-form lead-form-stack"),
		Data("require-all", ""),
		hiddenFields(state.Encode()),
		P(Class("muted"), g.Text(props.Item.Name)),
		formError(props.LeadError),
		Label(
			Span(g.Text("Имя")),
			Input(Type("text"), Name("name"), Value(form.Name), Required(), AutoComplete("name"), g.Attr("autofocus")),
		),
		Label(
			Span(g.Text("Телефон")),
			Input(Type("tel"), Name("phone"), Value(form.Phone), Required(), AutoComplete("tel")),
		),
		Button(Type("submit"), Class("btn btn-primary btn-block"), g.Text("Отправить")),
	)
}
