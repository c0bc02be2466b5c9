package components

import (
	"github.com/aluiziolira/go-equipment-catalog/view"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// LeadValues echoes a contact form back after a failed submit.
type LeadValues struct {
	Company string
	Phone   string
	Email   string
}

// LandingProps drives the landing page.
type LandingProps struct {
	// Revealed reports whether a section starts visible.
	Revealed func(section string) bool
	// Sent names the form that was just submitted.
	Sent string
	// ErrorSource names the form that failed validation.
	ErrorSource string
	Error       string
	Values      LeadValues
}

type iconText struct {
	Icon string
	Text string
}

type iconLabel struct {
	Icon  string
	Label string
	Sub   string
}

// Landing renders the marketing page.
func Landing(props LandingProps) g.Node {
	return Layout(
		PageConfig{},
		Topbar(),
		Main(
			heroSection(props),
			painSection(props),
			solutionsSection(props),
			massagerSection(props),
			grSection(props),
			injectorSection(props),
			ctaSection(props),
		),
		PageFooter(),
	)
}

func section(props LandingProps, id, class string, children ...g.Node) g.Node {
	classes := "section reveal " + class
	if props.Revealed != nil && props.Revealed(id) {
		classes += " is-visible"
	}
	return Section(ID(id), Class(classes), Data("reveal", id), g.Group(children))
}

func sectionTitle(kicker string, title ...g.Node) g.Node {
	return Div(
		Class("section-title"),
		Span(Class("kicker"), g.Text(kicker)),
		H2(g.Group(title)),
	)
}

func iconList(items []iconText, class string) g.Node {
	return Ul(
		Class("icon-list "+class),
		g.Map(items, func(it iconText) g.Node {
			return Li(
				Span(Class("icon-badge"), Icon(it.Icon, "")),
				Span(g.Text(it.Text)),
			)
		}),
	)
}

func heroSection(props LandingProps) g.Node {
	bullets := []iconText{
		{Icon: "TrendingDown", Text: "Меньше непросола и рекламаций"},
		{Icon: "Wind", Text: "Вакуум — быстрее процесс, меньше окисления"},
		{Icon: "ArrowUpCircle", Text: "Выход до +20–30% влаги при корректной технологии"},
		{Icon: "Shield", Text: "SUS304, санитарный конструктив, быстрая мойка"},
	}
	badges := []iconLabel{
		{Icon: "Shield", Label: "SUS304", Sub: "Нержавеющая сталь"},
		{Icon: "Cpu", Label: "99 прогр", Sub: "PLC-панель управления"},
		{Icon: "Pipette", Label: "84 иглы", Sub: "Регистр давления"},
		{Icon: "Zap", Label: "До 4 т/ч", Sub: "Производительность"},
	}

	return section(props, view.SectionHero, "hero",
		Div(
			Class("container grid-2"),
			Div(
				Span(Class("pill"), g.Text("Daribo · Niro-Tech · Поставка и внедрение")),
				H1(
					g.Text("Стабильный посол и "),
					Span(Class("accent"), g.Text("выше выход")),
					g.Text(" с вакуумными массажерами"),
				),
				P(Class("lead"), g.Text("Поставка Daribo и Niro-Tech + подбор режимов под мясо, птицу и рыбу")),
				P(Class("muted"), g.Text("Ускоряем цикл, выравниваем качество партии, снижаем риск брака. Подбираем оборудование и настройки под ветчину, копчёности, деликатесы, фабрики-кухни.")),
				iconList(bullets, ""),
				Div(
					Class("actions"),
					A(Href("#hero-form"), Class("btn btn-primary btn-pill btn-lg"), g.Text("Рассчитать решение")),
					A(Href("/catalog"), Class("btn btn-outline btn-pill btn-lg"), g.Text("Смотреть оборудование")),
				),
			),
			Div(
				Div(
					Class("badge-grid"),
					g.Map(badges, func(b iconLabel) g.Node {
						return Div(
							Class("badge-card"),
							Span(Class("icon-badge icon-badge-lg"), Icon(b.Icon, "")),
							Div(
								P(Class("badge-label"), g.Text(b.Label)),
								P(Class("muted small"), g.Text(b.Sub)),
							),
						)
					}),
				),
				Div(
					ID("hero-form"),
					Class("card form-card"),
					H3(g.Text("Рассчитать решение")),
					P(Class("muted small"), g.Text("Менеджер свяжется в течение 2 часов")),
					contactForm(props, "hero", "stack"),
				),
			),
		),
	)
}

func painSection(props LandingProps) g.Node {
	line := []iconLabel{
		{Icon: "Package", Label: "Сырьё"},
		{Icon: "Pipette", Label: "Инъектор"},
		{Icon: "RefreshCw", Label: "Массажер"},
		{Icon: "Thermometer", Label: "Термообработка"},
		{Icon: "CheckCircle", Label: "Готово"},
	}
	problems := []iconText{
		{Icon: "TrendingDown", Text: "Низкий выход — деньги уходят вместе с влагой"},
		{Icon: "AlertCircle", Text: "Непросол и пятна — рекламации и брак партий"},
		{Icon: "Clock", Text: "Длинный цикл посола сдерживает объёмы выпуска"},
		{Icon: "ThumbsDown", Text: "Жалобы на качество — неповторяемость вкуса"},
		{Icon: "Wrench", Text: "Простои из-за мойки — сложная санобработка"},
	}
	gains := []iconText{
		{Icon: "Gauge", Text: "Регистр давления — стабильная подача в каждую иглу"},
		{Icon: "Wind", Text: "Вакуум: меньше окисления, лучше текстура продукта"},
		{Icon: "Settings", Text: "Программируемые режимы — повторяемые результаты"},
		{Icon: "Shield", Text: "Санитарный конструктив — быстрая мойка без разборки"},
	}

	steps := make([]g.Node, 0, len(line)*2)
	for i, step := range line {
		steps = append(steps, Div(Class("line-step"), Icon(step.Icon, "icon-lg"), Span(g.Text(step.Label))))
		if i < len(line)-1 {
			steps = append(steps, Icon("ChevronRight", "muted"))
		}
	}

	return section(props, view.SectionPain, "section-white",
		Div(
			Class("container"),
			sectionTitle("Проблема → Решение", g.Text("Выход и посол должны быть"), Br(), g.Text("повторяемыми")),
			Div(Class("line"), g.Group(steps)),
			Div(
				Class("grid-2"),
				Div(
					H3(Class("with-icon"), Icon("AlertTriangle", "danger"), g.Text(" Типичные проблемы производства")),
					iconList(problems, "icon-list-danger"),
				),
				Div(
					H3(Class("with-icon"), Icon("CheckCircle", "accent"), g.Text(" Что даёт наше оборудование")),
					iconList(gains, "icon-list-accent"),
					A(Href("#cta"), Class("btn btn-primary btn-pill"), Icon("Phone", ""), g.Text(" Консультация технолога")),
				),
			),
		),
	)
}

type solution struct {
	Icon      string
	Title     string
	Desc      string
	CTA       string
	Href      string
	Highlight bool
	Specs     []string
}

func solutionsSection(props LandingProps) g.Node {
	cards := []solution{
		{
			Icon:  "RefreshCw",
			Title: "Вакуумные массажеры",
			Desc:  "Бережное вакуумное массирование — рассол проникает глубже, текстура лучше, цикл короче. Регулируемые режимы: время, вакуум, скорость.",
			CTA:   "Подробнее о массажерах",
			Href:  "/catalog",
			Specs: []string{"до −0.1 МПа вакуум", "100–3000 л объём", "SUS304"},
		},
		{
			Icon:      "Pipette",
			Title:     "Инъекторы рассола",
			Desc:      "84 иглы с регистром давления, до 4 т/ч, до 4,3 бар. Равномерное распределение рассола — без пятен и недосола по всему объёму.",
			CTA:       "Подробнее об инъекторах",
			Href:      "/catalog?tab=injectors",
			Highlight: true,
			Specs:     []string{"84 иглы", "до 4 т/ч", "до 4,3 бар"},
		},
		{
			Icon:  "FlaskConical",
			Title: "Смеси рассолов",
			Desc:  "Готовые рецептуры под мясо, птицу и рыбу. Повторяемость вкуса, быстрый запуск производства, снижение % брака.",
			CTA:   "Запросить рецептуру",
			Href:  "#cta",
			Specs: []string{"Мясо / Птица / Рыба", "Быстрый старт", "Снижение брака"},
		},
	}

	return section(props, view.SectionSolutions, "",
		Div(
			Class("container"),
			sectionTitle("Оборудование", g.Text("Оборудование + режим + рассол"), Br(), g.Text("= стабильная партия")),
			Div(
				Class("grid-3"),
				g.Map(cards, func(c solution) g.Node {
					class := "card solution"
					btn := "btn btn-outline"
					if c.Highlight {
						class += " solution-highlight"
						btn = "btn btn-primary"
					}
					return Div(
						Class(class),
						g.If(c.Highlight, Span(Class("tag"), g.Text("Популярно"))),
						Span(Class("icon-badge icon-badge-xl"), Icon(c.Icon, "")),
						H3(g.Text(c.Title)),
						P(Class("muted grow"), g.Text(c.Desc)),
						Div(
							Class("chips"),
							g.Map(c.Specs, func(s string) g.Node { return Span(Class("chip"), g.Text(s)) }),
						),
						A(Href(c.Href), Class(btn+" btn-block"), g.Text(c.CTA)),
					)
				}),
			),
		),
	)
}

func specGrid(specs [][2]string) g.Node {
	return Div(
		Class("spec-grid"),
		g.Map(specs, func(s [2]string) g.Node {
			return Div(
				Class("spec"),
				P(Class("muted small"), g.Text(s[0])),
				P(Class("spec-value"), g.Text(s[1])),
			)
		}),
	)
}

func massagerSection(props LandingProps) g.Node {
	points := []iconText{
		{Icon: "Star", Text: "Лучшее качество и сочность готового продукта"},
		{Icon: "Timer", Text: "Ускорение цикла посола"},
		{Icon: "Layers", Text: "Равномерное распределение специй и рассола"},
		{Icon: "Calendar", Text: "Улучшенные сроки годности — меньше окисления"},
		{Icon: "Fish", Text: "Подходит для мяса, птицы и рыбы"},
	}

	return section(props, view.SectionMassager, "section-white",
		Div(
			Class("container grid-2"),
			Div(
				sectionTitle("Вакуумное массирование", g.Text("Равномернее посол, лучше текстура")),
				P(Class("lead"), g.Text("Барабан бережно перемешивает сырьё. Вакуум раскрывает поры и волокна: рассол и специи проникают глубже, замедляется окисление — продукт получается стабильным от партии к партии.")),
				iconList(points, "icon-list-accent"),
				A(Href("#cta"), Class("btn btn-primary btn-pill btn-lg"), g.Text("Запросить режимы "), Icon("ArrowRight", "")),
			),
			Div(
				Class("panel"),
				Div(Class("panel-hero"), Icon("RefreshCw", "icon-xl")),
				H4(g.Text("Вакуумный барабан — серия GR")),
				specGrid([][2]string{
					{"Вакуум", "до −0.1 МПа"},
					{"Объём", "100–3000 л"},
					{"Материал", "SUS304"},
					{"Продукты", "Мясо / Птица / Рыба"},
				}),
			),
		),
	)
}

func grSection(props LandingProps) g.Node {
	controls := []iconLabel{
		{Icon: "Timer", Label: "Время"},
		{Icon: "Wind", Label: "Вакуум"},
		{Icon: "Gauge", Label: "Скорость"},
		{Icon: "RotateCcw", Label: "Направление"},
		{Icon: "AlarmClock", Label: "Интервалы"},
		{Icon: "BookOpen", Label: "Программа"},
	}
	points := []iconText{
		{Icon: "Shield", Text: "SUS304 — пищевая нержавейка, соответствие санитарным нормам"},
		{Icon: "Droplets", Text: "Форма барабана оптимизирована под быструю мойку"},
		{Icon: "SlidersHorizontal", Text: "Регулируемые параметры: скорость, время, вакуум, направление"},
		{Icon: "Package", Text: "Рёбра сохраняют целостность кусков при массировании"},
		{Icon: "MoveVertical", Text: "Удобная загрузка и выгрузка сырья"},
		{Icon: "Cpu", Text: "Опция PLC: до 99 программ — время / интервалы / вакуум / скорость"},
	}

	return section(props, view.SectionGR, "",
		Div(
			Class("container grid-2"),
			Div(
				Class("card panel-plc"),
				Div(
					Class("panel-head"),
					Span(Class("accent strong"), g.Text("PLC-Панель управления")),
					Span(Class("tag"), g.Text("99 программ")),
				),
				Div(Class("panel-hero"), Icon("Cpu", "icon-xl")),
				Div(
					Class("grid-3 compact"),
					g.Map(controls, func(c iconLabel) g.Node {
						return Div(Class("control"), Icon(c.Icon, ""), Span(Class("small"), g.Text(c.Label)))
					}),
				),
				P(Class("muted small center"), g.Text("Настройка и сохранение программ массирования")),
			),
			Div(
				sectionTitle("Серия GR", g.Text("SUS304 и повторяемые настройки")),
				P(Class("lead"), g.Text("Конструктив оптимизирован под требования пищевого производства: быстрая мойка, стойкость к агрессивным средам, простое обслуживание.")),
				iconList(points, ""),
				A(Href("#cta"), Class("btn btn-primary btn-pill btn-lg"), g.Text("КП на серию GR "), Icon("FileText", "")),
			),
		),
	)
}

func injectorSection(props LandingProps) g.Node {
	points := []iconText{
		{Icon: "Network", Text: "84 иглы — максимальное покрытие продукта"},
		{Icon: "AlertTriangle", Text: "Меньше брака: нет серых и зелёных пятен"},
		{Icon: "Crosshair", Text: "Точная подача рассола с контролем давления"},
		{Icon: "Zap", Text: "До 4 т/ч при давлении до 4,3 бар"},
	}
	scheme := []iconLabel{
		{Icon: "Droplets", Label: "Насос рассола", Sub: "Точная дозировка"},
		{Icon: "GitBranch", Label: "Регистр давления", Sub: "Равное давление на все иглы"},
		{Icon: "Pipette", Label: "84 иглы", Sub: "Равномерное распределение"},
		{Icon: "CheckCircle", Label: "Готовый продукт", Sub: "Без пятен и брака"},
	}

	steps := make([]g.Node, 0, len(scheme)*2)
	for i, s := range scheme {
		if i > 0 {
			steps = append(steps, Div(Class("scheme-arrow"), Icon("ArrowDown", "muted")))
		}
		steps = append(steps, Div(
			Class("scheme-step"),
			Span(Class("icon-badge icon-badge-lg"), Icon(s.Icon, "")),
			Div(P(Class("strong"), g.Text(s.Label)), P(Class("muted small"), g.Text(s.Sub))),
		))
	}

	return section(props, view.SectionInjector, "section-white",
		Div(
			Class("container grid-2"),
			Div(
				sectionTitle("Технология инъекции", g.Text("Регистр давления на иглах — меньше непросола")),
				P(Class("lead"), g.Text("Рассол подаётся напрямую в регистр: одинаковое давление на каждой игле, стабильность даже при засоре одной из игл. Результат — равномерный посол без серых пятен.")),
				iconList(points, "icon-list-accent"),
				A(Href("#cta"), Class("btn btn-primary btn-pill btn-lg"), g.Text("КП на инъектор "), Icon("FileText", "")),
			),
			Div(
				Class("panel"),
				H4(Class("center"), g.Text("Схема работы инъектора")),
				Div(Class("scheme"), g.Group(steps)),
			),
		),
	)
}

func ctaSection(props LandingProps) g.Node {
	stats := []iconLabel{
		{Icon: "TrendingUp", Label: "+20–30%", Sub: "Ориентир по выходу при корректной технологии"},
		{Icon: "Shield", Label: "SUS304", Sub: "Пищевая нержавейка"},
		{Icon: "Zap", Label: "4 т/ч", Sub: "Производительность инъектора"},
	}

	return section(props, view.SectionCTA, "section-tint",
		Div(
			Class("container narrow"),
			Div(
				Class("card cta-card center"),
				Span(Class("icon-badge icon-badge-xl"), Icon("Phone", "")),
				sectionTitle("Получить предложение", g.Text("Подберём оборудование"), Br(), g.Text("под ваш продукт")),
				P(Class("lead"), g.Text("Оставьте контакт — технолог перезвонит, разберёт вашу ситуацию и предложит оптимальный режим и комплектацию.")),
				contactForm(props, "cta", "inline"),
				P(Class("small"), A(Href("/quiz"), g.Text("Не уверены, что выбрать? Пройдите подбор за 1 минуту →"))),
				Div(
					Class("grid-3 stats"),
					g.Map(stats, func(s iconLabel) g.Node {
						return Div(
							Icon(s.Icon, "accent"),
							P(Class("stat-value"), g.Text(s.Label)),
							P(Class("muted small"), g.Text(s.Sub)),
						)
					}),
				),
			),
		),
	)
}

// contactForm is the company/phone/e-mail request form of the hero and CTA
// sections.
func contactForm(props LandingProps, source, layout string) g.Node {
	if props.Sent == source {
		return thankYou("Заявка отправлена", "Менеджер свяжется с вами в ближайшее время.")
	}

	var values LeadValues
	var errMsg string
	if props.ErrorSource == source {
		values = props.Values
		errMsg = props.Error
	}

	return Form(
		Method("post"),
		Action("/leads"),
		Class("lead-form lead-form-"+layout),
		Input(Type("hidden"), Name("source"), Value(source)),
		formError(errMsg),
		Div(
			Class("fields"),
			Input(Type("text"), Name("company"), Placeholder("Компания"), Value(values.Company), Required(), AutoComplete("organization")),
			Input(Type("tel"), Name("phone"), Placeholder("Телефон"), Value(values.Phone), Required(), AutoComplete("tel")),
			Input(Type("email"), Name("email"), Placeholder("Почта"), Value(values.Email), AutoComplete("email")),
		),
		Button(Type("submit"), Class("btn btn-primary btn-block"), g.Text("Отправить заявку")),
	)
}

func thankYou(title, text string) g.Node {
	return Div(
		Class("thank-you"),
		Role("status"),
		Span(Class("icon-badge icon-badge-lg"), Icon("CheckCircle", "")),
		H3(g.Text(title)),
		P(Class("muted"), g.Text(text)),
	)
}
