package components

import (
	"strconv"

	"github.com/aluiziolira/go-equipment-catalog/view"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// QuizProps drives the selection wizard page.
type QuizProps struct {
	Quiz   view.Quiz
	Done   bool
	Error  string
	Values LeadValues
	Name   string
}

// QuizPage renders the current wizard step.
func QuizPage(props QuizProps) g.Node {
	return Layout(
		PageConfig{Title: "Подбор оборудования — " + siteName},
		Topbar(),
		Main(
			Section(
				ID("quiz"),
				Class("section"),
				Div(
					Class("container narrow"),
					Div(
						Class("card quiz"),
						g.If(props.Done, quizDone()),
						g.If(!props.Done, quizStep(props)),
					),
				),
			),
		),
		PageFooter(),
	)
}

func quizDone() g.Node {
	return Div(
		thankYou("Подбор отправлен", "Технолог изучит ответы и предложит комплектацию и режимы."),
		A(Href("/catalog"), Class("btn btn-outline btn-block"), g.Text("Смотреть каталог")),
	)
}

func quizStep(props QuizProps) g.Node {
	q := props.Quiz
	step := q.Current()
	current, total := q.Progress()
	state := q.Encode()
	state.Del("a." + step.Key)

	return Form(
		Method("post"),
		Action("/quiz"),
		Class("quiz-form"),
		hiddenFields(state),
		P(Class("kicker"), g.Text("Шаг "+strconv.Itoa(current)+" из "+strconv.Itoa(total))),
		Div(Class("progress"), Div(Class("progress-bar"), Data("progress", strconv.Itoa(current*100/total)))),
		H2(g.Text(step.Question)),
		formError(props.Error),
		g.If(!q.IsContact(), Div(
			Class("options"),
			Role("radiogroup"),
			g.Map(step.Options, func(opt string) g.Node {
				return Label(
					Class("option"),
					Input(
						Type("radio"),
						Name("answer"),
						Value(opt),
						g.If(q.Answers[step.Key] == opt, Checked()),
					),
					Span(g.Text(opt)),
				)
			}),
		)),
		g.If(q.IsContact(), Div(
			Class("fields"),
			Input(Type("text"), Name("name"), Placeholder("Имя"), Value(props.Name), Required(), AutoComplete("name")),
			Input(Type("text"), Name("company"), Placeholder("Компания"), Value(props.Values.Company), AutoComplete("organization")),
			Input(Type("tel"), Name("phone"), Placeholder("Телефон"), Value(props.Values.Phone), Required(), AutoComplete("tel")),
			Input(Type("email"), Name("email"), Placeholder("Почта"), Value(props.Values.Email), AutoComplete("email")),
		)),
		Div(
			Class("quiz-actions"),
			g.If(current > 1,
				Button(Type("submit"), Name("action"), Value("back"), Class("btn btn-outline"), g.Attr("formnovalidate"), g.Text("Назад")),
			),
			g.If(!q.IsContact(),
				Button(Type("submit"), Name("action"), Value("next"), Class("btn btn-primary"), g.Text("Далее")),
			),
			g.If(q.IsContact(),
				Button(Type("submit"), Name("action"), Value("submit"), Class("btn btn-primary"), g.Text("Получить подбор")),
			),
		),
	)
}
