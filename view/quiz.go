package view

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// QuizStep is one question of the selection wizard.
type QuizStep struct {
	Key      string
	Question string
	Options  []string // empty for the contact step
}

// QuizSteps is the fixed question sequence. The last step collects contacts.
var QuizSteps = []QuizStep{
	{
		Key:      "product",
		Question: "Что вы производите?",
		Options:  []string{"Мясо", "Птица", "Рыба", "Деликатесы и копчёности"},
	},
	{
		Key:      "equipment",
		Question: "Какое оборудование нужно?",
		Options:  []string{"Вакуумный массажер", "Инъектор рассола", "Линия: инъектор + массажер", "Пока не знаю"},
	},
	{
		Key:      "volume",
		Question: "Объём сырья в смену",
		Options:  []string{"До 500 кг", "500 кг – 2 т", "2–5 т", "Больше 5 т"},
	},
	{
		Key:      "contact",
		Question: "Куда отправить подбор?",
	},
}

// Quiz is the wizard state: current step and the answers given so far.
type Quiz struct {
	Step    int
	Answers map[string]string
}

// NewQuiz starts at the first step.
func NewQuiz() Quiz {
	return Quiz{Answers: map[string]string{}}
}

// Current returns the step being shown.
func (q Quiz) Current() QuizStep {
	return QuizSteps[q.clamp(q.Step)]
}

// IsContact reports whether the contact step is shown.
func (q Quiz) IsContact() bool {
	return q.clamp(q.Step) == len(QuizSteps)-1
}

// Answer records value for the current step. A value that is not one of the
// step's options clears the answer.
func (q Quiz) Answer(value string) Quiz {
	next := q.clone()
	value = strings.TrimSpace(value)
	if !q.Current().accepts(value) {
		delete(next.Answers, q.Current().Key)
	} else {
		next.Answers[q.Current().Key] = value
	}
	return next
}

// Next advances one step. It fails when the current step has no answer or
// the contact step is already shown.
func (q Quiz) Next() (Quiz, error) {
	step := q.Current()
	if q.IsContact() {
		return q, fmt.Errorf("quiz: already at the last step")
	}
	if q.Answers[step.Key] == "" {
		return q, fmt.Errorf("quiz: step %q needs an answer", step.Key)
	}
	next := q.clone()
	next.Step = q.clamp(q.Step) + 1
	return next, nil
}

// Back returns to the previous step, staying on the first one.
func (q Quiz) Back() Quiz {
	next := q.clone()
	next.Step = q.clamp(q.Step - 1)
	return next
}

// Progress returns the one-based step number and the total.
func (q Quiz) Progress() (int, int) {
	return q.clamp(q.Step) + 1, len(QuizSteps)
}

// Comment renders the answers as a lead comment, in step order.
func (q Quiz) Comment() string {
	var parts []string
	for _, step := range QuizSteps {
		if a := q.Answers[step.Key]; a != "" && len(step.Options) > 0 {
			parts = append(parts, step.Question+" "+a)
		}
	}
	return strings.Join(parts, "; ")
}

// Encode carries the quiz state in form values.
func (q Quiz) Encode() url.Values {
	v := url.Values{}
	v.Set("step", strconv.Itoa(q.clamp(q.Step)))
	for _, step := range QuizSteps {
		if a := q.Answers[step.Key]; a != "" {
			v.Set("a."+step.Key, a)
		}
	}
	return v
}

// DecodeQuiz reads quiz state written by Encode. Answers outside a step's
// options are dropped, and the step never passes the first unanswered one.
func DecodeQuiz(v url.Values) Quiz {
	q := NewQuiz()
	for _, s := range QuizSteps {
		if a := strings.TrimSpace(v.Get("a." + s.Key)); s.accepts(a) {
			q.Answers[s.Key] = a
		}
	}
	step, _ := strconv.Atoi(v.Get("step"))
	q.Step = min(q.clamp(step), q.firstUnanswered())
	return q
}

func (q Quiz) firstUnanswered() int {
	for i, s := range QuizSteps {
		if len(s.Options) > 0 && q.Answers[s.Key] == "" {
			return i
		}
	}
	return len(QuizSteps) - 1
}

func (s QuizStep) accepts(value string) bool {
	return value != "" && slices.Contains(s.Options, value)
}

func (q Quiz) clamp(step int) int {
	return max(0, min(step, len(QuizSteps)-1))
}

func (q Quiz) clone() Quiz {
	answers := make(map[string]string, len(q.Answers))
	for k, v := range q.Answers {
		answers[k] = v
	}
	q.Answers = answers
	return q
}
