package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/aluiziolira/go-equipment-catalog/loader"
	"github.com/aluiziolira/go-equipment-catalog/models"
	"github.com/aluiziolira/go-equipment-catalog/parser"
	"github.com/aluiziolira/go-equipment-catalog/view"
	"github.com/aluiziolira/go-equipment-catalog/web/components"
)

const (
	catalogPath       = "/catalog"
	loadingRefreshSec = 2

	msgLeadInvalid     = "Проверьте телефон: номер должен содержать от 10 до 15 цифр."
	msgLeadIncomplete  = "Заполните имя и телефон."
	msgLeadEmail       = "Проверьте адрес почты."
	msgLeadUnavailable = "Не удалось отправить заявку. Попробуйте позже или позвоните нам."
	msgQuizAnswer      = "Выберите вариант ответа."
)

// landingSections maps a landing form source to the section holding it.
var landingSections = map[string]string{
	models.LeadSourceHero: view.SectionHero,
	models.LeadSourceCTA:  view.SectionCTA,
}

var landingAnchors = map[string]string{
	models.LeadSourceHero: "#hero-form",
	models.LeadSourceCTA:  "#cta",
}

func (a *App) landing(w http.ResponseWriter, r *http.Request) {
	props := components.LandingProps{}
	if sent := r.URL.Query().Get("sent"); landingSections[sent] != "" {
		props.Sent = sent
	}
	a.renderLanding(w, http.StatusOK, props)
}

func (a *App) renderLanding(w http.ResponseWriter, status int, props components.LandingProps) {
	latch := view.MountLanding(nil)
	defer latch.Close()

	// A form answered by this request is shown without waiting for a scroll.
	for _, source := range []string{props.Sent, props.ErrorSource} {
		if section := landingSections[source]; section != "" {
			latch.Trigger(section)
		}
	}
	props.Revealed = latch.Fired
	render(w, status, components.Landing(props))
}

func (a *App) postLandingLead(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	source := r.PostForm.Get("source")
	if landingSections[source] == "" {
		source = models.LeadSourceCTA
	}
	values := components.LeadValues{
		Company: r.PostForm.Get("company"),
		Phone:   r.PostForm.Get("phone"),
		Email:   r.PostForm.Get("email"),
	}
	lead := &models.Lead{
		Name:    values.Company,
		Company: values.Company,
		Phone:   values.Phone,
		Email:   values.Email,
		Source:  source,
	}

	status, err := a.submitLead(r.Context(), lead)
	if err != nil {
		msg := msgLeadUnavailable
		if status == http.StatusBadRequest {
			status = http.StatusUnprocessableEntity
			msg = leadErrorText(err)
		}
		a.renderLanding(w, status, components.LandingProps{ErrorSource: source, Error: msg, Values: values})
		return
	}

	http.Redirect(w, r, "/?sent="+url.QueryEscape(source)+landingAnchors[source], http.StatusSeeOther)
}

func leadErrorText(err error) string {
	switch {
	case errors.Is(err, parser.ErrNameRequired), errors.Is(err, parser.ErrPhoneRequired):
		return msgLeadIncomplete
	case errors.Is(err, parser.ErrInvalidEmail):
		return msgLeadEmail
	default:
		return msgLeadInvalid
	}
}

func (a *App) catalogPage(w http.ResponseWriter, r *http.Request) {
	state := view.DecodeState(r.URL.Query())

	ctx, cancel := context.WithTimeout(r.Context(), a.cfg.RenderWait)
	snap := a.loader.Wait(ctx)
	cancel()

	a.renderCatalog(w, http.StatusOK, snap, state, "")
}

func (a *App) renderCatalog(w http.ResponseWriter, status int, snap loader.Snapshot, state view.State, leadErr string) {
	props := components.CatalogProps{
		State:          state,
		LeadError:      leadErr,
		RefreshSeconds: loadingRefreshSec,
	}
	switch snap.Phase {
	case loader.PhaseLoaded:
		props.Phase = components.CatalogLoaded
		props.Catalog = snap.Catalog
		props.State, props.Item = state.Resolve(snap.Catalog)
		props.State = a.checkReceipt(props.State)
	case loader.PhaseFailed:
		props.Phase = components.CatalogFailed
		props.Reason = snap.Reason
	default:
		props.Phase = components.CatalogLoading
	}
	render(w, status, components.CatalogPage(props))
}

func (a *App) retryCatalog(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	state := view.DecodeState(r.PostForm)

	if a.loader.Retry(a.base) {
		slog.Info("catalog reload requested", slog.String("request_id", requestID(r)))
	}
	http.Redirect(w, r, state.URL(catalogPath), http.StatusSeeOther)
}

func (a *App) postCatalogLead(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	state := view.DecodeState(r.PostForm)
	form := view.LeadForm{Name: r.PostForm.Get("name"), Phone: r.PostForm.Get("phone")}

	snap := a.loader.Snapshot()
	if snap.Phase != loader.PhaseLoaded {
		http.Redirect(w, r, state.URL(catalogPath), http.StatusSeeOther)
		return
	}
	state, item := state.Resolve(snap.Catalog)
	if state.Overlay.Kind != view.OverlayLead {
		http.Redirect(w, r, state.URL(catalogPath), http.StatusSeeOther)
		return
	}

	next, ok := state.SubmitLead(form)
	if !ok {
		a.renderCatalog(w, http.StatusUnprocessableEntity, snap, next, msgLeadIncomplete)
		return
	}

	lead := &models.Lead{
		ItemID:   item.ID,
		ItemName: item.Name,
		Name:     form.Name,
		Phone:    form.Phone,
		Source:   models.LeadSourceCatalog,
	}
	a.stampLead(lead)
	failed := state
	failed.Overlay.Form = form
	if err := parser.ValidateLead(lead); err != nil {
		a.metrics.IncLead("rejected")
		a.renderCatalog(w, http.StatusUnprocessableEntity, snap, failed, leadErrorText(err))
		return
	}
	if status, err := a.enqueueLead(r.Context(), lead); err != nil {
		a.renderCatalog(w, status, snap, failed, msgLeadUnavailable)
		return
	}

	a.receipts.Add(lead.ID, item.ID)
	next.Overlay.Form.Receipt = lead.ID
	http.Redirect(w, r, next.URL(catalogPath), http.StatusSeeOther)
}

// checkReceipt shows the thank-you state only for a lead this server accepted
// for the open item. Any other sent value reopens an empty form.
func (a *App) checkReceipt(state view.State) view.State {
	form := state.Overlay.Form
	if state.Overlay.Kind != view.OverlayLead || !form.Submitted {
		return state
	}
	if itemID, ok := a.receipts.Get(form.Receipt); ok && itemID == state.Overlay.ItemID {
		return state
	}
	state.Overlay.Form = view.LeadForm{}
	return state
}

func (a *App) quizPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	render(w, http.StatusOK, components.QuizPage(components.QuizProps{
		Quiz: view.DecodeQuiz(q),
		Done: q.Get("done") == "1",
	}))
}

func (a *App) postQuiz(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	quiz := view.DecodeQuiz(r.PostForm)

	switch r.PostForm.Get("action") {
	case "back":
		http.Redirect(w, r, "/quiz?"+quiz.Back().Encode().Encode(), http.StatusSeeOther)
	case "next":
		quiz = quiz.Answer(r.PostForm.Get("answer"))
		next, err := quiz.Next()
		if err != nil {
			render(w, http.StatusUnprocessableEntity, components.QuizPage(components.QuizProps{Quiz: quiz, Error: msgQuizAnswer}))
			return
		}
		http.Redirect(w, r, "/quiz?"+next.Encode().Encode(), http.StatusSeeOther)
	case "submit":
		if !quiz.IsContact() {
			http.Redirect(w, r, "/quiz?"+quiz.Encode().Encode(), http.StatusSeeOther)
			return
		}
		a.submitQuiz(w, r, quiz)
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
	}
}

func (a *App) submitQuiz(w http.ResponseWriter, r *http.Request, quiz view.Quiz) {
	name := r.PostForm.Get("name")
	values := components.LeadValues{
		Company: r.PostForm.Get("company"),
		Phone:   r.PostForm.Get("phone"),
		Email:   r.PostForm.Get("email"),
	}
	lead := &models.Lead{
		Name:    name,
		Company: values.Company,
		Phone:   values.Phone,
		Email:   values.Email,
		Source:  models.LeadSourceQuiz,
		Comment: quiz.Comment(),
	}

	status, err := a.submitLead(r.Context(), lead)
	if err != nil {
		msg := msgLeadUnavailable
		if status == http.StatusBadRequest {
			status = http.StatusUnprocessableEntity
			msg = leadErrorText(err)
		}
		render(w, status, components.QuizPage(components.QuizProps{Quiz: quiz, Error: msg, Values: values, Name: name}))
		return
	}
	http.Redirect(w, r, "/quiz?done=1", http.StatusSeeOther)
}
