package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aluiziolira/go-equipment-catalog/config"
	"github.com/aluiziolira/go-equipment-catalog/feed"
	"github.com/aluiziolira/go-equipment-catalog/loader"
	"github.com/aluiziolira/go-equipment-catalog/metrics"
	"github.com/aluiziolira/go-equipment-catalog/models"
	"github.com/aluiziolira/go-equipment-catalog/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	mu      sync.Mutex
	snap    loader.Snapshot
	retries int
}

func (f *fakeLoader) Snapshot() loader.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeLoader) Wait(ctx context.Context) loader.Snapshot {
	return f.Snapshot()
}

func (f *fakeLoader) Retry(ctx context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retries++
	return f.snap.Phase == loader.PhaseFailed
}

type fakeSink struct {
	mu    sync.Mutex
	leads []*models.Lead
	err   error
}

func (f *fakeSink) Process(ctx context.Context, leads ...*models.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.leads = append(f.leads, leads...)
	return nil
}

type fakeSource struct {
	cat *models.Catalog
	err error
}

func (f fakeSource) Catalog(ctx context.Context) (*models.Catalog, error) {
	return f.cat, f.err
}

func price(v float64) *float64 { return &v }

func testCatalog() *models.Catalog {
	return &models.Catalog{
		Massagers: []models.CatalogItem{
			{
				ID:           "m-1",
				Name:         "Массажер GR-500",
				Brand:        "Daribo",
				Price:        price(450000),
				PriceDisplay: "450 000 ₽",
				Pictures:     []string{"https://img.test/m1-a.jpg", "https://img.test/m1-b.jpg", "https://img.test/m1-c.jpg"},
				Description:  "<p>Вакуумный массажер</p>",
				Productivity: &models.Param{Name: "Производительность", Value: "500 кг/ч"},
				AllParams:    []models.Param{{Name: "Объем", Value: "500 л"}},
			},
			{
				ID:       "m-2",
				Name:     "Массажер VM-100",
				Pictures: []string{"https://img.test/m2.jpg"},
			},
		},
		Injectors: []models.CatalogItem{
			{
				ID:       "i-1",
				Name:     "Инъектор NT-84",
				Brand:    "Niro-Tech",
				Pictures: []string{"https://img.test/i1-a.jpg", "https://img.test/i1-b.jpg"},
			},
		},
	}
}

type testEnv struct {
	app    *App
	router http.Handler
	loader *fakeLoader
	sink   *fakeSink
}

func newTestEnv(t *testing.T, snap loader.Snapshot, src fakeSource) *testEnv {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.RenderWait = 10 * time.Millisecond
	cfg.MetricsAddr = ""

	ld := &fakeLoader{snap: snap}
	sink := &fakeSink{}
	app := NewApp(context.Background(), cfg, ld, src, sink, metrics.New())
	app.newID = func() string { return "lead-1" }
	app.now = func() time.Time { return time.Date(2025, 11, 4, 13, 9, 13, 0, time.UTC) }

	return &testEnv{app: app, router: NewRouter(app), loader: ld, sink: sink}
}

func loadedEnv(t *testing.T) *testEnv {
	cat := testCatalog()
	return newTestEnv(t, loader.Snapshot{Phase: loader.PhaseLoaded, Catalog: cat}, fakeSource{cat: cat})
}

func (e *testEnv) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) postJSON(target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func TestLandingRevealsHeroOnly(t *testing.T) {
	env := loadedEnv(t)

	rr := env.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()

	assert.Contains(t, body, `id="hero" class="section reveal hero is-visible"`)
	assert.Contains(t, body, `id="pain" class="section reveal section-white"`)
	assert.NotContains(t, body, `section-tint is-visible`)
	assert.Contains(t, body, "/static/app.js")
}

func TestLandingLeadForm(t *testing.T) {
	env := loadedEnv(t)

	rr := env.do(http.MethodPost, "/leads", url.Values{
		"source":  {"hero"},
		"company": {"ООО Мясо"},
		"phone":   {"+7 913 555-12-34"},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/?sent=hero#hero-form", rr.Header().Get("Location"))

	require.Len(t, env.sink.leads, 1)
	lead := env.sink.leads[0]
	assert.Equal(t, "lead-1", lead.ID)
	assert.Equal(t, "ООО Мясо", lead.Name)
	assert.Equal(t, "+79135551234", lead.Phone)
	assert.Equal(t, models.LeadSourceHero, lead.Source)

	rr = env.do(http.MethodGet, "/?sent=hero", nil)
	assert.Contains(t, rr.Body.String(), "Заявка отправлена")
}

func TestLandingLeadFormRejectsBadPhone(t *testing.T) {
	env := loadedEnv(t)

	rr := env.do(http.MethodPost, "/leads", url.Values{
		"source":  {"cta"},
		"company": {"ООО Мясо"},
		"phone":   {"123"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, msgLeadInvalid)
	assert.Contains(t, body, `section-tint is-visible`)
	assert.Empty(t, env.sink.leads)
}

func TestLandingLeadFormEmailMessage(t *testing.T) {
	env := loadedEnv(t)

	rr := env.do(http.MethodPost, "/leads", url.Values{
		"source":  {"cta"},
		"company": {"ООО Мясо"},
		"phone":   {"+79135551234"},
		"email":   {"a@"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), msgLeadEmail)
	assert.NotContains(t, rr.Body.String(), msgLeadInvalid)
	assert.Empty(t, env.sink.leads)
}

func TestCatalogTabsAndFilter(t *testing.T) {
	env := loadedEnv(t)

	body := env.do(http.MethodGet, "/catalog", nil).Body.String()
	assert.Contains(t, body, "Массажер GR-500")
	assert.Contains(t, body, "Массажер VM-100")
	assert.NotContains(t, body, "Инъектор NT-84")
	assert.Contains(t, body, "450 000 ₽")
	assert.Contains(t, body, "Цена по запросу")

	body = env.do(http.MethodGet, "/catalog?tab=injectors&q=nt", nil).Body.String()
	assert.Contains(t, body, "Инъектор NT-84")
	assert.NotContains(t, body, "Массажер GR-500")

	body = env.do(http.MethodGet, "/catalog?q=DARIBO", nil).Body.String()
	assert.Contains(t, body, "Массажер GR-500")
	assert.NotContains(t, body, "Массажер VM-100")

	body = env.do(http.MethodGet, "/catalog?q=куттер", nil).Body.String()
	assert.Contains(t, body, "Ничего не найдено")
}

func TestCatalogEmptyBucket(t *testing.T) {
	cat := &models.Catalog{
		Massagers: []models.CatalogItem{
			{ID: "a", Name: "Массажер A", Pictures: []string{"a.jpg"}},
			{ID: "b", Name: "Массажер B", Pictures: []string{"b.jpg"}},
		},
		Injectors: []models.CatalogItem{},
	}
	env := newTestEnv(t, loader.Snapshot{Phase: loader.PhaseLoaded, Catalog: cat}, fakeSource{cat: cat})

	body := env.do(http.MethodGet, "/catalog?tab=injectors", nil).Body.String()
	assert.Contains(t, body, "Ничего не найдено")
	assert.NotContains(t, body, `class="catalog-grid"`)
	assert.NotContains(t, body, "Сбросить поиск")
}

func TestCatalogBlankQuery(t *testing.T) {
	env := loadedEnv(t)

	body := env.do(http.MethodGet, "/catalog?q=++", nil).Body.String()
	assert.Contains(t, body, "Массажер GR-500")
	assert.Contains(t, body, "Массажер VM-100")
	assert.NotContains(t, body, "Найдено:")
	assert.NotContains(t, body, "Сбросить поиск")
}

func TestCatalogCarouselControls(t *testing.T) {
	env := loadedEnv(t)

	body := env.do(http.MethodGet, "/catalog", nil).Body.String()
	assert.Equal(t, 1, strings.Count(body, "strip-control strip-prev"), "only multi-image items get controls")
	assert.Contains(t, body, "c.m-1=1")
	assert.Contains(t, body, "c.m-1=2")
	assert.Contains(t, body, "1 / 3")

	body = env.do(http.MethodGet, "/catalog?c.m-1=5", nil).Body.String()
	assert.Contains(t, body, "3 / 3")
	assert.Contains(t, body, "https://img.test/m1-c.jpg")
}

func TestCatalogDetailOverlay(t *testing.T) {
	env := loadedEnv(t)

	body := env.do(http.MethodGet, "/catalog?c.m-1=2&item=m-1&img=1", nil).Body.String()
	assert.Contains(t, body, `role="dialog"`)
	assert.Contains(t, body, "Характеристики")
	assert.Contains(t, body, "Вакуумный массажер")
	assert.Contains(t, body, "2 / 3")
	assert.Contains(t, body, `href="/catalog?c.m-1=2" class="overlay-close"`)

	body = env.do(http.MethodGet, "/catalog?item=nope", nil).Body.String()
	assert.NotContains(t, body, `role="dialog"`)
}

func TestCatalogLoadingState(t *testing.T) {
	env := newTestEnv(t, loader.Snapshot{Phase: loader.PhaseLoading}, fakeSource{})

	rr := env.do(http.MethodGet, "/catalog", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `http-equiv="refresh"`)
	assert.Contains(t, rr.Body.String(), "Загружаем каталог")
}

func TestCatalogFailedStateAndRetry(t *testing.T) {
	env := newTestEnv(t, loader.Snapshot{Phase: loader.PhaseFailed, Reason: "timeout"}, fakeSource{})

	body := env.do(http.MethodGet, "/catalog?tab=injectors", nil).Body.String()
	assert.Contains(t, body, "Не удалось загрузить каталог")
	assert.Contains(t, body, `action="/catalog/retry"`)
	assert.Contains(t, body, `name="tab" value="injectors"`)
	assert.NotContains(t, body, `http-equiv="refresh"`)

	rr := env.do(http.MethodPost, "/catalog/retry", url.Values{"tab": {"injectors"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/catalog?tab=injectors", rr.Header().Get("Location"))
	assert.Equal(t, 1, env.loader.retries)
}

func TestCatalogLeadDialog(t *testing.T) {
	env := loadedEnv(t)

	body := env.do(http.MethodGet, "/catalog?lead=m-1", nil).Body.String()
	assert.Contains(t, body, `action="/catalog/lead"`)
	assert.Contains(t, body, `name="lead" value="m-1"`)

	rr := env.do(http.MethodPost, "/catalog/lead", url.Values{"lead": {"m-1"}, "name": {"  "}, "phone": {"8913"}})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), msgLeadIncomplete)
	assert.Empty(t, env.sink.leads)

	rr = env.do(http.MethodPost, "/catalog/lead", url.Values{"lead": {"m-1"}, "name": {"Иван"}, "phone": {"8 913 555-12-34"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	location := rr.Header().Get("Location")
	assert.Equal(t, "/catalog?lead=m-1&sent=lead-1", location)

	require.Len(t, env.sink.leads, 1)
	assert.Equal(t, "Массажер GR-500", env.sink.leads[0].ItemName)
	assert.Equal(t, models.LeadSourceCatalog, env.sink.leads[0].Source)
	assert.Equal(t, "89135551234", env.sink.leads[0].Phone)

	body = env.do(http.MethodGet, location, nil).Body.String()
	assert.Contains(t, body, "Спасибо!")
	assert.NotContains(t, body, `action="/catalog/lead"`)
}

func TestCatalogLeadRejectsInvalidPhone(t *testing.T) {
	env := loadedEnv(t)

	rr := env.do(http.MethodPost, "/catalog/lead", url.Values{"lead": {"m-1"}, "name": {"Ivan"}, "phone": {"12"}})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, msgLeadInvalid)
	assert.Contains(t, body, `action="/catalog/lead"`)
	assert.NotContains(t, body, "Спасибо!")
	assert.Empty(t, env.sink.leads)
}

func TestCatalogLeadThanksNeedsReceipt(t *testing.T) {
	env := loadedEnv(t)

	for _, target := range []string{"/catalog?lead=m-1&sent=1", "/catalog?lead=m-1&sent=forged"} {
		body := env.do(http.MethodGet, target, nil).Body.String()
		assert.NotContains(t, body, "Спасибо!", target)
		assert.Contains(t, body, `action="/catalog/lead"`, target)
	}

	rr := env.do(http.MethodPost, "/catalog/lead", url.Values{"lead": {"m-1"}, "name": {"Иван"}, "phone": {"89135551234"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	body := env.do(http.MethodGet, "/catalog?lead=m-2&sent=lead-1", nil).Body.String()
	assert.NotContains(t, body, "Спасибо!", "a receipt only covers its own item")
}

func TestCatalogLeadSinkUnavailable(t *testing.T) {
	env := loadedEnv(t)
	env.sink.err = pipeline.ErrPipelineClosed

	rr := env.do(http.MethodPost, "/catalog/lead", url.Values{"lead": {"m-1"}, "name": {"Иван"}, "phone": {"89135551234"}})
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), msgLeadUnavailable)
	assert.Contains(t, rr.Body.String(), `value="Иван"`)
}

func TestAPICatalog(t *testing.T) {
	env := loadedEnv(t)

	rr := env.do(http.MethodGet, "/api/catalog", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var got models.Catalog
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got.Massagers, 2)
	assert.Len(t, got.Injectors, 1)

	rr = env.do(http.MethodOptions, "/api/catalog", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "GET, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
	assert.Empty(t, rr.Body.String())
}

func TestAPICatalogEmptyBuckets(t *testing.T) {
	env := newTestEnv(t, loader.Snapshot{}, fakeSource{cat: &models.Catalog{Massagers: []models.CatalogItem{{ID: "a"}}}})

	rr := env.do(http.MethodGet, "/api/catalog", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"injectors":[]`)
}

func TestAPICatalogUpstreamError(t *testing.T) {
	env := newTestEnv(t, loader.Snapshot{}, fakeSource{err: feed.ErrTimeout{Err: context.DeadlineExceeded}})

	rr := env.do(http.MethodGet, "/api/catalog", nil)
	require.Equal(t, http.StatusBadGateway, rr.Code)

	var payload jsonError
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	assert.Equal(t, "catalog unavailable", payload.Error)
	assert.Equal(t, "timeout", payload.Details)
}

func TestAPILeads(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		sinkErr  error
		want     int
		wantBody string
	}{
		{name: "accepted", body: `{"item_id":"m-1","name":"Иван","phone":"+7 913 555 12 34"}`, want: http.StatusAccepted, wantBody: `"status":"accepted"`},
		{name: "bad json", body: `{"name":`, want: http.StatusBadRequest, wantBody: "invalid request body"},
		{name: "missing name", body: `{"phone":"+79135551234"}`, want: http.StatusBadRequest, wantBody: "name is required"},
		{name: "bad email", body: `{"name":"Иван","phone":"+79135551234","email":"nope"}`, want: http.StatusBadRequest, wantBody: "validation failed"},
		{name: "sink closed", body: `{"name":"Иван","phone":"+79135551234"}`, sinkErr: pipeline.ErrPipelineClosed, want: http.StatusServiceUnavailable, wantBody: "lead sink unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := loadedEnv(t)
			env.sink.err = tt.sinkErr

			rr := env.postJSON("/api/leads", tt.body)
			require.Equal(t, tt.want, rr.Code, rr.Body.String())
			assert.Contains(t, rr.Body.String(), tt.wantBody)
		})
	}
}

func TestAPILeadsDefaultsSource(t *testing.T) {
	env := loadedEnv(t)

	rr := env.postJSON("/api/leads", `{"name":"Иван","phone":"+79135551234"}`)
	require.Equal(t, http.StatusAccepted, rr.Code)
	require.Len(t, env.sink.leads, 1)
	assert.Equal(t, models.LeadSourceAPI, env.sink.leads[0].Source)
	assert.Equal(t, "lead-1", env.sink.leads[0].ID)
	assert.False(t, env.sink.leads[0].CreatedAt.IsZero())
}

func TestQuizFlow(t *testing.T) {
	env := loadedEnv(t)

	rr := env.do(http.MethodGet, "/quiz", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Что вы производите?")

	rr = env.do(http.MethodPost, "/quiz", url.Values{"action": {"next"}, "step": {"0"}})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), msgQuizAnswer)

	rr = env.do(http.MethodPost, "/quiz", url.Values{"action": {"next"}, "step": {"0"}, "answer": {"Птица"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Contains(t, rr.Header().Get("Location"), "step=1")

	rr = env.do(http.MethodPost, "/quiz", url.Values{
		"action":      {"submit"},
		"step":        {"3"},
		"a.product":   {"Птица"},
		"a.equipment": {"Инъектор рассола"},
		"a.volume":    {"2–5 т"},
		"name":        {"Иван"},
		"phone":       {"+79135551234"},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/quiz?done=1", rr.Header().Get("Location"))
	require.Len(t, env.sink.leads, 1)
	assert.Equal(t, models.LeadSourceQuiz, env.sink.leads[0].Source)
	assert.Contains(t, env.sink.leads[0].Comment, "Инъектор рассола")
}

func TestHealthAndMetrics(t *testing.T) {
	env := loadedEnv(t)

	rr := env.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok","catalog":"loaded"}`, rr.Body.String())

	rr = env.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "http_requests_total")
}

func TestStaticAssets(t *testing.T) {
	env := loadedEnv(t)

	rr := env.do(http.MethodGet, "/static/app.js", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "IntersectionObserver")
}

func TestQuizCannotSkipSteps(t *testing.T) {
	env := loadedEnv(t)

	rr := env.do(http.MethodGet, "/quiz?step=3", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Что вы производите?")

	rr = env.do(http.MethodPost, "/quiz", url.Values{
		"action":    {"submit"},
		"step":      {"3"},
		"a.product": {"Уголь"},
		"name":      {"Иван"},
		"phone":     {"+79135551234"},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/quiz?step=0", rr.Header().Get("Location"))
	assert.Empty(t, env.sink.leads)
}
