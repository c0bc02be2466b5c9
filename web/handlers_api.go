package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aluiziolira/go-equipment-catalog/feed"
	"github.com/aluiziolira/go-equipment-catalog/models"
)

const maxLeadBody = 64 << 10

func (a *App) cors(w http.ResponseWriter, methods string) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", a.cfg.AllowedOrigin)
	h.Set("Access-Control-Allow-Methods", methods)
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}

func (a *App) apiPreflight(w http.ResponseWriter, r *http.Request) {
	methods := "GET, OPTIONS"
	if r.URL.Path == "/api/leads" {
		methods = "POST, OPTIONS"
	}
	a.cors(w, methods)
	w.WriteHeader(http.StatusOK)
}

func (a *App) apiCatalog(w http.ResponseWriter, r *http.Request) {
	a.cors(w, "GET, OPTIONS")

	cat, err := a.source.Catalog(r.Context())
	if err != nil {
		slog.Error("catalog request failed", slog.Any("error", err))
		writeJSONError(w, http.StatusBadGateway, "catalog unavailable", feed.ErrorLabel(err))
		return
	}
	if cat == nil {
		cat = &models.Catalog{}
	}
	if cat.Massagers == nil || cat.Injectors == nil {
		c := *cat
		if c.Massagers == nil {
			c.Massagers = []models.CatalogItem{}
		}
		if c.Injectors == nil {
			c.Injectors = []models.CatalogItem{}
		}
		cat = &c
	}
	writeJSON(w, http.StatusOK, cat)
}

type leadAccepted struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (a *App) apiLeads(w http.ResponseWriter, r *http.Request) {
	a.cors(w, "POST, OPTIONS")

	var req leadRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLeadBody))
	if err := dec.Decode(&req); err != nil {
		a.metrics.IncLead("rejected")
		writeJSONError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	lead := req.lead()
	status, err := a.submitLead(r.Context(), lead)
	switch status {
	case http.StatusBadRequest:
		writeJSONError(w, status, "validation failed", err.Error())
	case http.StatusServiceUnavailable:
		writeJSONError(w, status, "lead sink unavailable", err.Error())
	default:
		writeJSON(w, http.StatusAccepted, leadAccepted{ID: lead.ID, Status: "accepted"})
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Catalog string `json:"catalog"`
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Catalog: a.loader.Snapshot().Phase.String()})
}
