package web

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aluiziolira/go-equipment-catalog/models"
	"github.com/aluiziolira/go-equipment-catalog/parser"
)

// submitLead stamps, validates and enqueues lead. The returned status is
// http.StatusAccepted, http.StatusBadRequest or http.StatusServiceUnavailable.
func (a *App) submitLead(ctx context.Context, lead *models.Lead) (int, error) {
	a.stampLead(lead)
	if err := parser.ValidateLead(lead); err != nil {
		a.metrics.IncLead("rejected")
		return http.StatusBadRequest, err
	}
	return a.enqueueLead(ctx, lead)
}

func (a *App) stampLead(lead *models.Lead) {
	parser.NormalizeLead(lead)
	lead.ID = a.newID()
	lead.CreatedAt = a.now().UTC()
}

func (a *App) enqueueLead(ctx context.Context, lead *models.Lead) (int, error) {
	if err := a.leads.Process(ctx, lead); err != nil {
		a.metrics.IncLead("unavailable")
		slog.Error("lead not accepted",
			slog.String("id", lead.ID),
			slog.String("source", lead.Source),
			slog.Any("error", err),
		)
		return http.StatusServiceUnavailable, err
	}
	a.metrics.IncLead("accepted")
	slog.Info("lead accepted",
		slog.String("id", lead.ID),
		slog.String("source", lead.Source),
		slog.String("item_id", lead.ItemID),
	)
	return http.StatusAccepted, nil
}

// leadRequest is the JSON body of POST /api/leads.
type leadRequest struct {
	ItemID  string `json:"item_id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Email   string `json:"email"`
	Source  string `json:"source"`
	Comment string `json:"comment"`
}

func (req leadRequest) lead() *models.Lead {
	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = models.LeadSourceAPI
	}
	return &models.Lead{
		ItemID:  req.ItemID,
		Name:    req.Name,
		Phone:   req.Phone,
		Company: req.Company,
		Email:   req.Email,
		Source:  source,
		Comment: req.Comment,
	}
}
