package models

import "time"

// Lead is a contact request left on the landing page.
type Lead struct {
	ID        string    `csv:"id" json:"id"`
	ItemID    string    `csv:"item_id" json:"item_id,omitempty"`
	ItemName  string    `csv:"item_name" json:"item_name,omitempty"`
	Name      string    `csv:"name" json:"name"`
	Phone     string    `csv:"phone" json:"phone"`
	Company   string    `csv:"company" json:"company,omitempty"`
	Email     string    `csv:"email" json:"email,omitempty"`
	Source    string    `csv:"source" json:"source"`
	Comment   string    `csv:"comment" json:"comment,omitempty"`
	CreatedAt time.Time `csv:"created_at" json:"created_at"`
}

// Lead sources.
const (
	LeadSourceCatalog = "catalog"
	LeadSourceHero    = "hero"
	LeadSourceCTA     = "cta"
	LeadSourceQuiz    = "quiz"
	LeadSourceAPI     = "api"
)
