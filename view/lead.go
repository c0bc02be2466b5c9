package view

import "strings"

// LeadForm is the two-field request form shown in the lead dialog.
type LeadForm struct {
	Name      string
	Phone     string
	Submitted bool
	// Receipt is the id of the accepted lead behind a submitted form.
	Receipt string
}

// CanSubmit reports whether both fields are non-empty after trimming.
func (f LeadForm) CanSubmit() bool {
	return strings.TrimSpace(f.Name) != "" && strings.TrimSpace(f.Phone) != ""
}

// Submit flips the form to its thank-you state. It returns false and leaves
// the form untouched when a field is blank.
func (f LeadForm) Submit() (LeadForm, bool) {
	if f.Submitted {
		return f, true
	}
	if !f.CanSubmit() {
		return f, false
	}
	return LeadForm{
		Name:      strings.TrimSpace(f.Name),
		Phone:     strings.TrimSpace(f.Phone),
		Submitted: true,
	}, true
}
