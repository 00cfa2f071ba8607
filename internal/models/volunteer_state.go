package models

import "time"

// VolunteerState is the per-chat conversation state. It survives restarts;
// one row per volunteer for the lifetime of the relationship.
type VolunteerState struct {
	ChatID            int64  `json:"chat_id"`
	Step              string `json:"step"`
	CurrentRequestID  string `json:"current_request_id,omitempty"`
	ReviewedRequestID string `json:"reviewed_request_id,omitempty"`
	// At most one of the two snapshots is set: the multi-select keyboard
	// currently displayed to this volunteer, so toggles can edit it in place.
	SymptomMenu  *Menu     `json:"symptom_menu,omitempty"`
	ActivityMenu *Menu     `json:"activity_menu,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ClearRequestRefs resets both request references and any survey keyboard
// snapshot, leaving the volunteer ready for new assignments.
func (s *VolunteerState) ClearRequestRefs() {
	s.CurrentRequestID = ""
	s.ReviewedRequestID = ""
	s.SymptomMenu = nil
}
