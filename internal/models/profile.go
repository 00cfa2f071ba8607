package models

import "time"

// Profile field identifiers. FieldOrder defines the question sequence:
// fields are asked strictly in this order, skipping any already answered.
const (
	FieldFirstName    = "firstName"
	FieldLastName     = "lastName"
	FieldAvailability = "availability"
	FieldActivities   = "activities"
	FieldPhone        = "phone"
	FieldEmail        = "email"
)

var FieldOrder = []string{
	FieldFirstName,
	FieldLastName,
	FieldAvailability,
	FieldActivities,
	FieldPhone,
	FieldEmail,
}

// RegistrationProfile is a partially filled volunteer profile, built up one
// question at a time during onboarding. It exists only until registration
// completes.
type RegistrationProfile struct {
	ChatID       int64     `json:"chat_id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Availability string    `json:"availability"`
	Activities   []string  `json:"activities"`
	Phone        string    `json:"phone"`
	PhoneForeign string    `json:"phone_foreign,omitempty"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewRegistrationProfile seeds a profile from what Telegram already knows
// about the user. A contact-supplied number that does not start with the
// local prefix is kept as the foreign phone and the local phone is left
// unanswered, so the engine will ask for a local one.
func NewRegistrationProfile(chatID int64, firstName, lastName, phone, localPrefix string) *RegistrationProfile {
	p := &RegistrationProfile{
		ChatID:    chatID,
		FirstName: firstName,
		LastName:  lastName,
		Phone:     phone,
	}
	if phone != "" && localPrefix != "" && !hasPrefix(phone, localPrefix) {
		p.PhoneForeign = phone
		p.Phone = ""
	}
	return p
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// NextField returns the first unanswered field in declaration order, or
// ok=false when the profile is complete.
func (p *RegistrationProfile) NextField() (field string, ok bool) {
	for _, f := range FieldOrder {
		if !p.answered(f) {
			return f, true
		}
	}
	return "", false
}

func (p *RegistrationProfile) answered(field string) bool {
	switch field {
	case FieldFirstName:
		return p.FirstName != ""
	case FieldLastName:
		return p.LastName != ""
	case FieldAvailability:
		return p.Availability != ""
	case FieldActivities:
		return len(p.Activities) > 0
	case FieldPhone:
		return p.Phone != ""
	case FieldEmail:
		return p.Email != ""
	}
	return true
}

// SetField writes a free-text answer into the named field. Activities are
// collected through the multi-select menu, not through SetField.
func (p *RegistrationProfile) SetField(field, value string) {
	switch field {
	case FieldFirstName:
		p.FirstName = value
	case FieldLastName:
		p.LastName = value
	case FieldAvailability:
		p.Availability = value
	case FieldPhone:
		p.Phone = value
	case FieldEmail:
		p.Email = value
	}
}

// ToggleActivity flips membership of an activity tag in the set.
func (p *RegistrationProfile) ToggleActivity(activity string) {
	for i, a := range p.Activities {
		if a == activity {
			p.Activities = append(p.Activities[:i], p.Activities[i+1:]...)
			return
		}
	}
	p.Activities = append(p.Activities, activity)
}

// Complete reports whether every required field has been answered.
func (p *RegistrationProfile) Complete() bool {
	_, ok := p.NextField()
	return !ok
}
