package models

import "time"

// RequestStatus values understood by the backend.
type RequestStatus string

const (
	StatusNew        RequestStatus = "new"
	StatusInProgress RequestStatus = "in_progress"
	StatusDone       RequestStatus = "done"
	StatusCancelled  RequestStatus = "cancelled"
)

// AssistanceRequest is one unit of assistance work tied to a beneficiary.
// The descriptive fields are a snapshot delivered by the backend when the
// request is announced; the survey fields are filled in by the assignee.
type AssistanceRequest struct {
	ID              string   `json:"request_id"`
	Beneficiary     string   `json:"beneficiary"`
	Address         string   `json:"address"`
	Needs           []string `json:"needs"`
	Volunteers      []int64  `json:"volunteers"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	Remarks         []string `json:"remarks,omitempty"`
	HasDisabilities bool     `json:"has_disabilities,omitempty"`

	// Set once the backend assigns the request; immutable afterwards.
	Assignee  int64  `json:"assignee,omitempty"`
	TimeOffer string `json:"time_offer,omitempty"`

	// Exit-survey accumulator, owned by the assignee.
	Amount          string   `json:"amount,omitempty"`
	Symptoms        []string `json:"symptoms,omitempty"`
	Wellbeing       *int     `json:"wellbeing,omitempty"`
	WouldReturn     *bool    `json:"would_return,omitempty"`
	FurtherComments string   `json:"further_comments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// HasLocation reports whether the backend supplied geolocation for the
// beneficiary.
func (r *AssistanceRequest) HasLocation() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// WasNotified reports whether the given volunteer was among those originally
// offered this request.
func (r *AssistanceRequest) WasNotified(chatID int64) bool {
	for _, id := range r.Volunteers {
		if id == chatID {
			return true
		}
	}
	return false
}

// RequestResult is the consolidated payload submitted to the backend when a
// request is finalized.
type RequestResult struct {
	RequestID       string   `json:"request_id"`
	Amount          string   `json:"amount"`
	FurtherComments string   `json:"further_comments"`
	Symptoms        []string `json:"symptoms"`
	Wellbeing       int      `json:"wellbeing"`
	WouldReturn     bool     `json:"would_return"`
}

// Result assembles the final payload from the accumulated survey fields.
// Unanswered optional fields fall back to zero values, matching what the
// backend expects.
func (r *AssistanceRequest) Result() *RequestResult {
	res := &RequestResult{
		RequestID:       r.ID,
		Amount:          r.Amount,
		FurtherComments: r.FurtherComments,
		Symptoms:        r.Symptoms,
	}
	if res.Symptoms == nil {
		res.Symptoms = []string{}
	}
	if r.Wellbeing != nil {
		res.Wellbeing = *r.Wellbeing
	}
	if r.WouldReturn != nil {
		res.WouldReturn = *r.WouldReturn
	}
	return res
}
