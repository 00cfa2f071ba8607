package fsm

const (
	StepAwaitingPhone           = "awaiting_phone"
	StepAvailable               = "available"
	StepRequestSent             = "request_sent"
	StepRequestAssigned         = "request_assigned"
	StepRequestInProgress       = "request_in_progress"
	StepAwaitingAmount          = "awaiting_amount"
	StepAwaitingReceipt         = "awaiting_receipt"
	StepAwaitingExitSurvey      = "awaiting_exit_survey"
	StepAwaitingFurtherComments = "awaiting_further_comments"
	StepAwaitingProfileDetails  = "awaiting_profile_details"
)

// MidRequest reports whether a volunteer in this step is already committed
// to a request and must not be offered another one.
func MidRequest(step string) bool {
	return step == StepRequestAssigned || step == StepRequestInProgress
}
