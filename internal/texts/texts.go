// Package texts holds every user-facing message of the bot in one place.
package texts

const (
	MsgPhoneQuery = "Hi! To get started, please share your phone number using the button below."
	MsgHelp       = "I coordinate volunteers who help people that cannot leave their homes. Share your phone number to register, then wait for assistance requests."
	MsgAbout      = "Volunteer dispatch bot. Questions? Write to the coordination team."
	MsgStandby    = "Thank you! We'll get in touch as soon as someone near you needs help."

	MsgRequestAnnouncement = "Someone needs help!\n\nAddress: %s\nNeeds:\n%s\nCan you take this?"
	MsgPickTime            = "When could you get there?"
	MsgAckTime             = "Got it, %s it is."
	MsgCoordinating        = " We're coordinating with the other volunteers and will confirm shortly."
	MsgThanksNoThanks      = "No worries, thanks for letting us know. We'll count on you next time!"
	MsgAnotherAssignee     = "Another volunteer was assigned this time. Thank you for offering to help!"
	MsgRequestCancelled    = "This request was cancelled. Thank you anyway, we'll be in touch!"

	MsgCaution = "Before you go: are you feeling well, with no symptoms yourself?"
	MsgFullDetails = "Here are the details:\n\nBeneficiary: %s\nAddress: %s\nNeeds:\n%s"
	MsgOtherRemarks = "Additional remarks:"
	MsgDisability   = "Please note: the beneficiary has a disability."
	MsgLetMeKnow    = "Let me know once you're on your way."

	MsgSafetyInstructions = "Remember: keep your distance, wear a mask, disinfect your hands."
	MsgLetMeKnowArrive    = "Tell me when the mission is accomplished."
	MsgNoWorriesLater     = "No worries, maybe next time. Take care!"

	MsgThanksFeedback   = "Great job! A few quick questions about this request."
	MsgFeedbackExpenses = "Did you spend any money that should be reimbursed? If so, type the amount."
	MsgFeedbackReceipt  = "Please send a photo of the receipt."

	MsgFeedbackMood           = "How would you rate %s's wellbeing?"
	MsgSymptoms               = "Did you notice any of these symptoms in %s?"
	MsgWouldYouDoThisAgain    = "Would you help %s again in the future?"
	MsgFeedbackFurtherComment = "Anything future volunteers should know about %s?"
	MsgActivitiesNudge        = "Pick at least one way you can help, then press Continue."
	MsgOnboardNextSteps       = "All set! We've sent your profile to the coordination team. You'll hear from us once it is approved."
	MsgThanksFinal            = "That's it — thank you so much for helping!"
)

// ProfileQuestions maps a profile field to the question the bot asks for it.
var ProfileQuestions = map[string]string{
	"firstName":    "What is your first name?",
	"lastName":     "And your last name?",
	"availability": "How many hours per day can you dedicate to volunteering?",
	"activities":   "How can you help?",
	"phone":        "We need a local phone number to reach you. Which one should we use?",
	"email":        "Almost done! What is your email address?",
}
