package services

import (
	"fmt"
	"strings"

	"github.com/ajubot/volunteer-bot/internal/models"
	"github.com/ajubot/volunteer-bot/internal/texts"
)

// FormatNeeds renders the needs list as bullet lines for announcements.
func FormatNeeds(needs []string) string {
	var b strings.Builder
	for _, need := range needs {
		b.WriteString("- ")
		b.WriteString(need)
		b.WriteString("\n")
	}
	return b.String()
}

// FormatAnnouncement is the short teaser sent to every candidate volunteer.
// It deliberately omits the beneficiary's name until someone is assigned.
func FormatAnnouncement(req *models.AssistanceRequest) string {
	return fmt.Sprintf(texts.MsgRequestAnnouncement, req.Address, FormatNeeds(req.Needs))
}

// FormatFullDetails is the complete request card revealed to the assignee
// after the health caution.
func FormatFullDetails(req *models.AssistanceRequest) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf(texts.MsgFullDetails, req.Beneficiary, req.Address, FormatNeeds(req.Needs)))
	if len(req.Remarks) > 0 {
		b.WriteString("\n")
		b.WriteString(texts.MsgOtherRemarks)
		b.WriteString("\n")
		b.WriteString(FormatNeeds(req.Remarks))
	}
	if req.HasDisabilities {
		b.WriteString("\n")
		b.WriteString(texts.MsgDisability)
	}
	return b.String()
}
