// Package keyboards defines the canonical menus of the bot and the dynamic
// time-offer keyboards. Multi-select menus carry stable option identifiers,
// so a toggle edits the displayed keyboard without index arithmetic.
package keyboards

import (
	"time"

	"github.com/ajubot/volunteer-bot/internal/models"
	"github.com/ajubot/volunteer-bot/internal/timeutil"
)

// Callback data vocabulary. The prefixes route callbacks in the handler.
const (
	EtaLater = "eta_later"
	EtaNever = "eta_never"

	CautionOK     = "caution_ok"
	CautionCancel = "caution_cancel"

	HandleOnMyWay    = "handle_onmyway"
	HandleDone       = "handle_done"
	HandleNoExpenses = "handle_no_expenses"
	HandleCancel     = "handle_cancel"

	SymptomNone   = "symptom_none"
	SymptomNoIdea = "symptom_noidea"
	SymptomNext   = "symptom_next"

	AssistNext = "assist_next"

	WouldYouYes = "wouldyou_yes"
	WouldYouNo  = "wouldyou_no"

	FurtherCommentsNo = "furthercomments_no"
)

// SymptomTerminal reports whether a symptom callback ends the multi-select
// (as opposed to toggling a checkbox).
func SymptomTerminal(data string) bool {
	return data == SymptomNone || data == SymptomNoIdea || data == SymptomNext
}

// SymptomMenu returns a fresh symptom multi-select. Every volunteer gets
// their own copy, the toggle state is per-chat.
func SymptomMenu() *models.Menu {
	return &models.Menu{
		Kind: models.MenuKindSymptoms,
		Rows: [][]models.MenuOption{
			{
				{ID: "symptom_fever", Label: "Fever", Selectable: true},
				{ID: "symptom_cough", Label: "Cough", Selectable: true},
				{ID: "symptom_heavybreathing", Label: "Heavy breathing", Selectable: true},
			},
			{{ID: SymptomNone, Label: "👍 No symptoms"}},
			{{ID: SymptomNoIdea, Label: "Not sure"}},
			{{ID: SymptomNext, Label: "Continue"}},
		},
	}
}

// ActivityMenu returns a fresh onboarding activity multi-select.
func ActivityMenu() *models.Menu {
	return &models.Menu{
		Kind: models.MenuKindActivities,
		Rows: [][]models.MenuOption{
			{
				{ID: "assist_transport", Label: "Transport", Selectable: true},
				{ID: "assist_delivery", Label: "Delivery", Selectable: true},
				{ID: "assist_phone", Label: "Phone calls", Selectable: true},
			},
			{{ID: AssistNext, Label: "Continue"}},
		},
	}
}

func CautionMenu() *models.Menu {
	return &models.Menu{Rows: [][]models.MenuOption{
		{{ID: CautionOK, Label: "I'm healthy and symptom-free"}},
		{{ID: CautionCancel, Label: "Hmm... better cancel"}},
	}}
}

func HandlingMenu() *models.Menu {
	return &models.Menu{Rows: [][]models.MenuOption{
		{{ID: HandleOnMyWay, Label: "On my way"}},
		{{ID: HandleCancel, Label: "Cancel"}},
	}}
}

func InProgressMenu() *models.Menu {
	return &models.Menu{Rows: [][]models.MenuOption{
		{{ID: HandleDone, Label: "Mission accomplished"}},
		{{ID: HandleCancel, Label: "Cancel"}},
	}}
}

func ExpenseMenu() *models.Menu {
	return &models.Menu{Rows: [][]models.MenuOption{
		{{ID: HandleNoExpenses, Label: "No expenses, or already reimbursed"}},
	}}
}

func WellbeingMenu() *models.Menu {
	return &models.Menu{Rows: [][]models.MenuOption{
		{
			{ID: "state_0", Label: "🥵 Very bad"},
			{ID: "state_1", Label: "😟 Bad"},
		},
		{{ID: "state_2", Label: "😐 Neutral"}},
		{
			{ID: "state_3", Label: "😃 Good"},
			{ID: "state_4", Label: "😁 Very good"},
		},
	}}
}

func WouldReturnMenu() *models.Menu {
	return &models.Menu{Rows: [][]models.MenuOption{
		{{ID: WouldYouYes, Label: "Yes"}},
		{{ID: WouldYouNo, Label: "No"}},
	}}
}

func FurtherCommentsMenu() *models.Menu {
	return &models.Menu{Rows: [][]models.MenuOption{
		{{ID: FurtherCommentsNo, Label: "No comments"}},
	}}
}

// FirstResponseMenu offers relative ETAs. Labels stay relative, the callback
// data carries the absolute UTC HH:MM so the backend gets a real timestamp.
func FirstResponseMenu(now time.Time) *models.Menu {
	now = now.UTC()
	return &models.Menu{Rows: [][]models.MenuOption{
		{
			{ID: "eta_" + timeutil.Short(now.Add(30*time.Minute)), Label: "In 30 min"},
			{ID: "eta_" + timeutil.Short(now.Add(time.Hour)), Label: "In 1 hour"},
			{ID: "eta_" + timeutil.Short(now.Add(2*time.Hour)), Label: "In 2 hours"},
		},
		{{ID: EtaLater, Label: "Another time"}},
		{{ID: EtaNever, Label: "Cancel"}},
	}}
}

// DayGridMenu lists every remaining half-hour slot of the day, four per
// row. Labels are shown in loc, callback data stays UTC.
func DayGridMenu(now time.Time, loc *time.Location) *models.Menu {
	slots := timeutil.HalfHourSlots(now)

	menu := &models.Menu{}
	var row []models.MenuOption
	for _, slot := range slots {
		row = append(row, models.MenuOption{
			ID:    "eta_" + timeutil.Short(slot),
			Label: timeutil.Short(slot.In(loc)),
		})
		if len(row) == 4 {
			menu.Rows = append(menu.Rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		menu.Rows = append(menu.Rows, row)
	}
	return menu
}

// DefaultReplyKeyboard is shown once registration completes.
func DefaultReplyKeyboard() [][]string {
	return [][]string{
		{"/offertohelp"},
		{"/help", "/about"},
	}
}

// AcceptDeclineKeyboard accompanies every request announcement.
func AcceptDeclineKeyboard() [][]string {
	return [][]string{
		{"/accept"},
		{"/decline"},
	}
}
