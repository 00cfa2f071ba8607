package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/ajubot/volunteer-bot/internal/db"
	"github.com/ajubot/volunteer-bot/internal/fsm"
	"github.com/ajubot/volunteer-bot/internal/keyboards"
	"github.com/ajubot/volunteer-bot/internal/metrics"
	"github.com/ajubot/volunteer-bot/internal/models"
	"github.com/ajubot/volunteer-bot/internal/texts"
)

// SurveyManager runs the post-completion questionnaire: expenses, receipt
// photos, wellbeing, symptoms, would-return, and final free comments. It
// accumulates answers on the request record and submits the consolidated
// result at the end.
type SurveyManager struct {
	sessions   *SessionManager
	requests   *db.RequestRepository
	backend    Backend
	msg        Messenger
	celebrator Celebrator
}

func NewSurveyManager(sessions *SessionManager, requests *db.RequestRepository, backend Backend, msg Messenger, celebrator Celebrator) *SurveyManager {
	return &SurveyManager{
		sessions:   sessions,
		requests:   requests,
		backend:    backend,
		msg:        msg,
		celebrator: celebrator,
	}
}

// HandleNoExpenses skips the receipt step and opens the exit survey.
func (m *SurveyManager) HandleNoExpenses(ctx context.Context, chatID int64) error {
	state, err := m.sessions.Get(chatID)
	if err != nil {
		return err
	}
	if state.Step != fsm.StepAwaitingAmount {
		log.Printf("[SURVEY] no-expenses from %d in step %s, dropped", chatID, state.Step)
		metrics.DroppedEvents.WithLabelValues("unexpected_callback").Inc()
		return nil
	}

	req, ok, err := m.currentRequest(state)
	if err != nil || !ok {
		return err
	}
	return m.beginExitSurvey(ctx, state, req)
}

// HandleAmount records the free-text expense amount verbatim and asks for
// the receipt. Validation is the backend's job.
func (m *SurveyManager) HandleAmount(ctx context.Context, chatID int64, text string) error {
	state, err := m.sessions.Get(chatID)
	if err != nil {
		return err
	}
	if state.Step != fsm.StepAwaitingAmount {
		log.Printf("[SURVEY] amount text from %d in step %s, dropped", chatID, state.Step)
		metrics.DroppedEvents.WithLabelValues("unexpected_text").Inc()
		return nil
	}

	req, ok, err := m.currentRequest(state)
	if err != nil || !ok {
		return err
	}

	req.Amount = text
	if err := m.requests.Put(req); err != nil {
		return err
	}

	state.Step = fsm.StepAwaitingReceipt
	if err := m.sessions.Save(state); err != nil {
		return err
	}
	return m.msg.SendText(ctx, chatID, texts.MsgFeedbackReceipt)
}

// HandleReceiptPhotos uploads every photo of the message, then opens the
// exit survey. A failed upload leaves the step untouched so the volunteer
// can resend.
func (m *SurveyManager) HandleReceiptPhotos(ctx context.Context, chatID int64, images [][]byte) error {
	state, err := m.sessions.Get(chatID)
	if err != nil {
		return err
	}
	if state.Step != fsm.StepAwaitingReceipt {
		log.Printf("[SURVEY] photo from %d in step %s, dropped", chatID, state.Step)
		metrics.DroppedEvents.WithLabelValues("unexpected_photo").Inc()
		return nil
	}

	req, ok, err := m.currentRequest(state)
	if err != nil || !ok {
		return err
	}

	for _, image := range images {
		if err := m.backend.UploadReceipt(ctx, req.ID, image); err != nil {
			metrics.BackendErrors.Inc()
			return fmt.Errorf("upload receipt for %s: %w", req.ID, err)
		}
	}
	return m.beginExitSurvey(ctx, state, req)
}

// HandleWellbeing records the 0-4 wellbeing score and shows the symptom
// multi-select.
func (m *SurveyManager) HandleWellbeing(ctx context.Context, chatID int64, data string) error {
	state, err := m.sessions.Get(chatID)
	if err != nil {
		return err
	}
	if state.Step != fsm.StepAwaitingExitSurvey {
		log.Printf("[SURVEY] wellbeing %q from %d in step %s, dropped", data, chatID, state.Step)
		metrics.DroppedEvents.WithLabelValues("unexpected_callback").Inc()
		return nil
	}

	score, err := strconv.Atoi(strings.TrimPrefix(data, "state_"))
	if err != nil || score < 0 || score > 4 {
		log.Printf("[SURVEY] malformed wellbeing %q from %d, dropped", data, chatID)
		metrics.DroppedEvents.WithLabelValues("unknown_option").Inc()
		return nil
	}

	req, ok, err := m.currentRequest(state)
	if err != nil || !ok {
		return err
	}

	req.Wellbeing = &score
	if err := m.requests.Put(req); err != nil {
		return err
	}

	menu := keyboards.SymptomMenu()
	state.SymptomMenu = menu
	if err := m.sessions.Save(state); err != nil {
		return err
	}
	_, err = m.msg.SendMenu(ctx, chatID, fmt.Sprintf(texts.MsgSymptoms, req.Beneficiary), menu)
	return err
}

// HandleSymptomToggle flips a symptom checkbox, or on a terminal option
// closes the multi-select and moves on to the would-return question.
// "None" and "no idea" also wipe whatever was toggled before.
func (m *SurveyManager) HandleSymptomToggle(ctx context.Context, chatID int64, messageID int, data string) error {
	state, err := m.sessions.Get(chatID)
	if err != nil {
		return err
	}
	if state.Step != fsm.StepAwaitingExitSurvey {
		log.Printf("[SURVEY] symptom %q from %d in step %s, dropped", data, chatID, state.Step)
		metrics.DroppedEvents.WithLabelValues("unexpected_callback").Inc()
		return nil
	}

	req, ok, err := m.currentRequest(state)
	if err != nil || !ok {
		return err
	}

	if keyboards.SymptomTerminal(data) {
		if data == keyboards.SymptomNone || data == keyboards.SymptomNoIdea {
			req.Symptoms = nil
			if err := m.requests.Put(req); err != nil {
				return err
			}
		}
		state.SymptomMenu = nil
		if err := m.sessions.Save(state); err != nil {
			return err
		}
		_, err = m.msg.SendMenu(ctx, chatID, fmt.Sprintf(texts.MsgWouldYouDoThisAgain, req.Beneficiary), keyboards.WouldReturnMenu())
		return err
	}

	menu := state.SymptomMenu
	if menu == nil {
		// First press arrived before any snapshot was stored.
		menu = keyboards.SymptomMenu()
	}
	if !menu.Has(data) {
		log.Printf("[SURVEY] unknown symptom %q from %d, dropped", data, chatID)
		metrics.DroppedEvents.WithLabelValues("unknown_option").Inc()
		return nil
	}

	toggled := menu.Toggle(data)
	req.Symptoms = toggled.Selected()
	if err := m.requests.Put(req); err != nil {
		return err
	}
	state.SymptomMenu = toggled
	if err := m.sessions.Save(state); err != nil {
		return err
	}
	return m.msg.EditMenu(ctx, chatID, messageID, toggled)
}

// HandleWouldReturn records the yes/no answer and asks for final comments.
func (m *SurveyManager) HandleWouldReturn(ctx context.Context, chatID int64, data string) error {
	state, err := m.sessions.Get(chatID)
	if err != nil {
		return err
	}
	if state.Step != fsm.StepAwaitingExitSurvey {
		log.Printf("[SURVEY] would-return %q from %d in step %s, dropped", data, chatID, state.Step)
		metrics.DroppedEvents.WithLabelValues("unexpected_callback").Inc()
		return nil
	}

	req, ok, err := m.currentRequest(state)
	if err != nil || !ok {
		return err
	}

	wouldReturn := data == keyboards.WouldYouYes
	req.WouldReturn = &wouldReturn
	if err := m.requests.Put(req); err != nil {
		return err
	}

	state.Step = fsm.StepAwaitingFurtherComments
	if err := m.sessions.Save(state); err != nil {
		return err
	}
	_, err = m.msg.SendMenu(ctx, chatID, fmt.Sprintf(texts.MsgFeedbackFurtherComment, req.Beneficiary), keyboards.FurtherCommentsMenu())
	return err
}

// HandleFurtherComments records the last answer (empty for the "no
// comments" button), submits the consolidated result, and releases both
// the request and the volunteer.
func (m *SurveyManager) HandleFurtherComments(ctx context.Context, chatID int64, text string) error {
	state, err := m.sessions.Get(chatID)
	if err != nil {
		return err
	}
	if state.Step != fsm.StepAwaitingFurtherComments {
		log.Printf("[SURVEY] comments from %d in step %s, dropped", chatID, state.Step)
		metrics.DroppedEvents.WithLabelValues("unexpected_text").Inc()
		return nil
	}

	req, ok, err := m.currentRequest(state)
	if err != nil || !ok {
		return err
	}

	req.FurtherComments = text
	if err := m.backend.SubmitResult(ctx, req.Result()); err != nil {
		metrics.BackendErrors.Inc()
		return fmt.Errorf("submit result for %s: %w", req.ID, err)
	}

	if err := m.requests.Delete(req.ID); err != nil {
		return err
	}
	state.Step = fsm.StepAvailable
	state.ClearRequestRefs()
	if err := m.sessions.Save(state); err != nil {
		return err
	}

	if err := m.msg.SendReplyKeyboard(ctx, chatID, texts.MsgThanksFinal, keyboards.DefaultReplyKeyboard(), false); err != nil {
		return err
	}
	m.celebrator.SendCelebration(ctx, chatID)
	return nil
}

func (m *SurveyManager) beginExitSurvey(ctx context.Context, state *models.VolunteerState, req *models.AssistanceRequest) error {
	state.Step = fsm.StepAwaitingExitSurvey
	if err := m.sessions.Save(state); err != nil {
		return err
	}
	_, err := m.msg.SendMenu(ctx, state.ChatID, fmt.Sprintf(texts.MsgFeedbackMood, req.Beneficiary), keyboards.WellbeingMenu())
	return err
}

// currentRequest loads the request the volunteer is fulfilling. A missing
// row means the request was finalized or cancelled elsewhere, so the event
// is stale and gets dropped.
func (m *SurveyManager) currentRequest(state *models.VolunteerState) (*models.AssistanceRequest, bool, error) {
	if state.CurrentRequestID == "" {
		log.Printf("[SURVEY] no current request for %d, dropped", state.ChatID)
		metrics.DroppedEvents.WithLabelValues("no_request").Inc()
		return nil, false, nil
	}
	req, err := m.requests.Get(state.CurrentRequestID)
	if err != nil {
		if errors.Is(err, db.ErrRequestNotFound) {
			log.Printf("[SURVEY] request %s gone for %d, dropped", state.CurrentRequestID, state.ChatID)
			metrics.DroppedEvents.WithLabelValues("stale_request").Inc()
			return nil, false, nil
		}
		return nil, false, err
	}
	return req, true, nil
}
