package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ajubot/volunteer-bot/internal/db"
	"github.com/ajubot/volunteer-bot/internal/fsm"
	"github.com/ajubot/volunteer-bot/internal/keyboards"
	"github.com/ajubot/volunteer-bot/internal/metrics"
	"github.com/ajubot/volunteer-bot/internal/models"
	"github.com/ajubot/volunteer-bot/internal/texts"
)

// OnboardingManager runs the registration flow: contact exchange, backend
// lookup, and the field-by-field profile questionnaire for unknown phones.
type OnboardingManager struct {
	sessions    *SessionManager
	regRepo     *db.RegistrationRepository
	backend     Backend
	msg         Messenger
	localPrefix string
}

func NewOnboardingManager(sessions *SessionManager, regRepo *db.RegistrationRepository, backend Backend, msg Messenger, localPrefix string) *OnboardingManager {
	return &OnboardingManager{
		sessions:    sessions,
		regRepo:     regRepo,
		backend:     backend,
		msg:         msg,
		localPrefix: localPrefix,
	}
}

// Start handles the greeting command. A registered volunteer gets the
// standby acknowledgement; everyone else is asked for their contact card.
func (m *OnboardingManager) Start(ctx context.Context, chatID int64) error {
	state, err := m.sessions.Get(chatID)
	if err != nil {
		return err
	}

	if state.Step != fsm.StepAwaitingPhone {
		return m.msg.SendReplyKeyboard(ctx, chatID, texts.MsgStandby, keyboards.DefaultReplyKeyboard(), false)
	}

	if err := m.sessions.Save(state); err != nil {
		return err
	}
	return m.msg.SendContactRequest(ctx, chatID, texts.MsgPhoneQuery)
}

// HandleContact processes a shared contact card. Known phones go straight
// to standby; unknown phones enter the registration questionnaire.
func (m *OnboardingManager) HandleContact(ctx context.Context, chatID int64, username, firstName, lastName, phone string) error {
	state, err := m.sessions.Get(chatID)
	if err != nil {
		return err
	}

	exists, err := m.backend.LookupVolunteer(ctx, username, chatID, phone)
	if err != nil {
		metrics.BackendErrors.Inc()
		return fmt.Errorf("lookup volunteer %d: %w", chatID, err)
	}

	if exists {
		state.Step = fsm.StepAvailable
		state.ClearRequestRefs()
		if err := m.sessions.Save(state); err != nil {
			return err
		}
		return m.msg.SendReplyKeyboard(ctx, chatID, texts.MsgStandby, keyboards.DefaultReplyKeyboard(), false)
	}

	profile := models.NewRegistrationProfile(chatID, firstName, lastName, phone, m.localPrefix)
	if err := m.regRepo.Save(profile); err != nil {
		return err
	}

	state.Step = fsm.StepAwaitingProfileDetails
	if err := m.sessions.Save(state); err != nil {
		return err
	}
	return m.askNext(ctx, state, profile)
}

// HandleProfileText writes a free-text answer into the next unanswered
// profile field and asks the following question.
func (m *OnboardingManager) HandleProfileText(ctx context.Context, chatID int64, text string) error {
	state, err := m.sessions.Get(chatID)
	if err != nil {
		return err
	}
	if state.Step != fsm.StepAwaitingProfileDetails {
		log.Printf("[ONBOARD] text from %d in step %s, dropped", chatID, state.Step)
		metrics.DroppedEvents.WithLabelValues("unexpected_text").Inc()
		return nil
	}

	profile, err := m.regRepo.Get(chatID)
	if err != nil {
		if errors.Is(err, db.ErrRegistrationNotFound) {
			log.Printf("[ONBOARD] no registration in progress for %d, dropped", chatID)
			metrics.DroppedEvents.WithLabelValues("no_registration").Inc()
			return nil
		}
		return err
	}

	field, ok := profile.NextField()
	if !ok || field == models.FieldActivities {
		// Activities are picked through the menu, not typed.
		return m.askNext(ctx, state, profile)
	}

	profile.SetField(field, text)
	if err := m.regRepo.Save(profile); err != nil {
		return err
	}
	return m.askNext(ctx, state, profile)
}

// HandleActivityToggle processes a press on the onboarding activity menu.
// The sentinel advances the questionnaire, anything else flips a checkbox.
func (m *OnboardingManager) HandleActivityToggle(ctx context.Context, chatID int64, messageID int, data string) error {
	state, err := m.sessions.Get(chatID)
	if err != nil {
		return err
	}

	profile, err := m.regRepo.Get(chatID)
	if err != nil {
		if errors.Is(err, db.ErrRegistrationNotFound) {
			log.Printf("[ONBOARD] activity toggle from %d with no registration, dropped", chatID)
			metrics.DroppedEvents.WithLabelValues("no_registration").Inc()
			return nil
		}
		return err
	}

	if data == keyboards.AssistNext {
		if len(profile.Activities) == 0 {
			return m.msg.SendText(ctx, chatID, texts.MsgActivitiesNudge)
		}
		state.ActivityMenu = nil
		if err := m.sessions.Save(state); err != nil {
			return err
		}
		return m.askNext(ctx, state, profile)
	}

	menu := state.ActivityMenu
	if menu == nil {
		menu = keyboards.ActivityMenu()
	}
	if !menu.Has(data) {
		log.Printf("[ONBOARD] unknown activity %q from %d, dropped", data, chatID)
		metrics.DroppedEvents.WithLabelValues("unknown_option").Inc()
		return nil
	}

	toggled := menu.Toggle(data)
	profile.ToggleActivity(data)
	if err := m.regRepo.Save(profile); err != nil {
		return err
	}
	state.ActivityMenu = toggled
	if err := m.sessions.Save(state); err != nil {
		return err
	}
	return m.msg.EditMenu(ctx, chatID, messageID, toggled)
}

func (m *OnboardingManager) askNext(ctx context.Context, state *models.VolunteerState, profile *models.RegistrationProfile) error {
	field, ok := profile.NextField()
	if !ok {
		return m.finishRegistration(ctx, state, profile)
	}

	if field == models.FieldActivities {
		menu := keyboards.ActivityMenu()
		state.ActivityMenu = menu
		if err := m.sessions.Save(state); err != nil {
			return err
		}
		_, err := m.msg.SendMenu(ctx, state.ChatID, texts.ProfileQuestions[field], menu)
		return err
	}

	return m.msg.SendText(ctx, state.ChatID, texts.ProfileQuestions[field])
}

func (m *OnboardingManager) finishRegistration(ctx context.Context, state *models.VolunteerState, profile *models.RegistrationProfile) error {
	if err := m.backend.RegisterVolunteer(ctx, profile); err != nil {
		metrics.BackendErrors.Inc()
		return fmt.Errorf("register volunteer %d: %w", profile.ChatID, err)
	}

	if err := m.regRepo.Delete(profile.ChatID); err != nil {
		return err
	}

	state.Step = fsm.StepAvailable
	state.ActivityMenu = nil
	if err := m.sessions.Save(state); err != nil {
		return err
	}
	return m.msg.SendReplyKeyboard(ctx, state.ChatID, texts.MsgOnboardNextSteps, keyboards.DefaultReplyKeyboard(), false)
}
