package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ajubot/volunteer-bot/internal/db"
	"github.com/ajubot/volunteer-bot/internal/fsm"
	"github.com/ajubot/volunteer-bot/internal/keyboards"
	"github.com/ajubot/volunteer-bot/internal/metrics"
	"github.com/ajubot/volunteer-bot/internal/models"
	"github.com/ajubot/volunteer-bot/internal/texts"
	"github.com/ajubot/volunteer-bot/internal/timeutil"
)

// DispatchManager drives a request from announcement to completion: the
// accept/decline exchange, time offers, the health caution, and the
// on-my-way / done / cancel progression.
type DispatchManager struct {
	sessions *SessionManager
	requests *db.RequestRepository
	backend  Backend
	msg      Messenger
	loc      *time.Location
	now      func() time.Time
}

func NewDispatchManager(sessions *SessionManager, requests *db.RequestRepository, backend Backend, msg Messenger, loc *time.Location) *DispatchManager {
	return &DispatchManager{
		sessions: sessions,
		requests: requests,
		backend:  backend,
		msg:      msg,
		loc:      loc,
		now:      time.Now,
	}
}

// HandleAccept shows the time-offer menu. The step stays put until the
// volunteer actually picks a time.
func (m *DispatchManager) HandleAccept(ctx context.Context, chatID int64) error {
	state, err := m.sessions.Get(chatID)
	if err != nil {
		return err
	}
	if state.Step != fsm.StepRequestSent || state.ReviewedRequestID == "" {
		log.Printf("[DISPATCH] accept from %d in step %s, dropped", chatID, state.Step)
		metrics.DroppedEvents.WithLabelValues("unexpected_command").Inc()
		return nil
	}

	_, err = m.msg.SendMenu(ctx, chatID, texts.MsgPickTime, keyboards.FirstResponseMenu(m.now()))
	return err
}

// HandleDecline releases the volunteer back to standby.
func (m *DispatchManager) HandleDecline(ctx context.Context, chatID int64) error {
	state, err := m.sessions.Get(chatID)
	if err != nil {
		return err
	}
	if state.Step != fsm.StepRequestSent {
		log.Printf("[DISPATCH] decline from %d in step %s, dropped", chatID, state.Step)
		metrics.DroppedEvents.WithLabelValues("unexpected_command").Inc()
		return nil
	}

	state.Step = fsm.StepAvailable
	state.ClearRequestRefs()
	if err := m.sessions.Save(state); err != nil {
		return err
	}
	return m.msg.SendText(ctx, chatID, texts.MsgThanksNoThanks)
}

// HandleTimeOffer processes an eta_* callback: a concrete HH:MM relays the
// offer to the backend, "later" opens the full day grid, "never" declines.
func (m *DispatchManager) HandleTimeOffer(ctx context.Context, chatID int64, data string) error {
	state, err := m.sessions.Get(chatID)
	if err != nil {
		return err
	}
	if state.Step != fsm.StepRequestSent || state.ReviewedRequestID == "" {
		log.Printf("[DISPATCH] offer %q from %d in step %s, dropped", data, chatID, state.Step)
		metrics.DroppedEvents.WithLabelValues("unexpected_callback").Inc()
		return nil
	}

	switch data {
	case keyboards.EtaLater:
		_, err := m.msg.SendMenu(ctx, chatID, texts.MsgPickTime, keyboards.DayGridMenu(m.now(), m.loc))
		return err
	case keyboards.EtaNever:
		state.Step = fsm.StepAvailable
		state.ClearRequestRefs()
		if err := m.sessions.Save(state); err != nil {
			return err
		}
		return m.msg.SendText(ctx, chatID, texts.MsgThanksNoThanks)
	}

	offer := strings.TrimPrefix(data, "eta_")
	requestID := state.ReviewedRequestID

	if _, err := m.requests.Get(requestID); err != nil {
		if errors.Is(err, db.ErrRequestNotFound) {
			log.Printf("[DISPATCH] offer for gone request %s from %d, dropped", requestID, chatID)
			metrics.DroppedEvents.WithLabelValues("stale_request").Inc()
			return nil
		}
		return err
	}

	if err := m.backend.RelayOffer(ctx, requestID, chatID, offer); err != nil {
		metrics.BackendErrors.Inc()
		return fmt.Errorf("relay offer for %s: %w", requestID, err)
	}

	ack := fmt.Sprintf(texts.MsgAckTime, timeutil.UTCShortToLocal(offer, m.loc)) + texts.MsgCoordinating
	return m.msg.SendText(ctx, chatID, ack)
}

// HandleCaution processes the health self-check shown right after
// assignment. OK reveals the full request card; cancel hands the request
// back to the backend.
func (m *DispatchManager) HandleCaution(ctx context.Context, chatID int64, data string) error {
	state, err := m.sessions.Get(chatID)
	if err != nil {
		return err
	}
	if state.Step != fsm.StepRequestAssigned || state.CurrentRequestID == "" {
		log.Printf("[DISPATCH] caution %q from %d in step %s, dropped", data, chatID, state.Step)
		metrics.DroppedEvents.WithLabelValues("unexpected_callback").Inc()
		return nil
	}

	switch data {
	case keyboards.CautionOK:
		req, err := m.requests.Get(state.CurrentRequestID)
		if err != nil {
			if errors.Is(err, db.ErrRequestNotFound) {
				log.Printf("[DISPATCH] caution for gone request %s from %d, dropped", state.CurrentRequestID, chatID)
				metrics.DroppedEvents.WithLabelValues("stale_request").Inc()
				return nil
			}
			return err
		}
		return m.revealDetails(ctx, chatID, req)

	case keyboards.CautionCancel:
		return m.cancelByVolunteer(ctx, state)
	}

	log.Printf("[DISPATCH] unknown caution callback %q from %d, dropped", data, chatID)
	metrics.DroppedEvents.WithLabelValues("unknown_option").Inc()
	return nil
}

// HandleProgress processes the handling menu: on-my-way, done, cancel.
func (m *DispatchManager) HandleProgress(ctx context.Context, chatID int64, data string) error {
	state, err := m.sessions.Get(chatID)
	if err != nil {
		return err
	}
	if !fsm.MidRequest(state.Step) || state.CurrentRequestID == "" {
		log.Printf("[DISPATCH] progress %q from %d in step %s, dropped", data, chatID, state.Step)
		metrics.DroppedEvents.WithLabelValues("unexpected_callback").Inc()
		return nil
	}

	switch data {
	case keyboards.HandleOnMyWay:
		if state.Step != fsm.StepRequestAssigned {
			log.Printf("[DISPATCH] on-my-way from %d in step %s, dropped", chatID, state.Step)
			metrics.DroppedEvents.WithLabelValues("unexpected_callback").Inc()
			return nil
		}
		if err := m.backend.UpdateRequestStatus(ctx, state.CurrentRequestID, models.StatusInProgress); err != nil {
			metrics.BackendErrors.Inc()
			return fmt.Errorf("mark %s in progress: %w", state.CurrentRequestID, err)
		}
		state.Step = fsm.StepRequestInProgress
		if err := m.sessions.Save(state); err != nil {
			return err
		}
		if err := m.msg.SendText(ctx, chatID, texts.MsgSafetyInstructions); err != nil {
			return err
		}
		_, err := m.msg.SendMenu(ctx, chatID, texts.MsgLetMeKnowArrive, keyboards.InProgressMenu())
		return err

	case keyboards.HandleDone:
		if err := m.backend.UpdateRequestStatus(ctx, state.CurrentRequestID, models.StatusDone); err != nil {
			metrics.BackendErrors.Inc()
			return fmt.Errorf("mark %s done: %w", state.CurrentRequestID, err)
		}
		state.Step = fsm.StepAwaitingAmount
		if err := m.sessions.Save(state); err != nil {
			return err
		}
		if err := m.msg.SendText(ctx, chatID, texts.MsgThanksFeedback); err != nil {
			return err
		}
		_, err := m.msg.SendMenu(ctx, chatID, texts.MsgFeedbackExpenses, keyboards.ExpenseMenu())
		return err

	case keyboards.HandleCancel:
		return m.cancelByVolunteer(ctx, state)
	}

	log.Printf("[DISPATCH] unknown progress callback %q from %d, dropped", data, chatID)
	metrics.DroppedEvents.WithLabelValues("unknown_option").Inc()
	return nil
}

func (m *DispatchManager) revealDetails(ctx context.Context, chatID int64, req *models.AssistanceRequest) error {
	if err := m.msg.SendText(ctx, chatID, FormatFullDetails(req)); err != nil {
		return err
	}
	if req.HasLocation() {
		if err := m.msg.SendLocation(ctx, chatID, *req.Latitude, *req.Longitude); err != nil {
			log.Printf("[DISPATCH] send location to %d: %v", chatID, err)
		}
	}
	_, err := m.msg.SendMenu(ctx, chatID, texts.MsgLetMeKnow, keyboards.HandlingMenu())
	return err
}

func (m *DispatchManager) cancelByVolunteer(ctx context.Context, state *models.VolunteerState) error {
	if err := m.backend.UpdateRequestStatus(ctx, state.CurrentRequestID, models.StatusCancelled); err != nil {
		metrics.BackendErrors.Inc()
		return fmt.Errorf("cancel %s: %w", state.CurrentRequestID, err)
	}
	state.Step = fsm.StepAvailable
	state.ClearRequestRefs()
	if err := m.sessions.Save(state); err != nil {
		return err
	}
	return m.msg.SendText(ctx, state.ChatID, texts.MsgNoWorriesLater)
}
