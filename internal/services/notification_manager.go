package services

import (
	"context"
	"errors"
	"log"

	"github.com/ajubot/volunteer-bot/internal/db"
	"github.com/ajubot/volunteer-bot/internal/fsm"
	"github.com/ajubot/volunteer-bot/internal/keyboards"
	"github.com/ajubot/volunteer-bot/internal/metrics"
	"github.com/ajubot/volunteer-bot/internal/models"
	"github.com/ajubot/volunteer-bot/internal/texts"
)

// NotificationManager translates backend-originated events into state
// changes and chat messages. It is the only path that creates a request in
// the store.
type NotificationManager struct {
	sessions *SessionManager
	requests *db.RequestRepository
	msg      Messenger
}

// Snapshot is the read-only diagnostic view of everything in the store.
type Snapshot struct {
	Volunteers map[int64]*models.VolunteerState     `json:"volunteers"`
	Requests   map[string]*models.AssistanceRequest `json:"requests"`
}

func NewNotificationManager(sessions *SessionManager, requests *db.RequestRepository, msg Messenger) *NotificationManager {
	return &NotificationManager{
		sessions: sessions,
		requests: requests,
		msg:      msg,
	}
}

// NewRequest stores the request and announces it to every targeted
// volunteer who is known and not already committed to another request.
// A repeated announcement for the same id overwrites the stored request;
// the backend is authoritative.
func (m *NotificationManager) NewRequest(ctx context.Context, req *models.AssistanceRequest) error {
	metrics.NotificationsReceived.WithLabelValues("new").Inc()

	if err := m.requests.Put(req); err != nil {
		return err
	}

	announcement := FormatAnnouncement(req)
	for _, chatID := range req.Volunteers {
		unlock := m.sessions.Lock(chatID)
		err := m.announceTo(ctx, chatID, req.ID, announcement)
		unlock()
		if err != nil {
			log.Printf("[NOTIFY] announce %s to %d: %v", req.ID, chatID, err)
		}
	}
	return nil
}

func (m *NotificationManager) announceTo(ctx context.Context, chatID int64, requestID, announcement string) error {
	known, err := m.sessions.Known(chatID)
	if err != nil {
		return err
	}
	if !known {
		log.Printf("[NOTIFY] volunteer %d unknown, skipping announcement", chatID)
		metrics.DroppedEvents.WithLabelValues("unknown_volunteer").Inc()
		return nil
	}

	state, err := m.sessions.Get(chatID)
	if err != nil {
		return err
	}
	if fsm.MidRequest(state.Step) {
		log.Printf("[NOTIFY] volunteer %d is mid-request, skipping announcement", chatID)
		return nil
	}

	state.Step = fsm.StepRequestSent
	state.ReviewedRequestID = requestID
	state.CurrentRequestID = ""
	if err := m.sessions.Save(state); err != nil {
		return err
	}
	return m.msg.SendReplyKeyboard(ctx, chatID, announcement, keyboards.AcceptDeclineKeyboard(), true)
}

// Assign records the backend's pick: the assignee gets the health caution,
// everyone else who was offered the request is released back to standby.
func (m *NotificationManager) Assign(ctx context.Context, requestID string, volunteer int64, timeOffer string) error {
	metrics.NotificationsReceived.WithLabelValues("assign").Inc()

	req, err := m.requests.Get(requestID)
	if err != nil {
		if errors.Is(err, db.ErrRequestNotFound) {
			log.Printf("[NOTIFY] assign for unknown request %s, dropped", requestID)
			metrics.DroppedEvents.WithLabelValues("unknown_request").Inc()
			return nil
		}
		return err
	}

	req.Assignee = volunteer
	req.TimeOffer = timeOffer
	if err := m.requests.Put(req); err != nil {
		return err
	}

	for _, chatID := range req.Volunteers {
		if chatID == volunteer {
			continue
		}
		unlock := m.sessions.Lock(chatID)
		err := m.releaseOther(chatID, requestID)
		unlock()
		if err != nil {
			log.Printf("[NOTIFY] release %d from %s: %v", chatID, requestID, err)
		}
	}

	unlock := m.sessions.Lock(volunteer)
	defer unlock()

	state, err := m.sessions.Get(volunteer)
	if err != nil {
		return err
	}
	state.Step = fsm.StepRequestAssigned
	state.CurrentRequestID = requestID
	state.ReviewedRequestID = ""
	if err := m.sessions.Save(state); err != nil {
		return err
	}
	_, err = m.msg.SendMenu(ctx, volunteer, texts.MsgCaution, keyboards.CautionMenu())
	return err
}

func (m *NotificationManager) releaseOther(chatID int64, requestID string) error {
	state, err := m.sessions.Get(chatID)
	if err != nil {
		return err
	}
	if state.ReviewedRequestID != requestID {
		return nil
	}
	state.Step = fsm.StepAvailable
	state.ClearRequestRefs()
	if err := m.sessions.Save(state); err != nil {
		return err
	}
	m.msg.SendTextAsync(chatID, texts.MsgAnotherAssignee)
	return nil
}

// Cancel drops the request and releases everyone still attached to it. An
// unknown request id is logged and ignored.
func (m *NotificationManager) Cancel(ctx context.Context, requestID string, volunteer int64) error {
	metrics.NotificationsReceived.WithLabelValues("cancel").Inc()

	req, err := m.requests.Get(requestID)
	if err != nil {
		if errors.Is(err, db.ErrRequestNotFound) {
			log.Printf("[NOTIFY] cancel for unknown request %s, dropped", requestID)
			metrics.DroppedEvents.WithLabelValues("unknown_request").Inc()
			return nil
		}
		return err
	}

	for _, chatID := range req.Volunteers {
		unlock := m.sessions.Lock(chatID)
		err := m.releaseCancelled(chatID, requestID)
		unlock()
		if err != nil {
			log.Printf("[NOTIFY] release %d from cancelled %s: %v", chatID, requestID, err)
		}
	}

	return m.requests.Delete(requestID)
}

func (m *NotificationManager) releaseCancelled(chatID int64, requestID string) error {
	state, err := m.sessions.Get(chatID)
	if err != nil {
		return err
	}
	if state.CurrentRequestID != requestID && state.ReviewedRequestID != requestID {
		return nil
	}
	state.Step = fsm.StepAvailable
	state.ClearRequestRefs()
	if err := m.sessions.Save(state); err != nil {
		return err
	}
	m.msg.SendTextAsync(chatID, texts.MsgRequestCancelled)
	return nil
}

// Introspect assembles the diagnostic snapshot of all volunteer and
// request state.
func (m *NotificationManager) Introspect() (*Snapshot, error) {
	states, err := m.sessions.All()
	if err != nil {
		return nil, err
	}
	requests, err := m.requests.All()
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Volunteers: make(map[int64]*models.VolunteerState, len(states)),
		Requests:   make(map[string]*models.AssistanceRequest, len(requests)),
	}
	for _, state := range states {
		snap.Volunteers[state.ChatID] = state
	}
	for _, req := range requests {
		snap.Requests[req.ID] = req
	}
	return snap, nil
}
