package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/ajubot/volunteer-bot/internal/fsm"
	"github.com/ajubot/volunteer-bot/internal/keyboards"
	"github.com/ajubot/volunteer-bot/internal/metrics"
	"github.com/ajubot/volunteer-bot/internal/services"
	"github.com/ajubot/volunteer-bot/internal/texts"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

// FileDownloader fetches raw bytes of a file the user sent.
type FileDownloader interface {
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}

// Reporter surfaces transition failures to the operator.
type Reporter interface {
	NotifyAdmin(ctx context.Context, panicValue interface{}, update *tgmodels.Update)
	NotifyText(ctx context.Context, text string)
}

// BotHandler routes every Telegram update to the right conversation
// manager, holding the per-chat session lock for the whole transition.
type BotHandler struct {
	reporter   Reporter
	msg        services.Messenger
	files      FileDownloader
	sessions   *services.SessionManager
	onboarding *services.OnboardingManager
	dispatch   *services.DispatchManager
	survey     *services.SurveyManager
}

func NewBotHandler(
	reporter Reporter,
	msg services.Messenger,
	files FileDownloader,
	sessions *services.SessionManager,
	onboarding *services.OnboardingManager,
	dispatch *services.DispatchManager,
	survey *services.SurveyManager,
) *BotHandler {
	return &BotHandler{
		reporter:   reporter,
		msg:        msg,
		files:      files,
		sessions:   sessions,
		onboarding: onboarding,
		dispatch:   dispatch,
		survey:     survey,
	}
}

func (h *BotHandler) HandleUpdate(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	defer h.recoverPanic(ctx, update)

	if update.Message != nil {
		h.handleMessage(ctx, update.Message)
	} else if update.CallbackQuery != nil {
		h.handleCallback(ctx, update.CallbackQuery)
	}
}

func (h *BotHandler) recoverPanic(ctx context.Context, update *tgmodels.Update) {
	if r := recover(); r != nil {
		h.reporter.NotifyAdmin(ctx, r, update)
	}
}

func (h *BotHandler) handleMessage(ctx context.Context, msg *tgmodels.Message) {
	if msg.From == nil {
		return
	}
	chatID := msg.Chat.ID

	unlock := h.sessions.Lock(chatID)
	defer unlock()

	if msg.Contact != nil {
		metrics.UpdatesProcessed.WithLabelValues("contact").Inc()
		h.report(ctx, chatID, h.onboarding.HandleContact(ctx, chatID,
			msg.From.Username, msg.Contact.FirstName, msg.Contact.LastName, msg.Contact.PhoneNumber))
		return
	}

	if len(msg.Photo) > 0 {
		metrics.UpdatesProcessed.WithLabelValues("photo").Inc()
		h.handlePhotos(ctx, msg)
		return
	}

	if msg.Text == "" {
		return
	}

	if strings.HasPrefix(msg.Text, "/") {
		metrics.UpdatesProcessed.WithLabelValues("command").Inc()
		h.handleCommand(ctx, chatID, msg.Text)
		return
	}

	metrics.UpdatesProcessed.WithLabelValues("text").Inc()
	h.handleText(ctx, chatID, msg.Text)
}

func (h *BotHandler) handleCommand(ctx context.Context, chatID int64, command string) {
	switch strings.Fields(command)[0] {
	case "/start":
		h.report(ctx, chatID, h.onboarding.Start(ctx, chatID))
	case "/help":
		h.report(ctx, chatID, h.msg.SendText(ctx, chatID, texts.MsgHelp))
	case "/about":
		h.report(ctx, chatID, h.msg.SendText(ctx, chatID, texts.MsgAbout))
	case "/status":
		h.sendStatus(ctx, chatID)
	case "/offertohelp":
		h.report(ctx, chatID, h.msg.SendText(ctx, chatID, texts.MsgStandby))
	case "/accept":
		h.report(ctx, chatID, h.dispatch.HandleAccept(ctx, chatID))
	case "/decline":
		h.report(ctx, chatID, h.dispatch.HandleDecline(ctx, chatID))
	default:
		log.Printf("[HANDLER] unknown command %q from %d, dropped", command, chatID)
		metrics.DroppedEvents.WithLabelValues("unknown_command").Inc()
	}
}

func (h *BotHandler) sendStatus(ctx context.Context, chatID int64) {
	state, err := h.sessions.Get(chatID)
	if err != nil {
		h.report(ctx, chatID, err)
		return
	}
	status := "Step: " + state.Step
	if state.CurrentRequestID != "" {
		status += "\nCurrent request: " + state.CurrentRequestID
	}
	if state.ReviewedRequestID != "" {
		status += "\nOffered request: " + state.ReviewedRequestID
	}
	h.report(ctx, chatID, h.msg.SendText(ctx, chatID, status))
}

// handleText routes free text by the current step. Steps that expect no
// text log and drop it.
func (h *BotHandler) handleText(ctx context.Context, chatID int64, text string) {
	state, err := h.sessions.Get(chatID)
	if err != nil {
		h.report(ctx, chatID, err)
		return
	}

	switch state.Step {
	case fsm.StepAwaitingProfileDetails:
		h.report(ctx, chatID, h.onboarding.HandleProfileText(ctx, chatID, text))
	case fsm.StepAwaitingAmount:
		h.report(ctx, chatID, h.survey.HandleAmount(ctx, chatID, text))
	case fsm.StepAwaitingFurtherComments:
		h.report(ctx, chatID, h.survey.HandleFurtherComments(ctx, chatID, text))
	default:
		log.Printf("[HANDLER] text from %d in step %s, dropped", chatID, state.Step)
		metrics.DroppedEvents.WithLabelValues("unexpected_text").Inc()
	}
}

func (h *BotHandler) handlePhotos(ctx context.Context, msg *tgmodels.Message) {
	chatID := msg.Chat.ID

	state, err := h.sessions.Get(chatID)
	if err != nil {
		h.report(ctx, chatID, err)
		return
	}
	if state.Step != fsm.StepAwaitingReceipt {
		log.Printf("[HANDLER] photo from %d in step %s, dropped", chatID, state.Step)
		metrics.DroppedEvents.WithLabelValues("unexpected_photo").Inc()
		return
	}

	// Telegram lists several sizes of the same photo; the last one is the
	// largest.
	largest := msg.Photo[len(msg.Photo)-1]
	image, err := h.files.DownloadFile(ctx, largest.FileID)
	if err != nil {
		h.report(ctx, chatID, fmt.Errorf("download receipt photo: %w", err))
		return
	}

	h.report(ctx, chatID, h.survey.HandleReceiptPhotos(ctx, chatID, [][]byte{image}))
}

func (h *BotHandler) handleCallback(ctx context.Context, callback *tgmodels.CallbackQuery) {
	chatID := callback.From.ID
	messageID := 0
	if callback.Message.Message != nil {
		chatID = callback.Message.Message.Chat.ID
		messageID = callback.Message.Message.ID
	}
	data := callback.Data

	metrics.UpdatesProcessed.WithLabelValues("callback").Inc()

	unlock := h.sessions.Lock(chatID)
	defer unlock()

	var err error
	switch {
	case strings.HasPrefix(data, "eta_"):
		err = h.dispatch.HandleTimeOffer(ctx, chatID, data)
	case strings.HasPrefix(data, "caution_"):
		err = h.dispatch.HandleCaution(ctx, chatID, data)
	case data == keyboards.HandleNoExpenses:
		err = h.survey.HandleNoExpenses(ctx, chatID)
	case strings.HasPrefix(data, "handle_"):
		err = h.dispatch.HandleProgress(ctx, chatID, data)
	case strings.HasPrefix(data, "state_"):
		err = h.survey.HandleWellbeing(ctx, chatID, data)
	case strings.HasPrefix(data, "symptom_"):
		err = h.survey.HandleSymptomToggle(ctx, chatID, messageID, data)
	case strings.HasPrefix(data, "wouldyou_"):
		err = h.survey.HandleWouldReturn(ctx, chatID, data)
	case data == keyboards.FurtherCommentsNo:
		err = h.survey.HandleFurtherComments(ctx, chatID, "")
	case strings.HasPrefix(data, "assist_"):
		err = h.onboarding.HandleActivityToggle(ctx, chatID, messageID, data)
	default:
		log.Printf("[HANDLER] unknown callback %q from %d, dropped", data, chatID)
		metrics.DroppedEvents.WithLabelValues("unknown_callback").Inc()
	}
	h.report(ctx, chatID, err)

	if err := h.msg.AnswerCallback(ctx, callback.ID); err != nil {
		log.Printf("[HANDLER] answer callback for %d: %v", chatID, err)
	}
}

// report logs a transition failure and tells the operator. The volunteer
// is never shown an error; the event stays pending for redelivery.
func (h *BotHandler) report(ctx context.Context, chatID int64, err error) {
	if err == nil {
		return
	}
	log.Printf("[HANDLER] chat %d: %v", chatID, err)
	h.reporter.NotifyText(ctx, fmt.Sprintf("⚠️ chat %d: %v", chatID, err))
}
