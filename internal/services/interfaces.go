package services

import (
	"context"

	"github.com/ajubot/volunteer-bot/internal/models"
)

// Messenger is the slice of the chat transport the conversation managers
// need. MessageManager implements it over the Telegram API; tests use a
// fake. Sends acknowledge committed state, so implementations deliver them
// after the caller's mutation has been persisted.
type Messenger interface {
	// SendText delivers a plain message and reports failure to the caller.
	SendText(ctx context.Context, chatID int64, text string) error
	// SendTextAsync is the fire-and-forget variant: delivery happens on a
	// separate goroutine and may complete out of order relative to other
	// sends.
	SendTextAsync(chatID int64, text string)
	SendMarkdown(ctx context.Context, chatID int64, text string) error
	// SendMenu renders the menu as an inline keyboard below the text and
	// returns the id of the sent message.
	SendMenu(ctx context.Context, chatID int64, text string, menu *models.Menu) (int, error)
	// EditMenu replaces the keyboard of an already-sent message in place.
	EditMenu(ctx context.Context, chatID int64, messageID int, menu *models.Menu) error
	SendReplyKeyboard(ctx context.Context, chatID int64, text string, rows [][]string, oneTime bool) error
	// SendContactRequest shows a one-time keyboard with a share-contact
	// button.
	SendContactRequest(ctx context.Context, chatID int64, text string) error
	SendLocation(ctx context.Context, chatID int64, latitude, longitude float64) error
	// AnswerCallback closes the button-press spinner in the client.
	AnswerCallback(ctx context.Context, callbackID string) error
}

// Backend mirrors the dispatcher backend operations the managers call.
// backend.Client implements it.
type Backend interface {
	LookupVolunteer(ctx context.Context, username string, chatID int64, phone string) (bool, error)
	RegisterVolunteer(ctx context.Context, profile *models.RegistrationProfile) error
	UploadReceipt(ctx context.Context, requestID string, image []byte) error
	RelayOffer(ctx context.Context, requestID string, chatID int64, offer string) error
	UpdateRequestStatus(ctx context.Context, requestID string, status models.RequestStatus) error
	SubmitResult(ctx context.Context, result *models.RequestResult) error
	GetRequestDetails(ctx context.Context, requestID string) (*models.AssistanceRequest, error)
}

// Celebrator sends the little reward after a finalized request.
type Celebrator interface {
	SendCelebration(ctx context.Context, chatID int64)
}
