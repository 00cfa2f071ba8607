package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ajubot/volunteer-bot/internal/db"
	"github.com/ajubot/volunteer-bot/internal/models"
	_ "modernc.org/sqlite"
)

var svcDBCounter int64

func setupTestStore(t *testing.T) (*SessionManager, *db.RequestRepository, *db.RegistrationRepository, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:svctest%d?mode=memory&cache=shared", atomic.AddInt64(&svcDBCounter, 1))
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatal(err)
	}

	if err := db.InitSchema(sqlDB); err != nil {
		t.Fatal(err)
	}

	queue := db.NewDBQueueForTest(sqlDB)
	sessions := NewSessionManager(db.NewStateRepository(queue))
	requests := db.NewRequestRepository(queue)
	registrations := db.NewRegistrationRepository(queue)

	return sessions, requests, registrations, func() {
		queue.Close()
		sqlDB.Close()
	}
}

type sentText struct {
	chatID int64
	text   string
}

type sentMenu struct {
	chatID int64
	text   string
	menu   *models.Menu
}

type sentEdit struct {
	chatID    int64
	messageID int
	menu      *models.Menu
}

type sentKeyboard struct {
	chatID int64
	text   string
	rows   [][]string
}

// fakeMessenger records every outbound message for assertions.
type fakeMessenger struct {
	mu              sync.Mutex
	texts           []sentText
	menus           []sentMenu
	edits           []sentEdit
	keyboards       []sentKeyboard
	contactRequests []int64
	locations       []int64
	nextMessageID   int
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{nextMessageID: 100}
}

func (f *fakeMessenger) SendText(ctx context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, sentText{chatID, text})
	return nil
}

func (f *fakeMessenger) SendTextAsync(chatID int64, text string) {
	_ = f.SendText(context.Background(), chatID, text)
}

func (f *fakeMessenger) SendMarkdown(ctx context.Context, chatID int64, text string) error {
	return f.SendText(ctx, chatID, text)
}

func (f *fakeMessenger) SendMenu(ctx context.Context, chatID int64, text string, menu *models.Menu) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.menus = append(f.menus, sentMenu{chatID, text, menu})
	f.nextMessageID++
	return f.nextMessageID, nil
}

func (f *fakeMessenger) EditMenu(ctx context.Context, chatID int64, messageID int, menu *models.Menu) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, sentEdit{chatID, messageID, menu})
	return nil
}

func (f *fakeMessenger) SendReplyKeyboard(ctx context.Context, chatID int64, text string, rows [][]string, oneTime bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keyboards = append(f.keyboards, sentKeyboard{chatID, text, rows})
	return nil
}

func (f *fakeMessenger) SendContactRequest(ctx context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contactRequests = append(f.contactRequests, chatID)
	return nil
}

func (f *fakeMessenger) SendLocation(ctx context.Context, chatID int64, latitude, longitude float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locations = append(f.locations, chatID)
	return nil
}

func (f *fakeMessenger) AnswerCallback(ctx context.Context, callbackID string) error {
	return nil
}

func (f *fakeMessenger) textsTo(chatID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, s := range f.texts {
		if s.chatID == chatID {
			out = append(out, s.text)
		}
	}
	return out
}

func (f *fakeMessenger) lastMenuTo(chatID int64) *sentMenu {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.menus) - 1; i >= 0; i-- {
		if f.menus[i].chatID == chatID {
			return &f.menus[i]
		}
	}
	return nil
}

// fakeBackend records calls and fails where the test wires an error.
type fakeBackend struct {
	mu sync.Mutex

	lookupExists bool
	lookupErr    error
	registerErr  error
	offerErr     error
	statusErr    error
	submitErr    error
	receiptErr   error

	registered    []*models.RegistrationProfile
	offers        []string
	statusUpdates []string
	receipts      [][]byte
	results       []*models.RequestResult
}

func (f *fakeBackend) LookupVolunteer(ctx context.Context, username string, chatID int64, phone string) (bool, error) {
	return f.lookupExists, f.lookupErr
}

func (f *fakeBackend) RegisterVolunteer(ctx context.Context, profile *models.RegistrationProfile) error {
	if f.registerErr != nil {
		return f.registerErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, profile)
	return nil
}

func (f *fakeBackend) UploadReceipt(ctx context.Context, requestID string, image []byte) error {
	if f.receiptErr != nil {
		return f.receiptErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receipts = append(f.receipts, image)
	return nil
}

func (f *fakeBackend) RelayOffer(ctx context.Context, requestID string, chatID int64, offer string) error {
	if f.offerErr != nil {
		return f.offerErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offers = append(f.offers, fmt.Sprintf("%s/%d/%s", requestID, chatID, offer))
	return nil
}

func (f *fakeBackend) UpdateRequestStatus(ctx context.Context, requestID string, status models.RequestStatus) error {
	if f.statusErr != nil {
		return f.statusErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusUpdates = append(f.statusUpdates, fmt.Sprintf("%s/%s", requestID, status))
	return nil
}

func (f *fakeBackend) SubmitResult(ctx context.Context, result *models.RequestResult) error {
	if f.submitErr != nil {
		return f.submitErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, result)
	return nil
}

func (f *fakeBackend) GetRequestDetails(ctx context.Context, requestID string) (*models.AssistanceRequest, error) {
	return nil, fmt.Errorf("request %s not found on backend", requestID)
}

type fakeCelebrator struct {
	mu    sync.Mutex
	count int
}

func (f *fakeCelebrator) SendCelebration(ctx context.Context, chatID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count++
}
