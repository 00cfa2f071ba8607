package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/ajubot/volunteer-bot/internal/models"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

// MessageManager adapts the Messenger contract onto the Telegram API, with
// a small retry on every send.
type MessageManager struct {
	bot      *bot.Bot
	errMgr   *ErrorManager
	botToken string
	maxRetry int
}

func NewMessageManager(b *bot.Bot, errMgr *ErrorManager, botToken string) *MessageManager {
	return &MessageManager{
		bot:      b,
		errMgr:   errMgr,
		botToken: botToken,
		maxRetry: 2,
	}
}

func (m *MessageManager) SendText(ctx context.Context, chatID int64, text string) error {
	_, err := m.sendWithRetry(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	return err
}

func (m *MessageManager) SendTextAsync(chatID int64, text string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := m.SendText(ctx, chatID, text); err != nil {
			log.Printf("[MSG] async send to %d failed: %v", chatID, err)
		}
	}()
}

func (m *MessageManager) SendMarkdown(ctx context.Context, chatID int64, text string) error {
	_, err := m.sendWithRetry(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: tgmodels.ParseModeMarkdown,
	})
	return err
}

func (m *MessageManager) SendMenu(ctx context.Context, chatID int64, text string, menu *models.Menu) (int, error) {
	msg, err := m.sendWithRetry(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: inlineKeyboard(menu),
	})
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

func (m *MessageManager) EditMenu(ctx context.Context, chatID int64, messageID int, menu *models.Menu) error {
	_, err := m.bot.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
		ChatID:      chatID,
		MessageID:   messageID,
		ReplyMarkup: inlineKeyboard(menu),
	})
	return err
}

func (m *MessageManager) SendReplyKeyboard(ctx context.Context, chatID int64, text string, rows [][]string, oneTime bool) error {
	keyboard := make([][]tgmodels.KeyboardButton, len(rows))
	for i, row := range rows {
		for _, label := range row {
			keyboard[i] = append(keyboard[i], tgmodels.KeyboardButton{Text: label})
		}
	}
	_, err := m.sendWithRetry(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
		ReplyMarkup: &tgmodels.ReplyKeyboardMarkup{
			Keyboard:        keyboard,
			ResizeKeyboard:  true,
			OneTimeKeyboard: oneTime,
		},
	})
	return err
}

func (m *MessageManager) SendContactRequest(ctx context.Context, chatID int64, text string) error {
	_, err := m.sendWithRetry(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
		ReplyMarkup: &tgmodels.ReplyKeyboardMarkup{
			Keyboard: [][]tgmodels.KeyboardButton{
				{{Text: "📞 Share my phone number", RequestContact: true}},
			},
			ResizeKeyboard:  true,
			OneTimeKeyboard: true,
		},
	})
	return err
}

func (m *MessageManager) SendLocation(ctx context.Context, chatID int64, latitude, longitude float64) error {
	_, err := m.bot.SendLocation(ctx, &bot.SendLocationParams{
		ChatID:    chatID,
		Latitude:  latitude,
		Longitude: longitude,
	})
	return err
}

func (m *MessageManager) AnswerCallback(ctx context.Context, callbackID string) error {
	_, err := m.bot.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
	})
	return err
}

// DownloadFile fetches the raw bytes of a Telegram file, e.g. a receipt
// photo the volunteer sent.
func (m *MessageManager) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := m.bot.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file %s: %w", fileID, err)
	}

	url := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", m.botToken, file.FilePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file %s: unexpected status %d", fileID, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (m *MessageManager) sendWithRetry(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error) {
	var lastErr error
	for attempt := 0; attempt < m.maxRetry; attempt++ {
		msg, err := m.bot.SendMessage(ctx, params)
		if err == nil {
			return msg, nil
		}
		lastErr = err
	}
	m.errMgr.NotifySendFailure(ctx, params.ChatID.(int64), lastErr)
	return nil, lastErr
}

func inlineKeyboard(menu *models.Menu) *tgmodels.InlineKeyboardMarkup {
	keyboard := make([][]tgmodels.InlineKeyboardButton, len(menu.Rows))
	for i, row := range menu.Rows {
		for _, opt := range row {
			label := opt.Label
			if opt.Selectable {
				if opt.Selected {
					label = "☑ " + label
				} else {
					label = "☐ " + label
				}
			}
			keyboard[i] = append(keyboard[i], tgmodels.InlineKeyboardButton{
				Text:         label,
				CallbackData: opt.ID,
			})
		}
	}
	return &tgmodels.InlineKeyboardMarkup{InlineKeyboard: keyboard}
}
