package services

import (
	"context"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

// MediaService picks a random celebration GIF from a local directory and
// sends it after a completed assistance request. Missing or empty media
// directories degrade to a no-op so the conversation never stalls on it.
type MediaService struct {
	bot      *bot.Bot
	mediaDir string
}

func NewMediaService(b *bot.Bot, mediaDir string) *MediaService {
	return &MediaService{
		bot:      b,
		mediaDir: mediaDir,
	}
}

func (m *MediaService) SendCelebration(ctx context.Context, chatID int64) {
	path, ok := m.pickRandom()
	if !ok {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		log.Printf("[MEDIA] open %s: %v", path, err)
		return
	}
	defer f.Close()

	_, err = m.bot.SendAnimation(ctx, &bot.SendAnimationParams{
		ChatID: chatID,
		Animation: &tgmodels.InputFileUpload{
			Filename: filepath.Base(path),
			Data:     f,
		},
	})
	if err != nil {
		log.Printf("[MEDIA] send animation to %d: %v", chatID, err)
	}
}

func (m *MediaService) pickRandom() (string, bool) {
	entries, err := os.ReadDir(m.mediaDir)
	if err != nil {
		log.Printf("[MEDIA] read dir %s: %v", m.mediaDir, err)
		return "", false
	}

	var gifs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".gif") {
			gifs = append(gifs, filepath.Join(m.mediaDir, entry.Name()))
		}
	}
	if len(gifs) == 0 {
		return "", false
	}
	return gifs[rand.Intn(len(gifs))], true
}
