package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ajubot/volunteer-bot/internal/api"
	"github.com/ajubot/volunteer-bot/internal/backend"
	"github.com/ajubot/volunteer-bot/internal/config"
	"github.com/ajubot/volunteer-bot/internal/db"
	"github.com/ajubot/volunteer-bot/internal/handlers"
	"github.com/ajubot/volunteer-bot/internal/services"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	_ "github.com/joho/godotenv/autoload"
	_ "modernc.org/sqlite"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	sqlDB, err := sql.Open("sqlite", cfg.DBPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer sqlDB.Close()

	if err := db.InitSchema(sqlDB); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	dbQueue := db.NewDBQueue(sqlDB)
	defer dbQueue.Close()

	stateRepo := db.NewStateRepository(dbQueue)
	requestRepo := db.NewRequestRepository(dbQueue)
	registrationRepo := db.NewRegistrationRepository(dbQueue)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	b, err := bot.New(cfg.BotToken, bot.WithHTTPClient(15*time.Second, httpClient))
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	// Retry getMe with shorter timeout
	for i := 0; i < 3; i++ {
		log.Printf("Attempting to connect to Telegram API (attempt %d/3)...", i+1)
		getMeCtx, getMeCancel := context.WithTimeout(context.Background(), 10*time.Second)
		_, err = b.GetMe(getMeCtx)
		getMeCancel()
		if err == nil {
			log.Printf("Successfully connected to Telegram API")
			break
		}
		log.Printf("Failed to get bot info (attempt %d/3): %v", i+1, err)
		if i < 2 {
			log.Printf("Retrying in 2 seconds...")
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatalf("Failed to get bot info after 3 attempts: %v", err)
	}

	backendClient := backend.NewClient(cfg.Backend.URL, cfg.Backend.Username, cfg.Backend.Password)

	errorManager := services.NewErrorManager(b, cfg.AdminID)
	msgManager := services.NewMessageManager(b, errorManager, cfg.BotToken)
	mediaService := services.NewMediaService(b, cfg.MediaDir)
	sessions := services.NewSessionManager(stateRepo)

	onboarding := services.NewOnboardingManager(sessions, registrationRepo, backendClient, msgManager, cfg.LocalPhonePrefix)
	dispatch := services.NewDispatchManager(sessions, requestRepo, backendClient, msgManager, cfg.Location())
	survey := services.NewSurveyManager(sessions, requestRepo, backendClient, msgManager, mediaService)
	notifications := services.NewNotificationManager(sessions, requestRepo, msgManager)

	handler := handlers.NewBotHandler(
		errorManager,
		msgManager,
		msgManager,
		sessions,
		onboarding,
		dispatch,
		survey,
	)

	b.RegisterHandlerMatchFunc(func(update *tgmodels.Update) bool {
		return true
	}, handler.HandleUpdate, logMiddleware)

	apiServer := api.NewServer(cfg.ListenAddr, notifications)
	go func() {
		log.Printf("Hook server listening on %s", cfg.ListenAddr)
		if err := apiServer.Run(ctx); err != nil {
			log.Printf("Hook server stopped: %v", err)
			cancel()
		}
	}()

	log.Printf("Bot started. Admin ID: %d, DB: %s", cfg.AdminID, cfg.DBPath)

	b.Start(ctx)
}

func formatUser(u tgmodels.User) string {
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	if u.Username != "" {
		name += " @" + u.Username
	}
	return fmt.Sprintf("%s [%d]", name, u.ID)
}

func logMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
		if update.Message != nil {
			log.Printf("[MSG] from=%s text=%q", formatUser(*update.Message.From), update.Message.Text)
		}
		if update.CallbackQuery != nil {
			log.Printf("[CALLBACK] from=%s data=%q", formatUser(update.CallbackQuery.From), update.CallbackQuery.Data)
		}
		next(ctx, b, update)
	}
}
