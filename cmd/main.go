package main

import (
	"log"
	"os"

	"orderbot/internal/config"
	"orderbot/internal/infrastructure"
	"orderbot/internal/interfaces/bot"
	"orderbot/internal/interfaces/http"
	"orderbot/internal/repository"
	"orderbot/internal/usecases"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

func main() {
	// Load .env file (optional in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg := config.Load()

	// Connect to PostgreSQL
	pgClient, err := infrastructure.NewPostgresClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pgClient.Close()

	// Initialize Repositories
	userRepo := repository.NewUserRepository(pgClient.Pool)
	orderRepo := repository.NewOrderRepository(pgClient.Pool)
	paymentRepo := repository.NewPaymentRepository(pgClient.Pool)

	// Telegram client
	telegramClient, err := infrastructure.NewTelegramClient(cfg.BotToken)
	if err != nil {
		log.Fatalf("Failed to connect Telegram bot: %v", err)
	}
	log.Printf("Telegram bot connected as @%s", telegramClient.Username())

	// Initialize Usecases
	rates := usecases.ReferralRates{
		Standard:         cfg.ReferralPercent,
		Premium:          cfg.ReferralPercentPremium,
		PremiumThreshold: cfg.MinReferralsForPremium,
	}
	userService := usecases.NewUserService(userRepo)
	referralService := usecases.NewReferralService(userRepo, rates)
	notifier := usecases.NewNotifier(telegramClient, userRepo, cfg.AdminIDs, cfg.Currency)
	sessions := infrastructure.NewSessionManager()
	orderFlow := usecases.NewOrderFlow(sessions, userRepo, orderRepo, referralService, notifier, usecases.FlowConfig{
		Currency:     cfg.Currency,
		MinAmount:    cfg.MinOrderAmount,
		MaxAmount:    cfg.MaxOrderAmount,
		AdminContact: cfg.AdminUsername,
	})
	dashboardUsecase := usecases.NewDashboardUsecase(userRepo, orderRepo, paymentRepo)
	authUsecase, err := usecases.NewAuthUsecase(cfg.DashboardUser, cfg.DashboardPassword, cfg.JWTSecret)
	if err != nil {
		log.Fatalf("Failed to init dashboard auth: %v", err)
	}

	// Setup HTTP server
	r := gin.Default()
	authMiddleware := http.NewMiddleware(cfg.JWTSecret)
	http.SetupRoutes(r, dashboardUsecase, authUsecase, telegramClient.Username(), authMiddleware)
	go func() {
		if err := r.Run("0.0.0.0:" + cfg.Port); err != nil {
			log.Printf("FAILED to start HTTP Server: %v", err)
			os.Exit(1)
		}
	}()

	// Telegram polling
	botHandler := bot.NewHandler(telegramClient.Bot, userService, orderFlow, dashboardUsecase,
		rates, cfg.Currency, cfg.AdminUsername)
	flood := infrastructure.NewFloodLimiter(rate.Limit(cfg.FloodRate), cfg.FloodBurst)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := telegramClient.Bot.GetUpdatesChan(u)

	for update := range updates {
		chatID := updateChatID(update)
		if chatID != 0 && !flood.Allow(chatID) {
			continue // silently drop flood traffic
		}
		go botHandler.HandleUpdate(update)
	}
}

func updateChatID(update tgbotapi.Update) int64 {
	switch {
	case update.Message != nil:
		return update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return update.CallbackQuery.Message.Chat.ID
	default:
		return 0
	}
}
