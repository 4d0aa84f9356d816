package app

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	"github.com/vedanttapdiya/vt-portfolio/internal/config"
	"github.com/vedanttapdiya/vt-portfolio/internal/handlers"
	"github.com/vedanttapdiya/vt-portfolio/internal/pdf"
	"github.com/vedanttapdiya/vt-portfolio/internal/routes"
	"github.com/vedanttapdiya/vt-portfolio/internal/services"
	"github.com/vedanttapdiya/vt-portfolio/internal/store"
	"github.com/vedanttapdiya/vt-portfolio/internal/utils"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/vedanttapdiya/vt-portfolio/docs"
)

func Run() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// === Record store ===
	tokenTTL := time.Duration(cfg.Store.TokenTTLMinutes) * time.Minute
	sweepInterval := time.Duration(cfg.Store.SweepIntervalMinutes) * time.Minute

	var records store.RecordStore
	if cfg.Store.DSN != "" {
		db, err := sql.Open("postgres", cfg.Store.DSN)
		if err != nil {
			log.Fatalf("open database: %v", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Printf("close database: %v", err)
			}
		}()
		records, err = store.NewPostgresStore(db, tokenTTL, sweepInterval)
		if err != nil {
			log.Fatalf("init postgres store: %v", err)
		}
		log.Printf("[app] verification records: postgres")
	} else {
		records = store.NewMemoryStore(tokenTTL, sweepInterval, cfg.Store.MaxEntries)
		log.Printf("[app] verification records: in-memory (state is per-instance)")
	}
	defer records.Close()

	// === Services ===
	turnstileClient := utils.NewTurnstileClient(cfg.Turnstile.SecretKey, cfg.Turnstile.VerifyURL)
	verifier := services.NewVerificationService(turnstileClient, records)

	csrf := services.NewCSRFService(
		cfg.Security.CSRFSecret,
		time.Duration(cfg.Security.CSRFTTLMinutes)*time.Minute,
	)

	var emails services.EmailService
	switch cfg.Email.Provider {
	case "smtp":
		emails = services.NewSMTPEmailService(
			cfg.Email.SMTP.Host,
			cfg.Email.SMTP.Port,
			cfg.Email.SMTP.User,
			cfg.Email.SMTP.Password,
			cfg.Email.From,
			cfg.Email.To,
		)
	default:
		resendClient := utils.NewResendClient(cfg.Email.ResendAPIKey, cfg.Email.DryRun)
		emails = services.NewResendEmailService(resendClient, cfg.Email.From, cfg.Email.To)
	}

	notifier, err := services.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		// Notification is optional; the gate works without it.
		log.Printf("[app] telegram notifier disabled: %v", err)
		notifier = nil
	}

	contactService := services.NewContactService(verifier, csrf, emails, notifier)
	limiter := services.NewRateLimiter(
		cfg.RateLimit.Requests,
		time.Duration(cfg.RateLimit.WindowSeconds)*time.Second,
	)

	// === Handlers ===
	turnstileHandler := handlers.NewTurnstileHandler(verifier, cfg.Turnstile.SiteKey)
	contactHandler := handlers.NewContactHandler(contactService, limiter)
	tokenHandler := handlers.NewTokenHandler(csrf)

	var resumeHandler *handlers.ResumeHandler
	if cfg.Profile.Name != "" {
		resumeHandler = handlers.NewResumeHandler(pdf.NewResumeGenerator(cfg.Profile))
	}

	// === Gin ===
	router := gin.Default()
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(router, turnstileHandler, contactHandler, tokenHandler, resumeHandler)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("[app] listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
