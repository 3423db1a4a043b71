package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"storefront_backend/internal/controller"
	"storefront_backend/internal/model"
	"storefront_backend/internal/repository"
	"storefront_backend/internal/scoring"
	"storefront_backend/pkg/cache"
	"storefront_backend/pkg/config"
	"storefront_backend/pkg/cron"
	"storefront_backend/pkg/database"
	"storefront_backend/pkg/email"
	"storefront_backend/pkg/notify"
	"storefront_backend/pkg/seed"
	"storefront_backend/pkg/utils/image"
	"storefront_backend/pkg/utils/jwt"
	"storefront_backend/pkg/utils/storage"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is not set in .env")
	}

	db, err := database.InitDB(cfg.Database.URL)
	if err != nil {
		log.Fatal("Could not connect to database:", err)
	}
	if err := database.MigrateDatabase(db, model.All()...); err != nil {
		log.Printf("Migration warning: %v", err)
	}
	store := repository.NewStore(db)

	var catalogCache *cache.Client
	if cfg.Redis.URL != "" {
		catalogCache, err = cache.NewClient(cfg.Redis.URL, cfg.Redis.CacheTTL)
		if err != nil {
			log.Printf("Redis unavailable, catalog cache disabled: %v", err)
			catalogCache = nil
		}
		defer catalogCache.Close()
	}

	var uploader storage.Uploader
	if cfg.Storage.BucketName != "" {
		r2, err := storage.NewR2Storage(ctx, storage.R2Config{
			AccountID:  cfg.Storage.AccountID,
			AccessKey:  cfg.Storage.AccessKey,
			SecretKey:  cfg.Storage.SecretKey,
			BucketName: cfg.Storage.BucketName,
			PublicURL:  cfg.Storage.PublicURL,
		})
		if err != nil {
			log.Fatal("Could not initialize R2 storage:", err)
		}
		uploader = r2
	}

	var (
		mailer        *email.EmailService
		welcomeMailer controller.WelcomeMailer
		leadMailer    notify.LeadMailer
	)
	if cfg.SMTP.Host != "" {
		mailer, err = email.NewEmailService(email.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
		if err != nil {
			log.Fatal("Could not initialize email service:", err)
		}
		welcomeMailer, leadMailer = mailer, mailer
		log.Printf("Email service initialized (%s:%d)", cfg.SMTP.Host, cfg.SMTP.Port)
	}

	var whatsapp notify.TemplateSender
	if wa := notify.NewWhatsAppClient(notify.WhatsAppConfig{
		AccessToken:  cfg.WhatsApp.AccessToken,
		PhoneID:      cfg.WhatsApp.PhoneID,
		BaseURL:      cfg.WhatsApp.BaseURL,
		TemplateName: cfg.WhatsApp.TemplateName,
	}); wa.Configured() {
		whatsapp = wa
	}

	notifier := notify.NewNotifier(leadMailer, whatsapp, notify.Config{
		AdminEmail:    cfg.Notify.AdminEmail,
		WhatsAppTo:    cfg.Notify.WhatsAppTo,
		DefaultRegion: cfg.WhatsApp.DefaultRegion,
	})

	if err := seed.SeedAdmin(ctx, store, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Printf("Could not seed admin user: %v", err)
	}

	if mailer != nil && cfg.Notify.AdminEmail != "" {
		digest := cron.NewLeadDigest(store.Leads, mailer, cfg.Notify.AdminEmail)
		scheduler, err := cron.InitLeadDigestCron(cfg.Cron.LeadDigest, digest)
		if err != nil {
			log.Fatal("Could not schedule lead digest:", err)
		}
		defer scheduler.Stop()
	}

	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.TTL)
	engine := scoring.NewEngine(store.Products, store.Leads)

	handlers := &controller.Handlers{
		Auth:      controller.NewAuthController(store, tokens, welcomeMailer),
		Brands:    controller.NewBrandController(store, catalogCache),
		Products:  controller.NewProductController(store, catalogCache, uploader, image.Options{MaxEdge: cfg.Images.MaxEdge, Quality: cfg.Images.Quality}),
		Wishlists: controller.NewWishlistController(store),
		Leads:     controller.NewLeadController(store, engine, notifier),
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: controller.ErrorHandler,
		BodyLimit:    12 * 1024 * 1024,
	})

	app.Use(logger.New())
	app.Use(cors.New())

	controller.SetupRoutes(app, handlers, tokens)

	log.Printf("Server is running on port %s", cfg.Server.Port)
	log.Fatal(app.Listen(":" + cfg.Server.Port))
}
