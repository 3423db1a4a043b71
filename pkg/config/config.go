package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Storage  StorageConfig
	Redis    RedisConfig
	SMTP     SMTPConfig
	WhatsApp WhatsAppConfig
	Notify   NotifyConfig
	Images   ImageConfig
	Cron     CronConfig
	Admin    AdminConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	URL string
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// StorageConfig points at a Cloudflare R2 bucket.
type StorageConfig struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

type RedisConfig struct {
	URL      string
	CacheTTL time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type WhatsAppConfig struct {
	AccessToken   string
	PhoneID       string
	BaseURL       string
	TemplateName  string
	DefaultRegion string
}

type NotifyConfig struct {
	AdminEmail string
	WhatsAppTo string
}

type ImageConfig struct {
	MaxEdge int
	Quality int
}

type CronConfig struct {
	LeadDigest string
}

type AdminConfig struct {
	Email    string
	Password string
}

func Load() *Config {
	godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "change-me"),
			TTL:    getEnvDuration("JWT_TTL", 24*time.Hour),
		},
		Storage: StorageConfig{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			CacheTTL: getEnvDuration("CACHE_TTL", 5*time.Minute),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "Storefront <noreply@example.com>"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   getEnv("WHATSAPP_ACCESS_TOKEN", ""),
			PhoneID:       getEnv("WHATSAPP_PHONE_ID", ""),
			BaseURL:       getEnv("WHATSAPP_BASE_URL", "https://graph.facebook.com/v18.0"),
			TemplateName:  getEnv("WHATSAPP_TEMPLATE", "new_lead"),
			DefaultRegion: getEnv("PHONE_DEFAULT_REGION", "US"),
		},
		Notify: NotifyConfig{
			AdminEmail: getEnv("ADMIN_NOTIFY_EMAIL", ""),
			WhatsAppTo: getEnv("WHATSAPP_NOTIFY_TO", ""),
		},
		Images: ImageConfig{
			MaxEdge: getEnvInt("IMAGE_MAX_EDGE", 1600),
			Quality: getEnvInt("IMAGE_QUALITY", 85),
		},
		Cron: CronConfig{
			LeadDigest: getEnv("LEAD_DIGEST_CRON", "0 8 * * *"),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
