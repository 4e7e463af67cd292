package config

import (
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the application needs at startup.
type Config struct {
	AppPort        string
	DBDriver       string // "sqlite" or "postgres"
	DatabaseDSN    string
	JWTSecret      string
	SessionTTL     time.Duration
	CookieSecure   bool
	UploadDir      string
	MaxUploadBytes int
	RecentLimit    int
	RabbitMQURL    string // empty disables listing events
	RabbitMQQueue  string
}

// DevJWTSecret is the JWT_SECRET used when none is configured.
const DevJWTSecret = "change-me"

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "lazarevskoe.db?_foreign_keys=on")
	v.SetDefault("JWT_SECRET", DevJWTSecret)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("UPLOAD_DIR", "static/uploads")
	v.SetDefault("MAX_UPLOAD_BYTES", 16*1024*1024)
	v.SetDefault("RECENT_LIMIT", 12)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "listing_events")
}

// Load reads an optional .env file and then the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from an already configured viper instance.
func FromViper(v *viper.Viper) Config {
	cfg := Config{
		AppPort:        v.GetString("APP_PORT"),
		DBDriver:       v.GetString("DB_DRIVER"),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		SessionTTL:     v.GetDuration("SESSION_TTL"),
		CookieSecure:   v.GetBool("COOKIE_SECURE"),
		UploadDir:      v.GetString("UPLOAD_DIR"),
		MaxUploadBytes: v.GetInt("MAX_UPLOAD_BYTES"),
		RecentLimit:    v.GetInt("RECENT_LIMIT"),
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
		RabbitMQQueue:  v.GetString("RABBITMQ_QUEUE"),
	}

	if cfg.JWTSecret == DevJWTSecret {
		log.Println("Warning: JWT_SECRET is not set, using the development default")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	return cfg
}

// Validate rejects development-only settings: secure cookies require a
// configured JWT_SECRET.
func (c Config) Validate() error {
	if c.CookieSecure && (c.JWTSecret == "" || c.JWTSecret == DevJWTSecret) {
		return errors.New("JWT_SECRET must be set when COOKIE_SECURE is enabled")
	}
	return nil
}
