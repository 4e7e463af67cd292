package config_test

import (
	"testing"
	"time"

	"arenda/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)

	cfg := config.FromViper(v)

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "static/uploads", cfg.UploadDir)
	assert.Equal(t, 16*1024*1024, cfg.MaxUploadBytes)
	assert.Equal(t, 12, cfg.RecentLimit)
	assert.Empty(t, cfg.RabbitMQURL)
	assert.Equal(t, "listing_events", cfg.RabbitMQQueue)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("DB_DRIVER", "postgres")
	v.Set("SESSION_TTL", "90m")
	v.Set("RECENT_LIMIT", 4)

	cfg := config.FromViper(v)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 4, cfg.RecentLimit)
}

func TestFromViperRejectsNonPositiveTTL(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("SESSION_TTL", "0s")

	cfg := config.FromViper(v)

	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		secure  bool
		secret  string
		wantErr bool
	}{
		{"development defaults", false, config.DevJWTSecret, false},
		{"secure with default secret", true, config.DevJWTSecret, true},
		{"secure with empty secret", true, "", true},
		{"secure with real secret", true, "s3cr3t-value", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := viper.New()
			config.SetDefaults(v)
			v.Set("COOKIE_SECURE", tc.secure)
			v.Set("JWT_SECRET", tc.secret)

			err := config.FromViper(v).Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
