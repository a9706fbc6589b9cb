package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Gemini (entity extraction + date resolution).
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel  string `mapstructure:"GEMINI_MODEL"`

	// Google Calendar.
	GoogleServiceAccountFile string `mapstructure:"GOOGLE_SERVICE_ACCOUNT_FILE"`
	CalendarID               string `mapstructure:"CALENDAR_ID"`

	// Reference timezone for all scheduling (IANA name).
	Timezone string `mapstructure:"TIMEZONE"`

	// ElevenLabs text-to-speech.
	ElevenLabsAPIKey  string `mapstructure:"ELEVENLABS_API_KEY"`
	ElevenLabsVoiceID string `mapstructure:"ELEVENLABS_VOICE_ID"`

	// Redis configuration.
	RedisAddr            string `mapstructure:"REDIS_ADDR"`
	RedisPassword        string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB         int    `mapstructure:"REDIS_CACHE_DB"`
	RedisReminderQueueDB int    `mapstructure:"REDIS_REMINDER_QUEUE_DB"`

	// MongoDB (booking archive).
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Scheduling policy knobs.
	MinDurationMinutes  int `mapstructure:"MIN_DURATION_MINUTES"`
	MaxDurationMinutes  int `mapstructure:"MAX_DURATION_MINUTES"`
	SlotStepMinutes     int `mapstructure:"SLOT_STEP_MINUTES"`
	MaxSlotOptions      int `mapstructure:"MAX_SLOT_OPTIONS"`
	SessionTTLMinutes   int `mapstructure:"SESSION_TTL_MINUTES"`
	ReminderLeadMinutes int `mapstructure:"REMINDER_LEAD_MINUTES"`
	BusyCacheTTLSeconds int `mapstructure:"BUSY_CACHE_TTL_SECONDS"`

	// Optional webhook hit by the reminder worker when a meeting is due.
	ReminderWebhookURL string `mapstructure:"REMINDER_WEBHOOK_URL"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("GEMINI_MODEL", "models/gemini-1.5-flash-002")
	viper.SetDefault("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	viper.SetDefault("CALENDAR_ID", "primary")
	viper.SetDefault("TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("ELEVENLABS_API_KEY", "")
	viper.SetDefault("ELEVENLABS_VOICE_ID", "EXAVITQu4vr4xnSDxMaL")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_REMINDER_QUEUE_DB", 3)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("MIN_DURATION_MINUTES", 15)
	viper.SetDefault("MAX_DURATION_MINUTES", 480)
	viper.SetDefault("SLOT_STEP_MINUTES", 30)
	viper.SetDefault("MAX_SLOT_OPTIONS", 5)
	viper.SetDefault("SESSION_TTL_MINUTES", 30)
	viper.SetDefault("REMINDER_LEAD_MINUTES", 15)
	viper.SetDefault("BUSY_CACHE_TTL_SECONDS", 60)
	viper.SetDefault("REMINDER_WEBHOOK_URL", "")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
