package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Webhook verification (Meta webhook subscription handshake).
	VerifyToken string `mapstructure:"VERIFY_TOKEN"`

	// Instagram Graph API credentials.
	InstagramAccessToken string `mapstructure:"INSTAGRAM_ACCESS_TOKEN"`
	InstagramPageID      string `mapstructure:"INSTAGRAM_PAGE_ID"`

	// Gemini API key for intent classification, extraction and Q&A.
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`

	// Google Calendar configuration.
	GoogleCalendarID      string `mapstructure:"GOOGLE_CALENDAR_ID"`
	GoogleCredentialsPath string `mapstructure:"GOOGLE_CALENDAR_CREDENTIALS_PATH"`

	// Shop identity used in replies and calendar events.
	BarberName string `mapstructure:"BARBER_NAME"`

	// Scheduling configuration. Business hour strings may carry several
	// semicolon-separated blocks for split schedules ("09:00;16:00").
	BusinessHoursStart  string `mapstructure:"BARBER_BUSINESS_HOURS_START"`
	BusinessHoursEnd    string `mapstructure:"BARBER_BUSINESS_HOURS_END"`
	AppointmentDuration int    `mapstructure:"APPOINTMENT_DURATION_MINUTES"`
	LookaheadDays       int    `mapstructure:"LOOKAHEAD_DAYS"`
	MaxSlotsShown       int    `mapstructure:"MAX_SLOTS_SHOWN"`
	SlotMatchTolerance  int    `mapstructure:"SLOT_MATCH_TOLERANCE_SECONDS"`
	TimeZone            string `mapstructure:"TIME_ZONE"`

	// Conversation state configuration.
	HistoryLimit        int `mapstructure:"HISTORY_LIMIT"`
	ConversationTTLMins int `mapstructure:"CONVERSATION_TTL_MINUTES"`

	// Reminder DM lead time before the appointment.
	ReminderLeadMinutes int `mapstructure:"REMINDER_LEAD_MINUTES"`

	MaxRequestsPerMin int `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDedupDB  int    `mapstructure:"REDIS_DEDUP_DB"`
	RedisTaskDB   int    `mapstructure:"REDIS_TASK_DB"`

	// Mongo booking record log (optional; empty disables it).
	MongoURI string `mapstructure:"MONGO_URI"`
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
	viper.SetDefault("BARBER_NAME", "our barber")
	viper.SetDefault("BARBER_BUSINESS_HOURS_START", "09:00")
	viper.SetDefault("BARBER_BUSINESS_HOURS_END", "18:00")
	viper.SetDefault("APPOINTMENT_DURATION_MINUTES", 60)
	viper.SetDefault("LOOKAHEAD_DAYS", 3)
	viper.SetDefault("MAX_SLOTS_SHOWN", 5)
	viper.SetDefault("SLOT_MATCH_TOLERANCE_SECONDS", 60)
	viper.SetDefault("TIME_ZONE", "America/Los_Angeles")
	viper.SetDefault("HISTORY_LIMIT", 10)
	viper.SetDefault("CONVERSATION_TTL_MINUTES", 60)
	viper.SetDefault("REMINDER_LEAD_MINUTES", 60)
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("GOOGLE_CALENDAR_ID", "primary")
	viper.SetDefault("GOOGLE_CALENDAR_CREDENTIALS_PATH", "credentials.json")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DEDUP_DB", 0)
	viper.SetDefault("REDIS_TASK_DB", 1)
	viper.SetDefault("MONGO_URI", "")

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
