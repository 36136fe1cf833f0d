package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config groups the application configuration (read via Viper from env and optionally a file).
type Config struct {
	App       AppConfig
	DB        DBConfig
	HTTP      HTTPConfig
	JWT       JWTConfig
	OpenAI    OpenAIConfig
	Twilio    TwilioConfig
	OmniDim   OmniDimConfig
	Shop      ShopConfig
	Insights  InsightsConfig
	Stock     StockConfig
	Suppliers SupplierConfig
}

// AppConfig general application settings.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// DBConfig PostgreSQL settings.
// If DatabaseURL is non-empty it is used as the full connection string.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString returns the DSN to use: DATABASE_URL when defined, else the built one.
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// HTTPConfig webhook server settings.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr returns the listen address (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// JWTConfig settings for the read-only dashboard API tokens.
type JWTConfig struct {
	Secret     string
	Expiration int // minutes
	Issuer     string
}

// OpenAIConfig models used by the extraction, translation and insight adapters.
type OpenAIConfig struct {
	APIKey           string
	ExtractionModel  string // structured draft extraction from text/images
	TranslationModel string // item-name translation into the catalog language
	InsightModel     string // weather/festival insight composition
	WhisperModel     string // voice-note transcription
}

// TwilioConfig outbound WhatsApp and media download credentials.
type TwilioConfig struct {
	AccountSID     string
	AuthToken      string
	WhatsAppNumber string
}

// OmniDimConfig supplier call dispatch credentials.
type OmniDimConfig struct {
	APIKey       string
	AgentID      int
	FromNumberID int
}

// ShopConfig per-deployment shop defaults.
// CatalogLanguage is the language all stock item names are normalized to for matching.
type ShopConfig struct {
	Latitude        float64
	Longitude       float64
	CatalogLanguage string
}

// InsightsConfig periodic insight pass settings.
type InsightsConfig struct {
	Cron     string // cron expression for the insight job
	Disabled bool
}

// StockConfig stock bookkeeping policy knobs.
// RejectOversell: when true a sale that would drive stock negative is rejected
// instead of clamping the quantity to zero.
type StockConfig struct {
	RejectOversell bool
}

// SupplierConfig supplier price table policy.
// PrimaryPhone breaks price ties deterministically in favour of that supplier.
type SupplierConfig struct {
	PrimaryPhone string
}

// Load reads configuration from environment variables (and optionally a .env file).
// Env vars take precedence. Expected names: APP_ENV, DB_HOST, OPENAI_API_KEY, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Optional config file (.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignore error when missing

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "khata-sahayak"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "khata"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "khata-sahayak"),
		},
		OpenAI: OpenAIConfig{
			APIKey:           getString(v, "OPENAI_API_KEY", ""),
			ExtractionModel:  getString(v, "OPENAI_EXTRACTION_MODEL", "gpt-4o"),
			TranslationModel: getString(v, "OPENAI_TRANSLATION_MODEL", "gpt-3.5-turbo-0125"),
			InsightModel:     getString(v, "OPENAI_INSIGHT_MODEL", "gpt-4o-mini"),
			WhisperModel:     getString(v, "OPENAI_WHISPER_MODEL", "whisper-1"),
		},
		Twilio: TwilioConfig{
			AccountSID:     getString(v, "TWILIO_ACCOUNT_SID", ""),
			AuthToken:      getString(v, "TWILIO_AUTH_TOKEN", ""),
			WhatsAppNumber: getString(v, "TWILIO_WHATSAPP_NUMBER", ""),
		},
		OmniDim: OmniDimConfig{
			APIKey:       getString(v, "OMNIDIM_API_KEY", ""),
			AgentID:      getInt(v, "OMNIDIM_AGENT_ID", 0),
			FromNumberID: getInt(v, "OMNIDIM_FROM_NUMBER_ID", 0),
		},
		Shop: ShopConfig{
			Latitude:        getFloat(v, "SHOP_LATITUDE", 28.7041),
			Longitude:       getFloat(v, "SHOP_LONGITUDE", 77.1025),
			CatalogLanguage: getString(v, "SHOP_CATALOG_LANGUAGE", "hi"),
		},
		Insights: InsightsConfig{
			Cron:     getString(v, "INSIGHTS_CRON", "0 0 8 * * *"),
			Disabled: getBool(v, "INSIGHTS_DISABLED", false),
		},
		Stock: StockConfig{
			RejectOversell: getBool(v, "STOCK_REJECT_OVERSELL", false),
		},
		Suppliers: SupplierConfig{
			PrimaryPhone: getString(v, "SUPPLIER_PRIMARY_PHONE", "+919971129359"),
		},
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getFloat(v *viper.Viper, key string, def float64) float64 {
	if v.IsSet(key) {
		return v.GetFloat64(key)
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}
