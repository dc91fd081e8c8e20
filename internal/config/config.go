package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // minutes
	} `yaml:"jwt"`

	Admin struct {
		BootstrapKey  string `yaml:"bootstrap_key"`
		FirstEmail    string `yaml:"first_email"`
		FirstPassword string `yaml:"first_password"`
	} `yaml:"admin"`

	Payment struct {
		Token      string `yaml:"token"`       // merchant API token (X-Token header)
		BaseURL    string `yaml:"base_url"`    // provider API base
		PublicURL  string `yaml:"public_url"`  // our externally reachable base, for webhook URLs
		RedirectTo string `yaml:"redirect_to"` // where the buyer lands after payment
		ValiditySec int   `yaml:"validity_sec"`
	} `yaml:"payment"`

	Google struct {
		UserInfoURL string `yaml:"userinfo_url"`
	} `yaml:"google"`

	Drive struct {
		BaseURL      string `yaml:"base_url"`
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
		RefreshToken string `yaml:"refresh_token"`
		TokenURL     string `yaml:"token_url"`
	} `yaml:"drive"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		Enabled      bool   `yaml:"enabled"`
	} `yaml:"email"`

	RateLimit struct {
		MaxPerHour int `yaml:"max_per_hour"`
	} `yaml:"rate_limit"`
}

var AppConfig *Config

// LoadConfig reads configuration either from environment variables (test
// and container deployments set DATABASE_URL) or from a yaml file.
// A .env file, when present, is loaded first.
func LoadConfig() {
	var cfg Config

	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		applyDefaults(&cfg)
		AppConfig = &cfg
		return
	}

	cfg.Database.DSN = dbURL
	cfg.Server.Env = getEnv("SERVER_ENV", "development")
	cfg.Server.Host = getEnv("SERVER_HOST", "0.0.0.0")
	cfg.Server.Port, _ = strconv.Atoi(getEnv("SERVER_PORT", "4000"))
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	cfg.JWT.TTL, _ = strconv.Atoi(getEnv("JWT_TTL_MINUTES", "1440"))

	cfg.Admin.BootstrapKey = os.Getenv("ADMIN_KEY")
	cfg.Admin.FirstEmail = os.Getenv("FIRST_ADMIN_EMAIL")
	cfg.Admin.FirstPassword = os.Getenv("FIRST_ADMIN_PASSWORD")

	cfg.Payment.Token = os.Getenv("PAYMENT_TOKEN")
	cfg.Payment.BaseURL = getEnv("PAYMENT_BASE_URL", "https://api.monobank.ua")
	cfg.Payment.PublicURL = os.Getenv("PUBLIC_URL")
	cfg.Payment.RedirectTo = os.Getenv("PAYMENT_REDIRECT_URL")

	cfg.Google.UserInfoURL = os.Getenv("GOOGLE_USERINFO_URL")

	cfg.Drive.BaseURL = getEnv("DRIVE_BASE_URL", "https://www.googleapis.com")
	cfg.Drive.TokenURL = getEnv("DRIVE_TOKEN_URL", "https://oauth2.googleapis.com/token")
	cfg.Drive.ClientID = os.Getenv("DRIVE_CLIENT_ID")
	cfg.Drive.ClientSecret = os.Getenv("DRIVE_CLIENT_SECRET")
	cfg.Drive.RefreshToken = os.Getenv("DRIVE_REFRESH_TOKEN")

	cfg.Email.SMTPHost = os.Getenv("EMAIL_HOST")
	cfg.Email.SMTPPort, _ = strconv.Atoi(getEnv("EMAIL_PORT", "587"))
	cfg.Email.SMTPUser = os.Getenv("EMAIL_USERNAME")
	cfg.Email.SMTPPassword = os.Getenv("EMAIL_PASSWORD")
	cfg.Email.FromEmail = getEnv("EMAIL_FROM", "noreply@cutordie.com")
	cfg.Email.Enabled = os.Getenv("SEND_EMAIL") != ""

	cfg.RateLimit.MaxPerHour, _ = strconv.Atoi(getEnv("MAX_REQUESTS_PER_HOUR", "1000"))

	applyDefaults(&cfg)
	AppConfig = &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.JWT.TTL == 0 {
		cfg.JWT.TTL = 1440 // 24h
	}
	if cfg.Payment.ValiditySec == 0 {
		cfg.Payment.ValiditySec = 3600
	}
	if cfg.RateLimit.MaxPerHour == 0 {
		cfg.RateLimit.MaxPerHour = 1000
	}
	if cfg.Google.UserInfoURL == "" {
		cfg.Google.UserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
