package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// DefaultPrompt is prepended verbatim to the transcript.
const DefaultPrompt = `You are a YouTube video summarizer. You will take the transcript text
and summarize the entire video, providing the important points
within 250 words. Please provide the summary of the text given here: `

type Config struct {
	ServerPort      string        `yaml:"server_port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Debug           bool          `yaml:"debug"`
	Env             string        `yaml:"env"`
	Version         string        `yaml:"version"`

	LogDir string `yaml:"log_dir"`
	DBPath string `yaml:"db_path"`

	Summary    SummaryConfig    `yaml:"summary"`
	Transcript TranscriptConfig `yaml:"transcript"`
	Middleware MiddlewareConfig `yaml:"middleware"`
	CORS       CORSConfig       `yaml:"cors"`
}

type SummaryConfig struct {
	Provider string        `yaml:"provider"`
	Model    string        `yaml:"model"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
	Prompt   string        `yaml:"prompt"`

	// APIKey is only ever read from the environment.
	APIKey string `yaml:"-"`
}

type TranscriptConfig struct {
	Languages []string      `yaml:"languages"`
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
}

type MiddlewareConfig struct {
	EnableRecover   bool `yaml:"enable_recover"`
	EnableRequestID bool `yaml:"enable_request_id"`
	EnableLogger    bool `yaml:"enable_logger"`
	EnableCORS      bool `yaml:"enable_cors"`
	EnableCompress  bool `yaml:"enable_compress"`
	EnableETag      bool `yaml:"enable_etag"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
	MaxAge         int      `yaml:"max_age"`
}

// Production reports whether ENV=production.
func (c *Config) Production() bool {
	return c.Env == "production"
}

func Default() *Config {
	return &Config{
		ServerPort:      "8080",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    3 * time.Minute,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Env:             "development",
		Version:         "1.0.0",
		LogDir:          "./logs",
		DBPath:          "./data/runs.db",
		Summary: SummaryConfig{
			Provider: ProviderGemini,
			Model:    "gemini-2.5-flash",
			Timeout:  2 * time.Minute,
			Prompt:   DefaultPrompt,
		},
		Transcript: TranscriptConfig{
			Languages: []string{"en"},
			BaseURL:   "https://www.youtube.com",
			Timeout:   30 * time.Second,
		},
		Middleware: MiddlewareConfig{
			EnableRecover:   true,
			EnableRequestID: true,
			EnableLogger:    true,
			EnableCORS:      true,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         86400,
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by CONFIG_FILE, and the environment, in that order of precedence.
func Load() (*Config, error) {
	cfg := Default()

	if path := GetEnv("CONFIG_FILE", ""); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading config file %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrapf(err, "parsing config file %s", path)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.ServerPort = GetEnv("SERVER_PORT", cfg.ServerPort)
	cfg.ReadTimeout = getEnvAsDuration("READ_TIMEOUT", cfg.ReadTimeout)
	cfg.WriteTimeout = getEnvAsDuration("WRITE_TIMEOUT", cfg.WriteTimeout)
	cfg.IdleTimeout = getEnvAsDuration("IDLE_TIMEOUT", cfg.IdleTimeout)
	cfg.ShutdownTimeout = getEnvAsDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.Debug = getEnvAsBool("DEBUG", cfg.Debug)
	cfg.Env = GetEnv("ENV", cfg.Env)
	cfg.Version = GetEnv("VERSION", cfg.Version)
	cfg.LogDir = GetEnv("LOG_DIR", cfg.LogDir)
	cfg.DBPath = GetEnv("DB_PATH", cfg.DBPath)

	cfg.Summary.Provider = strings.ToLower(GetEnv("SUMMARY_PROVIDER", cfg.Summary.Provider))
	cfg.Summary.Model = GetEnv("SUMMARY_MODEL", cfg.Summary.Model)
	cfg.Summary.BaseURL = GetEnv("SUMMARY_BASE_URL", cfg.Summary.BaseURL)
	cfg.Summary.Timeout = getEnvAsDuration("SUMMARY_TIMEOUT", cfg.Summary.Timeout)
	cfg.Summary.Prompt = GetEnv("SUMMARY_PROMPT", cfg.Summary.Prompt)
	cfg.Summary.APIKey = apiKey(cfg.Summary.Provider)

	cfg.Transcript.Languages = getEnvAsStringSlice("TRANSCRIPT_LANGUAGES", cfg.Transcript.Languages)
	cfg.Transcript.BaseURL = GetEnv("TRANSCRIPT_BASE_URL", cfg.Transcript.BaseURL)
	cfg.Transcript.Timeout = getEnvAsDuration("TRANSCRIPT_TIMEOUT", cfg.Transcript.Timeout)

	cfg.Middleware.EnableRecover = getEnvAsBool("ENABLE_RECOVER", cfg.Middleware.EnableRecover)
	cfg.Middleware.EnableRequestID = getEnvAsBool("ENABLE_REQUEST_ID", cfg.Middleware.EnableRequestID)
	cfg.Middleware.EnableLogger = getEnvAsBool("ENABLE_LOGGER", cfg.Middleware.EnableLogger)
	cfg.Middleware.EnableCORS = getEnvAsBool("CORS_ENABLED", cfg.Middleware.EnableCORS)
	cfg.Middleware.EnableCompress = getEnvAsBool("ENABLE_COMPRESS", cfg.Middleware.EnableCompress || cfg.Production())
	cfg.Middleware.EnableETag = getEnvAsBool("ENABLE_ETAG", cfg.Middleware.EnableETag || cfg.Production())

	cfg.CORS.AllowedOrigins = getEnvAsStringSlice("CORS_ALLOWED_ORIGINS", cfg.CORS.AllowedOrigins)
	cfg.CORS.AllowedMethods = getEnvAsStringSlice("CORS_ALLOWED_METHODS", cfg.CORS.AllowedMethods)
	cfg.CORS.AllowedHeaders = getEnvAsStringSlice("CORS_ALLOWED_HEADERS", cfg.CORS.AllowedHeaders)
	cfg.CORS.MaxAge = getEnvAsInt("CORS_MAX_AGE", cfg.CORS.MaxAge)
}

// apiKey picks the credential for provider. A missing key is not an error
// here; the summarization call reports it.
func apiKey(provider string) string {
	if key := GetEnv("SUMMARY_API_KEY", ""); key != "" {
		return key
	}
	if provider == ProviderOpenAI {
		return GetEnv("OPENAI_API_KEY", "")
	}
	return GetEnv("GOOGLE_API_KEY", "")
}

func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return errors.New("server port is required")
	}
	if c.ReadTimeout <= 0 {
		return errors.New("read timeout must be greater than 0")
	}
	if c.WriteTimeout <= 0 {
		return errors.New("write timeout must be greater than 0")
	}
	if c.IdleTimeout <= 0 {
		return errors.New("idle timeout must be greater than 0")
	}
	if c.Summary.Timeout < 0 || c.Transcript.Timeout < 0 {
		return errors.New("client timeouts must not be negative")
	}
	switch c.Summary.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return errors.Errorf("unknown summary provider %q", c.Summary.Provider)
	}
	if c.Summary.Model == "" {
		return errors.New("summary model is required")
	}
	if len(c.Transcript.Languages) == 0 {
		return errors.New("at least one transcript language is required")
	}
	return nil
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid duration, using default")
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid integer, using default")
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid boolean, using default")
	}
	return defaultValue
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
