package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Reddit     RedditConfig     `yaml:"reddit" mapstructure:"reddit"`
	Sheets     SheetsConfig     `yaml:"sheets" mapstructure:"sheets"`
	Collect    CollectConfig    `yaml:"collect" mapstructure:"collect"`
	Expand     ExpandConfig     `yaml:"expand" mapstructure:"expand"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// RedditConfig holds Reddit OAuth application credentials and client tuning.
type RedditConfig struct {
	ClientID          string  `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret      string  `yaml:"client_secret" mapstructure:"client_secret"`
	UserAgent         string  `yaml:"user_agent" mapstructure:"user_agent"`
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	TokenURL          string  `yaml:"token_url" mapstructure:"token_url"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// Sheet backends.
const (
	BackendGoogle = "google"
	BackendXLSX   = "xlsx"
)

// SheetsConfig selects the spreadsheet backend and names its sheets.
type SheetsConfig struct {
	Backend         string      `yaml:"backend" mapstructure:"backend"`
	SpreadsheetID   string      `yaml:"spreadsheet_id" mapstructure:"spreadsheet_id"`
	CredentialsFile string      `yaml:"credentials_file" mapstructure:"credentials_file"`
	BaseURL         string      `yaml:"base_url" mapstructure:"base_url"`
	WorkbookPath    string      `yaml:"workbook_path" mapstructure:"workbook_path"`
	TrackingSheet   string      `yaml:"tracking_sheet" mapstructure:"tracking_sheet"`
	DataSheet       string      `yaml:"data_sheet" mapstructure:"data_sheet"`
	UserSheet       string      `yaml:"user_sheet" mapstructure:"user_sheet"`
	FrequencySheet  string      `yaml:"frequency_sheet" mapstructure:"frequency_sheet"`
	Retry           RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// RetryConfig configures spreadsheet write retries. MaxAttempts <= 0 retries
// until the write succeeds or the context ends. The n-th wait is
// 2^n * Unit.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	Unit        time.Duration `yaml:"unit" mapstructure:"unit"`
}

// CollectConfig configures the get_submission_data and test modes.
type CollectConfig struct {
	SubmissionLimit int           `yaml:"submission_limit" mapstructure:"submission_limit"`
	ItemDelay       time.Duration `yaml:"item_delay" mapstructure:"item_delay"`
	ReferencePath   string        `yaml:"reference_path" mapstructure:"reference_path"`
	SamplePath      string        `yaml:"sample_path" mapstructure:"sample_path"`
	OutputDir       string        `yaml:"output_dir" mapstructure:"output_dir"`
	Progress        bool          `yaml:"progress" mapstructure:"progress"`
}

// ExpandConfig configures the expand_misinfo_network mode.
type ExpandConfig struct {
	Users          int           `yaml:"users" mapstructure:"users"`
	CommentLimit   int           `yaml:"comment_limit" mapstructure:"comment_limit"`
	UserDelay      time.Duration `yaml:"user_delay" mapstructure:"user_delay"`
	TopSubreddits  int           `yaml:"top_subreddits" mapstructure:"top_subreddits"`
	Topic          string        `yaml:"topic" mapstructure:"topic"`
	UpdateTracking bool          `yaml:"update_tracking" mapstructure:"update_tracking"`
}

// StoreConfig configures the run ledger backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// MonitoringConfig configures end-of-run alerts.
type MonitoringConfig struct {
	WebhookURL string `yaml:"webhook_url" mapstructure:"webhook_url"`
	// MinDetections suppresses alerts for runs with fewer detections and no
	// failed collections.
	MinDetections int `yaml:"min_detections" mapstructure:"min_detections"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MISINFO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("reddit.client_id", "")
	v.SetDefault("reddit.client_secret", "")
	v.SetDefault("reddit.user_agent", "misinfo-cli/1.0")
	v.SetDefault("reddit.base_url", "https://oauth.reddit.com")
	v.SetDefault("reddit.token_url", "https://www.reddit.com/api/v1/access_token")
	v.SetDefault("reddit.requests_per_second", 1.0)
	v.SetDefault("reddit.burst", 5)

	v.SetDefault("sheets.backend", BackendGoogle)
	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("sheets.credentials_file", "credentials.json")
	v.SetDefault("sheets.base_url", "")
	v.SetDefault("sheets.workbook_path", "data/misinfo.xlsx")
	v.SetDefault("sheets.tracking_sheet", "subreddits")
	v.SetDefault("sheets.data_sheet", "submission_data")
	v.SetDefault("sheets.user_sheet", "user_data")
	v.SetDefault("sheets.frequency_sheet", "domain_frequency")
	v.SetDefault("sheets.retry.max_attempts", 0)
	v.SetDefault("sheets.retry.unit", time.Second)

	v.SetDefault("collect.submission_limit", 1000)
	v.SetDefault("collect.item_delay", 5*time.Millisecond)
	v.SetDefault("collect.reference_path", "data/iffy+ 2021-03 - EmbedIffy+.tsv")
	v.SetDefault("collect.sample_path", "data/test_sample.csv")
	v.SetDefault("collect.output_dir", "outputs")
	v.SetDefault("collect.progress", true)

	v.SetDefault("expand.users", 40)
	v.SetDefault("expand.comment_limit", 500)
	v.SetDefault("expand.user_delay", 5*time.Second)
	v.SetDefault("expand.top_subreddits", 42)
	v.SetDefault("expand.topic", "Misinformation Network")
	v.SetDefault("expand.update_tracking", true)

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "misinfo.db")

	v.SetDefault("monitoring.webhook_url", "")
	v.SetDefault("monitoring.min_detections", 1)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
