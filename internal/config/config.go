package config

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	ServerPort    string `mapstructure:"server_port"`
	ServerTimeout int    `mapstructure:"server_timeout"`

	OpenAIAPIKey  string `mapstructure:"openai_api_key"  validate:"required"`
	OpenAIBaseURL string `mapstructure:"openai_base_url"`

	SummaryModel string `mapstructure:"summary_model" validate:"required"`
	ResolveModel string `mapstructure:"resolve_model" validate:"required"`

	AITimeout               int    `mapstructure:"ai_timeout"`
	AIRetryMaxAttempts      uint   `mapstructure:"ai_retry_max_attempts"`
	AIRetryMinBackoff       int    `mapstructure:"ai_retry_min_backoff"`
	AIRetryMaxBackoff       int    `mapstructure:"ai_retry_max_backoff"`
	AIIntervalCB            uint32 `mapstructure:"ai_interval_cb"`
	AIConsecutiveFailuresCB uint32 `mapstructure:"ai_consecutive_failures_cb"`

	SpreadsheetID            string `mapstructure:"spreadsheet_id" validate:"required"`
	GoogleServiceAccountJSON string `mapstructure:"google_service_account_json"`
	GoogleServiceAccountFile string `mapstructure:"google_service_account_file"`

	SheetsTimeout               int    `mapstructure:"sheets_timeout"`
	SheetsIntervalCB            uint32 `mapstructure:"sheets_interval_cb"`
	SheetsConsecutiveFailuresCB uint32 `mapstructure:"sheets_consecutive_failures_cb"`

	CallsCSVPath    string `mapstructure:"calls_csv_path"    validate:"required"`
	ScheduleCSVPath string `mapstructure:"schedule_csv_path" validate:"required"`

	RecorderPoolSize int `mapstructure:"recorder_pool_size"`

	LogLevel    string `mapstructure:"log_level"`
	LogFilePath string `mapstructure:"log_file_path"`

	PrometheusPort    string `mapstructure:"prometheus_port"`
	PrometheusTimeout int    `mapstructure:"prometheus_timeout"`
}

var Conf Config

func init() {
	err := loadEnvConfig(&Conf)
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.String("error", err.Error()))
	}
}

// Validate checks the required fields. It is called from main rather than
// init so that packages stay importable in tests without a full environment.
func Validate() error {
	return validator.New().Struct(&Conf)
}

func loadEnvConfig(cfg *Config) error {
	viper.AutomaticEnv()
	viper.AllowEmptyEnv(true)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setupDefaults()

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	err := viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError

		ok := errors.As(err, &configFileNotFoundError)
		if !ok {
			return err
		}
	}

	return viper.Unmarshal(cfg)
}

func setupDefaults() {
	confType := reflect.TypeOf(Conf)
	for i := range confType.NumField() {
		field := confType.Field(i)
		viper.SetDefault(field.Tag.Get("mapstructure"), "")
	}

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_TIMEOUT", "60")
	viper.SetDefault("SUMMARY_MODEL", "gpt-5-nano")
	viper.SetDefault("RESOLVE_MODEL", "gpt-5-mini")
	viper.SetDefault("AI_TIMEOUT", "30")
	viper.SetDefault("AI_RETRY_MAX_ATTEMPTS", "3")
	viper.SetDefault("AI_RETRY_MIN_BACKOFF", "1")
	viper.SetDefault("AI_RETRY_MAX_BACKOFF", "10")
	viper.SetDefault("AI_INTERVAL_CB", "30")
	viper.SetDefault("AI_CONSECUTIVE_FAILURES_CB", "3")
	viper.SetDefault("SHEETS_TIMEOUT", "30")
	viper.SetDefault("SHEETS_INTERVAL_CB", "300")
	viper.SetDefault("SHEETS_CONSECUTIVE_FAILURES_CB", "3")
	viper.SetDefault("CALLS_CSV_PATH", "./calls_log.csv")
	viper.SetDefault("SCHEDULE_CSV_PATH", "./scheduled_visits.csv")
	viper.SetDefault("RECORDER_POOL_SIZE", "10")
	viper.SetDefault("LOG_LEVEL", "INFO")
	viper.SetDefault("LOG_FILE_PATH", "stderr")
	viper.SetDefault("PROMETHEUS_PORT", "2112")
	viper.SetDefault("PROMETHEUS_TIMEOUT", "60")
}
