package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/angas/aircast-go/logging"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppConfigApi struct {
	Address string
	Port    int16 `validate:"required,min=1"`
	// If not assigned, the server will serve embedded files.
	// If assigned, the server will serve files from the directory,
	// that must contain a "static" and "templates" directory.
	// This is useful for development.
	WwwDir *string `mapstructure:"www_dir"`
	// Max selection commands per second a websocket client may send, default: 5
	WsCommandRate *float64 `mapstructure:"ws_command_rate" validate:"omitempty,gt=0"`
	// Burst of selection commands allowed above the rate, default: 10
	WsCommandBurst *int `mapstructure:"ws_command_burst" validate:"omitempty,min=1"`
}

func (a AppConfigApi) GetWsCommandRate() float64 {
	if a.WsCommandRate == nil {
		return 5
	}
	return *a.WsCommandRate
}

func (a AppConfigApi) GetWsCommandBurst() int {
	if a.WsCommandBurst == nil {
		return 10
	}
	return *a.WsCommandBurst
}

type AppConfigDatabase struct {
	Path string `validate:"required"`
	// How many days daily backup files should be stored before they gets deleted
	BackupRetentionDays *int `mapstructure:"backup_retention_days" validate:"omitempty,min=0"`
}

func (d AppConfigDatabase) GetBackupRetentionDays() int {
	if d.BackupRetentionDays == nil {
		return 30
	}
	return *d.BackupRetentionDays
}

// AppConfigPublish configures the MQTT summary publisher. Publishing is off
// when Host is empty.
type AppConfigPublish struct {
	Host        string
	Port        int16  `validate:"required_with=Host"`
	Username    string
	Password    string
	ClientID    string `mapstructure:"client_id"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	RunAt       string `mapstructure:"run_at" validate:"required_with=Host"`
}

func (p AppConfigPublish) Enabled() bool {
	return p.Host != ""
}

func (p AppConfigPublish) GetClientID() string {
	if p.ClientID == "" {
		return "aircast"
	}
	return p.ClientID
}

func (p AppConfigPublish) GetTopicPrefix() string {
	if p.TopicPrefix == "" {
		return "aircast"
	}
	return strings.TrimSuffix(p.TopicPrefix, "/")
}

type AppConfigGui struct {
	// Timezone for displaying forecast hours in the GUI, default: Asia/Kolkata
	Timezone *string `mapstructure:"timezone"`
}

func (g AppConfigGui) GetTimezone() string {
	if g.Timezone == nil {
		return "Asia/Kolkata"
	}
	return *g.Timezone
}

type AppConfigLogging struct {
	// Min log level for database : "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	DbLevel *string `mapstructure:"db_level"`
	// Log attributes format: "TEXT", "JSON", default: "JSON"
	DbAttrsFormat *string `mapstructure:"db_attrs_format"`
	// Maximum number of log entries in the database, default: 10000
	DbMaxEntries *int `mapstructure:"db_max_entries" validate:"omitempty,min=1"`
	// Min log level for console: "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	ConsoleLevel *string `mapstructure:"console_level"`
}

func (l AppConfigLogging) GetDbLevel() slog.Level {
	return logging.LevelFromString(l.DbLevel)
}

func (l AppConfigLogging) GetDbAttrsFormat() logging.LogAttrFormat {
	if l.DbAttrsFormat == nil {
		return logging.LogAttrFormatJSON
	}
	if strings.EqualFold(*l.DbAttrsFormat, "text") {
		return logging.LogAttrFormatText
	}
	return logging.LogAttrFormatJSON
}

func (l AppConfigLogging) GetDbMaxEntries() int {
	if l.DbMaxEntries == nil {
		return 10000
	}
	return *l.DbMaxEntries
}

func (l AppConfigLogging) GetConsoleLevel() slog.Level {
	return logging.LevelFromString(l.ConsoleLevel)
}

type AppConfig struct {
	Api      AppConfigApi
	Database AppConfigDatabase
	Publish  AppConfigPublish  `mapstructure:"publish"`
	Gui      AppConfigGui      `mapstructure:"gui"`
	Logging  AppConfigLogging  `mapstructure:"logging"`
}

var validate = validator.New()

func Load(path string) (*AppConfig, error) {
	// A missing .env file is fine, the environment may already be set.
	_ = godotenv.Load()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("config")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var c AppConfig

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config file: %w", err)
	}

	if err := validate.Struct(c); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &c, nil
}
