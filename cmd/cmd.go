package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/frahmantamala/workforce-portal/internal"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "workforce-portal",
	Short: "Workforce Portal",
	Long:  `Timesheet and expense approvals with in-app and email notifications.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// loadConfig reads config.yml from path when present. Every key can be
// overridden by an ENV_ prefixed variable, e.g. ENV_DATABASE_SOURCE, which
// may also come from a .env file.
func loadConfig(path string) (*internal.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("ENV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it even
// without a config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")

	v.SetDefault("http_server.port", 8080)
	v.SetDefault("http_server.base_url", "http://localhost:8080")
	v.SetDefault("http_server.allowed_origins", "")
	v.SetDefault("http_server.read_header_timeout", 5*time.Second)
	v.SetDefault("http_server.read_timeout", 15*time.Second)
	v.SetDefault("http_server.idle_timeout", 60*time.Second)
	v.SetDefault("http_server.write_timeout", 15*time.Second)

	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", 10*time.Minute)
	v.SetDefault("database.source", "")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 10*time.Minute)

	v.SetDefault("security.jwt_secret", "")
	v.SetDefault("security.access_token_duration", 15*time.Minute)

	v.SetDefault("notification.default_recipient_id", 0)
	v.SetDefault("notification.time_zone", "UTC")
	v.SetDefault("notification.from_address", "no-reply@workforce.local")
	v.SetDefault("notification.app_base_url", "http://localhost:3000")

	v.SetDefault("mailer.driver", "log")
	v.SetDefault("mailer.host", "")
	v.SetDefault("mailer.port", 587)
	v.SetDefault("mailer.username", "")
	v.SetDefault("mailer.password", "")
	v.SetDefault("mailer.relay_url", "")
	v.SetDefault("mailer.api_key", "")
	v.SetDefault("mailer.timeout", 10*time.Second)

	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.path", "/metrics")
	v.SetDefault("observability.tracing.enabled", false)
	v.SetDefault("observability.tracing.service_name", "workforce-portal")
	v.SetDefault("observability.tracing.sampling_rate", 1.0)
	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "text")
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "directory containing config.yml")

	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(tokenCmd)
}
