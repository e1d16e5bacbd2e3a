package application

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	alerts "github.com/AtharvSabde/Cropverse/internal/alerts/domain"
)

// Config defines the monitoring configuration file. Thresholds listed
// here override the compiled defaults; the settings store overrides
// both.
type Config struct {
	Thresholds alerts.ThresholdConfig `yaml:"thresholds"`
	Schedule   ScheduleConfig         `yaml:"schedule"`
	WebhookURL string                 `yaml:"webhook_url"`
	Template   string                 `yaml:"notify_template"`
}

// ScheduleConfig defines the daily summary schedule.
type ScheduleConfig struct {
	DailyAt              string   `yaml:"daily_at"`
	Sensors              []string `yaml:"sensors"`
	AutoResolveAfterDays int      `yaml:"auto_resolve_after_days"`
}

// LoadConfig loads config from the CROPVERSE_CONFIG yaml file, with
// env fallbacks for schedule fields.
func LoadConfig() (Config, error) {
	var cfg Config

	if path := os.Getenv("CROPVERSE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.Schedule.DailyAt == "" {
		cfg.Schedule.DailyAt = getenvDefault("SUMMARY_DAILY_AT", "00:05")
	}
	if len(cfg.Schedule.Sensors) == 0 {
		cfg.Schedule.Sensors = splitCSV(os.Getenv("SUMMARY_SENSORS"))
	}
	if cfg.Schedule.AutoResolveAfterDays == 0 {
		cfg.Schedule.AutoResolveAfterDays = getenvIntDefault("ALERT_AUTO_RESOLVE_DAYS", 7)
	}
	if cfg.WebhookURL == "" {
		cfg.WebhookURL = os.Getenv("ALERT_WEBHOOK_URL")
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
