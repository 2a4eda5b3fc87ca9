package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var scheduleTimeRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	WeeklySourcesFile  string `mapstructure:"weekly_sources_file"`
	MonthlySourcesFile string `mapstructure:"monthly_sources_file"`
	OutputDir          string `mapstructure:"output_dir"`
	PublishersFile     string `mapstructure:"publishers_file"`

	PostLimit             int           `mapstructure:"post_limit"`
	MinScore              int           `mapstructure:"min_score"`
	RequestTimeoutSeconds int64         `mapstructure:"request_timeout_seconds"`
	RequestTimeout        time.Duration `mapstructure:"-"`
	APIBaseURL            string        `mapstructure:"api_base_url"`
	UserAgent             string        `mapstructure:"user_agent"`

	MarkerStore string `mapstructure:"marker_store"`
	MarkerPath  string `mapstructure:"marker_path"`
	BBoltPath   string `mapstructure:"bbolt_path"`

	ScheduleDay      string `mapstructure:"schedule_day"`
	ScheduleTime     string `mapstructure:"schedule_time"`
	ScheduleTaskName string `mapstructure:"schedule_task_name"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "khobor-digest")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("weekly_sources_file", "./configs/weekly.txt")
	v.SetDefault("monthly_sources_file", "./configs/monthly.txt")
	v.SetDefault("output_dir", "./output")
	v.SetDefault("publishers_file", "")
	v.SetDefault("post_limit", 20)
	v.SetDefault("min_score", 100)
	v.SetDefault("request_timeout_seconds", 10)
	v.SetDefault("api_base_url", "https://www.reddit.com")
	v.SetDefault("user_agent", "khobor-digest/1.0")
	v.SetDefault("marker_store", "file")
	v.SetDefault("marker_path", "./data/last_monthly.json")
	v.SetDefault("bbolt_path", "./data/cadence.db")
	v.SetDefault("schedule_day", "MON")
	v.SetDefault("schedule_time", "09:00")
	v.SetDefault("schedule_task_name", "WeeklyRedditDigest")
}

// normalize trims values, validates them and fills derived fields.
func (c *Config) normalize() error {
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	c.UserAgent = strings.TrimSpace(c.UserAgent)
	c.MarkerStore = strings.ToLower(strings.TrimSpace(c.MarkerStore))
	c.ScheduleDay = strings.ToUpper(strings.TrimSpace(c.ScheduleDay))
	c.ScheduleTime = strings.TrimSpace(c.ScheduleTime)

	if c.PostLimit <= 0 {
		return fmt.Errorf("invalid post_limit (must be positive)")
	}
	if c.MinScore < 0 {
		return fmt.Errorf("invalid min_score (must not be negative)")
	}
	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid request_timeout_seconds (must be positive seconds)")
	}
	c.RequestTimeout = time.Duration(c.RequestTimeoutSeconds) * time.Second

	if c.APIBaseURL == "" {
		return fmt.Errorf("api_base_url is required")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user_agent is required")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("output_dir is required")
	}
	if !scheduleTimeRe.MatchString(c.ScheduleTime) {
		return fmt.Errorf("invalid schedule_time %q (expected HH:MM)", c.ScheduleTime)
	}
	return nil
}
