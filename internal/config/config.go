package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"roombooking/internal/domain"
)

const (
	defaultHTTPAddr           = ":8080"
	defaultDatabaseURL        = "roombooking.db"
	defaultJWTSecret          = "change-me-jwt-secret"
	defaultJWTTTL             = "24h"
	defaultTimezone           = "UTC"
	defaultMaxDuration        = "3h"
	defaultMinCancelLead      = "15m"
	defaultCancelMode         = CancelModeSoft
	defaultReconcileInterval  = "1m"
	defaultReconcileLockTTL   = "5m"
	defaultSMTPPort           = 587
	defaultMailRatePerSecond  = 5.0
	defaultMailFrom           = "Meeting Room Booking <no-reply@localhost>"
	defaultMetricsNamespace   = "roombooking"
	defaultReconcileEnabled   = true
	defaultRoomAvailabilitySw = true
)

const (
	CancelModeSoft   = "soft"
	CancelModeDelete = "delete"
)

type Config struct {
	AppEnv      string `yaml:"app_env"`
	HTTPAddr    string `yaml:"http_addr"`
	DatabaseURL string `yaml:"database_url"`
	Timezone    string `yaml:"timezone"`

	JWT struct {
		Secret string        `yaml:"secret"`
		TTL    time.Duration `yaml:"ttl"`
	} `yaml:"jwt"`

	Booking BookingConfig `yaml:"booking"`

	Reconcile struct {
		Enabled          bool          `yaml:"enabled"`
		Interval         time.Duration `yaml:"interval"`
		RoomAvailability bool          `yaml:"room_availability"`
		LockTTL          time.Duration `yaml:"lock_ttl"`
	} `yaml:"reconcile"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	SMTP struct {
		Host          string  `yaml:"host"`
		Port          int     `yaml:"port"`
		Username      string  `yaml:"username"`
		Password      string  `yaml:"password"`
		From          string  `yaml:"from"`
		RatePerSecond float64 `yaml:"rate_per_second"`
	} `yaml:"smtp"`

	Metrics struct {
		Namespace string `yaml:"namespace"`
	} `yaml:"metrics"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

type BookingConfig struct {
	MaxDuration     time.Duration `yaml:"max_duration"`
	MinCancelLead   time.Duration `yaml:"min_cancel_lead"`
	RequireApproval bool          `yaml:"require_approval"`
	CancelMode      string        `yaml:"cancel_mode"`
	ActiveStatuses  []string      `yaml:"active_statuses"`
}

// StatusPolicy converts the configured status rules into the domain policy.
func (b BookingConfig) StatusPolicy() (domain.StatusPolicy, error) {
	policy := domain.StatusPolicy{RequireApproval: b.RequireApproval}
	for _, raw := range b.ActiveStatuses {
		s, err := domain.ParseStatus(raw)
		if err != nil {
			return policy, err
		}
		policy.Active = append(policy.Active, s)
	}
	if len(policy.Active) == 0 {
		policy.Active = domain.DefaultActiveStatuses
	}
	return policy, policy.Validate()
}

// Location resolves the configured timezone used for calendar-day queries.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) IsProdLike() bool {
	return isProdLike(c.AppEnv)
}

// Load builds the configuration from, in increasing priority: defaults, the
// YAML file named by CONFIG_PATH, a .env file and the process environment.
func Load() (*Config, error) {
	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_PATH")); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{
		AppEnv:      "dev",
		HTTPAddr:    defaultHTTPAddr,
		DatabaseURL: defaultDatabaseURL,
		Timezone:    defaultTimezone,
	}
	cfg.JWT.Secret = defaultJWTSecret
	cfg.JWT.TTL = mustDuration(defaultJWTTTL)
	cfg.Booking.MaxDuration = mustDuration(defaultMaxDuration)
	cfg.Booking.MinCancelLead = mustDuration(defaultMinCancelLead)
	cfg.Booking.CancelMode = defaultCancelMode
	cfg.Booking.ActiveStatuses = domain.DefaultActiveStatuses.Strings()
	cfg.Reconcile.Enabled = defaultReconcileEnabled
	cfg.Reconcile.Interval = mustDuration(defaultReconcileInterval)
	cfg.Reconcile.RoomAvailability = defaultRoomAvailabilitySw
	cfg.Reconcile.LockTTL = mustDuration(defaultReconcileLockTTL)
	cfg.SMTP.Port = defaultSMTPPort
	cfg.SMTP.From = defaultMailFrom
	cfg.SMTP.RatePerSecond = defaultMailRatePerSecond
	cfg.Metrics.Namespace = defaultMetricsNamespace
	cfg.CORSAllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	return cfg
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.AppEnv, "APP_ENV")
	cfg.AppEnv = strings.ToLower(cfg.AppEnv)
	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.Timezone, "TIMEZONE")
	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setString(&cfg.Booking.CancelMode, "BOOKING_CANCEL_MODE")
	setString(&cfg.Redis.Address, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.SMTP.Host, "SMTP_HOST")
	setString(&cfg.SMTP.Username, "SMTP_USERNAME")
	setString(&cfg.SMTP.Password, "SMTP_PASSWORD")
	setString(&cfg.SMTP.From, "SMTP_FROM")
	setString(&cfg.Metrics.Namespace, "METRICS_NAMESPACE")
	setList(&cfg.Booking.ActiveStatuses, "BOOKING_ACTIVE_STATUSES")
	setList(&cfg.CORSAllowedOrigins, "CORS_ALLOWED_ORIGINS")
	setBool(&cfg.Booking.RequireApproval, "BOOKING_REQUIRE_APPROVAL")
	setBool(&cfg.Reconcile.Enabled, "RECONCILE_ENABLED")
	setBool(&cfg.Reconcile.RoomAvailability, "RECONCILE_ROOM_AVAILABILITY")

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"JWT_TTL", &cfg.JWT.TTL},
		{"BOOKING_MAX_DURATION", &cfg.Booking.MaxDuration},
		{"BOOKING_MIN_CANCEL_LEAD", &cfg.Booking.MinCancelLead},
		{"RECONCILE_INTERVAL", &cfg.Reconcile.Interval},
		{"RECONCILE_LOCK_TTL", &cfg.Reconcile.LockTTL},
	}
	for _, d := range durations {
		if err := setDuration(d.dst, d.name); err != nil {
			return err
		}
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"REDIS_DB", &cfg.Redis.DB},
		{"SMTP_PORT", &cfg.SMTP.Port},
	}
	for _, i := range ints {
		if err := setInt(i.dst, i.name); err != nil {
			return err
		}
	}

	if v := strings.TrimSpace(os.Getenv("MAIL_RATE_PER_SEC")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid MAIL_RATE_PER_SEC value %q: %w", v, err)
		}
		cfg.SMTP.RatePerSecond = f
	}
	return nil
}

func validateConfig(cfg *Config) error {
	if cfg.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.Booking.MaxDuration <= 0 {
		return fmt.Errorf("BOOKING_MAX_DURATION must be > 0")
	}
	if cfg.Booking.MinCancelLead < 0 {
		return fmt.Errorf("BOOKING_MIN_CANCEL_LEAD must be >= 0")
	}
	if cfg.Reconcile.Interval <= 0 {
		return fmt.Errorf("RECONCILE_INTERVAL must be > 0")
	}
	if cfg.Reconcile.LockTTL < cfg.Reconcile.Interval {
		return fmt.Errorf("RECONCILE_LOCK_TTL must be >= RECONCILE_INTERVAL")
	}
	mode := strings.ToLower(strings.TrimSpace(cfg.Booking.CancelMode))
	if mode != CancelModeSoft && mode != CancelModeDelete {
		return fmt.Errorf("BOOKING_CANCEL_MODE must be one of: soft, delete")
	}
	cfg.Booking.CancelMode = mode
	if _, err := cfg.Booking.StatusPolicy(); err != nil {
		return fmt.Errorf("BOOKING_ACTIVE_STATUSES: %w", err)
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	if cfg.SMTP.RatePerSecond <= 0 {
		return fmt.Errorf("MAIL_RATE_PER_SEC must be > 0")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWT.Secret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if isEmptyOrDefault(cfg.DatabaseURL, defaultDatabaseURL) {
			return fmt.Errorf("in prod/release DATABASE_URL must be set")
		}
	}
	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func mustDuration(v string) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	return d
}

func setString(dst *string, name string) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		*dst = v
	}
}

func setList(dst *[]string, name string) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*dst = out
}

func setBool(dst *bool, name string) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	if v == "" {
		return
	}
	*dst = v == "1" || v == "true" || v == "yes" || v == "on"
}

func setDuration(dst *time.Duration, name string) error {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", name, v, err)
	}
	*dst = d
	return nil
}

func setInt(dst *int, name string) error {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", name, v, err)
	}
	*dst = n
	return nil
}
