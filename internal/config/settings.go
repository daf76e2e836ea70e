package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrMissing reports a required setting that is absent.
var ErrMissing = errors.New("configuration missing")

// Environment overrides.
const (
	EnvDBPath         = "MINEDIGEST_DB_PATH"
	EnvWebhookURL     = "MINEDIGEST_WEBHOOK_URL"
	EnvDiscordWebhook = "DISCORD_WEBHOOK_URL"
	EnvGitHubActions  = "GITHUB_ACTIONS"
)

// LegacyConfigName is the JSON config of the legacy gsm_reporter script.
const LegacyConfigName = "gsm_config.json"

// Defaults.
const (
	DefaultMaxDaysBack   = 7
	DefaultTrendDays     = 30
	DefaultTimeout       = 10 * time.Second
	DefaultOnUnavailable = "treat-as-empty"
	DefaultLogLevel      = "info"
)

// Settings is the resolved configuration.
type Settings struct {
	DBPath          string
	WebhookURL      string
	Username        string
	Timeout         time.Duration
	MaxDaysBack     int
	TrendDays       int
	OnUnavailable   string
	Title           string
	NotifyOnFailure bool
	LogLevel        string
	LedgerPath      string
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Timeout:       DefaultTimeout,
		MaxDaysBack:   DefaultMaxDaysBack,
		TrendDays:     DefaultTrendDays,
		OnUnavailable: DefaultOnUnavailable,
		LogLevel:      DefaultLogLevel,
		LedgerPath:    DefaultLedgerPath(),
	}
}

// ApplyFile overlays values present in the TOML file.
func (s *Settings) ApplyFile(fc FileConfig) error {
	setString(&s.DBPath, fc.Source.DBPath)
	setString(&s.WebhookURL, fc.Delivery.WebhookURL)
	setString(&s.Username, fc.Delivery.Username)
	if fc.Delivery.Timeout != nil {
		d, err := time.ParseDuration(*fc.Delivery.Timeout)
		if err != nil {
			return fmt.Errorf("delivery.timeout: %w", err)
		}
		s.Timeout = d
	}
	setInt(&s.MaxDaysBack, fc.Report.MaxDaysBack)
	setInt(&s.TrendDays, fc.Report.TrendDays)
	setString(&s.OnUnavailable, fc.Report.OnUnavailable)
	setString(&s.Title, fc.Report.Title)
	if fc.Notify.OnFailure != nil {
		s.NotifyOnFailure = *fc.Notify.OnFailure
	}
	setString(&s.LogLevel, fc.Log.Level)
	return nil
}

// ApplyEnv overlays environment overrides. DISCORD_WEBHOOK_URL is honored
// when MINEDIGEST_WEBHOOK_URL is unset. Under GitHub Actions the event store
// defaults to gsm.db in the working directory.
func (s *Settings) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvDBPath)); v != "" {
		s.DBPath = v
	}
	if v := strings.TrimSpace(getenv(EnvWebhookURL)); v != "" {
		s.WebhookURL = v
	} else if v := strings.TrimSpace(getenv(EnvDiscordWebhook)); v != "" && s.WebhookURL == "" {
		s.WebhookURL = v
	}
	if s.DBPath == "" && InGitHubActions(getenv) {
		s.DBPath = "gsm.db"
	}
}

// InGitHubActions reports whether the process runs as a GitHub Actions job.
func InGitHubActions(getenv func(string) string) bool {
	return getenv(EnvGitHubActions) == "true"
}

type legacyConfig struct {
	DBPath     string `json:"db_path"`
	WebhookURL string `json:"webhook_url"`
}

// ApplyLegacy fills unset values from the legacy JSON config.
// A missing file is not an error.
func (s *Settings) ApplyLegacy(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	var lc legacyConfig
	if err := json.Unmarshal(raw, &lc); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if s.DBPath == "" {
		s.DBPath = lc.DBPath
	}
	if s.WebhookURL == "" {
		s.WebhookURL = lc.WebhookURL
	}
	return nil
}

// ResolveDBPath falls back to the GameSentenceMiner default location.
func (s *Settings) ResolveDBPath() {
	if s.DBPath == "" {
		s.DBPath = DefaultEventStorePath()
	}
}

// Validate checks the resolved settings. The webhook is only required when
// the run delivers to it.
func (s Settings) Validate(needWebhook bool) error {
	if s.DBPath == "" {
		return fmt.Errorf("%w: source.db_path is not set", ErrMissing)
	}
	if _, err := os.Stat(s.DBPath); err != nil {
		return fmt.Errorf("%w: source.db_path %s: %v", ErrMissing, s.DBPath, err)
	}
	if needWebhook && s.WebhookURL == "" {
		return fmt.Errorf("%w: delivery.webhook_url is not set", ErrMissing)
	}
	if s.MaxDaysBack <= 0 {
		return fmt.Errorf("report.max_days_back must be > 0")
	}
	if s.TrendDays <= 0 {
		return fmt.Errorf("report.trend_days must be > 0")
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("delivery.timeout must be > 0")
	}
	return nil
}

func setString(target, value *string) {
	if value != nil {
		*target = *value
	}
}

func setInt(target, value *int) {
	if value != nil {
		*target = *value
	}
}

// Template returns the commented default config file.
func Template() string {
	return fmt.Sprintf(`# minedigest configuration
# Uncomment a value to enable it. CLI flags and environment override config values.

[source]
# db_path = ""                 # GameSentenceMiner gsm.db (auto-detected when empty)

[delivery]
# webhook_url = ""             # Discord webhook (or set %s)
# timeout = %q
# username = ""

[report]
# max_days_back = %d            # Catch-up lookback in days
# trend_days = %d              # Days in the trend image
# on_unavailable = %q  # "treat-as-empty" or "fail"
# title = "🎮 Daily Mining Report"

[notify]
# on_failure = false           # Desktop notification when a day is not sent

[log]
# level = %q                # debug, info, warn, error
`,
		EnvWebhookURL,
		DefaultTimeout.String(),
		DefaultMaxDaysBack,
		DefaultTrendDays,
		DefaultOnUnavailable,
		DefaultLogLevel,
	)
}
