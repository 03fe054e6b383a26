package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/norwind/bingwall/internal/model"
)

// Limits imposed by the archive API and by politeness toward it.
const (
	// MaxHistoryDays is the deepest day offset the archive serves.
	MaxHistoryDays = 8

	// MaxConcurrentRequestsLimit caps metadata-request parallelism;
	// configured values beyond it are clamped, not rejected.
	MaxConcurrentRequestsLimit = 5

	// DefaultConcurrentRequests is the outer market-level bound.
	DefaultConcurrentRequests = 3

	// DefaultConcurrentDownloads is the global image-transfer bound.
	DefaultConcurrentDownloads = 5
)

// Settings holds all configuration options.
type Settings struct {
	// Collection settings
	DataPath          string `json:"data_path"`
	TargetMarket      string `json:"target_market"`
	CollectAllMarkets bool   `json:"collect_all_markets"`
	DaysToCollect     int    `json:"days_to_collect"`
	Resolution        string `json:"resolution"` // UHD4K, QHD2K, FullHD, HD, Standard
	PrettyJSON        bool   `json:"pretty_json"`

	// Storage backend: "files" or "sqlite"
	Storage      string `json:"storage"`
	DatabasePath string `json:"database_path"`

	// Download settings
	DownloadsPath          string `json:"downloads_path"`
	MaxConcurrentRequests  int    `json:"max_concurrent_requests"`
	MaxConcurrentDownloads int    `json:"max_concurrent_downloads"`

	// Logging
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"` // console or json
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	wd, _ := os.Getwd()
	return &Settings{
		DataPath:          filepath.Join(wd, "archive"),
		TargetMarket:      string(model.MarketChina),
		CollectAllMarkets: false,
		DaysToCollect:     1,
		Resolution:        "UHD4K",
		PrettyJSON:        true,

		Storage:      "files",
		DatabasePath: filepath.Join(wd, "archive", "bingwall.db"),

		DownloadsPath:          filepath.Join(wd, "archive"),
		MaxConcurrentRequests:  DefaultConcurrentRequests,
		MaxConcurrentDownloads: DefaultConcurrentDownloads,

		LogLevel:  "info",
		LogFormat: "console",
	}
}

// Load reads settings from a JSON file. A missing file yields defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}
	settings.Clamp()

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overlays the automation-mode environment variables onto s.
// It only takes effect when AUTO_MODE=true, the collector's headless
// contract:
//
//	AUTO_MODE=true COLLECT_ALL_COUNTRIES=true COLLECT_DAYS=3 bingwall
//
// Recognized variables: COLLECT_ALL_COUNTRIES, TARGET_COUNTRY (display
// name, e.g. "Japan"), COLLECT_DAYS, CONCURRENT_REQUESTS, JSON_FORMAT
// ("compressed" disables indentation).
func (s *Settings) ApplyEnv() {
	if os.Getenv("AUTO_MODE") != "true" {
		return
	}

	s.CollectAllMarkets = os.Getenv("COLLECT_ALL_COUNTRIES") == "true"

	if name := os.Getenv("TARGET_COUNTRY"); !s.CollectAllMarkets && name != "" {
		if m, ok := model.MarketByName(name); ok {
			s.TargetMarket = string(m.Code)
		}
	}

	if v, err := strconv.Atoi(os.Getenv("COLLECT_DAYS")); err == nil && v >= 1 {
		s.DaysToCollect = v
	}

	if v, err := strconv.Atoi(os.Getenv("CONCURRENT_REQUESTS")); err == nil && v >= 1 {
		s.MaxConcurrentRequests = v
	}

	s.PrettyJSON = os.Getenv("JSON_FORMAT") != "compressed"

	s.Clamp()
}

// Clamp forces every bound into its valid range so the orchestrator and
// download queue never see an out-of-range value.
func (s *Settings) Clamp() {
	if s.DaysToCollect < 1 {
		s.DaysToCollect = 1
	}
	if s.DaysToCollect > MaxHistoryDays {
		s.DaysToCollect = MaxHistoryDays
	}
	if s.MaxConcurrentRequests < 1 {
		s.MaxConcurrentRequests = DefaultConcurrentRequests
	}
	if s.MaxConcurrentRequests > MaxConcurrentRequestsLimit {
		s.MaxConcurrentRequests = MaxConcurrentRequestsLimit
	}
	if s.MaxConcurrentDownloads < 1 {
		s.MaxConcurrentDownloads = DefaultConcurrentDownloads
	}
}

// Markets resolves the configured target market set: one market, or every
// supported market when CollectAllMarkets is set.
func (s *Settings) Markets() []model.Market {
	if s.CollectAllMarkets {
		return model.AllMarkets()
	}
	if m, ok := model.MarketByCode(model.MarketCode(s.TargetMarket)); ok {
		return []model.Market{m}
	}
	m, _ := model.MarketByCode(model.MarketChina)
	return []model.Market{m}
}
