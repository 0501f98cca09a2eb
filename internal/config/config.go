// Package config loads and validates harvester configuration via Viper.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all harvester configuration knobs loaded via Viper.
type Config struct {
	Harvest HarvestConfig `mapstructure:"harvest"`
	API     APIConfig     `mapstructure:"api"`
	Dataset DatasetConfig `mapstructure:"dataset"`
	Blobs   BlobsConfig   `mapstructure:"blobs"`
	PubSub  PubSubConfig  `mapstructure:"pubsub"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// HarvestConfig governs the crawl itself: seeds, mode, pacing, selectors.
type HarvestConfig struct {
	StartURLs             []string      `mapstructure:"start_urls"`
	ExperienceIDs         []any         `mapstructure:"experience_ids"`
	UseAPI                bool          `mapstructure:"use_api"`
	UseBrowser            bool          `mapstructure:"use_browser"`
	CheckPlaceDetails     bool          `mapstructure:"check_place_details"`
	SameHostOnly          bool          `mapstructure:"same_host_only"`
	Concurrency           int           `mapstructure:"concurrency"`
	MaxRequests           int           `mapstructure:"max_requests"`
	UserAgent             string        `mapstructure:"user_agent"`
	RequestTimeoutSeconds int           `mapstructure:"request_timeout_seconds"`
	GameURLTemplate       string        `mapstructure:"game_url_template"`
	Browser               BrowserConfig `mapstructure:"browser"`
	PlayingSelectors      []string      `mapstructure:"playing_selectors"`
	VisitsSelectors       []string      `mapstructure:"visits_selectors"`
}

// BrowserConfig configures the rendered-fetch subsystem.
type BrowserConfig struct {
	NavTimeoutSeconds    int     `mapstructure:"nav_timeout_seconds"`
	SettleTimeoutSeconds int     `mapstructure:"settle_timeout_seconds"`
	PageQPS              float64 `mapstructure:"page_qps"`
}

// APIConfig holds the upstream game API endpoints.
type APIConfig struct {
	PlaceDetailsURL string `mapstructure:"place_details_url"`
	GamesURL        string `mapstructure:"games_url"`
}

// DatasetConfig selects the append-only record sink.
type DatasetConfig struct {
	Kind string `mapstructure:"kind"` // file | postgres | none
	Path string `mapstructure:"path"`
	DSN  string `mapstructure:"dsn"`
}

// BlobsConfig selects the keyed raw-payload store.
type BlobsConfig struct {
	Kind   string `mapstructure:"kind"` // local | gcs | memory | none
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
	Dir    string `mapstructure:"dir"`
}

// PubSubConfig holds metadata for publish-subscribe notifications. Leaving
// the project blank disables publishing.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// ServerConfig controls the operational HTTP server. Leaving addr blank
// disables it.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HARVESTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("harvest.use_api", true)
	v.SetDefault("harvest.use_browser", false)
	v.SetDefault("harvest.check_place_details", true)
	v.SetDefault("harvest.same_host_only", true)
	v.SetDefault("harvest.concurrency", 4)
	v.SetDefault("harvest.max_requests", 100)
	v.SetDefault("harvest.user_agent", "experience-harvester/0.1")
	v.SetDefault("harvest.request_timeout_seconds", 15)
	v.SetDefault("harvest.game_url_template", "https://www.roblox.com/games/%s")
	v.SetDefault("harvest.browser.nav_timeout_seconds", 25)
	v.SetDefault("harvest.browser.settle_timeout_seconds", 8)
	v.SetDefault("harvest.browser.page_qps", 1.0)
	v.SetDefault("harvest.playing_selectors", []string{
		"#game-detail-meta-data .playing-count",
		".game-stat.playing .text-lead",
		"[data-testid=\"playing-count\"]",
	})
	v.SetDefault("harvest.visits_selectors", []string{
		"#game-detail-meta-data .visits-count",
		".game-stat.visits .text-lead",
		"[data-testid=\"visits-count\"]",
	})
	v.SetDefault("api.place_details_url", "https://games.roblox.com/v1/games/multiget-place-details")
	v.SetDefault("api.games_url", "https://games.roblox.com/v1/games")
	v.SetDefault("dataset.kind", "file")
	v.SetDefault("dataset.path", "experiences.jsonl")
	v.SetDefault("blobs.kind", "local")
	v.SetDefault("blobs.prefix", "experiences")
	v.SetDefault("blobs.dir", "blobs")
	v.SetDefault("server.addr", "")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Harvest.Concurrency <= 0 {
		return fmt.Errorf("harvest.concurrency must be > 0")
	}
	if c.Harvest.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("harvest.request_timeout_seconds must be > 0")
	}
	if len(c.Harvest.StartURLs) == 0 && len(c.Harvest.ExperienceIDs) == 0 {
		return fmt.Errorf("harvest.start_urls or harvest.experience_ids must be set")
	}
	switch c.Dataset.Kind {
	case "file":
		if c.Dataset.Path == "" {
			return fmt.Errorf("dataset.path must be set for the file dataset")
		}
	case "postgres":
		if c.Dataset.DSN == "" {
			return fmt.Errorf("dataset.dsn must be set for the postgres dataset")
		}
	case "none":
	default:
		return fmt.Errorf("dataset.kind %q is not one of file, postgres, none", c.Dataset.Kind)
	}
	switch c.Blobs.Kind {
	case "gcs":
		if c.Blobs.Bucket == "" {
			return fmt.Errorf("blobs.bucket must be set for the gcs store")
		}
	case "local":
		if c.Blobs.Dir == "" {
			return fmt.Errorf("blobs.dir must be set for the local store")
		}
	case "memory", "none":
	default:
		return fmt.Errorf("blobs.kind %q is not one of local, gcs, memory, none", c.Blobs.Kind)
	}
	if c.PubSub.ProjectID != "" && c.PubSub.TopicName == "" {
		return fmt.Errorf("pubsub.topic_name must be set when pubsub.project_id is set")
	}
	return nil
}

// SeedURLs merges explicit start URLs with URLs expanded from the configured
// experience ids. IDs may arrive as strings, numbers, or objects carrying an
// "id" field, depending on where the config came from.
func (c Config) SeedURLs() []string {
	seeds := make([]string, 0, len(c.Harvest.StartURLs)+len(c.Harvest.ExperienceIDs))
	seeds = append(seeds, c.Harvest.StartURLs...)
	for _, raw := range c.Harvest.ExperienceIDs {
		if id := coerceID(raw); id != "" {
			seeds = append(seeds, fmt.Sprintf(c.Harvest.GameURLTemplate, id))
		}
	}
	return seeds
}

func coerceID(raw any) string {
	switch t := raw.(type) {
	case string:
		return strings.TrimSpace(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatInt(int64(t), 10)
	case map[string]any:
		if id, ok := t["id"]; ok {
			return coerceID(id)
		}
		return ""
	default:
		return ""
	}
}

// RequestTimeout converts the HTTP timeout config into a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Harvest.RequestTimeoutSeconds) * time.Second
}

// NavTimeout bounds one page load in browser mode.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.Harvest.Browser.NavTimeoutSeconds) * time.Second
}

// SettleTimeout bounds the network-idle wait in browser mode.
func (c Config) SettleTimeout() time.Duration {
	return time.Duration(c.Harvest.Browser.SettleTimeoutSeconds) * time.Second
}
