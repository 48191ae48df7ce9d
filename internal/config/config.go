package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/teluguvibes/curator-cli/internal/ranking"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	TMDB      TMDBConfig      `yaml:"tmdb" mapstructure:"tmdb"`
	Wikidata  WikidataConfig  `yaml:"wikidata" mapstructure:"wikidata"`
	Wikipedia WikipediaConfig `yaml:"wikipedia" mapstructure:"wikipedia"`
	Commons   CommonsConfig   `yaml:"commons" mapstructure:"commons"`
	Discovery DiscoveryConfig `yaml:"discovery" mapstructure:"discovery"`
	Ranking   ranking.Config  `yaml:"ranking" mapstructure:"ranking"`
	Safety    SafetyConfig    `yaml:"safety" mapstructure:"safety"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// TMDBConfig holds TMDB API settings. An empty key soft-disables the
// connector rather than failing the run.
type TMDBConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// WikidataConfig holds SPARQL endpoint settings.
type WikidataConfig struct {
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
}

// WikipediaConfig holds the REST summary endpoint settings.
type WikipediaConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// CommonsConfig holds the Wikimedia Commons API settings.
type CommonsConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// DiscoveryConfig configures the discovery and refresh phases.
type DiscoveryConfig struct {
	Limit        int      `yaml:"limit" mapstructure:"limit"`
	Types        []string `yaml:"types" mapstructure:"types"`
	ThrottleMs   int      `yaml:"throttle_ms" mapstructure:"throttle_ms"`
	RefreshLimit int      `yaml:"refresh_limit" mapstructure:"refresh_limit"`
}

// SafetyConfig configures the keyword gate. An empty KeywordsFile means
// the built-in curated lists.
type SafetyConfig struct {
	KeywordsFile string `yaml:"keywords_file" mapstructure:"keywords_file"`
}

// ServerConfig configures the engagement webhook server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("CURATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "curator.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("tmdb.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("wikidata.endpoint", "https://query.wikidata.org/sparql")
	v.SetDefault("wikipedia.base_url", "https://en.wikipedia.org/api/rest_v1")
	v.SetDefault("commons.base_url", "https://commons.wikimedia.org/w/api.php")
	v.SetDefault("discovery.limit", 200)
	v.SetDefault("discovery.types", []string{"actress", "anchor", "model", "influencer"})
	v.SetDefault("discovery.throttle_ms", 500)
	v.SetDefault("discovery.refresh_limit", 50)

	rk := ranking.DefaultConfig()
	v.SetDefault("ranking.popularity_weight", rk.PopularityWeight)
	v.SetDefault("ranking.tmdb_weight", rk.TMDBWeight)
	v.SetDefault("ranking.trend_weight", rk.TrendWeight)
	v.SetDefault("ranking.engagement_weight", rk.EngagementWeight)
	v.SetDefault("ranking.glamour_weight", rk.GlamourWeight)
	v.SetDefault("ranking.embed_safety_bonus", rk.EmbedSafetyBonus)
	v.SetDefault("ranking.recent_activity_bonus", rk.RecentActivityBonus)
	v.SetDefault("ranking.min_score_for_eligibility", rk.MinScoreForEligibility)
	v.SetDefault("ranking.min_social_profiles", rk.MinSocialProfiles)
	v.SetDefault("ranking.top_n", rk.TopN)

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

// Validate checks that the configuration can support the given command
// mode. Modes: "discover", "ingest", "learn", "serve".
func (c *Config) Validate(mode string) error {
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return eris.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if c.Store.DatabaseURL == "" {
		return eris.New("config: store.database_url is required")
	}

	switch mode {
	case "discover", "ingest":
		if c.Wikidata.Endpoint == "" {
			return eris.New("config: wikidata.endpoint is required")
		}
		if len(c.Discovery.Types) == 0 {
			return eris.New("config: discovery.types must not be empty")
		}
		if c.Discovery.ThrottleMs < 0 {
			return eris.New("config: discovery.throttle_ms must not be negative")
		}
		if err := ranking.Validate(c.Ranking); err != nil {
			return err
		}
	case "learn":
		if err := ranking.Validate(c.Ranking); err != nil {
			return err
		}
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			return eris.Errorf("config: invalid server port %d", c.Server.Port)
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}
	return nil
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
