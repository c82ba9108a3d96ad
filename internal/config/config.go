package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gookit/validate"
	"github.com/spf13/viper"
)

const placeholderAPIKey = "your_api_key_here"

// keyDelimiter separates nested config keys. Rarity labels such as
// "Rare Holo LV.X" contain dots, so viper's default delimiter would split
// them into nested maps.
const keyDelimiter = "::"

type Server struct {
	Port        int      `mapstructure:"port" validate:"required|min:1|max:65535"`
	CORSOrigins []string `mapstructure:"corsOrigins"`
}

type Upstream struct {
	BaseURL        string        `mapstructure:"baseURL" validate:"required"`
	APIKey         string        `mapstructure:"apiKey"`
	Timeout        time.Duration `mapstructure:"timeout" validate:"required"`
	MaxAttempts    int           `mapstructure:"maxAttempts" validate:"required|min:1"`
	InitialBackoff time.Duration `mapstructure:"initialBackoff"`
	RateLimit      float64       `mapstructure:"rateLimit"` // requests per second, 0 disables
	RateBurst      int           `mapstructure:"rateBurst"`
}

type Cache struct {
	MaxEntries int `mapstructure:"maxEntries" validate:"required|min:1"`
}

type Curation struct {
	Window       time.Duration  `mapstructure:"window" validate:"required"`
	FirstBatch   int            `mapstructure:"firstBatch" validate:"required|min:1"`
	NextBatch    int            `mapstructure:"nextBatch" validate:"required|min:1"`
	MaxSets      int            `mapstructure:"maxSets" validate:"required|min:1"`
	Target       int            `mapstructure:"target" validate:"required|min:1"`
	PerSetFetch  int            `mapstructure:"perSetFetch" validate:"required|min:1"`
	PerSetPicks  int            `mapstructure:"perSetPicks" validate:"required|min:1"`
	SecretBonus  int            `mapstructure:"secretBonus"`
	RarityScores map[string]int `mapstructure:"rarityScores"` // keys are matched case-insensitively
	Parallelism  int            `mapstructure:"parallelism"`
}

type Logger struct {
	Level  string `mapstructure:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Format string `mapstructure:"format" validate:"required|in:json,text"`
}

type Metrics struct {
	Enabled bool `mapstructure:"enabled"`
}

type Config struct {
	Server   Server   `mapstructure:"server"`
	Upstream Upstream `mapstructure:"upstream"`
	Cache    Cache    `mapstructure:"cache"`
	Curation Curation `mapstructure:"curation"`
	Logger   Logger   `mapstructure:"logger"`
	Metrics  Metrics  `mapstructure:"metrics"`
}

// HasAPIKey reports whether a real upstream key is configured.
func (u Upstream) HasAPIKey() bool {
	key := strings.TrimSpace(u.APIKey)
	return key != "" && key != placeholderAPIKey
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server::port", 8080)
	v.SetDefault("server::corsOrigins", []string{"http://localhost:5173", "http://localhost:3000"})

	v.SetDefault("upstream::baseURL", "https://api.pokemontcg.io/v2")
	v.SetDefault("upstream::apiKey", "")
	v.SetDefault("upstream::timeout", 12*time.Second)
	v.SetDefault("upstream::maxAttempts", 3)
	v.SetDefault("upstream::initialBackoff", time.Second)
	v.SetDefault("upstream::rateLimit", 10.0)
	v.SetDefault("upstream::rateBurst", 20)

	v.SetDefault("cache::maxEntries", 10000)

	v.SetDefault("curation::window", 6*time.Hour)
	v.SetDefault("curation::firstBatch", 6)
	v.SetDefault("curation::nextBatch", 2)
	v.SetDefault("curation::maxSets", 12)
	v.SetDefault("curation::target", 40)
	v.SetDefault("curation::perSetFetch", 60)
	v.SetDefault("curation::perSetPicks", 10)
	v.SetDefault("curation::secretBonus", 1000)
	v.SetDefault("curation::parallelism", 6)

	v.SetDefault("logger::level", "info")
	v.SetDefault("logger::format", "json")

	v.SetDefault("metrics::enabled", true)
}

func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("server::port", "PORT")
	_ = v.BindEnv("upstream::baseURL", "UPSTREAM_BASE_URL")
	_ = v.BindEnv("upstream::apiKey", "POKEMONTCG_API_KEY")
	_ = v.BindEnv("upstream::rateLimit", "UPSTREAM_RATE_LIMIT")
	_ = v.BindEnv("cache::maxEntries", "CACHE_MAX_ENTRIES")
	_ = v.BindEnv("logger::level", "LOG_LEVEL")
	_ = v.BindEnv("logger::format", "LOG_FORMAT")
	_ = v.BindEnv("metrics::enabled", "METRICS_ENABLED")
	_ = v.BindEnv("server::corsOriginsList", "CORS_ALLOWED_ORIGINS")
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in increasing precedence. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	setDefaults(v)
	bindEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	// Comma separated env value wins over the list default.
	if origins := v.GetString("server::corsOriginsList"); origins != "" {
		conf.Server.CORSOrigins = splitList(origins)
	}
	if len(conf.Curation.RarityScores) == 0 {
		conf.Curation.RarityScores = DefaultRarityScores()
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// Validate checks struct tags on every section.
func (c *Config) Validate() error {
	sections := []any{&c.Server, &c.Upstream, &c.Cache, &c.Curation, &c.Logger}
	for _, s := range sections {
		v := validate.Struct(s)
		if !v.Validate() {
			return fmt.Errorf("invalid config: %w", v.Errors)
		}
	}
	if c.Curation.FirstBatch > c.Curation.MaxSets {
		return errors.New("invalid config: curation.firstBatch exceeds curation.maxSets")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
