package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Default dataset locations on the city and census open-data portals.
const (
	DefaultLicensesURL      = "https://data.cityofchicago.org/api/views/r5kz-chrr/rows.csv?accessType=DOWNLOAD&api_foundry=true"
	DefaultTractsURL        = "https://www2.census.gov/geo/docs/maps-data/data/gazetteer/census_tracts_list_17.txt"
	DefaultNeighborhoodsURL = "https://data.cityofchicago.org/api/views/igwz-8jzy/rows.csv?accessType=DOWNLOAD&api_foundry=true"
	DefaultSocioeconomicURL = "https://data.cityofchicago.org/api/views/kn9c-c2s2/rows.csv?accessType=DOWNLOAD&api_foundry=true"
)

// Config holds the full application configuration.
type Config struct {
	Data    DataConfig    `yaml:"data" mapstructure:"data"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Report  ReportConfig  `yaml:"report" mapstructure:"report"`
	Runlog  RunlogConfig  `yaml:"runlog" mapstructure:"runlog"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// DataConfig configures dataset acquisition and the on-disk cache.
type DataConfig struct {
	CacheDir          string `yaml:"cache_dir" mapstructure:"cache_dir"`
	TractMapPath      string `yaml:"tract_map_path" mapstructure:"tract_map_path"`
	CountyGEOIDPrefix string `yaml:"county_geoid_prefix" mapstructure:"county_geoid_prefix"`
	LicensesURL       string `yaml:"licenses_url" mapstructure:"licenses_url"`
	TractsURL         string `yaml:"tracts_url" mapstructure:"tracts_url"`
	NeighborhoodsURL  string `yaml:"neighborhoods_url" mapstructure:"neighborhoods_url"`
	SocioeconomicURL  string `yaml:"socioeconomic_url" mapstructure:"socioeconomic_url"`
	UserAgent         string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs       int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries        int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// OutputConfig selects where report files are written.
type OutputConfig struct {
	Driver string   `yaml:"driver" mapstructure:"driver"`
	Dir    string   `yaml:"dir" mapstructure:"dir"`
	S3     S3Config `yaml:"s3" mapstructure:"s3"`
}

// S3Config configures the S3 report destination.
type S3Config struct {
	Bucket    string `yaml:"bucket" mapstructure:"bucket"`
	Region    string `yaml:"region" mapstructure:"region"`
	Endpoint  string `yaml:"endpoint" mapstructure:"endpoint"`
	PathStyle bool   `yaml:"path_style" mapstructure:"path_style"`
	Prefix    string `yaml:"prefix" mapstructure:"prefix"`
}

// ReportConfig tunes report generation.
type ReportConfig struct {
	CriticalIdentity string `yaml:"critical_identity" mapstructure:"critical_identity"`
}

// RunlogConfig configures the category run ledger.
type RunlogConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// MetricsConfig configures run metrics export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile" mapstructure:"textfile"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. A .env file in the
// working directory is loaded first; variables already set win.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("OASIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.cache_dir", filepath.Join(os.TempDir(), "oasis"))
	v.SetDefault("data.tract_map_path", filepath.Join("data", "census_tract_to_neighborhood.csv"))
	v.SetDefault("data.county_geoid_prefix", "17031")
	v.SetDefault("data.licenses_url", DefaultLicensesURL)
	v.SetDefault("data.tracts_url", DefaultTractsURL)
	v.SetDefault("data.neighborhoods_url", DefaultNeighborhoodsURL)
	v.SetDefault("data.socioeconomic_url", DefaultSocioeconomicURL)
	v.SetDefault("data.user_agent", "oasis/1.0")
	v.SetDefault("data.timeout_secs", 120)
	v.SetDefault("data.max_retries", 3)
	v.SetDefault("output.driver", "fs")
	v.SetDefault("output.dir", "./")
	v.SetDefault("output.s3.region", "us-east-1")
	v.SetDefault("output.s3.bucket", "")
	v.SetDefault("output.s3.endpoint", "")
	v.SetDefault("output.s3.path_style", false)
	v.SetDefault("output.s3.prefix", "")
	v.SetDefault("report.critical_identity", "business")
	v.SetDefault("runlog.driver", "sqlite")
	v.SetDefault("runlog.database_url", "oasis.db")
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Validate checks option values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Output.Driver {
	case "fs":
		if c.Output.Dir == "" {
			return eris.New("config: output.dir is required for the fs driver")
		}
	case "s3":
		if c.Output.S3.Bucket == "" {
			return eris.New("config: output.s3.bucket is required for the s3 driver")
		}
	default:
		return eris.Errorf("config: unknown output.driver %q (valid: fs, s3)", c.Output.Driver)
	}

	switch c.Runlog.Driver {
	case "sqlite", "postgres":
		if c.Runlog.DatabaseURL == "" {
			return eris.Errorf("config: runlog.database_url is required for the %s driver", c.Runlog.Driver)
		}
	case "none":
	default:
		return eris.Errorf("config: unknown runlog.driver %q (valid: sqlite, postgres, none)", c.Runlog.Driver)
	}

	switch c.Report.CriticalIdentity {
	case "", "business", "coordinate":
	default:
		return eris.Errorf("config: unknown report.critical_identity %q (valid: business, coordinate)", c.Report.CriticalIdentity)
	}

	if len(c.Data.CountyGEOIDPrefix) != 5 {
		return eris.Errorf("config: data.county_geoid_prefix must be a 5-digit state+county FIPS code, got %q", c.Data.CountyGEOIDPrefix)
	}
	if c.Data.TimeoutSecs < 0 || c.Data.MaxRetries < 0 {
		return eris.New("config: data.timeout_secs and data.max_retries must not be negative")
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
