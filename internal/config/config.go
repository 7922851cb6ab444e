package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// AppConfig holds the complete application configuration
type AppConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Scraper    ScraperConfig    `yaml:"scraper"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Proxies    ProxyConfig      `yaml:"proxies"`
	Browser    BrowserConfig    `yaml:"browser"`
	IO         IOConfig         `yaml:"io"`
	Log        LogConfig        `yaml:"log"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// ServerConfig holds the HTTP API configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Mode string `yaml:"mode"`
}

// ScraperConfig holds the per-site scraper configuration
type ScraperConfig struct {
	Timeout            time.Duration `yaml:"timeout"`
	MaxRedirects       int           `yaml:"max_redirects"`
	MaxResults         int           `yaml:"max_results"`
	MaxConcurrentSites int           `yaml:"max_concurrent_sites"`
	UserAgents         []string      `yaml:"user_agents,omitempty"`
	Accept             string        `yaml:"accept"`
	AcceptLanguage     string        `yaml:"accept_language"`
	SearchPaths        []string      `yaml:"search_paths,omitempty"`
	CloudflareBypass   bool          `yaml:"cloudflare_bypass"`
}

// ExtractionConfig holds the selector cascade, tried in order
type ExtractionConfig struct {
	SelectorGroups []string `yaml:"selector_groups,omitempty"`
}

// ProxyConfig holds the proxy configuration
type ProxyConfig struct {
	Enabled bool     `yaml:"enabled"`
	Rotate  bool     `yaml:"rotate"`
	List    []string `yaml:"list"`
	Auth    struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"auth"`
}

// BrowserConfig holds the browser configuration for JavaScript rendering
type BrowserConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Headless  bool          `yaml:"headless"`
	UserAgent string        `yaml:"user_agent"`
	WaitTime  time.Duration `yaml:"wait_time"`
}

// IOConfig holds the CLI input/output configuration
type IOConfig struct {
	InputFile    string `yaml:"input_file"`
	OutputFile   string `yaml:"output_file"`
	OutputFormat string `yaml:"output_format"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TelemetryConfig configures OpenTelemetry trace export over OTLP. The gRPC
// endpoint wins when both are set.
type TelemetryConfig struct {
	Enabled      bool              `yaml:"enabled"`
	ServiceName  string            `yaml:"service_name"`
	HTTPEndpoint string            `yaml:"http_endpoint"`
	GRPCEndpoint string            `yaml:"grpc_endpoint"`
	Headers      map[string]string `yaml:"headers,omitempty"`
}

// Default returns the built-in configuration
func Default() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port: 8080,
			Mode: "release",
		},
		Scraper: ScraperConfig{
			Timeout:            10 * time.Second,
			MaxRedirects:       5,
			MaxResults:         10,
			MaxConcurrentSites: 0,
			UserAgents:         append([]string(nil), DefaultUserAgents...),
			Accept:             DefaultAccept,
			AcceptLanguage:     DefaultAcceptLanguage,
			SearchPaths:        append([]string(nil), DefaultSearchPaths...),
		},
		Extraction: ExtractionConfig{
			SelectorGroups: append([]string(nil), DefaultSelectorGroups...),
		},
		Proxies: ProxyConfig{
			Enabled: false,
			Rotate:  true,
			List:    []string{},
		},
		Browser: BrowserConfig{
			Enabled:   false,
			Headless:  true,
			UserAgent: DefaultUserAgents[0],
			WaitTime:  3 * time.Second,
		},
		IO: IOConfig{
			OutputFile:   "results.json",
			OutputFormat: "json",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "partsearch",
		},
	}
}

// Load loads the configuration from a YAML file on top of the defaults.
// An empty filename yields the defaults. Environment overrides are applied last.
func Load(filename string) (*AppConfig, error) {
	config := Default()

	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, eris.Wrapf(err, "config: read %s", filename)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, eris.Wrapf(err, "config: parse %s", filename)
		}
	}

	config.fillDefaults()

	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadDotEnv loads a .env file into the process environment if one exists.
func LoadDotEnv(filenames ...string) error {
	err := godotenv.Load(filenames...)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// fillDefaults restores defaults for list and limit fields a YAML file blanked out
func (c *AppConfig) fillDefaults() {
	if len(c.Scraper.UserAgents) == 0 {
		c.Scraper.UserAgents = append([]string(nil), DefaultUserAgents...)
	}
	if len(c.Scraper.SearchPaths) == 0 {
		c.Scraper.SearchPaths = append([]string(nil), DefaultSearchPaths...)
	}
	if len(c.Extraction.SelectorGroups) == 0 {
		c.Extraction.SelectorGroups = append([]string(nil), DefaultSelectorGroups...)
	}
	if c.Scraper.MaxResults <= 0 {
		c.Scraper.MaxResults = 10
	}
	if c.Scraper.Timeout <= 0 {
		c.Scraper.Timeout = 10 * time.Second
	}
	if c.Browser.UserAgent == "" {
		c.Browser.UserAgent = c.Scraper.UserAgents[0]
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "partsearch"
	}
}

func (c *AppConfig) applyEnv() error {
	if v := os.Getenv("PARTSEARCH_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return eris.Wrapf(err, "config: PARTSEARCH_PORT %q", v)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("PARTSEARCH_GIN_MODE"); v != "" {
		c.Server.Mode = v
	}
	if v := os.Getenv("PARTSEARCH_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PARTSEARCH_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("PARTSEARCH_PROXIES"); v != "" {
		var list []string
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				list = append(list, p)
			}
		}
		c.Proxies.List = list
		c.Proxies.Enabled = len(list) > 0
	}
	if v := os.Getenv("PARTSEARCH_OTLP_ENDPOINT"); v != "" {
		c.Telemetry.HTTPEndpoint = v
		c.Telemetry.Enabled = true
	}
	if v := os.Getenv("PARTSEARCH_BROWSER"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return eris.Wrapf(err, "config: PARTSEARCH_BROWSER %q", v)
		}
		c.Browser.Enabled = enabled
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
