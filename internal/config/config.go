// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "STOCK_TRADER_"

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Data selects where price history comes from.
type Data struct {
	Source              string `yaml:"source"`
	Folder              string `yaml:"folder"`
	AlphaVantageAPIKey  string `yaml:"alpha_vantage_api_key"`
	YahooBaseURL        string `yaml:"yahoo_base_url"`
	AlphaVantageBaseURL string `yaml:"alpha_vantage_base_url"`
}

// Backtest holds the run parameters. Empty strategy or zero capital are
// prompted for by the CLI.
type Backtest struct {
	Strategy       string   `yaml:"strategy"`
	InitialCapital float64  `yaml:"initial_capital"`
	RiskFreeRate   float64  `yaml:"risk_free_rate"`
	Tickers        []string `yaml:"tickers"`
	TickerFile     string   `yaml:"ticker_file"`
	Start          string   `yaml:"start"`
	End            string   `yaml:"end"`
	Last           string   `yaml:"last"`
}

// Report configures where results land.
type Report struct {
	OutputPath   string `yaml:"output_path"`
	SQLitePath   string `yaml:"sqlite_path"`
	JournalFills bool   `yaml:"journal_fills"`
}

// Concurrency picks the loader and bounds fan-out.
type Concurrency struct {
	Mode    string `yaml:"mode"`
	Workers int    `yaml:"workers"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App         App         `yaml:"app"`
	Data        Data        `yaml:"data"`
	Backtest    Backtest    `yaml:"backtest"`
	Report      Report      `yaml:"report"`
	Concurrency Concurrency `yaml:"concurrency"`
}

// Default returns a configuration that runs against ./data with reports in ./reports.
func Default() *Config {
	return &Config{
		App:         App{Name: "stock-trader", Env: "dev", LogLevel: "info"},
		Data:        Data{Source: "local", Folder: "data"},
		Backtest:    Backtest{RiskFreeRate: 0.03},
		Report:      Report{OutputPath: "reports"},
		Concurrency: Concurrency{Mode: "threads", Workers: 4},
	}
}

// Load reads a YAML file from disk on top of Default.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	config := Default()
	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return config, nil
}

// LoadOrDefault is Load, except that a missing file yields Default.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// LoadDotEnv loads .env style files into the process environment. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// ApplyEnv overlays STOCK_TRADER_* variables on cfg. ALPHA_VANTAGE_API_KEY is
// honoured without the prefix as well.
func ApplyEnv(cfg *Config) error {
	strs := map[string]*string{
		"LOG_LEVEL":              &cfg.App.LogLevel,
		"METRICS_ADDR":           &cfg.App.MetricsAddr,
		"DATA_SOURCE":            &cfg.Data.Source,
		"SOURCE_DATA_FOLDER":     &cfg.Data.Folder,
		"ALPHA_VANTAGE_BASE_URL": &cfg.Data.AlphaVantageBaseURL,
		"YAHOO_BASE_URL":         &cfg.Data.YahooBaseURL,
		"STRATEGY":               &cfg.Backtest.Strategy,
		"TICKER_FILE":            &cfg.Backtest.TickerFile,
		"LAST":                   &cfg.Backtest.Last,
		"REPORT_OUTPUT_PATH":     &cfg.Report.OutputPath,
		"SQLITE_PATH":            &cfg.Report.SQLitePath,
		"CONCURRENCY":            &cfg.Concurrency.Mode,
	}
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		cfg.Data.AlphaVantageAPIKey = v
	}
	strs["ALPHA_VANTAGE_API_KEY"] = &cfg.Data.AlphaVantageAPIKey
	for key, dst := range strs {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv(EnvPrefix + "INITIAL_CAPITAL"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sINITIAL_CAPITAL: %w", EnvPrefix, err)
		}
		cfg.Backtest.InitialCapital = f
	}
	if v := os.Getenv(EnvPrefix + "WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sWORKERS: %w", EnvPrefix, err)
		}
		cfg.Concurrency.Workers = n
	}
	if v := os.Getenv(EnvPrefix + "TICKERS"); v != "" {
		cfg.Backtest.Tickers = splitList(v)
	}
	return nil
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	var errs []error
	if c.Backtest.InitialCapital < 0 {
		errs = append(errs, fmt.Errorf("backtest.initial_capital must not be negative"))
	}
	if c.Concurrency.Workers < 0 {
		errs = append(errs, fmt.Errorf("concurrency.workers must not be negative"))
	}
	switch strings.ToLower(c.Concurrency.Mode) {
	case "", "single", "threads":
	default:
		errs = append(errs, fmt.Errorf("concurrency.mode %q: want single or threads", c.Concurrency.Mode))
	}
	if c.Backtest.Last != "" && (c.Backtest.Start != "" || c.Backtest.End != "") {
		errs = append(errs, fmt.Errorf("backtest.last cannot be combined with start/end"))
	}
	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
