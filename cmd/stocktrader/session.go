package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"stock-trader-go/internal/config"
	"stock-trader-go/internal/daterange"
	"stock-trader-go/internal/datasource"
	"stock-trader-go/internal/metrics"
	"stock-trader-go/internal/report"
	"stock-trader-go/internal/util"
)

// globals are the flags shared by every subcommand. Non-empty values override the config file.
type globals struct {
	configPath string
	dataSource string
	dataFolder string
	apiKey     string
	tickerFile string
	tickers    string
	start      string
	end        string
	last       string
	logLevel   string
	outputPath string
}

func (g *globals) register(fs *flag.FlagSet) {
	fs.StringVar(&g.configPath, "config", "config.yaml", "YAML configuration file; missing file means defaults")
	fs.StringVar(&g.dataSource, "data-source", "", fmt.Sprintf("source for OHLC data, one of %v", datasource.Kinds()))
	fs.StringVar(&g.dataFolder, "data-folder", "", "directory of <ticker>.us.txt files for the local source")
	fs.StringVar(&g.apiKey, "alpha-vantage-api-key", "", "Alpha Vantage API key (also ALPHA_VANTAGE_API_KEY)")
	fs.StringVar(&g.tickerFile, "ticker-list-file", "", "file with one ticker per line")
	fs.StringVar(&g.tickers, "tickers", "", "comma-separated tickers, added to the ticker file")
	fs.StringVar(&g.start, "start", "", "start date time in ISO-8601 format")
	fs.StringVar(&g.end, "end", "", "end date time in ISO-8601 format")
	fs.StringVar(&g.last, "last", "", "analyze last days/months/years back, e.g. 30d, 6m, 5y")
	fs.StringVar(&g.logLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&g.outputPath, "output", "", "directory for reports and charts")
}

// session is handed to every command; setup resolves configuration once.
type session struct {
	globals *globals
	in      *bufio.Reader
	out     io.Writer
	err     error

	cfg     *config.Config
	log     zerolog.Logger
	loader  datasource.Loader
	tickers []string
	window  daterange.Range
	store   report.Store
	metrics *http.Server
}

func (s *session) setup() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.LoadOrDefault(s.globals.configPath)
	if err != nil {
		return err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return err
	}
	s.override(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.cfg = cfg
	s.log = util.NewConsoleLogger(cfg.App.LogLevel)

	if cfg.App.MetricsAddr != "" {
		s.metrics = metrics.Serve(cfg.App.MetricsAddr, s.log)
		s.log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")
	}

	if cfg.Data.Source == datasource.KindAlphaVantage && cfg.Data.AlphaVantageAPIKey == "" {
		cfg.Data.AlphaVantageAPIKey = promptString(s.in, s.out, "Alpha Vantage API key", "")
	}
	src, err := datasource.Build(cfg.Data.Source, datasource.Options{
		Folder:              cfg.Data.Folder,
		AlphaVantageAPIKey:  cfg.Data.AlphaVantageAPIKey,
		YahooBaseURL:        cfg.Data.YahooBaseURL,
		AlphaVantageBaseURL: cfg.Data.AlphaVantageBaseURL,
	})
	if err != nil {
		return err
	}
	if s.loader, err = datasource.NewLoader(cfg.Concurrency.Mode, cfg.Concurrency.Workers, src, s.log); err != nil {
		return err
	}

	if s.tickers, err = s.resolveTickers(); err != nil {
		return err
	}
	if s.window, err = daterange.Resolve(cfg.Backtest.Last, cfg.Backtest.Start, cfg.Backtest.End, time.Now()); err != nil {
		return err
	}

	s.store = report.NewNoopStore()
	if cfg.Report.SQLitePath != "" {
		store, err := report.NewSQLiteStore(cfg.Report.SQLitePath)
		if err != nil {
			return err
		}
		s.store = store
	}
	s.log.Debug().Str("source", src.Name()).Strs("tickers", s.tickers).Str("range", s.window.String()).Msg("session ready")
	return nil
}

func (s *session) override(cfg *config.Config) {
	g := s.globals
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Data.Source, g.dataSource)
	set(&cfg.Data.Folder, g.dataFolder)
	set(&cfg.Data.AlphaVantageAPIKey, g.apiKey)
	set(&cfg.Backtest.TickerFile, g.tickerFile)
	set(&cfg.App.LogLevel, g.logLevel)
	set(&cfg.Report.OutputPath, g.outputPath)
	if g.last != "" || g.start != "" || g.end != "" {
		cfg.Backtest.Last, cfg.Backtest.Start, cfg.Backtest.End = g.last, g.start, g.end
	}
	if g.tickers != "" {
		cfg.Backtest.Tickers = append(cfg.Backtest.Tickers, splitComma(g.tickers)...)
	}
}

func (s *session) resolveTickers() ([]string, error) {
	tickers := append([]string(nil), s.cfg.Backtest.Tickers...)
	if s.cfg.Backtest.TickerFile == "" && len(tickers) == 0 {
		s.cfg.Backtest.TickerFile = promptString(s.in, s.out, "Ticker list file", "")
	}
	if s.cfg.Backtest.TickerFile != "" {
		fromFile, err := datasource.ReadTickerFile(s.cfg.Backtest.TickerFile)
		if err != nil {
			return nil, err
		}
		tickers = append(tickers, fromFile...)
	}
	tickers = lo.Uniq(tickers)
	if len(tickers) == 0 {
		return nil, fmt.Errorf("no tickers configured")
	}
	return tickers, nil
}

func (s *session) close() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.log.Warn().Err(err).Msg("close store")
		}
	}
	if s.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.metrics.Shutdown(ctx)
	}
}

// fromArgs unwraps the session passed through Commander.Execute.
func fromArgs(args []interface{}) *session {
	if len(args) == 0 {
		return nil
	}
	s, _ := args[0].(*session)
	return s
}
