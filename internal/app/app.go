package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/five82/glucobar/internal/config"
	"github.com/five82/glucobar/internal/fetcher"
	"github.com/five82/glucobar/internal/logging"
	"github.com/five82/glucobar/internal/mqttsink"
	"github.com/five82/glucobar/internal/nightscout"
	"github.com/five82/glucobar/internal/prefs"
	"github.com/five82/glucobar/internal/state"
	"github.com/five82/glucobar/internal/ui"
)

// Version is reported in logs and set at build time.
var Version = "dev"

// Options configure the glucobar application.
type Options struct {
	ConfigPath string
	PrefsPath  string    // empty uses ~/.config/glucobar/prefs.toml
	EnvFile    string    // empty tries ./.env
	PollEvery  int       // seconds; zero uses the configured interval
	Once       bool      // print the status line and exit
	Stdout     io.Writer // nil uses os.Stdout; Once mode only
}

const onceTimeout = 15 * time.Second

// Run boots glucobar until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	if _, err := config.LoadEnvFile(opts.EnvFile); err != nil {
		return err
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.New(logging.Options{Path: cfg.LogFile, Level: cfg.LogLevel, Version: Version})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = closer.Close() }()

	client, err := nightscout.NewClient(cfg.NightscoutURL)
	if err != nil {
		return fmt.Errorf("init nightscout client: %w", err)
	}
	logger.Info("starting", "url", client.EntriesURL(), "unit", cfg.Unit.String(), "once", opts.Once)

	store := state.NewStore(cfg.Unit, cfg.StaleAfter)
	f := fetcher.New(fetcher.Options{
		Client:        client,
		Unit:          cfg.Unit,
		Policy:        cfg.Policy(),
		RefreshPeriod: cfg.RefreshPeriod,
		Logger:        logger,
		Store:         store,
	})

	if opts.Once {
		return printOnce(ctx, f, store, cfg.HideStale, opts.Stdout)
	}

	interval := cfg.PollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	if cfg.MQTT.Enabled() {
		startSink(ctx, cfg, store, logger)
	}

	// Start background poller; its first tick fetches immediately.
	StartPoller(ctx, f, interval, logger)

	userPrefs := prefs.Load(opts.PrefsPath)
	return ui.Run(ui.Options{
		Context:   ctx,
		Store:     store,
		Refresher: f,
		SiteURL:   client.BaseURL(),
		LogPath:   cfg.LogFile,
		HideStale: cfg.HideStale,
		ThemeName: userPrefs.Theme,
		ShowLogs:  userPrefs.ShowLogs,
		PrefsPath: opts.PrefsPath,
	})
}

func printOnce(ctx context.Context, f *fetcher.Fetcher, store *state.Store, hideStale bool, out io.Writer) error {
	if out == nil {
		out = os.Stdout
	}
	ctx, cancel := context.WithTimeout(ctx, onceTimeout)
	defer cancel()

	f.Refresh(ctx)
	_, err := fmt.Fprintln(out, store.Snapshot().Title(time.Now(), hideStale))
	return err
}

func startSink(ctx context.Context, cfg config.Config, store *state.Store, logger *slog.Logger) {
	sink, err := mqttsink.New(mqttsink.Options{
		Broker:      cfg.MQTT.Broker,
		TopicPrefix: cfg.MQTT.TopicPrefix,
		ClientID:    cfg.MQTT.ClientID,
		HideStale:   cfg.HideStale,
		Logger:      logger,
	})
	if err != nil {
		logger.Warn("mqtt sink disabled", "error", err)
		return
	}
	go func() {
		if err := sink.Connect(ctx); err != nil {
			logger.Warn("mqtt sink disabled", "error", err)
			return
		}
		sink.Run(ctx, store)
	}()
}
