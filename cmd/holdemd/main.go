package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/feltkit/holdemd/internal/config"
	"github.com/feltkit/holdemd/internal/events"
	"github.com/feltkit/holdemd/internal/server"
	"github.com/feltkit/holdemd/internal/store"
	"github.com/feltkit/holdemd/internal/table"
)

var CLI struct {
	Config   string `short:"c" long:"config" default:"holdemd.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" long:"addr" help:"Listen address as host:port (overrides config)"`
	DSN      string `long:"dsn" help:"Store DSN, sqlite path or postgres:// URL (overrides config)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
}

func main() {
	kctx := kong.Parse(&CLI)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		kctx.Exit(1)
	}

	// Apply command line overrides
	if CLI.Addr != "" {
		host, port, err := net.SplitHostPort(CLI.Addr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid --addr %q: %v\n", CLI.Addr, err)
			kctx.Exit(1)
		}
		portNum, err := strconv.Atoi(port)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid --addr port %q: %v\n", port, err)
			kctx.Exit(1)
		}
		cfg.Server.Address = host
		cfg.Server.Port = portNum
	}
	if CLI.DSN != "" {
		cfg.Store.DSN = CLI.DSN
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		kctx.Exit(1)
	}

	logger := log.New(os.Stderr)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	logger.Info("Starting holdemd",
		"addr", cfg.ListenAddr(),
		"dsn", cfg.Store.DSN,
		"tables", len(cfg.Tables),
		"kafka", cfg.KafkaEnabled())

	if err := run(cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		kctx.Exit(1)
	}
	logger.Info("Shutdown complete")
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate store: %w", err)
	}

	for _, t := range cfg.Tables {
		row := store.TableRow{
			ID:            t.Name,
			SmallBlind:    t.SmallBlind,
			BigBlind:      t.BigBlind,
			MaxPlayers:    t.MaxPlayers,
			BuyInMin:      t.BuyInMin,
			BuyInMax:      t.BuyInMax,
			TurnTimeoutMS: t.TurnTimeoutMS,
			Private:       t.Private,
			InviteCode:    t.InviteCode,
		}
		if err := st.EnsureTable(ctx, row); err != nil {
			return fmt.Errorf("configure table %s: %w", t.Name, err)
		}
		logger.Info("Configured table",
			"table", t.Name,
			"stakes", fmt.Sprintf("%d/%d", t.SmallBlind, t.BigBlind),
			"maxPlayers", t.MaxPlayers,
			"private", t.Private)
	}

	bus := events.NewBus(logger)
	defer bus.Close()

	var tap *events.Tap
	if cfg.KafkaEnabled() {
		tap, err = events.NewTap(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		if err != nil {
			return fmt.Errorf("connect kafka tap: %w", err)
		}
		defer tap.Close()
	}

	reg := prometheus.NewRegistry()
	svc := table.NewService(table.Options{
		Store:   st,
		Bus:     bus,
		Tap:     tap,
		GraceMS: cfg.Server.TurnGraceMS,
		Metrics: table.NewMetrics(reg),
		Logger:  logger,
	})
	srv := server.New(svc, bus, reg, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx, cfg.ListenAddr())
	})
	g.Go(func() error {
		return svc.RunSweeper(gctx, time.Duration(cfg.Server.SweepIntervalMS)*time.Millisecond)
	})
	return g.Wait()
}
