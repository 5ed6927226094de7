package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"go.uber.org/zap"

	"stock-watch/internal/api"
	"stock-watch/internal/app"
	"stock-watch/internal/config"
	"stock-watch/internal/console"
	"stock-watch/internal/logging"
	"stock-watch/internal/market"
	"stock-watch/internal/persist"
	"stock-watch/internal/refresh"
	"stock-watch/internal/store"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const clearScreen = "\033[H\033[2J"

func main() {
	cfgPath := os.Getenv(config.PathEnv)
	if cfgPath == "" {
		cfgPath = "configs/app.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	dbPath := cfg.Watchlist.Path
	if dbPath == "" {
		if dbPath, err = persist.DefaultPath(); err != nil {
			log.Fatalf("watchlist path error: %v", err)
		}
	}
	file := persist.NewFile(dbPath)

	var st *store.Store
	if cfg.Store.Sqlite.Path != "" {
		st, err = store.Open(cfg.Store.Sqlite.Path)
		if err != nil {
			log.Fatalf("store error: %v", err)
		}
		defer func() {
			if err := st.Close(); err != nil {
				logger.Warn("store close failed", zap.Error(err))
			}
		}()
	}

	fetcher := market.NewEastmoneyFetcher(
		time.Duration(cfg.Market.TimeoutMs)*time.Millisecond,
		market.WithBaseURL(cfg.Market.BaseURL),
	)

	schedOpts := []refresh.Option{
		refresh.WithLogger(logger.Named("refresh")),
		refresh.WithResultBuffer(cfg.Refresh.ResultBuffer),
		refresh.WithTimeout(workerTimeout(cfg.Market.TimeoutMs)),
	}
	if st != nil {
		schedOpts = append(schedOpts, refresh.WithRecorder(st))
	}
	sched := refresh.New(fetcher, schedOpts...)
	defer sched.Close()

	if cfg.Server.Port > 0 {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		h := server.Default(server.WithHostPorts(addr))
		api.RegisterRoutes(h, fetcher, st, logger.Named("api"))
		go func() {
			logger.Info("server starting", zap.String("addr", addr))
			if err := h.Run(); err != nil {
				logger.Error("server run error", zap.Error(err))
			}
		}()
	}

	a := app.New(sched, file,
		app.WithLogger(logger.Named("app")),
		app.WithEveryTicks(cfg.Refresh.EveryTicks),
	)
	a.Start()
	logger.Info("watchlist started",
		zap.String("version", version),
		zap.String("watchlist", file.Path()),
		zap.String("log_level", cfg.Log.Level),
	)

	run(a, os.Stdin, os.Stdout, time.Duration(cfg.Refresh.TickMs)*time.Millisecond,
		console.Options{Title: cfg.UI.Title, Version: version}, logger)
}

// workerTimeout bounds one refresh: the HTTP timeout plus headroom for the
// snapshot write that follows it.
func workerTimeout(httpTimeoutMs int) time.Duration {
	return time.Duration(httpTimeoutMs)*time.Millisecond + 2*time.Second
}

// run is the foreground loop. Only this goroutine touches a.
func run(a *app.App, in io.Reader, out io.Writer, tick time.Duration, opts console.Options, logger *zap.Logger) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	draw := func() {
		_, _ = io.WriteString(out, clearScreen)
		if err := console.Render(out, a.View(), opts); err != nil {
			logger.Warn("render failed", zap.Error(err))
		}
	}
	draw()

	for !a.ShouldExit() {
		select {
		case <-sigs:
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			for _, ev := range console.ParseLine(line) {
				a.Handle(ev)
			}
			a.DrainEvents()
			draw()
		case <-ticker.C:
			a.OnTick()
			draw()
		}
	}
}
