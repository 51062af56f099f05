package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/speedtype/internal/config"
	"github.com/verte-zerg/speedtype/internal/leaderboard"
	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/server"
	"github.com/verte-zerg/speedtype/internal/session"
	"github.com/verte-zerg/speedtype/internal/textsource"
)

const (
	defaultAddr      = ":8080"
	defaultQuoteRate = 1.0
	quoteBurst       = 3
	shutdownTimeout  = 10 * time.Second
)

var (
	serveAddr          string
	serveAllowedOrigin string
	serveQuoteURL      string
	serveQuoteRate     float64
	serveRedisAddr     string
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and live practice server",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address (PORT env is used when unset)")
	cmd.Flags().StringVar(&serveAllowedOrigin, "allowed-origin", "", "CORS origin allowed to call the API")
	cmd.Flags().StringVar(&serveQuoteURL, "quote-url", textsource.DefaultQuoteURL, "quote API endpoint")
	cmd.Flags().Float64Var(&serveQuoteRate, "quote-rate", defaultQuoteRate, "max upstream quote requests per second (0 disables limiting)")
	cmd.Flags().StringVar(&serveRedisAddr, "redis-addr", "", "Redis address for the shared leaderboard")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logErrf("failed to load .env: %v\n", err)
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg, err := serverConfig(cmd, fileCfg)
	if err != nil {
		return err
	}

	logger := log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lmicroseconds)

	st, err := openStore(fileCfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	board, closeBoard, err := buildBoard(cfg)
	if err != nil {
		return err
	}
	defer closeBoard()

	srv := server.New(server.Options{
		Store: st,
		Quotes: textsource.NewQuotable(textsource.QuotableOptions{
			URL:           cfg.QuoteURL,
			RatePerSecond: cfg.QuoteRate,
			Burst:         quoteBurst,
		}),
		Board:         board,
		AllowedOrigin: cfg.AllowedOrigin,
		Session:       session.Options{TickInterval: cfg.TickInterval},
		Logger:        logger,
	})
	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Printf("listening on %s", cfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Printf("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := httpSrv.Shutdown(shutdownCtx)
		srv.Close()
		return err
	})
	return g.Wait()
}

func serverConfig(cmd *cobra.Command, fileCfg config.FileConfig) (model.ServerConfig, error) {
	s := fileCfg.Server
	applyStringConfig(cmd, "addr", &serveAddr, s.Addr)
	applyStringConfig(cmd, "allowed-origin", &serveAllowedOrigin, s.AllowedOrigin)
	applyStringConfig(cmd, "quote-url", &serveQuoteURL, s.QuoteURL)
	applyFloatConfig(cmd, "quote-rate", &serveQuoteRate, s.QuoteRate)
	applyStringConfig(cmd, "redis-addr", &serveRedisAddr, s.RedisAddr)

	addr := serveAddr
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" && !cmd.Flags().Changed("addr") && s.Addr == nil {
		addr = net.JoinHostPort("", port)
	}
	tickMs := defaultTickMs
	if fileCfg.Practice.TickMs != nil {
		tickMs = *fileCfg.Practice.TickMs
	}
	cfg := model.ServerConfig{
		Addr:          addr,
		AllowedOrigin: strings.TrimSpace(serveAllowedOrigin),
		QuoteURL:      serveQuoteURL,
		QuoteRate:     serveQuoteRate,
		RedisAddr:     strings.TrimSpace(serveRedisAddr),
		TickInterval:  time.Duration(tickMs) * time.Millisecond,
	}
	if cfg.QuoteRate < 0 {
		return model.ServerConfig{}, fmt.Errorf("--quote-rate must be >= 0")
	}
	if cfg.TickInterval <= 0 {
		return model.ServerConfig{}, fmt.Errorf("practice.tick-ms must be > 0")
	}
	return cfg, nil
}

// buildBoard connects the shared Redis leaderboard when configured and
// otherwise keeps scores in process memory until the server exits.
func buildBoard(cfg model.ServerConfig) (leaderboard.Board, func(), error) {
	if cfg.RedisAddr == "" {
		return leaderboard.NewMemory(), func() {}, nil
	}
	redisBoard, err := leaderboard.NewRedis(cfg.RedisAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect leaderboard: %w", err)
	}
	return redisBoard, func() {
		if cerr := redisBoard.Close(); cerr != nil {
			logErrf("failed to close redis: %v\n", cerr)
		}
	}, nil
}
