package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"yatube/cache"
	"yatube/config"
	"yatube/db"
	"yatube/domain"
	"yatube/events"
	"yatube/handler"
	"yatube/logging"
	"yatube/media"
	"yatube/metrics"
	"yatube/store"
	"yatube/templates"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/acme/autocert"
)

const usage = `Usage: yatube [command] [flags]

Commands:
  serve            run the web server (default)
  migrate          apply database schema migrations and exit
  group create     add a group: --slug, --title, --description
  group list       print every group
  comment list     print the visible comments of a post: comment list <post-id>
  comment hide     hide a comment from its post: comment hide <id>
  comment show     make a hidden comment visible again: comment show <id>
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "yatube:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	// A missing .env is fine; real deployments set the environment.
	_ = godotenv.Load()

	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	switch cmd {
	case "serve":
		return serve(cfg, log, args)
	case "migrate":
		conn, err := setupDB(cfg, log)
		if err != nil {
			return err
		}
		return conn.Close()
	case "group":
		conn, err := setupDB(cfg, log)
		if err != nil {
			return err
		}
		defer conn.Close()
		return runGroup(context.Background(), store.New(conn), args, os.Stdout)
	case "comment":
		conn, err := setupDB(cfg, log)
		if err != nil {
			return err
		}
		defer conn.Close()
		return runComment(context.Background(), store.New(conn), args, os.Stdout)
	case "help":
		fmt.Print(usage)
		return nil
	}
	return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
}

func setupDB(cfg *config.Config, log zerolog.Logger) (*sql.DB, error) {
	conn, err := db.Open(cfg.DBDriver, cfg.DBURL)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("Running database schema migrations...")
	if err := db.Migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database schema migration: %w", err)
	}
	return conn, nil
}

func newPageCache(cfg *config.Config, log zerolog.Logger) cache.Cache {
	switch cfg.CacheBackend {
	case "memory":
		return cache.NewMemory(1024, cfg.IndexCacheTTL)
	case "memcache":
		return cache.NewMemcache(strings.Split(cfg.MemcacheURL, ","), log)
	}
	return nil
}

func newPublisher(cfg *config.Config) (events.Publisher, error) {
	switch cfg.EventsBroker {
	case "nats":
		n, err := events.NewNATS(cfg.NATSURL, cfg.NATSSubjectPrefix)
		if err != nil {
			return nil, err
		}
		return n, nil
	case "kafka":
		return events.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	}
	return events.Nop{}, nil
}

func serve(cfg *config.Config, log zerolog.Logger, args []string) error {
	flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	addr := flags.String("addr", cfg.Addr, "address to listen on; empty in pro means autocert TLS on :443")
	if err := flags.Parse(args); err != nil {
		return err
	}

	conn, err := setupDB(cfg, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	storage, err := media.New(cfg.MediaRoot, cfg.MediaMaxBytes)
	if err != nil {
		return err
	}
	pub, err := newPublisher(cfg)
	if err != nil {
		return fmt.Errorf("connect %s: %w", cfg.EventsBroker, err)
	}
	defer pub.Close()

	renderer, err := templates.New()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.Use(middleware.Recover())
	e.Use(logging.Middleware(log))
	e.Use(metrics.Middleware())
	e.Use(middleware.Secure())
	e.Use(middleware.BodyLimit(strconv.FormatInt(cfg.MediaMaxBytes+1<<20, 10) + "B"))
	e.Use(handler.CSRF())
	e.Static("/static", "assets")
	e.Static(strings.TrimSuffix(media.URLPrefix, "/"), cfg.MediaRoot)

	h := &handler.Handler{
		Store:        store.New(conn),
		Media:        storage,
		Cache:        newPageCache(cfg, log),
		Events:       pub,
		Log:          log,
		JWTSecret:    cfg.JWTSecret,
		EnableSignup: cfg.EnableSignup,
		Environment:  cfg.Env,
		Site: domain.Site{
			Title:       cfg.SiteTitle,
			Description: cfg.SiteDescription,
			Footer:      cfg.SiteFooter,
		},
		PerPage:       cfg.PostsPerPage,
		IndexTTL:      cfg.IndexCacheTTL,
		AuthRateLimit: cfg.AuthRateLimit,
	}
	h.Register(e)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		if *addr != "" {
			log.Info().Str("addr", *addr).Str("env", cfg.Env).Msg("listening")
			errc <- e.Start(*addr)
			return
		}
		// Cache certificates to avoid issues with rate limits (https://letsencrypt.org/docs/rate-limits)
		e.AutoTLSManager.Cache = autocert.DirCache(cfg.CertCacheDir)
		if cfg.WhitelistHost != "" {
			e.AutoTLSManager.HostPolicy = autocert.HostWhitelist(cfg.WhitelistHost)
		}
		e.Pre(middleware.HTTPSRedirect())
		log.Info().Str("addr", ":443").Str("env", cfg.Env).Msg("listening with autocert")
		errc <- e.StartAutoTLS(":443")
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
