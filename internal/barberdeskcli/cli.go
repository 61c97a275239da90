// Package barberdeskcli implements the barberdesk command line: writing a
// starter .env, running the front office and exporting spreadsheets.
package barberdeskcli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/tacbarber/barberdesk/internal/backend"
	"github.com/tacbarber/barberdesk/internal/config"
	"github.com/tacbarber/barberdesk/internal/envutil"
	"github.com/tacbarber/barberdesk/internal/logger"
	"github.com/tacbarber/barberdesk/internal/security"
	"github.com/tacbarber/barberdesk/internal/session"
	"github.com/tacbarber/barberdesk/internal/sheets"
	"github.com/tacbarber/barberdesk/internal/webapp"
)

var ErrUsage = errors.New("usage")

func Execute(args []string) error {
	if len(args) < 1 {
		return usageError()
	}

	switch args[0] {
	case "setup":
		return runSetup(args[1:])
	case "run":
		return runServer(args[1:])
	case "export":
		return runExport(args[1:])
	case "help", "-h", "--help":
		PrintUsage(os.Stdout)
		return nil
	default:
		return usageError()
	}
}

func PrintUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: barberdesk setup [--api-base-url URL] [--addr :3000] [--session-store memory|redis|token] [--env-file .env] [--force]")
	fmt.Fprintln(w, "       barberdesk run [--config barberdesk.yaml]")
	fmt.Fprintln(w, "       barberdesk export citas|clientes --out FILE.xlsx [--fecha YYYY-MM-DD]")
}

func usageError() error {
	return fmt.Errorf("%w: barberdesk <setup|run|export> [...]", ErrUsage)
}

func runSetup(args []string) error {
	fs := flag.NewFlagSet("setup", flag.ContinueOnError)
	apiURL := fs.String("api-base-url", "http://localhost:8080", "barbershop REST API base URL")
	addr := fs.String("addr", ":3000", "listen address of the front office")
	store := fs.String("session-store", config.StoreMemory, "session store: memory, redis or token")
	envPath := fs.String("env-file", ".env", "path to .env file")
	force := fs.Bool("force", false, "overwrite existing env file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	values := map[string]string{
		"CLIENT_ADDR":   *addr,
		"API_BASE_URL":  *apiURL,
		"SESSION_STORE": *store,
		"TIME_ZONE":     "Europe/Madrid",
		"AUTH_REQUIRED": "true",
	}
	switch *store {
	case config.StoreMemory:
	case config.StoreRedis:
		values["REDIS_ADDR"] = "localhost:6379"
	case config.StoreToken:
		secret, err := security.NewToken()
		if err != nil {
			return fmt.Errorf("generate session secret: %w", err)
		}
		values["SESSION_SECRET"] = secret
	default:
		return fmt.Errorf("%w: unknown session store %q", ErrUsage, *store)
	}

	if err := envutil.WriteDotEnv(*envPath, values, *force); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", *envPath)
	return nil
}

// loadConfig reads .env first so its values reach the config layer.
func loadConfig(path string) (config.Config, error) {
	if err := envutil.LoadDotEnv(".env"); err != nil {
		return config.Config{}, fmt.Errorf("load .env: %w", err)
	}
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func runServer(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "explicit config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat, cfg.Env)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := newSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn().Err(err).Msg("close session store")
		}
	}()

	api := backend.New(backend.Config{BaseURL: cfg.APIBaseURL, Timeout: cfg.APITimeout, Location: cfg.Location()}, log)
	log.Info().
		Str("api", cfg.APIBaseURL).
		Str("session_store", cfg.SessionStore).
		Bool("auth_required", cfg.AuthRequired).
		Msg("starting front office")

	err = webapp.Run(ctx,
		webapp.Config{
			Addr:            cfg.Addr,
			ReadTimeout:     cfg.ReadTimeout,
			WriteTimeout:    cfg.WriteTimeout,
			AuthRequired:    cfg.AuthRequired,
			LoginRatePerMin: cfg.LoginRatePerMin,
			TrustProxy:      cfg.TrustProxy,
		},
		webapp.Deps{
			Backend:  api,
			Sessions: session.NewManager(store, cfg.SessionTTL, !cfg.IsDevelopment()),
			Logger:   log,
			Location: cfg.Location(),
		},
	)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newSessionStore(ctx context.Context, cfg config.Config) (session.Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.SessionStore {
	case config.StoreRedis:
		kv, err := session.NewRedisKV(ctx, session.RedisConfig{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			return nil, nil, err
		}
		return session.NewServerStore(kv), kv.Close, nil
	case config.StoreToken:
		store, err := session.NewTokenStore(cfg.SessionSecret)
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil
	default:
		return session.NewServerStore(session.NewMemoryKV()), noop, nil
	}
}

func runExport(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: missing export target: citas | clientes", ErrUsage)
	}
	target := args[0]
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	out := fs.String("out", "", "output .xlsx file")
	date := fs.String("fecha", "", "only appointments of this day (YYYY-MM-DD)")
	configPath := fs.String("config", "", "explicit config file")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if *out == "" {
		return fmt.Errorf("%w: --out is required", ErrUsage)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat, cfg.Env)
	api := backend.New(backend.Config{BaseURL: cfg.APIBaseURL, Timeout: cfg.APITimeout, Location: cfg.Location()}, log)
	return export(context.Background(), api, target, *date, *out, log)
}

func export(ctx context.Context, api *backend.Client, target, date, out string, log zerolog.Logger) error {
	if target != "citas" && target != "clientes" {
		return fmt.Errorf("%w: unknown export target %q", ErrUsage, target)
	}
	if dir := filepath.Dir(out); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	file, err := os.Create(out)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	var rows int
	switch target {
	case "citas":
		appts, err := api.ListAppointments(ctx, backend.AppointmentFilter{Date: date})
		if err != nil {
			return fmt.Errorf("list appointments: %w", err)
		}
		rows = len(appts)
		if err := sheets.WriteAppointments(file, appts); err != nil {
			return err
		}
	case "clientes":
		clients, err := api.ListClients(ctx, backend.ListFilter{})
		if err != nil {
			return fmt.Errorf("list clients: %w", err)
		}
		rows = len(clients)
		if err := sheets.WriteClients(file, clients); err != nil {
			return err
		}
	}
	log.Info().Str("target", target).Int("rows", rows).Str("file", out).Msg("export written")
	return file.Close()
}
