// Command helloauth runs the identity provider.
package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	rdb "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/brouclean/helloauth/internal/apps"
	"github.com/brouclean/helloauth/internal/authorize"
	"github.com/brouclean/helloauth/internal/config"
	"github.com/brouclean/helloauth/internal/domain"
	"github.com/brouclean/helloauth/internal/email"
	appsctl "github.com/brouclean/helloauth/internal/http/controllers/appsctl"
	authctl "github.com/brouclean/helloauth/internal/http/controllers/auth"
	healthctl "github.com/brouclean/helloauth/internal/http/controllers/health"
	oauthctl "github.com/brouclean/helloauth/internal/http/controllers/oauth"
	"github.com/brouclean/helloauth/internal/http/middlewares"
	"github.com/brouclean/helloauth/internal/http/router"
	"github.com/brouclean/helloauth/internal/http/server"
	"github.com/brouclean/helloauth/internal/infra/cachefactory"
	"github.com/brouclean/helloauth/internal/metrics"
	"github.com/brouclean/helloauth/internal/observability/logger"
	"github.com/brouclean/helloauth/internal/rate"
	"github.com/brouclean/helloauth/internal/session"
	"github.com/brouclean/helloauth/internal/store"
	_ "github.com/brouclean/helloauth/internal/store/memory"
	_ "github.com/brouclean/helloauth/internal/store/pg"
	"github.com/brouclean/helloauth/internal/users"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	var configPath string

	root := &cobra.Command{
		Use:           "helloauth",
		Short:         "Self-hosted identity provider",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the YAML config file")

	root.AddCommand(serveCmd(&configPath), migrateCmd(&configPath), secretCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "helloauth",
		Version:     version,
	})
	return cfg, nil
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	authenticator := domain.NewAuthenticatorApp(domain.AuthenticatorConfig{
		Name:             cfg.Authenticator.Name,
		Description:      cfg.Authenticator.Description,
		BaseURL:          cfg.Authenticator.BaseURL,
		RedirectEndpoint: cfg.Authenticator.RedirectEndpoint,
		LogoEndpoint:     cfg.Authenticator.LogoEndpoint,
		Secret:           cfg.Authenticator.Secret,
		TokenLifetime:    cfg.Authenticator.TokenLifetime,
		OwnerMail:        cfg.Authenticator.OwnerMail,
	})

	st, err := store.Open(ctx, store.Config{
		Driver:          cfg.Storage.Driver,
		DSN:             cfg.Storage.DSN,
		MaxConns:        cfg.Storage.Postgres.MaxConns,
		ConnMaxLifetime: parseDuration(cfg.Storage.Postgres.ConnMaxLifetime, time.Hour),
	})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	var cacheCfg cachefactory.Config
	cacheCfg.Kind = cfg.Cache.Kind
	cacheCfg.Redis.Addr = cfg.Cache.Redis.Addr
	cacheCfg.Redis.DB = cfg.Cache.Redis.DB
	cacheCfg.Redis.Prefix = cfg.Cache.Redis.Prefix
	cacheCfg.Memory.DefaultTTL = cfg.Cache.Memory.DefaultTTL

	registry := apps.NewRegistry(apps.Deps{
		Repo:          st.Apps(),
		Cache:         cachefactory.Open(cacheCfg),
		Authenticator: authenticator,
		OwnerMail:     cfg.Authenticator.OwnerMail,
	})
	sessions := session.NewManager(authenticator)

	var sender email.Sender = email.Noop{}
	if cfg.SMTP.Host != "" {
		smtp := email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From,
			cfg.SMTP.Username, cfg.SMTP.Password)
		smtp.TLSMode = cfg.SMTP.TLS
		smtp.InsecureSkipVerify = cfg.SMTP.InsecureSkipVerify
		sender = smtp
	}

	if cfg.Metrics.Enabled {
		if err := metrics.Register(nil); err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
	}

	authController := authctl.NewController(authctl.Deps{
		SignUp:  users.NewSignUpService(users.SignUpDeps{Users: st.Users()}),
		SignIn:  users.NewSignInService(users.SignInDeps{Users: st.Users()}),
		Profile: users.NewProfileService(users.ProfileDeps{Users: st.Users()}),
		Confirm: users.NewConfirmService(users.ConfirmDeps{
			Users:         st.Users(),
			Sender:        sender,
			Authenticator: authenticator,
		}),
		Sessions:    sessions,
		Registry:    registry,
		SignInLimit: limiter(cfg, cfg.Rate.SignIn.Limit, cfg.Rate.SignIn.Window, "rl:signin:"),
		SignUpLimit: limiter(cfg, cfg.Rate.SignUp.Limit, cfg.Rate.SignUp.Window, "rl:signup:"),
	})

	handler := router.New(router.Deps{
		Sessions: sessions,
		Controllers: []router.Controller{
			authController,
			oauthctl.NewController(oauthctl.Deps{
				Authorize: authorize.NewService(authorize.Deps{Apps: registry}),
			}),
			appsctl.NewController(appsctl.Deps{Registry: registry}),
			healthctl.NewController(st),
		},
		MetricsEnabled: cfg.Metrics.Enabled,
	})

	return server.Run(ctx, server.Config{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  parseDuration(cfg.Server.ReadTimeout, 10*time.Second),
		WriteTimeout: parseDuration(cfg.Server.WriteTimeout, 30*time.Second),
	}, handler)
}

// limiter picks the backend matching the cache config: shared Redis
// windows when available, per-process otherwise.
func limiter(cfg *config.Config, max int, window, prefix string) middlewares.Middleware {
	if !cfg.Rate.Enabled {
		return nil
	}
	w := parseDuration(window, time.Minute)
	if cfg.Cache.Kind == "redis" && cfg.Cache.Redis.Addr != "" {
		client := rdb.NewClient(&rdb.Options{
			Addr: cfg.Cache.Redis.Addr,
			DB:   cfg.Cache.Redis.DB,
		})
		return middlewares.WithRateLimit(rate.NewRedisLimiter(client, prefix, max, w))
	}
	return middlewares.WithRateLimit(rate.NewMemoryLimiter(max, w))
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the storage schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			st, err := store.Open(ctx, store.Config{
				Driver:          cfg.Storage.Driver,
				DSN:             cfg.Storage.DSN,
				MaxConns:        cfg.Storage.Postgres.MaxConns,
				ConnMaxLifetime: parseDuration(cfg.Storage.Postgres.ConnMaxLifetime, time.Hour),
			})
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			if err := st.Migrate(ctx); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.L().Info("schema up to date")
			return nil
		},
	}
}

func secretCmd() *cobra.Command {
	var length int
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Generate a random app signing secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			b := make([]byte, length)
			if _, err := rand.Read(b); err != nil {
				return err
			}
			fmt.Println(base64.RawURLEncoding.EncodeToString(b))
			return nil
		},
	}
	cmd.Flags().IntVar(&length, "bytes", 32, "secret length in bytes before encoding")
	return cmd
}
