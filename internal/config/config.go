package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration, loaded from YAML with env
// overrides on top. The authenticator block is the privileged app 0: it is
// built once at startup and never touches the apps table.
type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr         string `yaml:"addr"`
		ReadTimeout  string `yaml:"read_timeout"`
		WriteTimeout string `yaml:"write_timeout"`
	} `yaml:"server"`

	Authenticator struct {
		Name             string `yaml:"name"`
		Description      string `yaml:"description"`
		BaseURL          string `yaml:"base_url"`
		RedirectEndpoint string `yaml:"redirect_endpoint"`
		LogoEndpoint     string `yaml:"logo_endpoint"`
		Secret           string `yaml:"secret"`
		TokenLifetime    int    `yaml:"token_lifetime_seconds"`
		OwnerMail        string `yaml:"owner_mail"`
	} `yaml:"authenticator"`

	Storage struct {
		Driver   string `yaml:"driver"` // postgres | memory
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxConns        int    `yaml:"max_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		Username           string `yaml:"username"`
		Password           string `yaml:"password"`
		From               string `yaml:"from"`
		TLS                string `yaml:"tls"` // auto | starttls | ssl | none
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	} `yaml:"smtp"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		SignIn  struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"signin"`
		SignUp struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"signup"`
	} `yaml:"rate"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"metrics"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads the YAML file at path, applies defaults and env overrides,
// and validates the result. A missing file is fine: everything can come
// from the environment.
func Load(path string) (*Config, error) {
	var c Config
	b, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	c.applyDefaults()
	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "10s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "30s"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "postgres"
	}
	if c.Storage.Postgres.MaxConns == 0 {
		c.Storage.Postgres.MaxConns = 10
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "2m"
	}
	if c.Authenticator.RedirectEndpoint == "" {
		c.Authenticator.RedirectEndpoint = "/home"
	}
	if c.Authenticator.LogoEndpoint == "" {
		c.Authenticator.LogoEndpoint = "/assets/images/logo.png"
	}
	if c.Authenticator.TokenLifetime == 0 {
		c.Authenticator.TokenLifetime = 1800
	}
	if c.Rate.SignIn.Limit == 0 {
		c.Rate.SignIn.Limit = 10
	}
	if c.Rate.SignIn.Window == "" {
		c.Rate.SignIn.Window = "1m"
	}
	if c.Rate.SignUp.Limit == 0 {
		c.Rate.SignUp.Limit = 5
	}
	if c.Rate.SignUp.Window == "" {
		c.Rate.SignUp.Window = "10m"
	}
	if c.SMTP.TLS == "" {
		c.SMTP.TLS = "auto"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// applyEnvOverrides lets env vars win over the YAML file. Secrets are
// expected to arrive this way in prod.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("APP_NAME"); ok {
		c.Authenticator.Name = v
	}
	if v, ok := getEnvStr("APP_URL"); ok {
		c.Authenticator.BaseURL = v
	}
	if v, ok := getEnvStr("JWT_SECRET"); ok {
		c.Authenticator.Secret = v
	}
	if v, ok := getEnvInt("JWT_EXPIRE_SECONDS"); ok {
		c.Authenticator.TokenLifetime = v
	}
	if v, ok := getEnvStr("OWNER_MAIL"); ok {
		c.Authenticator.OwnerMail = v
	}
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("DATABASE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_USERNAME"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("SMTP_FROM"); ok {
		c.SMTP.From = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
}

// Validate rejects configurations the service cannot run with. The
// authenticator base URL must be absolute with a host because the session
// cookie domain is derived from it.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Authenticator.Name) == "" {
		return fmt.Errorf("config: authenticator.name is required")
	}
	if strings.TrimSpace(c.Authenticator.Secret) == "" {
		return fmt.Errorf("config: authenticator.secret is required")
	}
	if c.Authenticator.TokenLifetime <= 0 {
		return fmt.Errorf("config: authenticator.token_lifetime_seconds must be positive")
	}
	u, err := url.Parse(c.Authenticator.BaseURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("config: authenticator.base_url must be an absolute URL with a host")
	}
	switch c.Storage.Driver {
	case "postgres":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return fmt.Errorf("config: storage.dsn is required for the postgres driver")
		}
	case "memory":
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Cache.Kind {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: unknown cache kind %q", c.Cache.Kind)
	}
	for _, d := range []string{
		c.Server.ReadTimeout, c.Server.WriteTimeout,
		c.Cache.Memory.DefaultTTL, c.Rate.SignIn.Window, c.Rate.SignUp.Window,
	} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("config: bad duration %q: %w", d, err)
		}
	}
	if c.Storage.Postgres.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(c.Storage.Postgres.ConnMaxLifetime); err != nil {
			return err
		}
	}
	return nil
}

// ---- env helpers ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
