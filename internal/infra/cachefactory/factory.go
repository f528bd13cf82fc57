package cachefactory

import (
	"strings"
	"time"

	"github.com/brouclean/helloauth/internal/cache"
	cmem "github.com/brouclean/helloauth/internal/cache/memory"
	credis "github.com/brouclean/helloauth/internal/cache/redis"
)

type Config struct {
	Kind  string
	Redis struct {
		Addr   string
		DB     int
		Prefix string
	}
	Memory struct{ DefaultTTL string }
}

// Open builds the configured cache backend, defaulting to memory.
func Open(cfg Config) cache.Cache {
	switch strings.ToLower(cfg.Kind) {
	case "redis":
		return credis.New(cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.Prefix)
	default:
		d, _ := time.ParseDuration(cfg.Memory.DefaultTTL)
		if d == 0 {
			d = 2 * time.Minute
		}
		return cmem.New(d)
	}
}
