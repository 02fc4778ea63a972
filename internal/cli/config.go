package cli

import (
	"os"
	"slices"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/nodeflow/pkg/errors"
)

// Cache backends accepted by [CacheConfig.Backend].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

const (
	defaultLogLevel  = "info"
	defaultCacheTTL  = "168h"
	defaultRedisAddr = "localhost:6379"
	defaultAddr      = "localhost:8080"
)

// Config is the contents of the TOML config file.
//
//	log_level = "debug"
//
//	[cache]
//	backend = "redis"
//	ttl = "24h"
//	redis_addr = "localhost:6379"
//
//	[server]
//	addr = "localhost:9090"
//	data_dir = "/srv/nodeflow"
type Config struct {
	LogLevel string       `toml:"log_level"`
	Cache    CacheConfig  `toml:"cache"`
	Server   ServerConfig `toml:"server"`
}

// CacheConfig selects and configures the artifact cache.
type CacheConfig struct {
	Backend       string `toml:"backend"`    // file, redis or none
	Dir           string `toml:"dir"`        // file backend directory
	TTL           string `toml:"ttl"`        // Go duration string
	RedisAddr     string `toml:"redis_addr"` // host:port
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// ServerConfig configures nodeflow serve.
type ServerConfig struct {
	Addr    string `toml:"addr"`
	DataDir string `toml:"data_dir"` // root for Load/Save Image; unset disables them
}

// SetDefaults fills empty fields with their default values.
func (c *Config) SetDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = BackendFile
	}
	if c.Cache.TTL == "" {
		c.Cache.TTL = defaultCacheTTL
	}
	if c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = defaultRedisAddr
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaultAddr
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid log_level %q", c.LogLevel)
	}
	if !slices.Contains([]string{BackendFile, BackendRedis, BackendNone}, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid cache backend %q (must be file, redis or none)", c.Cache.Backend)
	}
	ttl, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid cache ttl %q", c.Cache.TTL)
	}
	if ttl < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}
	if c.Cache.RedisDB < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "redis_db must not be negative")
	}
	return nil
}

// CacheTTL returns the parsed cache TTL. Call after [Config.Validate].
func (c *Config) CacheTTL() time.Duration {
	ttl, _ := time.ParseDuration(c.Cache.TTL)
	return ttl
}

// LoadConfig reads the config file at path, applies defaults and
// validates the result. An empty path means the default location, which
// may be absent. Keys the file sets that Config does not know are
// returned so the caller can warn about them.
func LoadConfig(path string) (*Config, []string, error) {
	cfg := &Config{}
	explicit := path != ""
	if !explicit {
		p, err := defaultConfigPath()
		if err != nil {
			cfg.SetDefaults()
			return cfg, nil, nil
		}
		path = p
	}

	var undecoded []string
	md, err := toml.DecodeFile(path, cfg)
	switch {
	case err == nil:
		for _, key := range md.Undecoded() {
			undecoded = append(undecoded, key.String())
		}
	case os.IsNotExist(err) && !explicit:
		// No config file; defaults only.
	case os.IsNotExist(err):
		return nil, nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file not found")
	default:
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, undecoded, nil
}
