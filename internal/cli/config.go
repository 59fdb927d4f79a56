package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/medialaxis/pkg/errors"
	"github.com/matzehuels/medialaxis/pkg/pipeline"
)

// Cache backends selectable in the settings file.
const (
	backendFile  = "file"
	backendRedis = "redis"
	backendNone  = "none"
)

// Config is the optional settings file. Every field has a default, so a
// missing file is not an error.
type Config struct {
	Cache    CacheConfig    `toml:"cache"`
	Skeleton SkeletonConfig `toml:"skeleton"`
	Server   ServerConfig   `toml:"server"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"`
	Redis   RedisConfig `toml:"redis"`
}

// RedisConfig holds connection settings for the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// SkeletonConfig overrides skeletonization defaults. Command-line flags
// take precedence.
type SkeletonConfig struct {
	Alpha       float64 `toml:"alpha"`
	TargetNodes int     `toml:"target_nodes"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

func defaultConfig() Config {
	return Config{
		Cache: CacheConfig{
			Backend: backendFile,
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
		Skeleton: SkeletonConfig{Alpha: pipeline.DefaultAlpha},
		Server:   ServerConfig{Addr: ":8080"},
	}
}

// configFile returns the default settings path.
func configFile() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// loadConfig reads the settings file at path, or at the default location
// when path is empty. An explicit path must exist.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		p, err := configFile()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "settings file not found: %s", path)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse settings %s", path)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Cache.Backend {
	case backendFile, backendRedis, backendNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "invalid cache backend: %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	if err := errors.ValidateRange("skeleton.alpha", c.Skeleton.Alpha, 0, 1e9); err != nil {
		return err
	}
	if c.Skeleton.TargetNodes < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "skeleton.target_nodes must be >= 0, got %d", c.Skeleton.TargetNodes)
	}
	return nil
}
