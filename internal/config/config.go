// Package config loads the lineage service's layered configuration:
// built-in defaults, an optional TOML file, and environment variable
// overrides.
package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// Config is the service's environment surface: the cache-file path, and
// optional remote-blob retrieval settings.
type Config struct {
	CachePath string

	RemoteEnabled  bool
	RemoteBucket   string
	RemoteBlobPath string
	RemoteProject  string
}

// Load builds a Config from defaults, an optional TOML file at path (if
// non-empty and present), and LINEAGE_-prefixed environment variables.
// A missing config file is not an error; the defaults stand.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix("LINEAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("cache.path", "lineage_cache.json")
	v.SetDefault("remote.enabled", false)
	v.SetDefault("remote.bucket", "")
	v.SetDefault("remote.blob_path", "")
	v.SetDefault("remote.project", "")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	return Config{
		CachePath:      v.GetString("cache.path"),
		RemoteEnabled:  v.GetBool("remote.enabled"),
		RemoteBucket:   v.GetString("remote.bucket"),
		RemoteBlobPath: v.GetString("remote.blob_path"),
		RemoteProject:  v.GetString("remote.project"),
	}, nil
}
