package config

import (
	"io"

	"github.com/BurntSushi/toml"
)

// fileConfig mirrors the subset of Config fields a user edits directly,
// shaped for TOML's [section] table syntax rather than viper's flattened
// dotted keys.
type fileConfig struct {
	Cache struct {
		Path string `toml:"path"`
	} `toml:"cache"`
	Remote struct {
		Enabled  bool   `toml:"enabled"`
		Bucket   string `toml:"bucket"`
		BlobPath string `toml:"blob_path"`
		Project  string `toml:"project"`
	} `toml:"remote"`
}

// WriteDefaultConfig emits a starter TOML config file (no comments), encoded
// with BurntSushi/toml directly (the viper layer above only ever reads
// this shape back; it never writes it).
func WriteDefaultConfig(w io.Writer) error {
	var fc fileConfig
	fc.Cache.Path = "lineage_cache.json"
	fc.Remote.Enabled = false
	return toml.NewEncoder(w).Encode(fc)
}
