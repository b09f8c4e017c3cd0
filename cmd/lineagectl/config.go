package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lineagehub/lineage/internal/config"
)

var configOutPath string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Write a starter TOML config file",
	RunE:  runConfig,
}

func init() {
	configCmd.Flags().StringVar(&configOutPath, "out", "lineagectl.toml", "where to write the starter config")
}

func runConfig(cmd *cobra.Command, args []string) error {
	f, err := os.Create(configOutPath)
	if err != nil {
		return fmt.Errorf("config: create %s: %w", configOutPath, err)
	}
	defer f.Close()
	return config.WriteDefaultConfig(f)
}
