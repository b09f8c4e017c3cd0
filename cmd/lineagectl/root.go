package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lineagehub/lineage/internal/config"
)

var (
	configPath string
	cachePath  string
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:   "lineagectl",
	Short: "Operate the lineage cache: extract, merge, serve queries, and report statistics",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cachePath != "" {
			loaded.CachePath = cachePath
		}
		cfg = loaded
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a lineagectl TOML config file")
	rootCmd.PersistentFlags().StringVar(&cachePath, "cache", "", "override the cache file path from config")
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(serveQueryCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(configCmd)
}
