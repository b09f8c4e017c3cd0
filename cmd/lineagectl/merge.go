package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lineagehub/lineage/internal/cache"
)

var (
	mergeBase     string
	mergeIncoming string
	mergeOut      string
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge an incoming cache fragment into a base cache, applying idempotent dedup rules",
	RunE:  runMerge,
}

func init() {
	mergeCmd.Flags().StringVar(&mergeBase, "base", "", "path to the base cache file (required)")
	mergeCmd.Flags().StringVar(&mergeIncoming, "incoming", "", "path to the incoming cache fragment (required)")
	mergeCmd.Flags().StringVar(&mergeOut, "out", "", "output path (defaults to --base, overwriting it)")
	mergeCmd.MarkFlagRequired("base")
	mergeCmd.MarkFlagRequired("incoming")
}

func runMerge(cmd *cobra.Command, args []string) error {
	base, err := loadCacheFile(mergeBase)
	if err != nil {
		return fmt.Errorf("merge: load base: %w", err)
	}
	incoming, err := loadCacheFile(mergeIncoming)
	if err != nil {
		return fmt.Errorf("merge: load incoming: %w", err)
	}

	merged, stats := cache.Merge(base, incoming, generatedAtNow())

	out := mergeOut
	if out == "" {
		out = mergeBase
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("merge: create %s: %w", out, err)
	}
	defer f.Close()
	if err := merged.Save(f); err != nil {
		return fmt.Errorf("merge: save %s: %w", out, err)
	}

	logrus.WithFields(logrus.Fields{
		"objects_added":      stats.ObjectsAdded,
		"dependencies_added": stats.DependenciesAdded,
		"column_deps_added":  stats.ColumnDepsAdded,
		"tag_collisions":     stats.TagCollisions,
		"out":                out,
	}).Info("merge complete")
	return nil
}

func loadCacheFile(path string) (*cache.Cache, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return cache.Load(f)
}
