package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lineagehub/lineage/internal/graph"
	"github.com/lineagehub/lineage/internal/query"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Load the configured cache once and print object counts by kind",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	gh := graph.NewHandle()
	ch := newCacheHandle(gh)
	if err := ch.Reload(); err != nil {
		return fmt.Errorf("stats: load cache: %w", err)
	}

	adapter := query.New(gh)
	counts, err := adapter.Statistics()
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(counts)
}
