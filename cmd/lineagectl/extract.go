package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lineagehub/lineage/internal/extract"
	"github.com/lineagehub/lineage/internal/extract/fixturesource"
	"github.com/lineagehub/lineage/internal/extract/yamlsource"
	"github.com/lineagehub/lineage/internal/sqlast"
)

var (
	extractFixtureDB     string
	extractOrchestration string
	extractOutPath       string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Run one extraction against a source and write a cache fragment",
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&extractFixtureDB, "fixture-db", "", "path to a sqlite fixture database (see internal/extract/fixturesource)")
	extractCmd.Flags().StringVar(&extractOrchestration, "orchestration-yaml", "", "path to an orchestration-metadata YAML file (see internal/extract/yamlsource)")
	extractCmd.Flags().StringVar(&extractOutPath, "out", "", "output cache file path (defaults to the configured cache path)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractFixtureDB == "" && extractOrchestration == "" {
		return fmt.Errorf("extract: one of --fixture-db or --orchestration-yaml is required")
	}

	runID := uuid.New().String()
	out := extractOutPath
	if out == "" {
		out = cfg.CachePath
	}

	var src extract.Source
	if extractFixtureDB != "" {
		fs, err := fixturesource.Open(extractFixtureDB, sqlast.Exasol)
		if err != nil {
			return fmt.Errorf("extract: open fixture db: %w", err)
		}
		defer fs.Close()
		src = fs
	} else {
		ys, err := yamlsource.Open(extractOrchestration)
		if err != nil {
			return fmt.Errorf("extract: open orchestration yaml: %w", err)
		}
		src = ys
	}

	logrus.WithFields(logrus.Fields{"run_id": runID, "source": src.Name()}).Info("extraction starting")

	c, err := extract.Run(context.Background(), src, generatedAtNow())
	if err != nil {
		return fmt.Errorf("extract: run: %w", err)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("extract: create %s: %w", out, err)
	}
	defer f.Close()
	if err := c.Save(f); err != nil {
		return fmt.Errorf("extract: save %s: %w", out, err)
	}

	logrus.WithFields(logrus.Fields{
		"run_id":  runID,
		"objects": c.Metadata.ObjectCount,
		"deps":    c.Metadata.DependencyCount,
		"out":     out,
	}).Info("extraction complete")
	return nil
}
