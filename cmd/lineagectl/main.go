// Command lineagectl is the operator-facing entry point for the lineage
// cache pipeline: run an extraction, merge two cache fragments, serve
// query operations over a loaded cache, or print summary statistics.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Error("lineagectl failed")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
