// Command mkasset checks model documents and renders preview images of them.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "mkasset",
	Short:         "Check and preview SparkXR model documents",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "mkasset:", err)
		os.Exit(2)
	}
}
