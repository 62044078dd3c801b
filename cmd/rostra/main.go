package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rostra-dev/rostra/pkg/log"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rostra",
	Short: "Rostra client-side event/content storage engine",
	Long: `Rostra runs the client-side half of a peer-to-peer, friend-to-friend
social network: a per-identity event DAG, content-addressed payload store,
missing-content fetcher, and the HTTP/JSON API a local UI drives.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("rostra version %s (%s)\n", Version, Commit))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(genIDCmd)
	rootCmd.AddCommand(webUICmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}
