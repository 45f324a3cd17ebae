package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyperpolymath/har/pkg/harlog"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "har",
	Short: "HAR - Hybrid-Ansible Router, a cross-tool IaC translator",
	Long: `HAR lifts Ansible, Salt, Terraform, Puppet, Chef, and Kubernetes
configuration into a dialect-neutral semantic graph, and lowers that
graph back into any of those dialects.`,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(transformCmd)
	rootCmd.AddCommand(convertCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	harlog.Init(harlog.Config{
		Level:      harlog.Level(logLevel),
		JSONOutput: logJSON,
	})
}
