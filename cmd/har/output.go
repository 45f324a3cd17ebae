package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// writeOutput writes data to --output if set, otherwise to stdout.
func writeOutput(cmd *cobra.Command, data []byte) error {
	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
