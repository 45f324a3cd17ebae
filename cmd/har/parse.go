package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyperpolymath/har/pkg/bridge"
	"github.com/hyperpolymath/har/pkg/graphir"
	"github.com/hyperpolymath/har/pkg/parsers"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Lift a source file into a graph envelope",
	Long: `parse reads an Ansible, Salt, Terraform, Puppet, Chef, or
Kubernetes file and prints its semantic graph as a JSON envelope.
The source dialect is autodetected from the filename and content
unless --format is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().String("format", "", "Source dialect (ansible, salt, terraform, puppet, chef, kubernetes); autodetected if omitted")
	parseCmd.Flags().String("output", "", "Write the graph envelope to this path instead of stdout")
	parseCmd.Flags().Bool("inspect", false, "Print a human-readable summary instead of the JSON envelope")
	parseCmd.Flags().String("cookbook-name", "", "Chef cookbook name (attached to graph metadata)")
	parseCmd.Flags().String("cookbook-version", "", "Chef cookbook version (attached to graph metadata)")
}

func runParse(cmd *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("parse: reading %s: %w", filename, err)
	}

	format, _ := cmd.Flags().GetString("format")
	cookbookName, _ := cmd.Flags().GetString("cookbook-name")
	cookbookVersion, _ := cmd.Flags().GetString("cookbook-version")

	g, err := parsers.Parse(format, filename, content, parsers.Options{
		CookbookName:    cookbookName,
		CookbookVersion: cookbookVersion,
	})
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	inspect, _ := cmd.Flags().GetBool("inspect")
	if inspect {
		return printInspection(cmd, g)
	}

	data, err := bridge.Marshal(g)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	return writeOutput(cmd, data)
}

func printInspection(cmd *cobra.Command, g *graphir.Graph) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "operations: %d\n", g.OperationCount())
	fmt.Fprintf(w, "dependencies: %d\n", g.DependencyCount())
	for _, op := range g.Operations() {
		fmt.Fprintf(w, "  %-30s %s\n", op.ID, op.Type)
	}
	return nil
}
