package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyperpolymath/har/pkg/parsers"
	"github.com/hyperpolymath/har/pkg/transformers"
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Parse a source file and immediately lower it into another dialect",
	Long: `convert combines "har parse" and "har transform" into a single
step: it lifts the source file into a graph and lowers that graph
into --to without writing an intermediate envelope.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("from", "", "Source dialect; autodetected from the file if omitted")
	convertCmd.Flags().String("to", "", "Target dialect (ansible, salt, terraform, puppet, chef, kubernetes)")
	convertCmd.Flags().String("output", "", "Write the result to this path instead of stdout")

	convertCmd.Flags().String("hosts", "all", "Ansible play hosts line")
	convertCmd.Flags().Bool("become", false, "Ansible become: true")

	convertCmd.Flags().String("provider", "aws", "Terraform provider (aws, gcp, azure)")
	convertCmd.Flags().String("region", "", "Terraform provider region")
	convertCmd.Flags().String("tf-format", "json", "Terraform output format (json, hcl)")

	convertCmd.Flags().String("class-name", "", "Wrap emitted Puppet resources in this class")

	convertCmd.Flags().String("cookbook-name", "", "Chef cookbook name, used both to read the source recipe and to header the Chef target")
	convertCmd.Flags().String("cookbook-version", "", "Chef cookbook version")

	convertCmd.Flags().String("namespace", "", "Kubernetes namespace for emitted documents")

	_ = convertCmd.MarkFlagRequired("to")
}

func runConvert(cmd *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("convert: reading %s: %w", filename, err)
	}

	from, _ := cmd.Flags().GetString("from")
	cookbookName, _ := cmd.Flags().GetString("cookbook-name")
	cookbookVersion, _ := cmd.Flags().GetString("cookbook-version")

	g, err := parsers.Parse(from, filename, content, parsers.Options{
		CookbookName:    cookbookName,
		CookbookVersion: cookbookVersion,
	})
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}

	out, err := transformers.Transform(g, transformOptionsFromFlags(cmd))
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}

	return writeOutput(cmd, out)
}
