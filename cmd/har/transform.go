package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyperpolymath/har/pkg/bridge"
	"github.com/hyperpolymath/har/pkg/transformers"
)

var transformCmd = &cobra.Command{
	Use:   "transform <graph.json>",
	Short: "Lower a graph envelope into a target dialect",
	Long: `transform reads a JSON graph envelope (as produced by "har parse")
and lowers it into Ansible, Salt, Terraform, Puppet, Chef, or
Kubernetes text.`,
	Args: cobra.ExactArgs(1),
	RunE: runTransform,
}

func init() {
	transformCmd.Flags().String("to", "", "Target dialect (ansible, salt, terraform, puppet, chef, kubernetes)")
	transformCmd.Flags().String("output", "", "Write the result to this path instead of stdout")

	transformCmd.Flags().String("hosts", "all", "Ansible play hosts line")
	transformCmd.Flags().Bool("become", false, "Ansible become: true")

	transformCmd.Flags().String("provider", "aws", "Terraform provider (aws, gcp, azure)")
	transformCmd.Flags().String("region", "", "Terraform provider region")
	transformCmd.Flags().String("tf-format", "json", "Terraform output format (json, hcl)")

	transformCmd.Flags().String("class-name", "", "Wrap emitted Puppet resources in this class")

	transformCmd.Flags().String("cookbook-name", "", "Chef cookbook header name")
	transformCmd.Flags().String("cookbook-version", "", "Chef cookbook header version")

	transformCmd.Flags().String("namespace", "", "Kubernetes namespace for emitted documents")

	_ = transformCmd.MarkFlagRequired("to")
}

func runTransform(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("transform: reading %s: %w", args[0], err)
	}
	defer f.Close()

	g, err := bridge.Decode(f)
	if err != nil {
		return fmt.Errorf("transform: %w", err)
	}

	out, err := transformers.Transform(g, transformOptionsFromFlags(cmd))
	if err != nil {
		return fmt.Errorf("transform: %w", err)
	}

	return writeOutput(cmd, out)
}

// transformOptionsFromFlags builds transformers.Options from the
// transform/convert commands' shared flag set.
func transformOptionsFromFlags(cmd *cobra.Command) transformers.Options {
	to, _ := cmd.Flags().GetString("to")
	hosts, _ := cmd.Flags().GetString("hosts")
	become, _ := cmd.Flags().GetBool("become")
	provider, _ := cmd.Flags().GetString("provider")
	region, _ := cmd.Flags().GetString("region")
	tfFormat, _ := cmd.Flags().GetString("tf-format")
	className, _ := cmd.Flags().GetString("class-name")
	cookbookName, _ := cmd.Flags().GetString("cookbook-name")
	cookbookVersion, _ := cmd.Flags().GetString("cookbook-version")
	namespace, _ := cmd.Flags().GetString("namespace")

	return transformers.Options{
		To:              transformers.Dialect(to),
		Hosts:           hosts,
		Become:          become,
		Provider:        provider,
		Region:          region,
		Format:          tfFormat,
		ClassName:       className,
		CookbookName:    cookbookName,
		CookbookVersion: cookbookVersion,
		Namespace:       namespace,
	}
}
