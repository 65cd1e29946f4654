package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newGrammarCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "grammar",
		Short: "Print the effective grammar as YAML",
		Long: `Print every operator of the effective grammar with its precedence, in the
format accepted by --grammar. Without --grammar this is the JEXL grammar.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := flags.grammar()
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(g); err != nil {
				return fmt.Errorf("failed to encode grammar: %w", err)
			}
			return enc.Close()
		},
	}
}
