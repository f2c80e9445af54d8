package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"soundcraft/internal/variables"
)

func newVariablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "variables",
		Short:       "List the ritual variable catalog",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(variables.Catalog()))
			for _, def := range variables.Catalog() {
				rows = append(rows, []string{
					def.Tier.String(),
					def.ID,
					def.Label,
					variableDomain(def),
					def.Default,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Tier", "ID", "Label", "Domain", "Default"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func variableDomain(def variables.Definition) string {
	switch def.Kind {
	case variables.KindChoice:
		return strings.Join(def.Choices, " | ")
	case variables.KindInt:
		domain := fmt.Sprintf("%d..%d", def.Min, def.Max)
		if def.Unit != "" {
			domain += " " + def.Unit
		}
		return domain
	case variables.KindLength:
		return "N bars | Ns | N min"
	default:
		return "free text"
	}
}
