package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"kpi-dashboard/pkg/reference"
)

//nolint:gochecknoglobals // Cobra commands are typically global
var referenceCmd = &cobra.Command{
	Use:   "reference [kpi | persona]",
	Short: "Show KPI reference sheets and stakeholder personas",
	Long: `Without argument, list every KPI of the reference catalog and every persona.
With a KPI key (e.g. aov) print its sheet; with a role (CEO, CMO, COO) print the persona.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return writeReference(cmd.OutOrStdout(), reference.Default(), args)
	},
}

func init() {
	rootCmd.AddCommand(referenceCmd)
}

func writeReference(w io.Writer, c *reference.Catalog, args []string) error {
	if len(args) == 0 {
		for _, e := range c.Entries() {
			computed := ""
			if !e.Computed {
				computed = " (not computed)"
			}
			fmt.Fprintf(w, "%s ; %s ; %s%s\n", e.Key, e.Label, e.TargetText, computed)
		}
		fmt.Fprintln(w)
		for _, p := range c.Personas() {
			fmt.Fprintf(w, "%s ; %s ; %s\n", p.Role, p.Title, strings.Join(p.KPIs, ", "))
		}
		return nil
	}

	if p, err := c.Persona(args[0]); err == nil {
		fmt.Fprintf(w, "%s - %s\n%s\n", p.Role, p.Title, p.Focus)
		for _, o := range p.Objectives {
			fmt.Fprintf(w, "  - %s\n", o)
		}
		fmt.Fprintf(w, "KPIs: %s\n", strings.Join(p.KPIs, ", "))
		return nil
	}

	e, err := c.Lookup(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s (%s)\n", e.Label, e.Key)
	fmt.Fprintf(w, "definition: %s\n", e.Definition)
	fmt.Fprintf(w, "formula: %s\n", e.Formula)
	fmt.Fprintf(w, "unit: %s\n", e.Unit)
	fmt.Fprintf(w, "owner: %s\n", e.Owner)
	fmt.Fprintf(w, "tier: %s\n", e.Tier)
	fmt.Fprintf(w, "frequency: %s\n", e.Frequency)
	fmt.Fprintf(w, "direction: %s\n", e.Direction)
	fmt.Fprintf(w, "target: %s\n", e.TargetText)
	return nil
}
