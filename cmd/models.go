package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/medintel/internal/ai"
	"github.com/KaramelBytes/medintel/internal/utils"
)

var modelsJSON bool

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the OpenRouter model menu and pricing",
	Example: `  medintel models
  medintel models --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		menu := ai.Menu()
		out := cmd.OutOrStdout()
		if modelsJSON {
			b, err := utils.PrettyJSON(menu)
			if err != nil {
				return err
			}
			_, err = out.Write(b)
			return err
		}
		def := ai.DefaultModel
		if cfg != nil && cfg.DefaultModel != "" {
			def = cfg.DefaultModel
		}
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "\tMODEL\tLABEL\tCONTEXT\tIN $/1K\tOUT $/1K")
		for _, m := range menu {
			mark := ""
			if m.ID == def {
				mark = "*"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.5f\t%.5f\n", mark, m.ID, m.Label, m.ContextTokens, m.InputPerK, m.OutputPerK)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.Flags().BoolVar(&modelsJSON, "json", false, "print the menu as JSON")
}
