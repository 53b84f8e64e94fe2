package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/medintel/internal/parser"
	"github.com/KaramelBytes/medintel/internal/utils"
)

var sampleOut string

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Print a one-row sample CSV with the expected columns",
	RunE: func(cmd *cobra.Command, args []string) error {
		var buf bytes.Buffer
		if err := parser.WriteCSV(&buf, parser.SampleTable()); err != nil {
			return err
		}
		if sampleOut == "" {
			_, err := cmd.OutOrStdout().Write(buf.Bytes())
			return err
		}
		if err := utils.WriteFileAtomic(sampleOut, buf.Bytes()); err != nil {
			return fmt.Errorf("write sample: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", sampleOut)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)
	sampleCmd.Flags().StringVarP(&sampleOut, "output", "o", "", "write the sample to a file instead of stdout")
}
