package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/caffeineduck/pyplay/gallery"
	"github.com/spf13/cobra"
)

var examplesCmd = &cobra.Command{
	Use:   "examples [name]",
	Short: "List the example programs or print one",
	Example: `  pyplay examples
  pyplay examples turtle > turtle.py`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExamples,
}

func init() {
	rootCmd.AddCommand(examplesCmd)
}

func runExamples(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 1 {
		ex, err := gallery.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(out, ex.Code)
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, ex := range gallery.All() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", ex.Name, ex.View, ex.Title)
	}
	return tw.Flush()
}
