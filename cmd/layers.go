package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/naaf-labs/naaf-cli/internal/framework"
	"github.com/naaf-labs/naaf-cli/internal/model"
)

var layersCmd = &cobra.Command{
	Use:   "layers",
	Short: "Show the eight assessment layers and their weights",
	RunE: func(cmd *cobra.Command, _ []string) error {
		formatLayers(os.Stdout, framework.All())
		return nil
	},
}

var layersShowCmd = &cobra.Command{
	Use:   "show <layer-number>",
	Short: "Show one layer with its metrics and query templates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("layer number must be an integer, got %q", args[0])
		}

		layer, err := framework.Get(n)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(layer)
	},
}

var tiersCmd = &cobra.Command{
	Use:   "tiers",
	Short: "Show the power tier classification bands",
	RunE: func(cmd *cobra.Command, _ []string) error {
		formatTiers(os.Stdout, framework.Tiers())
		return nil
	},
}

func init() {
	layersCmd.AddCommand(layersShowCmd)
	rootCmd.AddCommand(layersCmd)
	rootCmd.AddCommand(tiersCmd)
}

func formatLayers(out io.Writer, layers []model.Layer) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "LAYER\tNAME\tSHORT\tWEIGHT\tMETRICS")
	_, _ = fmt.Fprintln(w, "-----\t----\t-----\t------\t-------")
	for _, l := range layers {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%.0f%%\t%d\n",
			l.Number, l.Name, l.ShortName, l.Weight, len(l.Metrics))
	}
	_ = w.Flush()
}

func formatTiers(out io.Writer, tiers []framework.Tier) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TIER\tRANGE\tDESCRIPTION")
	_, _ = fmt.Fprintln(w, "----\t-----\t-----------")
	for _, t := range tiers {
		_, _ = fmt.Fprintf(w, "%s\t%.0f-%.0f\t%s\n",
			t.Label, t.MinScore, t.MaxScore, t.Description)
	}
	_ = w.Flush()
}
