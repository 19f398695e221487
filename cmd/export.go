package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"

	"github.com/naaf-labs/naaf-cli/internal/framework"
	"github.com/naaf-labs/naaf-cli/internal/model"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the latest run per country to an XLSX comparison sheet",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		summaries, err := st.Countries(ctx)
		if err != nil {
			return eris.Wrap(err, "export: list countries")
		}
		if len(summaries) == 0 {
			return eris.New("export: no runs to export")
		}

		runs := make([]*model.StoredResearch, 0, len(summaries))
		for _, s := range summaries {
			run, err := st.Latest(ctx, s.Country)
			if err != nil {
				return eris.Wrapf(err, "export: latest run for %s", s.Country)
			}
			runs = append(runs, run)
		}

		f, err := buildComparisonWorkbook(runs)
		if err != nil {
			return err
		}
		if err := f.Save(exportOut); err != nil {
			return eris.Wrapf(err, "export: save %s", exportOut)
		}

		fmt.Printf("Exported %d countries to %s\n", len(runs), exportOut)
		return nil
	},
}

// buildComparisonWorkbook lays out one scores sheet (countries × layers) and
// one tiers sheet.
func buildComparisonWorkbook(runs []*model.StoredResearch) (*xlsx.File, error) {
	f := xlsx.NewFile()

	scores, err := f.AddSheet("Scores")
	if err != nil {
		return nil, eris.Wrap(err, "export: add scores sheet")
	}

	header := scores.AddRow()
	header.AddCell().SetString("Country")
	header.AddCell().SetString("Overall")
	header.AddCell().SetString("Tier")
	for _, l := range framework.All() {
		header.AddCell().SetString(fmt.Sprintf("L%d %s (%.0f%%)", l.Number, l.ShortName, l.Weight))
	}

	for _, run := range runs {
		row := scores.AddRow()
		row.AddCell().SetString(run.Country)
		row.AddCell().SetFloat(run.OverallScore)
		row.AddCell().SetString(run.Tier)
		for _, l := range framework.All() {
			cell := row.AddCell()
			if lr, ok := run.Layers[l.ShortName]; ok {
				cell.SetFloat(lr.Score)
			} else {
				cell.SetString("")
			}
		}
	}

	tiersSheet, err := f.AddSheet("Tiers")
	if err != nil {
		return nil, eris.Wrap(err, "export: add tiers sheet")
	}
	th := tiersSheet.AddRow()
	th.AddCell().SetString("Tier")
	th.AddCell().SetString("Min")
	th.AddCell().SetString("Max")
	th.AddCell().SetString("Description")
	for _, t := range framework.Tiers() {
		row := tiersSheet.AddRow()
		row.AddCell().SetString(t.Label)
		row.AddCell().SetFloat(t.MinScore)
		row.AddCell().SetFloat(t.MaxScore)
		row.AddCell().SetString(t.Description)
	}

	return f, nil
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "naaf_comparison.xlsx", "output .xlsx path")
	rootCmd.AddCommand(exportCmd)
}
