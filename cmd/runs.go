package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/naaf-labs/naaf-cli/internal/model"
	"github.com/naaf-labs/naaf-cli/internal/monitoring"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect assessment run history",
	Long:  "Commands for listing, viewing, and summarizing stored assessment runs.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List assessment runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		country, _ := cmd.Flags().GetString("country")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.List(ctx, country, limit)
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show full details of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.Get(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

// -- runs latest --

var runsLatestCmd = &cobra.Command{
	Use:   "latest <country>",
	Short: "Show the most recent run for a country",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.Latest(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs latest")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

// -- runs delete --

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a run and repair the index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Delete(ctx, args[0]); err != nil {
			return eris.Wrap(err, "runs delete")
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

// -- runs countries --

var runsCountriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "Summarize the latest run per country, highest score first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		summaries, err := st.Countries(ctx)
		if err != nil {
			return eris.Wrap(err, "runs countries")
		}

		if len(summaries) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatCountries(os.Stdout, summaries)
		return nil
	},
}

// -- runs stats --

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate run statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		snap, err := monitoring.NewCollector(st).Collect(ctx)
		if err != nil {
			return eris.Wrap(err, "runs stats")
		}

		formatStats(os.Stdout, snap)
		return nil
	},
}

func init() {
	runsListCmd.Flags().String("country", "", "filter by country")
	runsListCmd.Flags().Int("limit", 20, "max number of runs to display")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsLatestCmd)
	runsCmd.AddCommand(runsDeleteCmd)
	runsCmd.AddCommand(runsCountriesCmd)
	runsCmd.AddCommand(runsStatsCmd)
	rootCmd.AddCommand(runsCmd)
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(out io.Writer, runs []model.StoredResearch) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCOUNTRY\tYEAR\tSCORE\tTIER\tGENERATED")
	_, _ = fmt.Fprintln(w, "--\t-------\t----\t-----\t----\t---------")

	for _, r := range runs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%s\t%s\n",
			r.ID, r.Country, r.Year, r.OverallScore, r.Tier,
			r.GeneratedAt.UTC().Format(time.RFC3339))
	}
	_ = w.Flush()
}

// formatCountries writes the per-country leaderboard to w.
func formatCountries(out io.Writer, summaries []model.CountrySummary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "COUNTRY\tSCORE\tTIER\tRUNS\tLATEST")
	_, _ = fmt.Fprintln(w, "-------\t-----\t----\t----\t------")

	for _, s := range summaries {
		_, _ = fmt.Fprintf(w, "%s\t%.2f\t%s\t%d\t%s\n",
			s.Country, s.LatestScore, s.Tier, s.RunCount,
			s.LastUpdated.UTC().Format(time.RFC3339))
	}
	_ = w.Flush()
}

// formatStats writes the metrics snapshot to w.
func formatStats(out io.Writer, snap *monitoring.MetricsSnapshot) {
	fmt.Fprintf(out, "Total runs:      %d\n", snap.TotalRuns)
	fmt.Fprintf(out, "Countries:       %d\n", snap.Countries)
	fmt.Fprintf(out, "Average score:   %.2f\n", snap.AverageScore)
	fmt.Fprintf(out, "Total cost:      $%.4f\n", snap.TotalCostUSD)
	fmt.Fprintf(out, "Partial layers:  %d\n", snap.PartialLayers)
	if snap.LatestRunAt != nil {
		fmt.Fprintf(out, "Latest run:      %s\n", snap.LatestRunAt.UTC().Format(time.RFC3339))
	}
	if len(snap.RunsPerTier) > 0 {
		fmt.Fprintln(out, "Runs per tier:")
		for _, tier := range []string{
			"Tier 1: Hegemon",
			"Tier 2: Strategic Specialist",
			"Tier 3: Adopter",
			"Tier 4: Consumer",
		} {
			if n := snap.RunsPerTier[tier]; n > 0 {
				fmt.Fprintf(out, "  %-30s %d\n", tier, n)
			}
		}
	}
}
