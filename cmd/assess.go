package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/naaf-labs/naaf-cli/internal/model"
)

var (
	assessYear        int
	assessConcurrency int
)

var assessCmd = &cobra.Command{
	Use:   "assess <country>",
	Short: "Run a full eight-layer assessment for a country",
	Long:  "Researches all eight layers with web search evidence, scores each with the LLM, and persists the final report.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		country := strings.Join(args, " ")

		env, err := initResearch(ctx, assessYear, assessConcurrency)
		if err != nil {
			return err
		}
		defer env.Close()

		stored, err := env.Researcher.Assess(ctx, country)
		if err != nil {
			return err
		}

		printAssessment(stored)
		return nil
	},
}

func printAssessment(stored *model.StoredResearch) {
	fmt.Printf("\n%s — AI Power Score: %.2f/100\n", stored.Country, stored.OverallScore)
	fmt.Printf("Tier: %s\n", stored.Tier)
	fmt.Printf("Run ID: %s\n\n", stored.ID)

	for n := 1; n <= 8; n++ {
		for _, lr := range stored.Layers {
			if lr.LayerNumber != n {
				continue
			}
			marker := ""
			if lr.Status != model.LayerStatusComplete {
				marker = fmt.Sprintf(" [%s]", lr.Status)
			}
			fmt.Printf("  Layer %d %-28s %5.1f/100  (+%.2f)%s\n",
				lr.LayerNumber, lr.LayerName, lr.Score, lr.WeightedContribution, marker)
		}
	}

	fmt.Printf("\n%s\n", stored.ExecutiveSummary)
	fmt.Printf("\nSources: %d  Duration: %.1fs  Cost: $%.4f\n",
		len(stored.Sources), stored.ResearchDurationSeconds, stored.Cost.TotalUSD)
}

func init() {
	assessCmd.Flags().IntVar(&assessYear, "year", 0, "assessment target year (default from config)")
	assessCmd.Flags().IntVar(&assessConcurrency, "concurrency", 0, "parallel layer researchers (default from config)")
	rootCmd.AddCommand(assessCmd)
}
