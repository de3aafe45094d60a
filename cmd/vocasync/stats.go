package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/vocasync/internal/learning"
	"github.com/at-ishikawa/vocasync/internal/report"
)

func newStatsCommand() *cobra.Command {
	var (
		year       int
		month      int
		weakestN   int
		outputFile string
		pdfFile    string
	)
	command := &cobra.Command{
		Use:   "stats",
		Short: "Show learning statistics, optionally as a markdown or PDF report",
		RunE: func(cmd *cobra.Command, args []string) error {
			if month != 0 && (month < 1 || month > 12) {
				return fmt.Errorf("invalid month: %d", month)
			}
			if month != 0 && year == 0 {
				return fmt.Errorf("--month requires --year")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, _, err := openStore(cfg)
			if err != nil {
				return err
			}

			result := learning.CalculateStatistics(store.Events(), year, month)
			weakest := store.Weakest(weakestN)
			markdown := report.RenderMarkdown(result, weakest, time.Now())

			if outputFile != "" {
				if err := os.WriteFile(outputFile, []byte(markdown), 0o644); err != nil {
					return fmt.Errorf("os.WriteFile(%s) > %w", outputFile, err)
				}
				fmt.Printf("Wrote %s\n", outputFile)
			}
			if pdfFile != "" {
				if err := report.WritePDF([]byte(markdown), pdfFile); err != nil {
					return fmt.Errorf("report.WritePDF(%s) > %w", pdfFile, err)
				}
				fmt.Printf("Wrote %s\n", pdfFile)
			}
			if outputFile == "" && pdfFile == "" {
				fmt.Fprint(cmd.OutOrStdout(), markdown)
			}
			return nil
		},
	}
	command.Flags().IntVar(&year, "year", 0, "restrict statistics to a year")
	command.Flags().IntVar(&month, "month", 0, "restrict statistics to a month (requires --year)")
	command.Flags().IntVar(&weakestN, "weakest", 10, "number of weakest items to include")
	command.Flags().StringVar(&outputFile, "output", "", "write the markdown report to this file")
	command.Flags().StringVar(&pdfFile, "pdf", "", "write the report as a PDF to this file")
	return command
}
