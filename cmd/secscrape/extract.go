package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Lllllllleong/secfilingflow/internal/filing"
	"github.com/Lllllllleong/secfilingflow/internal/models"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(detectCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract <filing-url> <section>...",
	Short: "Extract sections of a filing and record the session",
	Long: `Extract one or more sections of a filing and record the run as a new session.

Examples:
  secscrape extract https://www.sec.gov/Archives/edgar/data/320193/000032019323000106/aapl-20230930.htm 1A 7`,
	Args: cobra.MinimumNArgs(2),
	RunE: runExtract,
}

var detectCmd = &cobra.Command{
	Use:   "detect <filing-url>",
	Short: "Print the filing type and filing id of a URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp := models.DetectFilingTypeResponse{
			FilingURL:  args[0],
			FilingType: string(filing.DetectKind(args[0])),
			FilingID:   filing.ID(args[0]),
		}
		if outputJSON {
			return writeJSON(cmd.OutOrStdout(), resp)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", resp.FilingType, resp.FilingID)
		return nil
	},
}

func runExtract(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.Scraper.Process(cmd.Context(), &models.ScrapeRequest{
		FilingURL: args[0],
		Sections:  args[1:],
	})
	if err != nil {
		return err
	}
	if outputJSON {
		return writeJSON(cmd.OutOrStdout(), resp)
	}
	printScrapeResponse(cmd.OutOrStdout(), resp)
	return nil
}

func printScrapeResponse(out io.Writer, resp *models.ScrapeResponse) {
	fmt.Fprintf(out, "Filing:  %s (%s)\n", resp.FilingURL, resp.FilingType)
	if resp.Saved {
		fmt.Fprintf(out, "Session: %s/%s (new filing: %t)\n", *resp.FilingID, *resp.SessionID, resp.NewFiling)
	} else {
		fmt.Fprintf(out, "Session: not saved: %s\n", resp.SaveError)
	}
	fmt.Fprintf(out, "Summary: %d requested, %d succeeded, %d failed\n\n",
		resp.Summary.Requested, resp.Summary.Succeeded, resp.Summary.Failed)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SECTION\tSTATUS\tLENGTH\tDETAIL")
	for _, r := range resp.Results {
		if r.Success {
			fmt.Fprintf(w, "%s\tok\t%d\t%s\n", r.SectionID, r.ContentLength, firstLine(r.Content))
		} else {
			fmt.Fprintf(w, "%s\tfailed\t-\t%s\n", r.SectionID, r.Error)
		}
	}
	w.Flush()
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
